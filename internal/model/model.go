// Package model defines the contracts between the evaluation harness
// and externally fitted classifiers.
package model

import (
	"errors"
	"fmt"

	"github.com/louisbranch/rookery/internal/dataset"
)

// ErrUnspecifiedScale indicates a thresholding classifier was built
// without declaring which scale its scores live on.
var ErrUnspecifiedScale = errors.New("score scale must be specified")

// Classifier predicts a label for every record in a dataset,
// positionally aligned with the records.
type Classifier interface {
	Predict(ds dataset.Dataset) ([]string, error)
}

// Fitter trains a classifier on a training partition. The label and
// feature specification is carried by the concrete fitter.
type Fitter interface {
	Fit(train dataset.Dataset) (Classifier, error)
}

// ScoreScale declares the scale a fitted model's raw score lives on.
// Binary thresholding depends on it: probability-scale scores cut at
// 0.5, linear-predictor scores cut at 0. Constructors reject
// ScaleUnspecified rather than assuming one.
type ScoreScale int

const (
	ScaleUnspecified ScoreScale = iota
	ScaleProbability
	ScaleLinear
)

func (s ScoreScale) String() string {
	switch s {
	case ScaleProbability:
		return "probability"
	case ScaleLinear:
		return "linear"
	default:
		return "unspecified"
	}
}

// ParseScoreScale maps a scale name to its ScoreScale.
func ParseScoreScale(name string) (ScoreScale, error) {
	switch name {
	case "probability":
		return ScaleProbability, nil
	case "linear":
		return ScaleLinear, nil
	default:
		return ScaleUnspecified, fmt.Errorf("%w: unknown scale %q", ErrUnspecifiedScale, name)
	}
}

// Cutoff returns the decision threshold for the scale.
func (s ScoreScale) Cutoff() (float64, error) {
	switch s {
	case ScaleProbability:
		return 0.5, nil
	case ScaleLinear:
		return 0, nil
	default:
		return 0, ErrUnspecifiedScale
	}
}

// Constant is a baseline classifier that predicts one label for every
// record. It also acts as its own fitter.
type Constant struct {
	Label string
}

// Fit returns the constant classifier unchanged; there is nothing to
// learn from the training partition.
func (c Constant) Fit(dataset.Dataset) (Classifier, error) {
	if c.Label == "" {
		return nil, errors.New("constant classifier requires a label")
	}
	return c, nil
}

// Predict returns the constant label for every record.
func (c Constant) Predict(ds dataset.Dataset) ([]string, error) {
	if c.Label == "" {
		return nil, errors.New("constant classifier requires a label")
	}
	labels := make([]string, ds.Len())
	for i := range labels {
		labels[i] = c.Label
	}
	return labels, nil
}

func (c Constant) String() string {
	return fmt.Sprintf("constant:%s", c.Label)
}
