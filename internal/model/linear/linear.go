// Package linear adapts the sajari regression solver into the
// classifier contracts. The solver is the external model-fitting
// collaborator; this package only encodes labels, thresholds scores,
// and takes argmaxes.
package linear

import (
	"errors"
	"fmt"

	"github.com/louisbranch/rookery/internal/dataset"
	"github.com/louisbranch/rookery/internal/model"
	"github.com/sajari/regression"
	"gonum.org/v1/gonum/mat"
)

// ErrNotBinary indicates a binary fitter saw a label with other than
// two levels in the training partition.
var ErrNotBinary = errors.New("binary classifier requires exactly two label levels")

// Binary fits a two-class linear model and thresholds its score.
//
// The positive class is the second level of the label's byte-wise
// ascending ordering (for sex, "male"). The score scale is explicit:
// with ScaleProbability the target is encoded 0/1 and scores cut at
// 0.5; with ScaleLinear the target is encoded -1/+1 and scores cut
// at 0.
type Binary struct {
	label    dataset.Field
	features []dataset.Field
	scale    model.ScoreScale
}

// NewBinary builds a binary fitter. The scale must be specified.
func NewBinary(label dataset.Field, features []dataset.Field, scale model.ScoreScale) (*Binary, error) {
	if err := validateSpec(label, features); err != nil {
		return nil, err
	}
	if _, err := scale.Cutoff(); err != nil {
		return nil, err
	}
	return &Binary{label: label, features: features, scale: scale}, nil
}

// Fit trains the linear model on the training partition.
func (b *Binary) Fit(train dataset.Dataset) (model.Classifier, error) {
	labels, err := train.Labels(b.label)
	if err != nil {
		return nil, err
	}
	levels, err := train.Levels(b.label)
	if err != nil {
		return nil, err
	}
	if len(levels) != 2 {
		return nil, fmt.Errorf("%w: field %s has %d levels", ErrNotBinary, b.label, len(levels))
	}

	features, err := train.Features(b.features...)
	if err != nil {
		return nil, err
	}

	negative, positive := targetEncoding(b.scale)

	r := new(regression.Regression)
	r.SetObserved(b.label.String())
	for i, feature := range b.features {
		r.SetVar(i, feature.String())
	}
	rows, _ := features.Dims()
	for i := 0; i < rows; i++ {
		target := negative
		if labels[i] == levels[1] {
			target = positive
		}
		r.Train(regression.DataPoint(target, mat.Row(nil, i, features)))
	}
	if err := r.Run(); err != nil {
		return nil, fmt.Errorf("fit linear model: %w", err)
	}

	cutoff, err := b.scale.Cutoff()
	if err != nil {
		return nil, err
	}

	return &binaryClassifier{
		model:    r,
		features: b.features,
		levels:   [2]string{levels[0], levels[1]},
		cutoff:   cutoff,
	}, nil
}

func (b *Binary) String() string {
	return fmt.Sprintf("linear:binary:%s", b.scale)
}

// targetEncoding returns the (negative, positive) target values used
// so the fitted score lives on the declared scale.
func targetEncoding(scale model.ScoreScale) (float64, float64) {
	if scale == model.ScaleLinear {
		return -1, 1
	}
	return 0, 1
}

type binaryClassifier struct {
	model    *regression.Regression
	features []dataset.Field
	levels   [2]string
	cutoff   float64
}

func (c *binaryClassifier) Predict(ds dataset.Dataset) ([]string, error) {
	features, err := ds.Features(c.features...)
	if err != nil {
		return nil, err
	}

	rows, _ := features.Dims()
	predictions := make([]string, rows)
	for i := 0; i < rows; i++ {
		score, err := c.model.Predict(mat.Row(nil, i, features))
		if err != nil {
			return nil, fmt.Errorf("predict record %d: %w", i, err)
		}
		if score >= c.cutoff {
			predictions[i] = c.levels[1]
		} else {
			predictions[i] = c.levels[0]
		}
	}
	return predictions, nil
}

// OneVsRest fits one linear scorer per label level and predicts the
// level with the highest score. Ties resolve to the earlier ordered
// level.
type OneVsRest struct {
	label    dataset.Field
	features []dataset.Field
}

// NewOneVsRest builds a one-vs-rest fitter.
func NewOneVsRest(label dataset.Field, features []dataset.Field) (*OneVsRest, error) {
	if err := validateSpec(label, features); err != nil {
		return nil, err
	}
	return &OneVsRest{label: label, features: features}, nil
}

// Fit trains one scorer per level of the label in the training
// partition.
func (o *OneVsRest) Fit(train dataset.Dataset) (model.Classifier, error) {
	labels, err := train.Labels(o.label)
	if err != nil {
		return nil, err
	}
	levels, err := train.Levels(o.label)
	if err != nil {
		return nil, err
	}
	if len(levels) < 2 {
		return nil, fmt.Errorf("one-vs-rest requires at least two label levels, field %s has %d", o.label, len(levels))
	}

	features, err := train.Features(o.features...)
	if err != nil {
		return nil, err
	}
	rows, _ := features.Dims()

	scorers := make([]*regression.Regression, len(levels))
	for l, level := range levels {
		r := new(regression.Regression)
		r.SetObserved(fmt.Sprintf("%s=%s", o.label, level))
		for i, feature := range o.features {
			r.SetVar(i, feature.String())
		}
		for i := 0; i < rows; i++ {
			target := 0.0
			if labels[i] == level {
				target = 1.0
			}
			r.Train(regression.DataPoint(target, mat.Row(nil, i, features)))
		}
		if err := r.Run(); err != nil {
			return nil, fmt.Errorf("fit scorer for level %s: %w", level, err)
		}
		scorers[l] = r
	}

	return &oneVsRestClassifier{
		scorers:  scorers,
		levels:   levels,
		features: o.features,
	}, nil
}

func (o *OneVsRest) String() string {
	return "linear:one-vs-rest"
}

type oneVsRestClassifier struct {
	scorers  []*regression.Regression
	levels   []string
	features []dataset.Field
}

func (c *oneVsRestClassifier) Predict(ds dataset.Dataset) ([]string, error) {
	features, err := ds.Features(c.features...)
	if err != nil {
		return nil, err
	}

	rows, _ := features.Dims()
	predictions := make([]string, rows)
	for i := 0; i < rows; i++ {
		row := mat.Row(nil, i, features)
		best := 0
		bestScore := 0.0
		for l, scorer := range c.scorers {
			score, err := scorer.Predict(row)
			if err != nil {
				return nil, fmt.Errorf("score record %d against level %s: %w", i, c.levels[l], err)
			}
			if l == 0 || score > bestScore {
				best = l
				bestScore = score
			}
		}
		predictions[i] = c.levels[best]
	}
	return predictions, nil
}

func validateSpec(label dataset.Field, features []dataset.Field) error {
	if !label.Categorical() {
		return fmt.Errorf("label field %s is not categorical", label)
	}
	if len(features) == 0 {
		return errors.New("at least one feature field is required")
	}
	for _, feature := range features {
		if !feature.Numeric() {
			return fmt.Errorf("feature field %s is not numeric", feature)
		}
	}
	return nil
}
