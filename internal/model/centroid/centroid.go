// Package centroid implements a nearest-centroid baseline classifier:
// per-class feature means with Euclidean argmin prediction.
package centroid

import (
	"errors"
	"fmt"

	"github.com/louisbranch/rookery/internal/dataset"
	"github.com/louisbranch/rookery/internal/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Fitter trains the nearest-centroid classifier.
type Fitter struct {
	label    dataset.Field
	features []dataset.Field
}

// New builds a nearest-centroid fitter.
func New(label dataset.Field, features []dataset.Field) (*Fitter, error) {
	if !label.Categorical() {
		return nil, fmt.Errorf("label field %s is not categorical", label)
	}
	if len(features) == 0 {
		return nil, errors.New("at least one feature field is required")
	}
	for _, feature := range features {
		if !feature.Numeric() {
			return nil, fmt.Errorf("feature field %s is not numeric", feature)
		}
	}
	return &Fitter{label: label, features: features}, nil
}

// Fit computes one centroid per label level. Ties at prediction time
// resolve to the earlier ordered level.
func (f *Fitter) Fit(train dataset.Dataset) (model.Classifier, error) {
	labels, err := train.Labels(f.label)
	if err != nil {
		return nil, err
	}
	levels, err := train.Levels(f.label)
	if err != nil {
		return nil, err
	}
	if len(levels) < 2 {
		return nil, fmt.Errorf("nearest centroid requires at least two label levels, field %s has %d", f.label, len(levels))
	}

	features, err := train.Features(f.features...)
	if err != nil {
		return nil, err
	}
	rows, cols := features.Dims()

	index := make(map[string]int, len(levels))
	for i, level := range levels {
		index[level] = i
	}

	centroids := make([][]float64, len(levels))
	counts := make([]int, len(levels))
	for i := range centroids {
		centroids[i] = make([]float64, cols)
	}
	for i := 0; i < rows; i++ {
		l := index[labels[i]]
		floats.Add(centroids[l], mat.Row(nil, i, features))
		counts[l]++
	}
	for l := range centroids {
		if counts[l] == 0 {
			return nil, fmt.Errorf("label level %s has no training records", levels[l])
		}
		floats.Scale(1/float64(counts[l]), centroids[l])
	}

	return &classifier{
		centroids: centroids,
		levels:    levels,
		features:  f.features,
	}, nil
}

func (f *Fitter) String() string {
	return "centroid"
}

type classifier struct {
	centroids [][]float64
	levels    []string
	features  []dataset.Field
}

func (c *classifier) Predict(ds dataset.Dataset) ([]string, error) {
	features, err := ds.Features(c.features...)
	if err != nil {
		return nil, err
	}

	rows, _ := features.Dims()
	predictions := make([]string, rows)
	for i := 0; i < rows; i++ {
		row := mat.Row(nil, i, features)
		best := 0
		bestDistance := floats.Distance(row, c.centroids[0], 2)
		for l := 1; l < len(c.centroids); l++ {
			distance := floats.Distance(row, c.centroids[l], 2)
			if distance < bestDistance {
				best = l
				bestDistance = distance
			}
		}
		predictions[i] = c.levels[best]
	}
	return predictions, nil
}
