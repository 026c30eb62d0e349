// Package evaluate scores predicted labels against observed labels,
// producing an accuracy scalar and a confusion matrix.
package evaluate

import (
	"errors"
	"sort"
)

// ErrEmptyInput indicates evaluation was requested with no labels.
var ErrEmptyInput = errors.New("label sequences must not be empty")

// ErrLengthMismatch indicates the predicted and observed sequences have
// different lengths.
var ErrLengthMismatch = errors.New("predicted and observed label sequences must have the same length")

// Result captures the outcome of comparing predicted against observed
// labels.
//
// Labels is the union of both sequences in ascending byte-wise order;
// this ordering is the contract relied on by callers interpreting
// binary outcomes (the second level is the positive class). Counts[i][j]
// is the number of positions where Labels[i] was observed and Labels[j]
// was predicted. Proportions is Counts with each row normalized to sum
// to 1.0; a label that never appears in the observed sequence keeps an
// all-zero row.
type Result struct {
	Total       int
	Correct     int
	Accuracy    float64
	Labels      []string
	Counts      [][]int
	Proportions [][]float64
}

// Count returns the confusion count for an (observed, predicted) label
// pair. Unknown labels count zero.
func (r Result) Count(observed, predicted string) int {
	i := labelIndex(r.Labels, observed)
	j := labelIndex(r.Labels, predicted)
	if i < 0 || j < 0 {
		return 0
	}
	return r.Counts[i][j]
}

// Evaluate compares predicted labels against observed labels.
//
// The two sequences must be positionally aligned: predicted[i] is the
// prediction for the record whose observed label is observed[i].
//
// Evaluate is a pure function of its inputs. Swapping the arguments
// transposes the meaning of the confusion matrix rows and columns but
// never changes the accuracy.
//
// # Errors
//
//   - ErrEmptyInput is returned when both sequences are empty.
//   - ErrLengthMismatch is returned when the sequences differ in length.
func Evaluate(predicted, observed []string) (Result, error) {
	if len(predicted) != len(observed) {
		return Result{}, ErrLengthMismatch
	}
	if len(predicted) == 0 {
		return Result{}, ErrEmptyInput
	}

	labels := labelUnion(predicted, observed)
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	counts := make([][]int, len(labels))
	for i := range counts {
		counts[i] = make([]int, len(labels))
	}

	correct := 0
	for i := range observed {
		if predicted[i] == observed[i] {
			correct++
		}
		counts[index[observed[i]]][index[predicted[i]]]++
	}

	proportions := make([][]float64, len(labels))
	for i, row := range counts {
		proportions[i] = make([]float64, len(labels))
		rowTotal := 0
		for _, count := range row {
			rowTotal += count
		}
		if rowTotal == 0 {
			continue
		}
		for j, count := range row {
			proportions[i][j] = float64(count) / float64(rowTotal)
		}
	}

	return Result{
		Total:       len(observed),
		Correct:     correct,
		Accuracy:    float64(correct) / float64(len(observed)),
		Labels:      labels,
		Counts:      counts,
		Proportions: proportions,
	}, nil
}

// labelUnion returns the distinct labels across both sequences in
// ascending byte-wise order.
func labelUnion(predicted, observed []string) []string {
	seen := make(map[string]struct{}, len(observed))
	for _, label := range observed {
		seen[label] = struct{}{}
	}
	for _, label := range predicted {
		seen[label] = struct{}{}
	}

	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func labelIndex(labels []string, label string) int {
	for i, candidate := range labels {
		if candidate == label {
			return i
		}
	}
	return -1
}
