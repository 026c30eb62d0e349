// Package dataset models the penguin measurement table consumed by the
// partitioning and evaluation harness.
//
// Categorical levels follow ascending byte-wise string order wherever a
// level ordering matters ("Adelie" < "Chinstrap" < "Gentoo", "female" <
// "male"). For binary outcomes the second ordered level is the positive
// class.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/louisbranch/rookery/internal/core/split"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrUnknownField indicates a field name that is not part of the schema.
var ErrUnknownField = errors.New("unknown dataset field")

// ErrNotCategorical indicates a numeric field used where labels are required.
var ErrNotCategorical = errors.New("field is not categorical")

// ErrNotNumeric indicates a categorical field used where features are required.
var ErrNotNumeric = errors.New("field is not numeric")

// ErrMissingValue indicates a record with a missing value where a
// complete one is required.
var ErrMissingValue = errors.New("record has a missing value")

// Field identifies one column of the record schema.
type Field int

const (
	FieldSpecies Field = iota
	FieldIsland
	FieldBillLengthMM
	FieldBillDepthMM
	FieldFlipperLengthMM
	FieldBodyMassG
	FieldSex
)

// Fields lists every schema column in declaration order.
var Fields = []Field{
	FieldSpecies,
	FieldIsland,
	FieldBillLengthMM,
	FieldBillDepthMM,
	FieldFlipperLengthMM,
	FieldBodyMassG,
	FieldSex,
}

func (f Field) String() string {
	switch f {
	case FieldSpecies:
		return "species"
	case FieldIsland:
		return "island"
	case FieldBillLengthMM:
		return "bill_length_mm"
	case FieldBillDepthMM:
		return "bill_depth_mm"
	case FieldFlipperLengthMM:
		return "flipper_length_mm"
	case FieldBodyMassG:
		return "body_mass_g"
	case FieldSex:
		return "sex"
	default:
		return "unknown"
	}
}

// ParseField maps a column name to its Field.
func ParseField(name string) (Field, error) {
	for _, field := range Fields {
		if field.String() == name {
			return field, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Categorical reports whether the field holds labels.
func (f Field) Categorical() bool {
	switch f {
	case FieldSpecies, FieldIsland, FieldSex:
		return true
	default:
		return false
	}
}

// Numeric reports whether the field holds measurements.
func (f Field) Numeric() bool {
	return !f.Categorical()
}

// Record is one observation. Missing categorical values are empty
// strings; missing measurements are NaN.
type Record struct {
	Species         string
	Island          string
	BillLengthMM    float64
	BillDepthMM     float64
	FlipperLengthMM float64
	BodyMassG       float64
	Sex             string
}

// Label returns the record's value for a categorical field.
func (r Record) Label(field Field) (string, error) {
	switch field {
	case FieldSpecies:
		return r.Species, nil
	case FieldIsland:
		return r.Island, nil
	case FieldSex:
		return r.Sex, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrNotCategorical, field)
	}
}

// Measurement returns the record's value for a numeric field.
func (r Record) Measurement(field Field) (float64, error) {
	switch field {
	case FieldBillLengthMM:
		return r.BillLengthMM, nil
	case FieldBillDepthMM:
		return r.BillDepthMM, nil
	case FieldFlipperLengthMM:
		return r.FlipperLengthMM, nil
	case FieldBodyMassG:
		return r.BodyMassG, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrNotNumeric, field)
	}
}

// Complete reports whether the record has no missing values.
func (r Record) Complete() bool {
	if r.Species == "" || r.Island == "" || r.Sex == "" {
		return false
	}
	for _, value := range []float64{r.BillLengthMM, r.BillDepthMM, r.FlipperLengthMM, r.BodyMassG} {
		if math.IsNaN(value) {
			return false
		}
	}
	return true
}

// Dataset is an ordered collection of records sharing the schema.
type Dataset struct {
	Records []Record
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.Records)
}

// CompleteCases returns a new dataset holding only records with no
// missing values, preserving their original order.
func (d Dataset) CompleteCases() Dataset {
	records := make([]Record, 0, len(d.Records))
	for _, record := range d.Records {
		if record.Complete() {
			records = append(records, record)
		}
	}
	return Dataset{Records: records}
}

// Subset returns a new dataset holding the records at the provided
// indices, in index order.
func (d Dataset) Subset(indices []int) (Dataset, error) {
	records := make([]Record, 0, len(indices))
	for _, index := range indices {
		if index < 0 || index >= len(d.Records) {
			return Dataset{}, fmt.Errorf("record index %d out of range [0, %d)", index, len(d.Records))
		}
		records = append(records, d.Records[index])
	}
	return Dataset{Records: records}, nil
}

// Labels returns the values of a categorical field, positionally
// aligned with the records.
func (d Dataset) Labels(field Field) ([]string, error) {
	labels := make([]string, len(d.Records))
	for i, record := range d.Records {
		label, err := record.Label(field)
		if err != nil {
			return nil, err
		}
		labels[i] = label
	}
	return labels, nil
}

// Levels returns the distinct values of a categorical field in
// ascending byte-wise order.
func (d Dataset) Levels(field Field) ([]string, error) {
	seen := make(map[string]struct{})
	for _, record := range d.Records {
		label, err := record.Label(field)
		if err != nil {
			return nil, err
		}
		if label != "" {
			seen[label] = struct{}{}
		}
	}

	levels := make([]string, 0, len(seen))
	for level := range seen {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	return levels, nil
}

// Features returns a records × fields matrix of measurements. Every
// requested field must be numeric and every cell present.
func (d Dataset) Features(fields ...Field) (*mat.Dense, error) {
	if len(fields) == 0 {
		return nil, errors.New("at least one feature field is required")
	}

	matrix := mat.NewDense(len(d.Records), len(fields), nil)
	for i, record := range d.Records {
		for j, field := range fields {
			value, err := record.Measurement(field)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(value) {
				return nil, fmt.Errorf("%w: record %d field %s", ErrMissingValue, i, field)
			}
			matrix.Set(i, j, value)
		}
	}
	return matrix, nil
}

// Split partitions the dataset into disjoint subsets covering every
// record, in the order the proportions were given. Splitting requires
// complete cases; callers filter with CompleteCases first.
func (d Dataset) Split(proportions []float64, seed int64) ([]Dataset, error) {
	for i, record := range d.Records {
		if !record.Complete() {
			return nil, fmt.Errorf("%w: record %d", ErrMissingValue, i)
		}
	}

	result, err := split.Split(split.Request{
		Size:        len(d.Records),
		Proportions: proportions,
		Seed:        seed,
	})
	if err != nil {
		return nil, err
	}

	partitions := make([]Dataset, 0, len(result.Partitions))
	for _, indices := range result.Partitions {
		partition, err := d.Subset(indices)
		if err != nil {
			return nil, err
		}
		partitions = append(partitions, partition)
	}
	return partitions, nil
}

// ColumnSummary holds descriptive statistics for one measurement
// column, computed over present values only.
type ColumnSummary struct {
	Field   Field
	Count   int
	Missing int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

// Summary computes descriptive statistics for every measurement column.
func (d Dataset) Summary() []ColumnSummary {
	numericFields := []Field{FieldBillLengthMM, FieldBillDepthMM, FieldFlipperLengthMM, FieldBodyMassG}

	summaries := make([]ColumnSummary, 0, len(numericFields))
	for _, field := range numericFields {
		values := make([]float64, 0, len(d.Records))
		missing := 0
		for _, record := range d.Records {
			value, err := record.Measurement(field)
			if err != nil {
				continue
			}
			if math.IsNaN(value) {
				missing++
				continue
			}
			values = append(values, value)
		}

		summary := ColumnSummary{Field: field, Count: len(values), Missing: missing}
		if len(values) > 0 {
			summary.Mean = stat.Mean(values, nil)
			summary.StdDev = stat.StdDev(values, nil)
			summary.Min = floats.Min(values)
			summary.Max = floats.Max(values)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
