package dataset

import (
	"errors"
	"math"
	"testing"
)

func completeRecord(species, sex string) Record {
	return Record{
		Species:         species,
		Island:          "Biscoe",
		BillLengthMM:    41.3,
		BillDepthMM:     18.1,
		FlipperLengthMM: 192,
		BodyMassG:       3850,
		Sex:             sex,
	}
}

func TestRecordComplete(t *testing.T) {
	missingDepth := completeRecord("Adelie", "female")
	missingDepth.BillDepthMM = math.NaN()

	missingSex := completeRecord("Adelie", "")

	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{name: "complete", record: completeRecord("Adelie", "female"), want: true},
		{name: "missing measurement", record: missingDepth, want: false},
		{name: "missing sex", record: missingSex, want: false},
		{name: "missing species", record: completeRecord("", "male"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompleteCases(t *testing.T) {
	incomplete := completeRecord("Gentoo", "")
	ds := Dataset{Records: []Record{
		completeRecord("Adelie", "female"),
		incomplete,
		completeRecord("Chinstrap", "male"),
	}}

	filtered := ds.CompleteCases()
	if filtered.Len() != 2 {
		t.Fatalf("CompleteCases() kept %d records, want 2", filtered.Len())
	}
	if filtered.Records[0].Species != "Adelie" || filtered.Records[1].Species != "Chinstrap" {
		t.Errorf("CompleteCases() changed record order: %v", filtered.Records)
	}
}

func TestLabelsAndLevels(t *testing.T) {
	ds := Dataset{Records: []Record{
		completeRecord("Gentoo", "male"),
		completeRecord("Adelie", "female"),
		completeRecord("Adelie", "male"),
	}}

	labels, err := ds.Labels(FieldSpecies)
	if err != nil {
		t.Fatalf("Labels() error = %v", err)
	}
	want := []string{"Gentoo", "Adelie", "Adelie"}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("Labels() = %v, want %v", labels, want)
		}
	}

	levels, err := ds.Levels(FieldSpecies)
	if err != nil {
		t.Fatalf("Levels() error = %v", err)
	}
	if len(levels) != 2 || levels[0] != "Adelie" || levels[1] != "Gentoo" {
		t.Errorf("Levels() = %v, want [Adelie Gentoo]", levels)
	}

	if _, err := ds.Labels(FieldBodyMassG); !errors.Is(err, ErrNotCategorical) {
		t.Errorf("Labels(body_mass_g) error = %v, want ErrNotCategorical", err)
	}
}

func TestFeatures(t *testing.T) {
	ds := Dataset{Records: []Record{
		completeRecord("Adelie", "female"),
		completeRecord("Gentoo", "male"),
	}}

	features, err := ds.Features(FieldBillLengthMM, FieldBodyMassG)
	if err != nil {
		t.Fatalf("Features() error = %v", err)
	}
	rows, cols := features.Dims()
	if rows != 2 || cols != 2 {
		t.Fatalf("Features() dims = %dx%d, want 2x2", rows, cols)
	}
	if got := features.At(0, 1); got != 3850 {
		t.Errorf("Features()[0][1] = %v, want 3850", got)
	}

	if _, err := ds.Features(FieldSpecies); !errors.Is(err, ErrNotNumeric) {
		t.Errorf("Features(species) error = %v, want ErrNotNumeric", err)
	}

	missing := completeRecord("Adelie", "female")
	missing.BillLengthMM = math.NaN()
	withMissing := Dataset{Records: []Record{missing}}
	if _, err := withMissing.Features(FieldBillLengthMM); !errors.Is(err, ErrMissingValue) {
		t.Errorf("Features() with NaN error = %v, want ErrMissingValue", err)
	}
}

func TestDatasetSplit(t *testing.T) {
	records := make([]Record, 10)
	for i := range records {
		records[i] = completeRecord("Adelie", "female")
		records[i].BodyMassG = float64(3000 + i)
	}
	ds := Dataset{Records: records}

	partitions, err := ds.Split([]float64{0.7, 0.3}, 42)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(partitions) != 2 {
		t.Fatalf("Split() got %d partitions, want 2", len(partitions))
	}
	if partitions[0].Len() != 7 || partitions[1].Len() != 3 {
		t.Errorf("Split() sizes = %d/%d, want 7/3", partitions[0].Len(), partitions[1].Len())
	}

	seen := make(map[float64]bool)
	for _, partition := range partitions {
		for _, record := range partition.Records {
			if seen[record.BodyMassG] {
				t.Errorf("record with mass %v appears in two partitions", record.BodyMassG)
			}
			seen[record.BodyMassG] = true
		}
	}
	if len(seen) != 10 {
		t.Errorf("partition union covers %d records, want 10", len(seen))
	}
}

func TestDatasetSplitRejectsIncomplete(t *testing.T) {
	ds := Dataset{Records: []Record{completeRecord("Adelie", "")}}
	if _, err := ds.Split([]float64{0.5, 0.5}, 1); !errors.Is(err, ErrMissingValue) {
		t.Errorf("Split() error = %v, want ErrMissingValue", err)
	}
}

func TestSummary(t *testing.T) {
	first := completeRecord("Adelie", "female")
	first.BillLengthMM = 40
	second := completeRecord("Adelie", "male")
	second.BillLengthMM = 44
	third := completeRecord("Adelie", "male")
	third.BillLengthMM = math.NaN()

	ds := Dataset{Records: []Record{first, second, third}}

	summaries := ds.Summary()
	if len(summaries) != 4 {
		t.Fatalf("Summary() returned %d columns, want 4", len(summaries))
	}

	bill := summaries[0]
	if bill.Field != FieldBillLengthMM {
		t.Fatalf("Summary()[0].Field = %s, want bill_length_mm", bill.Field)
	}
	if bill.Count != 2 || bill.Missing != 1 {
		t.Errorf("bill_length_mm count/missing = %d/%d, want 2/1", bill.Count, bill.Missing)
	}
	if bill.Mean != 42 {
		t.Errorf("bill_length_mm mean = %v, want 42", bill.Mean)
	}
	if bill.Min != 40 || bill.Max != 44 {
		t.Errorf("bill_length_mm min/max = %v/%v, want 40/44", bill.Min, bill.Max)
	}
}

func TestParseField(t *testing.T) {
	field, err := ParseField("flipper_length_mm")
	if err != nil {
		t.Fatalf("ParseField() error = %v", err)
	}
	if field != FieldFlipperLengthMM {
		t.Errorf("ParseField() = %v, want FieldFlipperLengthMM", field)
	}

	if _, err := ParseField("wingspan"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("ParseField(wingspan) error = %v, want ErrUnknownField", err)
	}
}
