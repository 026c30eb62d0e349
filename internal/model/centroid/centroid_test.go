package centroid

import (
	"testing"

	"github.com/louisbranch/rookery/internal/dataset"
)

func record(species string, billLength, flipperLength float64) dataset.Record {
	return dataset.Record{
		Species:         species,
		Island:          "Biscoe",
		BillLengthMM:    billLength,
		BillDepthMM:     17.0,
		FlipperLengthMM: flipperLength,
		BodyMassG:       4000,
		Sex:             "female",
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(dataset.FieldBodyMassG, []dataset.Field{dataset.FieldBillLengthMM}); err == nil {
		t.Error("New() expected error for numeric label")
	}
	if _, err := New(dataset.FieldSpecies, nil); err == nil {
		t.Error("New() expected error for empty features")
	}
	if _, err := New(dataset.FieldSpecies, []dataset.Field{dataset.FieldSex}); err == nil {
		t.Error("New() expected error for categorical feature")
	}
}

func TestFitPredict(t *testing.T) {
	fitter, err := New(dataset.FieldSpecies, []dataset.Field{dataset.FieldBillLengthMM, dataset.FieldFlipperLengthMM})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	train := dataset.Dataset{Records: []dataset.Record{
		record("Adelie", 38, 188),
		record("Adelie", 40, 192),
		record("Gentoo", 46, 216),
		record("Gentoo", 48, 220),
	}}

	classifier, err := fitter.Fit(train)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	test := dataset.Dataset{Records: []dataset.Record{
		record("", 39, 190),
		record("", 47, 218),
	}}
	predictions, err := classifier.Predict(test)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if predictions[0] != "Adelie" {
		t.Errorf("Predict()[0] = %q, want Adelie", predictions[0])
	}
	if predictions[1] != "Gentoo" {
		t.Errorf("Predict()[1] = %q, want Gentoo", predictions[1])
	}
}

func TestFitRequiresTwoLevels(t *testing.T) {
	fitter, err := New(dataset.FieldSpecies, []dataset.Field{dataset.FieldBillLengthMM})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	train := dataset.Dataset{Records: []dataset.Record{
		record("Adelie", 38, 188),
		record("Adelie", 40, 192),
	}}
	if _, err := fitter.Fit(train); err == nil {
		t.Error("Fit() expected error for single-level label")
	}
}
