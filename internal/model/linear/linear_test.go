package linear

import (
	"errors"
	"testing"

	"github.com/louisbranch/rookery/internal/dataset"
	"github.com/louisbranch/rookery/internal/model"
)

func record(species, sex string, billLength, flipperLength float64) dataset.Record {
	return dataset.Record{
		Species:         species,
		Island:          "Dream",
		BillLengthMM:    billLength,
		BillDepthMM:     17.0,
		FlipperLengthMM: flipperLength,
		BodyMassG:       3800,
		Sex:             sex,
	}
}

// sexSeparable builds a dataset where bill length separates the sexes
// cleanly: female bills around 33mm, male bills around 52mm.
func sexSeparable() dataset.Dataset {
	var records []dataset.Record
	for i := 0; i < 10; i++ {
		records = append(records, record("Adelie", "female", 32+float64(i)*0.3, 188))
		records = append(records, record("Adelie", "male", 51+float64(i)*0.3, 195))
	}
	return dataset.Dataset{Records: records}
}

func TestNewBinaryRequiresScale(t *testing.T) {
	features := []dataset.Field{dataset.FieldBillLengthMM}

	if _, err := NewBinary(dataset.FieldSex, features, model.ScaleUnspecified); !errors.Is(err, model.ErrUnspecifiedScale) {
		t.Errorf("NewBinary() error = %v, want ErrUnspecifiedScale", err)
	}
	if _, err := NewBinary(dataset.FieldSex, features, model.ScaleProbability); err != nil {
		t.Errorf("NewBinary() with probability scale error = %v", err)
	}
}

func TestNewBinaryValidatesFields(t *testing.T) {
	if _, err := NewBinary(dataset.FieldBodyMassG, []dataset.Field{dataset.FieldBillLengthMM}, model.ScaleProbability); err == nil {
		t.Error("NewBinary() expected error for numeric label")
	}
	if _, err := NewBinary(dataset.FieldSex, nil, model.ScaleProbability); err == nil {
		t.Error("NewBinary() expected error for empty features")
	}
	if _, err := NewBinary(dataset.FieldSex, []dataset.Field{dataset.FieldIsland}, model.ScaleProbability); err == nil {
		t.Error("NewBinary() expected error for categorical feature")
	}
}

func TestBinaryFitPredict(t *testing.T) {
	for _, scale := range []model.ScoreScale{model.ScaleProbability, model.ScaleLinear} {
		t.Run(scale.String(), func(t *testing.T) {
			fitter, err := NewBinary(dataset.FieldSex, []dataset.Field{dataset.FieldBillLengthMM}, scale)
			if err != nil {
				t.Fatalf("NewBinary() error = %v", err)
			}

			train := sexSeparable()
			classifier, err := fitter.Fit(train)
			if err != nil {
				t.Fatalf("Fit() error = %v", err)
			}

			predictions, err := classifier.Predict(train)
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}
			if len(predictions) != train.Len() {
				t.Fatalf("Predict() returned %d labels, want %d", len(predictions), train.Len())
			}

			observed, err := train.Labels(dataset.FieldSex)
			if err != nil {
				t.Fatalf("Labels() error = %v", err)
			}
			for i := range observed {
				if predictions[i] != observed[i] {
					t.Errorf("record %d predicted %q, observed %q", i, predictions[i], observed[i])
				}
			}
		})
	}
}

func TestBinaryRejectsNonBinaryLabel(t *testing.T) {
	fitter, err := NewBinary(dataset.FieldSpecies, []dataset.Field{dataset.FieldBillLengthMM}, model.ScaleProbability)
	if err != nil {
		t.Fatalf("NewBinary() error = %v", err)
	}

	train := dataset.Dataset{Records: []dataset.Record{
		record("Adelie", "female", 39, 190),
		record("Chinstrap", "male", 49, 196),
		record("Gentoo", "female", 47, 217),
	}}

	if _, err := fitter.Fit(train); !errors.Is(err, ErrNotBinary) {
		t.Errorf("Fit() error = %v, want ErrNotBinary", err)
	}
}

func TestOneVsRestFitPredict(t *testing.T) {
	fitter, err := NewOneVsRest(dataset.FieldSpecies, []dataset.Field{dataset.FieldFlipperLengthMM})
	if err != nil {
		t.Fatalf("NewOneVsRest() error = %v", err)
	}

	// Flipper length separates the three species in this fixture:
	// Adelie around 170, Chinstrap around 200, Gentoo around 230.
	var records []dataset.Record
	for i := 0; i < 8; i++ {
		jitter := float64(i) * 0.5
		records = append(records, record("Adelie", "female", 39, 168+jitter))
		records = append(records, record("Chinstrap", "male", 49, 198+jitter))
		records = append(records, record("Gentoo", "female", 47, 228+jitter))
	}
	train := dataset.Dataset{Records: records}

	classifier, err := fitter.Fit(train)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	predictions, err := classifier.Predict(train)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	observed, err := train.Labels(dataset.FieldSpecies)
	if err != nil {
		t.Fatalf("Labels() error = %v", err)
	}
	correct := 0
	for i := range observed {
		if predictions[i] == observed[i] {
			correct++
		}
	}
	if correct < len(observed)*3/4 {
		t.Errorf("one-vs-rest got %d/%d correct on separable training data", correct, len(observed))
	}
}

func TestFitterDescriptions(t *testing.T) {
	binary, err := NewBinary(dataset.FieldSex, []dataset.Field{dataset.FieldBillLengthMM}, model.ScaleLinear)
	if err != nil {
		t.Fatalf("NewBinary() error = %v", err)
	}
	if got := binary.String(); got != "linear:binary:linear" {
		t.Errorf("Binary.String() = %q", got)
	}

	ovr, err := NewOneVsRest(dataset.FieldSpecies, []dataset.Field{dataset.FieldBillLengthMM})
	if err != nil {
		t.Fatalf("NewOneVsRest() error = %v", err)
	}
	if got := ovr.String(); got != "linear:one-vs-rest" {
		t.Errorf("OneVsRest.String() = %q", got)
	}
}
