package model

import (
	"errors"
	"testing"

	"github.com/louisbranch/rookery/internal/dataset"
)

func TestScoreScaleCutoff(t *testing.T) {
	tests := []struct {
		name    string
		scale   ScoreScale
		want    float64
		wantErr error
	}{
		{name: "probability", scale: ScaleProbability, want: 0.5},
		{name: "linear", scale: ScaleLinear, want: 0},
		{name: "unspecified", scale: ScaleUnspecified, wantErr: ErrUnspecifiedScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.scale.Cutoff()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Cutoff() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("Cutoff() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseScoreScale(t *testing.T) {
	scale, err := ParseScoreScale("probability")
	if err != nil {
		t.Fatalf("ParseScoreScale() error = %v", err)
	}
	if scale != ScaleProbability {
		t.Errorf("ParseScoreScale() = %v, want probability", scale)
	}

	if _, err := ParseScoreScale("logit"); !errors.Is(err, ErrUnspecifiedScale) {
		t.Errorf("ParseScoreScale(logit) error = %v, want ErrUnspecifiedScale", err)
	}
}

func TestConstant(t *testing.T) {
	ds := dataset.Dataset{Records: make([]dataset.Record, 3)}

	classifier, err := Constant{Label: "Adelie"}.Fit(ds)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	labels, err := classifier.Predict(ds)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(labels) != 3 {
		t.Fatalf("Predict() returned %d labels, want 3", len(labels))
	}
	for _, label := range labels {
		if label != "Adelie" {
			t.Errorf("Predict() label = %q, want Adelie", label)
		}
	}

	if _, err := (Constant{}).Fit(ds); err == nil {
		t.Error("Fit() expected error for empty label")
	}
}
