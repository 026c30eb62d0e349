package split

import (
	"errors"
	"testing"
)

func TestSplit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request Request
		wantErr error
	}{
		{
			name:    "zero size",
			request: Request{Size: 0, Proportions: []float64{0.5}, Seed: 42},
			wantErr: ErrInvalidConfiguration,
		},
		{
			name:    "no proportions",
			request: Request{Size: 10, Proportions: nil, Seed: 42},
			wantErr: ErrInvalidConfiguration,
		},
		{
			name:    "zero proportion",
			request: Request{Size: 10, Proportions: []float64{0.5, 0}, Seed: 42},
			wantErr: ErrInvalidConfiguration,
		},
		{
			name:    "negative proportion",
			request: Request{Size: 10, Proportions: []float64{-0.1}, Seed: 42},
			wantErr: ErrInvalidConfiguration,
		},
		{
			name:    "proportion above one",
			request: Request{Size: 10, Proportions: []float64{1.1}, Seed: 42},
			wantErr: ErrInvalidConfiguration,
		},
		{
			name:    "sum above one",
			request: Request{Size: 10, Proportions: []float64{0.5, 0.6}, Seed: 42},
			wantErr: ErrInvalidConfiguration,
		},
		{
			name:    "sum exactly one",
			request: Request{Size: 10, Proportions: []float64{0.7, 0.3}, Seed: 42},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.request)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Split() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplit_SeventyThirty(t *testing.T) {
	result, err := Split(Request{Size: 10, Proportions: []float64{0.7, 0.3}, Seed: 42})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(result.Partitions) != 2 {
		t.Fatalf("Split() got %d partitions, want 2", len(result.Partitions))
	}
	if len(result.Partitions[0]) != 7 {
		t.Errorf("partition 0 size = %d, want 7", len(result.Partitions[0]))
	}
	if len(result.Partitions[1]) != 3 {
		t.Errorf("partition 1 size = %d, want 3", len(result.Partitions[1]))
	}
}

func TestSplit_ImplicitRemainder(t *testing.T) {
	result, err := Split(Request{Size: 100, Proportions: []float64{0.6, 0.2}, Seed: 7})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(result.Partitions) != 3 {
		t.Fatalf("Split() got %d partitions, want 3 (declared two plus remainder)", len(result.Partitions))
	}
	if len(result.Partitions[0]) != 60 {
		t.Errorf("partition 0 size = %d, want 60", len(result.Partitions[0]))
	}
	if len(result.Partitions[1]) != 20 {
		t.Errorf("partition 1 size = %d, want 20", len(result.Partitions[1]))
	}
	if len(result.Partitions[2]) != 20 {
		t.Errorf("remainder partition size = %d, want 20", len(result.Partitions[2]))
	}
}

func TestSplit_DisjointUnion(t *testing.T) {
	tests := []struct {
		name        string
		size        int
		proportions []float64
	}{
		{name: "two way", size: 333, proportions: []float64{0.7, 0.3}},
		{name: "three way", size: 333, proportions: []float64{0.6, 0.2, 0.2}},
		{name: "remainder", size: 97, proportions: []float64{0.5}},
		{name: "single full", size: 11, proportions: []float64{1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Split(Request{Size: tt.size, Proportions: tt.proportions, Seed: 99})
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}

			seen := make(map[int]int)
			total := 0
			for p, partition := range result.Partitions {
				total += len(partition)
				for _, index := range partition {
					if index < 0 || index >= tt.size {
						t.Errorf("partition %d contains out-of-range index %d", p, index)
					}
					seen[index]++
				}
			}
			if total != tt.size {
				t.Errorf("partition sizes sum to %d, want %d", total, tt.size)
			}
			if len(seen) != tt.size {
				t.Errorf("union covers %d indices, want %d", len(seen), tt.size)
			}
			for index, count := range seen {
				if count != 1 {
					t.Errorf("index %d appears in %d partitions, want 1", index, count)
				}
			}
		})
	}
}

func TestSplit_Deterministic(t *testing.T) {
	request := Request{Size: 50, Proportions: []float64{0.5, 0.25, 0.25}, Seed: 1234}

	first, err := Split(request)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	second, err := Split(request)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	for p := range first.Partitions {
		if len(first.Partitions[p]) != len(second.Partitions[p]) {
			t.Fatalf("partition %d sizes differ across calls", p)
		}
		for i := range first.Partitions[p] {
			if first.Partitions[p][i] != second.Partitions[p][i] {
				t.Fatalf("partition %d index %d differs across calls", p, i)
			}
		}
	}
}

func TestSplit_DifferentSeedsDiverge(t *testing.T) {
	first, err := Split(Request{Size: 50, Proportions: []float64{0.5, 0.5}, Seed: 1})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	second, err := Split(Request{Size: 50, Proportions: []float64{0.5, 0.5}, Seed: 2})
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	same := true
	for i := range first.Partitions[0] {
		if first.Partitions[0][i] != second.Partitions[0][i] {
			same = false
			break
		}
	}
	if same {
		t.Error("expected different seeds to produce different partition membership")
	}
}
