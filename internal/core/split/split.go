// Package split partitions record indices into disjoint subsets by
// seeded random sampling without replacement.
package split

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrInvalidConfiguration indicates a split request with bad proportions
// or an empty dataset.
var ErrInvalidConfiguration = errors.New("invalid split configuration")

// sumEpsilon is the tolerance applied when checking that proportions
// sum to at most 1.0.
const sumEpsilon = 1e-9

// Request describes a request to partition Size record indices.
type Request struct {
	Size        int
	Proportions []float64
	Seed        int64
}

// Result captures the partitions produced by a split.
type Result struct {
	Partitions [][]int
}

// Split partitions the index set [0, Size) based on the provided request.
//
// # Determinism
//
// Split is deterministic with respect to the Seed field on Request.
// Given the same Seed, Size, and Proportions slice (including order),
// Split will always produce the same Result.
//
// # Ordering
//
// Partitions appear in Result.Partitions in the same order as the
// corresponding entries in Request.Proportions. When the proportions sum
// to less than 1.0, an implicit final partition holding every leftover
// index is appended after the declared partitions.
//
// # Sizing
//
// Partition i receives round(Proportions[i] * Size) indices from a
// uniformly-random permutation, clamped to the indices still unassigned.
// The final partition receives every remaining index, absorbing any
// rounding drift, so the partitions are always pairwise disjoint and
// their union is exactly [0, Size).
//
// # Errors
//
//   - Size must be at least 1, otherwise ErrInvalidConfiguration is
//     returned.
//   - At least one proportion must be provided, each in (0, 1], and
//     their sum must not exceed 1.0, otherwise ErrInvalidConfiguration
//     is returned.
//
// Example:
//
//	req := Request{
//	    Size:        10,
//	    Proportions: []float64{0.7, 0.3}, // 7 train, 3 test
//	    Seed:        42,
//	}
//	result, err := Split(req)
func Split(request Request) (Result, error) {
	if request.Size < 1 {
		return Result{}, fmt.Errorf("%w: size must be at least 1, got %d", ErrInvalidConfiguration, request.Size)
	}
	if len(request.Proportions) == 0 {
		return Result{}, fmt.Errorf("%w: at least one proportion must be provided", ErrInvalidConfiguration)
	}

	sum := 0.0
	for i, proportion := range request.Proportions {
		if proportion <= 0 || proportion > 1 {
			return Result{}, fmt.Errorf("%w: proportion %d must be in (0, 1], got %v", ErrInvalidConfiguration, i, proportion)
		}
		sum += proportion
	}
	if sum > 1.0+sumEpsilon {
		return Result{}, fmt.Errorf("%w: proportions sum to %v, must not exceed 1.0", ErrInvalidConfiguration, sum)
	}

	rng := rand.New(rand.NewSource(request.Seed))
	perm := rng.Perm(request.Size)

	// A remainder partition exists only when the declared proportions
	// leave part of the dataset unassigned.
	implicitRemainder := sum < 1.0-sumEpsilon

	partitions := make([][]int, 0, len(request.Proportions)+1)
	offset := 0
	for i, proportion := range request.Proportions {
		count := int(math.Round(proportion * float64(request.Size)))
		if count > request.Size-offset {
			count = request.Size - offset
		}
		if !implicitRemainder && i == len(request.Proportions)-1 {
			count = request.Size - offset
		}
		partitions = append(partitions, perm[offset:offset+count])
		offset += count
	}
	if implicitRemainder {
		partitions = append(partitions, perm[offset:])
	}

	return Result{Partitions: partitions}, nil
}
