package runtime

import (
	"fmt"

	"github.com/aretw0/sortvis/pkg/domain"
)

// Driver sequences the step primitives of one sorting algorithm.
// It returns only when the array is sorted or the run was cancelled.
type Driver func(s *Stepper) error

// DriverFor resolves the driver of an algorithm.
func DriverFor(algorithm domain.Algorithm, trace MergeTrace) (Driver, error) {
	switch algorithm {
	case domain.AlgorithmBubble:
		return Bubble, nil
	case domain.AlgorithmInsertion:
		return Insertion, nil
	case domain.AlgorithmSelection:
		return Selection, nil
	case domain.AlgorithmMerge:
		return func(s *Stepper) error { return Merge(s, trace) }, nil
	case domain.AlgorithmQuick:
		return Quick, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAlgorithm, algorithm)
	}
}
