package domain

import (
	"fmt"
	"strings"
)

// Algorithm identifies a sorting strategy.
type Algorithm string

const (
	AlgorithmBubble    Algorithm = "bubble"
	AlgorithmInsertion Algorithm = "insertion"
	AlgorithmSelection Algorithm = "selection"
	AlgorithmMerge     Algorithm = "merge"
	AlgorithmQuick     Algorithm = "quick"
)

// DefaultAlgorithm is selected when a session starts without explicit configuration.
const DefaultAlgorithm = AlgorithmBubble

// Algorithms returns every supported algorithm in selector order.
func Algorithms() []Algorithm {
	return []Algorithm{
		AlgorithmBubble,
		AlgorithmInsertion,
		AlgorithmSelection,
		AlgorithmMerge,
		AlgorithmQuick,
	}
}

// Valid reports whether a is a supported algorithm.
func (a Algorithm) Valid() bool {
	for _, known := range Algorithms() {
		if a == known {
			return true
		}
	}
	return false
}

// ParseAlgorithm normalizes a user supplied key ("Quick", " merge ") into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
	return a, nil
}
