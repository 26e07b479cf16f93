package runtime

import (
	"fmt"
	"slices"
	"strings"
)

// MergeTrace selects how much of the silent merge is replayed.
type MergeTrace string

const (
	// MergeTraceFull replays every placement of every merge.
	MergeTraceFull MergeTrace = "full"
	// MergeTraceFinal replays only the placements of the top-level merge: exactly n writes.
	MergeTraceFinal MergeTrace = "final"
)

// ParseMergeTrace validates a trace mode; the empty string selects MergeTraceFull.
func ParseMergeTrace(s string) (MergeTrace, error) {
	switch MergeTrace(strings.ToLower(strings.TrimSpace(s))) {
	case "", MergeTraceFull:
		return MergeTraceFull, nil
	case MergeTraceFinal:
		return MergeTraceFinal, nil
	default:
		return "", fmt.Errorf("unknown merge trace %q (want full or final)", s)
	}
}

// Placement is one recorded element placement of the merge trace.
type Placement struct {
	Index int
	Value int
}

// TraceMerge runs a plain top-down merge sort over a copy of values and records the
// placements in left-to-right order. Applying the trace to values, in order, sorts it.
func TraceMerge(values []int, mode MergeTrace) []Placement {
	scratch := slices.Clone(values)
	var trace []Placement
	record := func(p Placement) { trace = append(trace, p) }
	if mode == MergeTraceFinal {
		record = func(Placement) {}
	}
	mergeSort(scratch, 0, len(scratch)-1, record)

	if mode == MergeTraceFinal {
		trace = make([]Placement, len(scratch))
		for k, v := range scratch {
			trace[k] = Placement{Index: k, Value: v}
		}
	}
	return trace
}

func mergeSort(arr []int, l, r int, record func(Placement)) {
	if l >= r {
		return
	}
	m := l + (r-l)/2
	mergeSort(arr, l, m, record)
	mergeSort(arr, m+1, r, record)
	merge(arr, l, m, r, record)
}

func merge(arr []int, l, m, r int, record func(Placement)) {
	temp := make([]int, 0, r-l+1)
	i, j := l, m+1
	for i <= m && j <= r {
		if arr[i] <= arr[j] {
			temp = append(temp, arr[i])
			i++
		} else {
			temp = append(temp, arr[j])
			j++
		}
	}
	temp = append(temp, arr[i:m+1]...)
	temp = append(temp, arr[j:r+1]...)

	for k, v := range temp {
		record(Placement{Index: l + k, Value: v})
		arr[l+k] = v
	}
}

// Merge computes the merge trace silently, then replays it through Write so every
// placement is an observable, pausable step.
func Merge(s *Stepper, mode MergeTrace) error {
	for _, p := range TraceMerge(s.Values(), mode) {
		if err := s.Write(p.Index, p.Value); err != nil {
			return err
		}
	}
	return nil
}
