package domain

import (
	"reflect"
	"slices"
	"time"
)

// FrameDiff represents the changes between two frames.
// It is designed to be serialized to JSON for partial updates on the client.
type FrameDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// Seq is the frame this diff produces. Base is the frame it applies to; zero
	// marks a full diff that applies to anything. A client holding a frame other
	// than Base has missed a diff and must reload the whole frame.
	Seq  uint64 `json:"seq"`
	Base uint64 `json:"base,omitempty"`

	Status    *Status    `json:"status,omitempty"`
	Algorithm *Algorithm `json:"algorithm,omitempty"`

	// Values contains only bars whose value changed, keyed by index.
	// When the array length changes the whole array is sent in Replace instead.
	Values  map[int]int `json:"values,omitempty"`
	Replace []int       `json:"replace,omitempty"`

	Highlight *Highlight `json:"highlight,omitempty"`

	// SortedAppended contains indices newly marked final.
	// SortedReset is set when the sorted set shrank (new run or reset).
	SortedAppended []int `json:"sorted_appended,omitempty"`
	SortedReset    bool  `json:"sorted_reset,omitempty"`

	Counters *Counters      `json:"counters,omitempty"`
	Elapsed  *time.Duration `json:"elapsed_ns,omitempty"`
}

// Diff calculates the difference between oldFrame and newFrame.
// If oldFrame is nil, it returns a diff representing the entire newFrame (initial load).
// It returns nil when nothing changed.
func Diff(sessionID string, oldFrame, newFrame *Frame) *FrameDiff {
	if newFrame == nil {
		return nil
	}

	diff := &FrameDiff{SessionID: sessionID, Seq: newFrame.Seq}
	if oldFrame != nil {
		diff.Base = oldFrame.Seq
	}

	if oldFrame == nil || oldFrame.Status != newFrame.Status {
		diff.Status = &newFrame.Status
	}
	if oldFrame == nil || oldFrame.Algorithm != newFrame.Algorithm {
		diff.Algorithm = &newFrame.Algorithm
	}

	diffValues(diff, oldFrame, newFrame)

	if oldFrame == nil || !reflect.DeepEqual(oldFrame.Highlight, newFrame.Highlight) {
		h := newFrame.Highlight
		diff.Highlight = &h
	}

	diffSorted(diff, oldFrame, newFrame)

	if oldFrame == nil || oldFrame.Counters != newFrame.Counters {
		c := newFrame.Counters
		diff.Counters = &c
	}
	if oldFrame == nil || oldFrame.Elapsed != newFrame.Elapsed {
		e := newFrame.Elapsed
		diff.Elapsed = &e
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffValues(diff *FrameDiff, old, new *Frame) {
	if old == nil || len(old.Values) != len(new.Values) {
		diff.Replace = new.Values
		return
	}
	for i, v := range new.Values {
		if old.Values[i] != v {
			if diff.Values == nil {
				diff.Values = make(map[int]int)
			}
			diff.Values[i] = v
		}
	}
}

// diffSorted assumes the monotonic growth of the sorted set within a run.
func diffSorted(diff *FrameDiff, old, new *Frame) {
	if old == nil {
		diff.SortedReset = true
		diff.SortedAppended = new.Sorted
		return
	}
	seen := make(map[int]struct{}, len(old.Sorted))
	for _, i := range old.Sorted {
		seen[i] = struct{}{}
	}
	if len(new.Sorted) < len(old.Sorted) {
		diff.SortedReset = true
		diff.SortedAppended = new.Sorted
		return
	}
	for _, i := range new.Sorted {
		if _, ok := seen[i]; !ok {
			diff.SortedAppended = append(diff.SortedAppended, i)
		}
	}
}

// IsFull reports whether the diff carries the whole frame.
func (d *FrameDiff) IsFull() bool {
	return d.Base == 0
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *FrameDiff) IsEmpty() bool {
	return d.Status == nil &&
		d.Algorithm == nil &&
		len(d.Values) == 0 &&
		d.Replace == nil &&
		d.Highlight == nil &&
		len(d.SortedAppended) == 0 &&
		!d.SortedReset &&
		d.Counters == nil &&
		d.Elapsed == nil
}

// Apply updates f in place with d, the way a client rebuilds frames from a stream.
func (f *Frame) Apply(d *FrameDiff) {
	if d == nil {
		return
	}
	f.Seq = d.Seq
	if d.Status != nil {
		f.Status = *d.Status
	}
	if d.Algorithm != nil {
		f.Algorithm = *d.Algorithm
	}
	if d.Replace != nil {
		f.Values = slices.Clone(d.Replace)
	}
	for i, v := range d.Values {
		if i >= 0 && i < len(f.Values) {
			f.Values[i] = v
		}
	}
	if d.Highlight != nil {
		f.Highlight = *d.Highlight
	}
	if d.SortedReset {
		f.Sorted = []int{}
	}
	for _, i := range d.SortedAppended {
		if !slices.Contains(f.Sorted, i) {
			f.Sorted = append(f.Sorted, i)
		}
	}
	slices.Sort(f.Sorted)
	if d.Counters != nil {
		f.Counters = *d.Counters
	}
	if d.Elapsed != nil {
		f.Elapsed = *d.Elapsed
	}
}
