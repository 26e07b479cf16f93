package domain

import (
	"slices"
	"time"
)

// Status defines the lifecycle phase of a run.
type Status string

const (
	StatusIdle      Status = "idle"      // No run in flight; configuration may change
	StatusRunning   Status = "running"   // Driver is issuing steps
	StatusPaused    Status = "paused"    // Driver is suspended at the pause gate
	StatusCompleted Status = "completed" // Driver finished; only a hard reset returns to idle
)

// NoIndex marks an unset optional highlight index.
const NoIndex = -1

// Counters tracks the primitive operations issued by a driver.
type Counters struct {
	Comparisons int `json:"comparisons"`
	Swaps       int `json:"swaps"`
	Writes      int `json:"writes"`
}

// Highlight is the transient per-step annotation of indices.
type Highlight struct {
	Comparing []int `json:"comparing,omitempty"`
	Swapping  []int `json:"swapping,omitempty"`
	Writing   int   `json:"writing"`
	Pivot     int   `json:"pivot"`
}

// NewHighlight returns an empty highlight.
func NewHighlight() Highlight {
	return Highlight{Writing: NoIndex, Pivot: NoIndex}
}

// IsEmpty reports whether no index is highlighted.
func (h Highlight) IsEmpty() bool {
	return len(h.Comparing) == 0 && len(h.Swapping) == 0 && h.Writing == NoIndex && h.Pivot == NoIndex
}

func (h Highlight) clone() Highlight {
	return Highlight{
		Comparing: slices.Clone(h.Comparing),
		Swapping:  slices.Clone(h.Swapping),
		Writing:   h.Writing,
		Pivot:     h.Pivot,
	}
}

// RunState is the single mutable record of a session.
// It is owned by exactly one controller; drivers mutate it through step primitives only.
type RunState struct {
	Values    []int
	Status    Status
	Algorithm Algorithm
	Speed     int
	Highlight Highlight
	Counters  Counters

	// Seq numbers the frames handed to sinks. It only grows, across resets too.
	Seq uint64

	sorted map[int]struct{}
}

// NewRunState creates an idle state over values.
func NewRunState(algorithm Algorithm, values []int, speed int) *RunState {
	return &RunState{
		Values:    values,
		Status:    StatusIdle,
		Algorithm: algorithm,
		Speed:     ClampSpeed(speed),
		Highlight: NewHighlight(),
		sorted:    make(map[int]struct{}),
	}
}

// Delay is the step delay derived from Speed.
func (s *RunState) Delay() time.Duration {
	return DelayForSpeed(s.Speed)
}

// MarkSorted records i as being in its final position. Out of range indices are ignored.
func (s *RunState) MarkSorted(i int) {
	if i < 0 || i >= len(s.Values) {
		return
	}
	s.sorted[i] = struct{}{}
}

// MarkAllSorted records every index as final.
func (s *RunState) MarkAllSorted() {
	for i := range s.Values {
		s.sorted[i] = struct{}{}
	}
}

// IsSorted reports whether i has been marked final.
func (s *RunState) IsSorted(i int) bool {
	_, ok := s.sorted[i]
	return ok
}

// SortedIndices returns the marked indices in ascending order.
func (s *RunState) SortedIndices() []int {
	out := make([]int, 0, len(s.sorted))
	for i := range s.sorted {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// ClearRun drops every per-run annotation: highlights, sorted marks and counters.
func (s *RunState) ClearRun() {
	s.Highlight = NewHighlight()
	s.Counters = Counters{}
	clear(s.sorted)
}

// Emit advances Seq and returns the frame for the sinks.
func (s *RunState) Emit(elapsed time.Duration) Frame {
	s.Seq++
	return s.Frame(elapsed)
}

// Frame captures an immutable snapshot of the state. It carries the Seq of the last
// emitted frame.
func (s *RunState) Frame(elapsed time.Duration) Frame {
	return Frame{
		Seq:       s.Seq,
		Values:    slices.Clone(s.Values),
		Status:    s.Status,
		Algorithm: s.Algorithm,
		Speed:     s.Speed,
		Delay:     s.Delay(),
		Highlight: s.Highlight.clone(),
		Sorted:    s.SortedIndices(),
		Counters:  s.Counters,
		Elapsed:   elapsed,
	}
}

// Frame is what render sinks and adapters receive. It never aliases RunState memory.
type Frame struct {
	Seq       uint64        `json:"seq"`
	Values    []int         `json:"values"`
	Status    Status        `json:"status"`
	Algorithm Algorithm     `json:"algorithm"`
	Speed     int           `json:"speed"`
	Delay     time.Duration `json:"delay_ns"`
	Highlight Highlight     `json:"highlight"`
	Sorted    []int         `json:"sorted"`
	Counters  Counters      `json:"counters"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Role is the single visual category of a bar.
type Role string

const (
	RoleNone      Role = ""
	RoleSorted    Role = "sorted"
	RoleWriting   Role = "writing"
	RoleSwapping  Role = "swapping"
	RoleComparing Role = "comparing"
	RolePivot     Role = "pivot"
)

// Roles resolves the dominant role of every bar, with precedence
// sorted > writing > swapping > comparing > pivot.
func (f Frame) Roles() []Role {
	roles := make([]Role, len(f.Values))
	set := func(indices []int, r Role) {
		for _, i := range indices {
			if i >= 0 && i < len(roles) && roles[i] == RoleNone {
				roles[i] = r
			}
		}
	}
	// Highest precedence first; later calls only fill unassigned bars.
	set(f.Sorted, RoleSorted)
	set([]int{f.Highlight.Writing}, RoleWriting)
	set(f.Highlight.Swapping, RoleSwapping)
	set(f.Highlight.Comparing, RoleComparing)
	set([]int{f.Highlight.Pivot}, RolePivot)
	return roles
}
