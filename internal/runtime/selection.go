package runtime

// Selection scans the unsorted suffix for its minimum and swaps it into position i.
// Comparisons are always n(n-1)/2; at most one swap per pass.
func Selection(s *Stepper) error {
	n := s.Len()
	for i := 0; i < n-1; i++ {
		minIdx := i
		for j := i + 1; j < n; j++ {
			c, err := s.Compare(minIdx, j)
			if err != nil {
				return err
			}
			if c > 0 {
				minIdx = j
			}
		}
		if err := s.Swap(i, minIdx); err != nil {
			return err
		}
		s.ClearHighlight()
		s.MarkSorted(i)
	}
	return nil
}
