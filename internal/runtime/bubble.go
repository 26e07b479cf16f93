package runtime

// Bubble compares adjacent pairs and swaps them when out of order. Each outer pass
// settles the largest remaining value at n-i-1. There is no early exit, so it always
// issues n(n-1)/2 comparisons.
func Bubble(s *Stepper) error {
	n := s.Len()
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-i-1; j++ {
			c, err := s.Compare(j, j+1)
			if err != nil {
				return err
			}
			if c > 0 {
				if err := s.Swap(j, j+1); err != nil {
					return err
				}
			}
			s.ClearHighlight()
		}
		s.MarkSorted(n - i - 1)
	}
	return nil
}
