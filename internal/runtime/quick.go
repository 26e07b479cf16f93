package runtime

// Quick is a Lomuto quick sort with a uniformly random pivot. Every primitive blocks
// the driver goroutine, so pausing works at any recursion depth.
func Quick(s *Stepper) error {
	return quickSort(s, 0, s.Len()-1)
}

func quickSort(s *Stepper, low, high int) error {
	if low > high {
		return nil
	}
	if low == high {
		s.MarkSorted(low)
		return nil
	}
	p, err := partition(s, low, high)
	if err != nil {
		return err
	}
	s.MarkSorted(p)
	if err := quickSort(s, low, p-1); err != nil {
		return err
	}
	return quickSort(s, p+1, high)
}

// partition places the pivot at its final index and returns it.
func partition(s *Stepper, low, high int) (int, error) {
	if err := s.Swap(s.Random(low, high), high); err != nil {
		return 0, err
	}
	s.SetPivot(high)

	i := low
	for j := low; j < high; j++ {
		c, err := s.Compare(j, high)
		if err != nil {
			return 0, err
		}
		if c < 0 {
			if err := s.Swap(i, j); err != nil {
				return 0, err
			}
			i++
		}
	}
	if err := s.Swap(i, high); err != nil {
		return 0, err
	}
	s.ClearPivot()
	s.ClearHighlight()
	return i, nil
}
