package runtime

// Insertion lifts values[i] out as the key and shifts larger elements one slot to the
// right with writes before dropping the key into the gap.
func Insertion(s *Stepper) error {
	n := s.Len()
	for i := 1; i < n; i++ {
		key := s.Value(i)
		j := i - 1
		for j >= 0 {
			c, err := s.CompareValue(j, key, j+1)
			if err != nil {
				return err
			}
			if c <= 0 {
				break
			}
			if err := s.Write(j+1, s.Value(j)); err != nil {
				return err
			}
			j--
		}
		if err := s.Write(j+1, key); err != nil {
			return err
		}
		s.ClearHighlight()
	}
	return nil
}
