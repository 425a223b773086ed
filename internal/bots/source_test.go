package bots

// scriptedSource feeds predetermined rolls to code under test. Exhausted
// queues fall back to midpoint values so tests fail loudly on count drift
// rather than panicking.
type scriptedSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *scriptedSource) Float64() float64 {
	if s.fi < len(s.floats) {
		v := s.floats[s.fi]
		s.fi++
		return v
	}
	return 0.5
}

func (s *scriptedSource) IntN(n int) int {
	if s.ii < len(s.ints) {
		v := s.ints[s.ii]
		s.ii++
		if v >= n {
			v = n - 1
		}
		return v
	}
	return 0
}
