package viewer

// SlideIndex is the current carousel position for one open project.
// The index is always in [0, count) when count > 0 and navigation wraps.
type SlideIndex struct {
	index int
	count int
}

// NewSlideIndex returns an index at 0 over count slides.
func NewSlideIndex(count int) *SlideIndex {
	if count < 0 {
		count = 0
	}
	return &SlideIndex{count: count}
}

func (s *SlideIndex) Index() int { return s.index }
func (s *SlideIndex) Count() int { return s.count }

// Next advances with wraparound. It reports false when there are no slides.
func (s *SlideIndex) Next() bool {
	if s.count == 0 {
		return false
	}
	s.index = (s.index + 1) % s.count
	return true
}

// Prev steps back with wraparound. It reports false when there are no slides.
func (s *SlideIndex) Prev() bool {
	if s.count == 0 {
		return false
	}
	s.index = (s.index - 1 + s.count) % s.count
	return true
}

// Goto jumps to i. Out-of-range requests are rejected and leave the index as is.
func (s *SlideIndex) Goto(i int) bool {
	if i < 0 || i >= s.count {
		return false
	}
	s.index = i
	return true
}

// Reset returns to the first slide.
func (s *SlideIndex) Reset() { s.index = 0 }
