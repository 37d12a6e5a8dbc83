package stack

var _ Stack[struct{}] = (*arrayStack[struct{}])(nil)

// arrayStack is a fixed-capacity stack backed by a
// preallocated array. It never grows.
type arrayStack[E any] struct {
	elements []E
	top      int
}

func (s *arrayStack[E]) Len() int {
	return s.top
}

func (s *arrayStack[E]) Cap() int {
	return len(s.elements)
}

func (s *arrayStack[E]) IsEmpty() bool {
	return s.top == 0
}

func (s *arrayStack[E]) IsFull() bool {
	return s.top == len(s.elements)
}

func (s *arrayStack[E]) Push(e E) error {
	if s.IsFull() {
		return ErrStackOverflow
	}
	s.elements[s.top] = e
	s.top++
	return nil
}

func (s *arrayStack[E]) Pop() (E, error) {
	var e E
	if s.IsEmpty() {
		return e, ErrStackUnderflow
	}
	s.top--
	e = s.elements[s.top]
	// Drop the reference, the stack is not the owner.
	var zero E
	s.elements[s.top] = zero
	return e, nil
}

func (s *arrayStack[E]) Peek() (E, error) {
	if s.IsEmpty() {
		var e E
		return e, ErrStackUnderflow
	}
	return s.elements[s.top-1], nil
}

func (s *arrayStack[E]) Reset() {
	clear(s.elements[:s.top])
	s.top = 0
}

// NewArrayStack returns a stack holding at most capacity elements.
// A non-positive capacity is treated as 1.
func NewArrayStack[E any](capacity int) Stack[E] {
	if capacity <= 0 {
		capacity = 1
	}
	return &arrayStack[E]{
		elements: make([]E, capacity),
	}
}
