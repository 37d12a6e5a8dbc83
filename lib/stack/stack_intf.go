package stack

import "errors"

var (
	ErrStackOverflow  = errors.New("[stack] push into a full stack")
	ErrStackUnderflow = errors.New("[stack] pop from an empty stack")
)

// Stack is a LIFO of borrowed references.
// It never owns the elements it holds and it is not thread safe.
type Stack[E any] interface {
	Len() int
	Cap() int
	IsEmpty() bool
	IsFull() bool
	// Push returns ErrStackOverflow if the stack is full.
	Push(e E) error
	// Pop returns ErrStackUnderflow if the stack is empty.
	Pop() (E, error)
	// Peek returns the top element without removing it.
	Peek() (E, error)
	// Reset drops all elements and keeps the capacity.
	Reset()
}
