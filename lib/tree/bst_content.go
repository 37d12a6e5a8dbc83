package tree

type ContentKind uint8

const (
	Integer ContentKind = iota
	Float
	String
)

func (kind ContentKind) String() string {
	switch kind {
	case Integer:
		return "INTEGER"
	case Float:
		return "FLOAT"
	case String:
		return "STRING"
	default:
	}
	return "UNKNOWN"
}

type Payload interface {
	int | float64 | string
}

// Content is the tagged value of a node. It is a sealed
// sum type, TypedContent is the only implementation.
//
// A content is owned by exactly one node. The tree releases
// it when the node's value is replaced or the node is removed.
type Content interface {
	Kind() ContentKind
	Released() bool
	release()
}

var (
	_ Content = (*IntegerContent)(nil)
	_ Content = (*FloatContent)(nil)
	_ Content = (*StringContent)(nil)
)

type TypedContent[T Payload] struct {
	val      *T
	released bool
}

type (
	IntegerContent = TypedContent[int]
	FloatContent   = TypedContent[float64]
	StringContent  = TypedContent[string]
)

func newContent[T Payload](v T) *TypedContent[T] {
	val := new(T)
	*val = v
	return &TypedContent[T]{val: val}
}

func NewInteger(v int) *IntegerContent {
	return newContent[int](v)
}

func NewFloat(v float64) *FloatContent {
	return newContent[float64](v)
}

func NewString(v string) *StringContent {
	return newContent[string](v)
}

func (c *TypedContent[T]) Kind() ContentKind {
	switch any(*new(T)).(type) {
	case int:
		return Integer
	case float64:
		return Float
	default:
	}
	return String
}

func (c *TypedContent[T]) Released() bool {
	return c != nil && c.released
}

func (c *TypedContent[T]) Value() (T, bool) {
	if c == nil || c.val == nil {
		var zero T
		return zero, false
	}
	return *c.val, true
}

// Set returns false if the content has been released.
func (c *TypedContent[T]) Set(v T) bool {
	if c == nil || c.val == nil {
		return false
	}
	*c.val = v
	return true
}

// Add sums the numbers, concatenates the strings.
func (c *TypedContent[T]) Add(delta T) bool {
	if c == nil || c.val == nil {
		return false
	}
	*c.val += delta
	return true
}

func (c *TypedContent[T]) release() {
	if c == nil {
		return
	}
	if c.released {
		// impossible run to here
		panic( /* debug assertion */ "[bst] content released twice")
	}
	c.val = nil
	c.released = true
}
