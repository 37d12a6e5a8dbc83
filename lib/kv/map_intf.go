package kv

// StringKeyTable is a table keyed by string. It is not thread safe.
type StringKeyTable[V any] interface {
	Len() int64
	Size() int
	// Search returns nil if the key doesn't exist.
	Search(key string) *HashItem[V]
	// Insert replaces the value if the key exists.
	Insert(key string, val V)
	// Get returns the reference of the value or nil.
	Get(key string) *V
	// Delete does nothing if the key doesn't exist.
	Delete(key string)
	// DeleteAll drops all the items, the table is reusable afterward.
	DeleteAll()
	Keys() []string
}
