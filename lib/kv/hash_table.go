package kv

// MaxHashTableSize is the number of buckets, a prime.
const MaxHashTableSize = 101

var _ StringKeyTable[struct{}] = (*HashTable[struct{}])(nil)

type HashItem[V any] struct {
	next  *HashItem[V]
	Key   string
	Value V
}

/*
Separate chaining. The synonyms are kept in a singly linked
list per bucket, a new item is pushed at the head.

	 index | chain
	-------|--------------------------
	   0   | nil
	   1   | ("ab", 1) -> ("ba", 3)
	   2   | ("c", 2)
	  ...  |
*/
type HashTable[V any] struct {
	buckets []*HashItem[V]
	size    int
	count   int64
}

// Hash is an additive hash, 1 plus the sum of the key bytes.
// Anagrams always collide.
func (ht *HashTable[V]) Hash(key string) int {
	result := 1
	for i := 0; i < len(key); i++ {
		result += int(key[i])
	}
	return result % ht.size
}

func (ht *HashTable[V]) Len() int64 {
	if ht == nil {
		return 0
	}
	return ht.count
}

func (ht *HashTable[V]) Size() int {
	if ht == nil {
		return 0
	}
	return ht.size
}

func (ht *HashTable[V]) Search(key string) *HashItem[V] {
	if ht == nil {
		return nil
	}
	for aux := ht.buckets[ht.Hash(key)]; aux != nil; aux = aux.next {
		if aux.Key == key {
			return aux
		}
	}
	return nil
}

func (ht *HashTable[V]) Insert(key string, val V) {
	if ht == nil {
		return
	}
	if item := ht.Search(key); item != nil {
		item.Value = val
		return
	}
	idx := ht.Hash(key)
	ht.buckets[idx] = &HashItem[V]{
		Key:   key,
		Value: val,
		next:  ht.buckets[idx],
	}
	ht.count++
}

func (ht *HashTable[V]) Get(key string) *V {
	if item := ht.Search(key); item != nil {
		return &item.Value
	}
	return nil
}

// Delete unlinks the item by walking the chain with the
// previous item, Search is not used.
func (ht *HashTable[V]) Delete(key string) {
	if ht == nil {
		return
	}
	idx := ht.Hash(key)
	var prev *HashItem[V]
	for aux := ht.buckets[idx]; aux != nil; prev, aux = aux, aux.next {
		if aux.Key != key {
			continue
		}
		if prev == nil {
			ht.buckets[idx] = aux.next
		} else {
			prev.next = aux.next
		}
		aux.next = nil
		ht.count--
		return
	}
}

func (ht *HashTable[V]) DeleteAll() {
	if ht == nil {
		return
	}
	for i := range ht.buckets {
		for aux := ht.buckets[i]; aux != nil; {
			next := aux.next
			aux.next = nil
			aux = next
		}
		ht.buckets[i] = nil
	}
	ht.count = 0
}

// Keys are listed by bucket index, then by chain order.
func (ht *HashTable[V]) Keys() []string {
	keys := make([]string, 0, ht.Len())
	if ht == nil {
		return keys
	}
	for i := range ht.buckets {
		for aux := ht.buckets[i]; aux != nil; aux = aux.next {
			keys = append(keys, aux.Key)
		}
	}
	return keys
}

type HashTableOpt[V any] func(*HashTable[V])

// WithHashTableSize shrinks the bucket count, it is clamped
// into [1, MaxHashTableSize].
func WithHashTableSize[V any](size int) HashTableOpt[V] {
	return func(ht *HashTable[V]) {
		ht.size = min(max(size, 1), MaxHashTableSize)
	}
}

func NewHashTable[V any](opts ...HashTableOpt[V]) *HashTable[V] {
	ht := &HashTable[V]{
		size: MaxHashTableSize,
	}
	for _, o := range opts {
		o(ht)
	}
	ht.buckets = make([]*HashItem[V], ht.size)
	return ht
}
