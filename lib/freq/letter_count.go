package freq

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/benz9527/xbst/lib/tree"
)

var ErrNilTree = errors.New("[freq] nil tree")

const readChunkSize = 4 << 10

// Normalize folds a character into the counted alphabet.
// Letters are lower-cased, the space stays and the others
// are counted as '_'.
func Normalize(ch byte) byte {
	switch {
	case 'A' <= ch && ch <= 'Z':
		return ch + ('a' - 'A')
	case 'a' <= ch && ch <= 'z', ch == ' ':
		return ch
	default:
	}
	return '_'
}

// Update increments the integer counter of the key, or stores
// a new counter with 1 if the key is absent or does not hold
// an integer.
func Update(t tree.BST, key byte) error {
	if t == nil {
		return ErrNilTree
	}
	if c, ok := t.Search(key); ok {
		if counter, ok := c.(*tree.IntegerContent); ok && counter.Add(1) {
			return nil
		}
	}
	return t.Insert(key, tree.NewInteger(1))
}

// Count accumulates the normalized characters of input into t.
func Count(t tree.BST, input []byte) error {
	for _, ch := range input {
		if err := Update(t, Normalize(ch)); err != nil {
			return err
		}
	}
	return nil
}

// CountReader accumulates the characters read from r into t.
func CountReader(t tree.BST, r io.Reader) error {
	if r == nil {
		return nil
	}
	br := bufio.NewReaderSize(r, readChunkSize)
	buf := make([]byte, readChunkSize)
	for {
		n, err := br.Read(buf)
		if n > 0 {
			if _err := Count(t, buf[:n]); _err != nil {
				return _err
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

// LetterCount resets t and counts every character of input.
// The previous counters are disposed, so the reset never leaks
// them.
func LetterCount(t tree.BST, input []byte) error {
	if t == nil {
		return ErrNilTree
	}
	t.Dispose()
	return Count(t, input)
}

type Frequency struct {
	Key   byte
	Count int
}

func (f Frequency) String() string {
	return fmt.Sprintf("%q: %d", f.Key, f.Count)
}

// Frequencies lists the integer counters of t in the given order.
func Frequencies(t tree.BST, order tree.TraversalOrder) []Frequency {
	if t == nil {
		return []Frequency{}
	}
	freqs := make([]Frequency, 0, t.Len())
	t.Foreach(order, func(idx int64, key byte, val tree.Content) bool {
		if counter, ok := val.(*tree.IntegerContent); ok {
			if n, ok := counter.Value(); ok {
				freqs = append(freqs, Frequency{Key: key, Count: n})
			}
		}
		return true
	})
	return freqs
}

// Merge adds every counter of src into dst. src is left untouched.
func Merge(dst, src tree.BST) error {
	if dst == nil {
		return ErrNilTree
	}
	if src == nil {
		return nil
	}
	var err error
	src.Foreach(tree.Inorder, func(idx int64, key byte, val tree.Content) bool {
		counter, ok := val.(*tree.IntegerContent)
		if !ok {
			return true
		}
		n, ok := counter.Value()
		if !ok {
			return true
		}
		if c, ok := dst.Search(key); ok {
			if dstCounter, ok := c.(*tree.IntegerContent); ok && dstCounter.Add(n) {
				return true
			}
		}
		err = dst.Insert(key, tree.NewInteger(n))
		return err == nil
	})
	return err
}
