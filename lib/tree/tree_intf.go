package tree

import "errors"

// MaxKeys is the number of distinct single character keys.
// No tree holds more nodes than that, so it bounds every
// auxiliary stack too.
const MaxKeys = 1 << 8

var ErrOutOfMemory = errors.New("[bst] out of memory, node limit reached")

type TraversalOrder uint8

const (
	Preorder TraversalOrder = iota
	Inorder
	Postorder
	_orderMax
)

func (order TraversalOrder) String() string {
	switch order {
	case Preorder:
		return "PREORDER"
	case Inorder:
		return "INORDER"
	case Postorder:
		return "POSTORDER"
	default:
	}
	return "UNKNOWN"
}

// ParseTraversalOrder is case-sensitive on the String() form,
// "pre", "in" and "post" are accepted as well.
func ParseTraversalOrder(order string) (TraversalOrder, error) {
	switch order {
	case "PREORDER", "pre", "preorder":
		return Preorder, nil
	case "INORDER", "in", "inorder":
		return Inorder, nil
	case "POSTORDER", "post", "postorder":
		return Postorder, nil
	default:
	}
	return _orderMax, errors.New("[bst] unknown traversal order " + order)
}

type BSTNode interface {
	Key() byte
	Content() Content
	Left() BSTNode
	Right() BSTNode
}

// BST is a binary search tree keyed by a single character.
// All operations are iterative, the traversals and the
// disposal simulate the call stack by an explicit stack.
//
// It is not thread safe. Calling any method through a nil
// tree handle is a silent no-op.
type BST interface {
	Len() int64
	Root() BSTNode
	// Init resets the tree to the empty state without releasing
	// anything. Do not call it on a non-empty tree, use Dispose.
	Init()
	// Search returns the reference of the content if the key exists.
	Search(key byte) (Content, bool)
	// Insert takes over the ownership of the content. An existing
	// content of the same key will be released and replaced.
	// If a new node is unable to be allocated, the content is
	// released and ErrOutOfMemory is returned.
	Insert(key byte, content Content) error
	// Delete returns false if the key doesn't exist.
	// A node with two children is replaced by its in-order
	// predecessor (the rightmost node of the left subtree).
	Delete(key byte) bool
	// Dispose releases all the contents and nodes. The tree is
	// reusable afterward as a freshly created one.
	Dispose()
	Traverse(order TraversalOrder) *Items
	Foreach(order TraversalOrder, action func(idx int64, key byte, val Content) bool)
}
