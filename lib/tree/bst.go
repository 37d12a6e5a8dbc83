package tree

import (
	"sync/atomic"

	"github.com/benz9527/xbst/lib/infra"
	"github.com/benz9527/xbst/lib/stack"
)

type bstNode struct {
	left    *bstNode
	right   *bstNode
	content Content
	key     byte
}

func (node *bstNode) Key() byte {
	return node.key
}

func (node *bstNode) Content() Content {
	return node.content
}

func (node *bstNode) Left() BSTNode {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *bstNode) Right() BSTNode {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

// unlink drops all the references the node owns.
func (node *bstNode) unlink() {
	node.left = nil
	node.right = nil
	node.content = nil
}

type bst struct {
	root        *bstNode
	releaseHook func(key byte, content Content)
	// Read by the metrics callbacks, so it is atomic.
	count     int64
	nodeLimit int64
}

func (tree *bst) keyCompare(k1, k2 byte) int64 {
	return infra.Compare[byte](k1, k2)
}

func (tree *bst) Len() int64 {
	if tree == nil {
		return 0
	}
	return atomic.LoadInt64(&tree.count)
}

func (tree *bst) Root() BSTNode {
	if tree == nil || tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *bst) Init() {
	if tree == nil {
		return
	}
	tree.root = nil
	atomic.StoreInt64(&tree.count, 0)
}

func (tree *bst) limit() int64 {
	if tree.nodeLimit <= 0 || tree.nodeLimit > MaxKeys {
		return MaxKeys
	}
	return tree.nodeLimit
}

func (tree *bst) releaseContent(key byte, content Content) {
	if content == nil {
		return
	}
	content.release()
	if tree.releaseHook != nil {
		tree.releaseHook(key, content)
	}
}

func (tree *bst) Search(key byte) (Content, bool) {
	if tree == nil {
		return nil, false
	}
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, aux.key)
		if /* equal */ res == 0 {
			return aux.content, true
		} else /* less */ if res < 0 {
			aux = aux.left
		} else /* greater */ {
			aux = aux.right
		}
	}
	return nil, false
}

// The link points to the child reference that will be rewritten,
// so the root needs no special case.
func (tree *bst) Insert(key byte, content Content) error {
	if tree == nil {
		return nil
	}

	link := &tree.root
	for *link != nil {
		x := *link
		res := tree.keyCompare(key, x.key)
		if /* equal */ res == 0 {
			if x.content != content {
				tree.releaseContent(x.key, x.content)
				x.content = content
			}
			return nil
		} else /* less */ if res < 0 {
			link = &x.left
		} else /* greater */ {
			link = &x.right
		}
	}

	if atomic.LoadInt64(&tree.count) >= tree.limit() {
		tree.releaseContent(key, content)
		return ErrOutOfMemory
	}
	*link = &bstNode{
		key:     key,
		content: content,
	}
	atomic.AddInt64(&tree.count, 1)
	return nil
}

/*
The target takes the key and content of the rightmost node of
the subtree *link, then the rightmost node is removed and its
left child takes its place.

	    T(5)                     T(4)
	   /    \                   /    \
	  3      8     ======>     3      8
	 / \                      / \
	1   4                    1   L
	   /
	  L

The subtree must not be empty.
*/
func (tree *bst) replaceByRightmost(target *bstNode, link **bstNode) {
	if target == nil || link == nil || *link == nil {
		// impossible run to here
		panic( /* debug assertion */ "[bst] replace by the rightmost node of an empty subtree")
	}

	for (*link).right != nil {
		link = &(*link).right
	}
	rightmost := *link

	tree.releaseContent(target.key, target.content)
	target.key, target.content = rightmost.key, rightmost.content

	*link = rightmost.left
	rightmost.unlink()
}

/*
d1: The node X has no left child, the right child R (maybe nil)
takes its place.

	  |             |
	  X    ====>    R
	   \
	    R

d2: The node X has no right child, the left child L takes its place.

	    |           |
	    X  ====>    L
	   /
	  L

d3: The node X has both children. X is replaced by its pred node,
the rightmost node of the left subtree.
*/
func (tree *bst) Delete(key byte) bool {
	if tree == nil {
		return false
	}

	link := &tree.root
	for *link != nil {
		x := *link
		res := tree.keyCompare(key, x.key)
		if /* less */ res < 0 {
			link = &x.left
			continue
		} else /* greater */ if res > 0 {
			link = &x.right
			continue
		}

		if /* d1 */ x.left == nil {
			*link = x.right
		} else /* d2 */ if x.right == nil {
			*link = x.left
		} else /* d3 */ {
			tree.replaceByRightmost(x, &x.left)
			atomic.AddInt64(&tree.count, -1)
			return true
		}
		tree.releaseContent(x.key, x.content)
		x.unlink()
		atomic.AddInt64(&tree.count, -1)
		return true
	}
	return false
}

// Dispose walks in preorder without recursion. The right child
// is deferred into the stack before the node is released, then
// the walk continues on the left child.
func (tree *bst) Dispose() {
	if tree == nil {
		return
	}

	toRelease := stack.NewArrayStack[*bstNode](MaxKeys)
	defer toRelease.Reset()

	aux := tree.root
	for aux != nil || !toRelease.IsEmpty() {
		if aux == nil {
			aux = mustPop[*bstNode](toRelease)
			continue
		}
		if aux.right != nil {
			mustPush[*bstNode](toRelease, aux.right)
		}
		x := aux
		aux = aux.left
		tree.releaseContent(x.key, x.content)
		x.unlink()
		atomic.AddInt64(&tree.count, -1)
	}

	tree.root = nil
	atomic.StoreInt64(&tree.count, 0)
}

func mustPush[E any](s stack.Stack[E], e E) {
	if err := s.Push(e); err != nil {
		// impossible run to here
		panic( /* debug assertion */ "[bst] auxiliary stack overflow")
	}
}

func mustPop[E any](s stack.Stack[E]) E {
	e, err := s.Pop()
	if err != nil {
		// impossible run to here
		panic( /* debug assertion */ "[bst] auxiliary stack underflow")
	}
	return e
}

type BSTOpt func(*bst)

// WithBSTNodeLimit caps the number of nodes. Inserting a new
// key beyond the limit fails with ErrOutOfMemory.
// Non-positive or too large limits fall back to MaxKeys.
func WithBSTNodeLimit(limit int64) BSTOpt {
	return func(tree *bst) {
		tree.nodeLimit = limit
	}
}

// WithBSTReleaseHook registers a callback invoked every time
// the tree releases a content, after the release.
func WithBSTReleaseHook(hook func(key byte, content Content)) BSTOpt {
	return func(tree *bst) {
		tree.releaseHook = hook
	}
}

func NewBST(opts ...BSTOpt) BST {
	tree := &bst{
		count:     0,
		nodeLimit: MaxKeys,
	}

	for _, o := range opts {
		o(tree)
	}
	return tree
}
