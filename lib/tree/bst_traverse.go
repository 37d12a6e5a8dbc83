package tree

import (
	"github.com/benz9527/xbst/lib/stack"
)

type Item struct {
	Content Content
	Key     byte
}

// Items is an append-only sequence of the visited nodes in
// visitation order. It is owned by the caller of the traversal.
type Items struct {
	items []Item
}

func NewItems(capacity int) *Items {
	if capacity < 0 {
		capacity = 0
	}
	return &Items{
		items: make([]Item, 0, capacity),
	}
}

func (items *Items) Add(key byte, content Content) {
	items.items = append(items.items, Item{Key: key, Content: content})
}

func (items *Items) Len() int {
	if items == nil {
		return 0
	}
	return len(items.items)
}

func (items *Items) At(idx int) (Item, bool) {
	if items == nil || idx < 0 || idx >= len(items.items) {
		return Item{}, false
	}
	return items.items[idx], true
}

func (items *Items) Keys() []byte {
	keys := make([]byte, 0, items.Len())
	for i := 0; i < items.Len(); i++ {
		keys = append(keys, items.items[i].Key)
	}
	return keys
}

// All returns a copy of the items.
func (items *Items) All() []Item {
	res := make([]Item, items.Len())
	if items != nil {
		copy(res, items.items)
	}
	return res
}

func (items *Items) Foreach(action func(idx int, item Item) bool) {
	for i := 0; i < items.Len(); i++ {
		if !action(i, items.items[i]) {
			return
		}
	}
}

// The visitor returns false to stop the traversal.
type visitor func(node *bstNode) bool

// Records and stacks every node along the left path.
func leftmostPreorder(x *bstNode, toVisit stack.Stack[*bstNode], visit visitor) bool {
	for ; x != nil; x = x.left {
		if !visit(x) {
			return false
		}
		mustPush[*bstNode](toVisit, x)
	}
	return true
}

func (tree *bst) preorder(visit visitor) {
	toVisit := stack.NewArrayStack[*bstNode](MaxKeys)
	defer toVisit.Reset()

	if !leftmostPreorder(tree.root, toVisit, visit) {
		return
	}
	for !toVisit.IsEmpty() {
		x := mustPop[*bstNode](toVisit)
		if !leftmostPreorder(x.right, toVisit, visit) {
			return
		}
	}
}

// Stacks every node along the left path, the visit is deferred
// until the node is popped.
func leftmostInorder(x *bstNode, toVisit stack.Stack[*bstNode]) {
	for ; x != nil; x = x.left {
		mustPush[*bstNode](toVisit, x)
	}
}

func (tree *bst) inorder(visit visitor) {
	toVisit := stack.NewArrayStack[*bstNode](MaxKeys)
	defer toVisit.Reset()

	leftmostInorder(tree.root, toVisit)
	for !toVisit.IsEmpty() {
		x := mustPop[*bstNode](toVisit)
		if !visit(x) {
			return
		}
		leftmostInorder(x.right, toVisit)
	}
}

// Stacks every node along the left path and marks it as
// visited for the first time in the parallel flag stack.
func leftmostPostorder(x *bstNode, toVisit stack.Stack[*bstNode], firstVisit stack.Stack[bool]) {
	for ; x != nil; x = x.left {
		mustPush[*bstNode](toVisit, x)
		mustPush[bool](firstVisit, true)
	}
}

// A node popped for the first time goes back to the stack
// with a cleared flag and its right subtree is stacked above
// it. The second pop means both subtrees have been visited.
func (tree *bst) postorder(visit visitor) {
	toVisit := stack.NewArrayStack[*bstNode](MaxKeys)
	firstVisit := stack.NewArrayStack[bool](MaxKeys)
	defer func() {
		toVisit.Reset()
		firstVisit.Reset()
	}()

	leftmostPostorder(tree.root, toVisit, firstVisit)
	for !toVisit.IsEmpty() {
		x := mustPop[*bstNode](toVisit)
		if first := mustPop[bool](firstVisit); first {
			mustPush[*bstNode](toVisit, x)
			mustPush[bool](firstVisit, false)
			leftmostPostorder(x.right, toVisit, firstVisit)
			continue
		}
		if !visit(x) {
			return
		}
	}
}

func (tree *bst) walk(order TraversalOrder, visit visitor) {
	if tree == nil || tree.root == nil {
		return
	}
	switch order {
	case Preorder:
		tree.preorder(visit)
	case Inorder:
		tree.inorder(visit)
	case Postorder:
		tree.postorder(visit)
	default:
	}
}

// Traverse returns the nodes in the given order. An unknown
// order yields an empty sequence.
func (tree *bst) Traverse(order TraversalOrder) *Items {
	items := NewItems(int(tree.Len()))
	tree.walk(order, func(node *bstNode) bool {
		items.Add(node.key, node.content)
		return true
	})
	return items
}

// Foreach stops as soon as the action returns false.
func (tree *bst) Foreach(order TraversalOrder, action func(idx int64, key byte, val Content) bool) {
	idx := int64(0)
	tree.walk(order, func(node *bstNode) bool {
		if !action(idx, node.key, node.content) {
			return false
		}
		idx++
		return true
	})
}
