package tree

import "fmt"

// bst rule validation utilities.

// Inorder traversal to validate the strict ascending order of
// the keys. The same key appearing twice is a violation too.
func OrderViolationValidate(tree BST) error {
	if tree == nil {
		return nil
	}
	size := tree.Len()
	aux := tree.Root()
	if aux == nil {
		if size != 0 {
			return fmt.Errorf("bst count violation, empty tree with %d nodes", size)
		}
		return nil
	}

	stack := make([]BSTNode, 0, size)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	var (
		prev    byte
		visited int64
	)
	for n := len(stack); n > 0; n = len(stack) {
		aux = stack[n-1]
		if visited > 0 && prev >= aux.Key() {
			return fmt.Errorf("bst order violation, key %q is visited after %q", aux.Key(), prev)
		}
		prev = aux.Key()
		visited++

		stack = stack[:n-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	if visited != size {
		return fmt.Errorf("bst count violation, %d nodes visited but %d counted", visited, size)
	}
	return nil
}

// BFS traversal to validate all the reachable contents are
// either nil or alive.
func ContentViolationValidate(tree BST) error {
	if tree == nil || tree.Root() == nil {
		return nil
	}

	queue := make([]BSTNode, 0, tree.Len())
	queue = append(queue, tree.Root())
	for len(queue) > 0 {
		aux := queue[0]
		if c := aux.Content(); c != nil && c.Released() {
			return fmt.Errorf("bst content violation, released content of key %q", aux.Key())
		}
		if l := aux.Left(); l != nil {
			queue = append(queue, l)
		}
		if r := aux.Right(); r != nil {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return nil
}

// Height counts the levels by BFS. An empty tree is 0 high and
// a degenerate tree is as high as its length.
func Height(tree BST) int {
	if tree == nil || tree.Root() == nil {
		return 0
	}

	height := 0
	level := []BSTNode{tree.Root()}
	for len(level) > 0 {
		height++
		next := make([]BSTNode, 0, len(level)<<1)
		for _, aux := range level {
			if l := aux.Left(); l != nil {
				next = append(next, l)
			}
			if r := aux.Right(); r != nil {
				next = append(next, r)
			}
		}
		level = next
	}
	return height
}
