package tree

import (
	randv2 "math/rand/v2"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func intValue(t *testing.T, content Content) int {
	t.Helper()
	c, ok := content.(*IntegerContent)
	require.True(t, ok)
	v, ok := c.Value()
	require.True(t, ok)
	return v
}

func insertKeys(t *testing.T, tree BST, keys ...byte) {
	t.Helper()
	for i, key := range keys {
		require.NoError(t, tree.Insert(key, NewInteger(i)))
	}
}

func requireValid(t *testing.T, tree BST) {
	t.Helper()
	require.NoError(t, OrderViolationValidate(tree))
	require.NoError(t, ContentViolationValidate(tree))
}

func TestNilTree(t *testing.T) {
	var nilTree *bst
	var tree BST = nilTree
	require.True(t, tree != nil)

	require.NotPanics(t, func() {
		tree.Init()
		require.Equal(t, int64(0), tree.Len())
		require.Nil(t, tree.Root())
		_, ok := tree.Search('a')
		require.False(t, ok)
		require.NoError(t, tree.Insert('a', NewInteger(1)))
		require.False(t, tree.Delete('a'))
		tree.Dispose()
		require.Equal(t, 0, tree.Traverse(Inorder).Len())
		tree.Foreach(Preorder, func(idx int64, key byte, val Content) bool {
			t.Fatal("nil tree visited")
			return true
		})
	})
	requireValid(t, tree)
	require.Equal(t, 0, Height(tree))
}

func TestBST_SearchInsert(t *testing.T) {
	tree := NewBST()
	_, ok := tree.Search('a')
	require.False(t, ok)

	insertKeys(t, tree, '5', '3', '8', '1', '4')
	require.Equal(t, int64(5), tree.Len())
	requireValid(t, tree)

	for i, key := range []byte{'5', '3', '8', '1', '4'} {
		content, ok := tree.Search(key)
		require.True(t, ok)
		require.Equal(t, i, intValue(t, content))
	}
	_, ok = tree.Search('2')
	require.False(t, ok)
	_, ok = tree.Search('9')
	require.False(t, ok)

	root := tree.Root()
	require.Equal(t, byte('5'), root.Key())
	require.Equal(t, byte('3'), root.Left().Key())
	require.Equal(t, byte('8'), root.Right().Key())
	require.Nil(t, root.Right().Left())
	require.Nil(t, root.Right().Right())
}

func TestBST_InsertReplace(t *testing.T) {
	released := 0
	tree := NewBST(WithBSTReleaseHook(func(key byte, content Content) {
		require.Equal(t, byte('a'), key)
		require.True(t, content.Released())
		released++
	}))

	first := NewInteger(1)
	require.NoError(t, tree.Insert('a', first))

	// Update in place through the content reference.
	content, ok := tree.Search('a')
	require.True(t, ok)
	require.True(t, content.(*IntegerContent).Add(1))
	content, ok = tree.Search('a')
	require.True(t, ok)
	require.Equal(t, 2, intValue(t, content))
	require.Equal(t, int64(1), tree.Len())
	require.Equal(t, 0, released)

	// Re-insert the same content is not a replacement.
	require.NoError(t, tree.Insert('a', first))
	require.False(t, first.Released())

	second := NewString("two")
	require.NoError(t, tree.Insert('a', second))
	require.True(t, first.Released())
	require.Equal(t, 1, released)
	require.Equal(t, int64(1), tree.Len())
	content, ok = tree.Search('a')
	require.True(t, ok)
	require.Equal(t, String, content.Kind())
	requireValid(t, tree)

	// Nil content is a not yet allocated payload.
	require.NoError(t, tree.Insert('a', nil))
	require.True(t, second.Released())
	content, ok = tree.Search('a')
	require.True(t, ok)
	require.Nil(t, content)
	requireValid(t, tree)
}

func TestBST_InsertOutOfMemory(t *testing.T) {
	released := make([]byte, 0, 4)
	tree := NewBST(
		WithBSTNodeLimit(2),
		WithBSTReleaseHook(func(key byte, content Content) {
			released = append(released, key)
		}),
	)
	insertKeys(t, tree, 'b', 'a')

	c := NewInteger(3)
	require.ErrorIs(t, tree.Insert('c', c), ErrOutOfMemory)
	require.True(t, c.Released())
	require.Equal(t, []byte{'c'}, released)
	require.Equal(t, int64(2), tree.Len())
	require.Equal(t, []byte{'a', 'b'}, tree.Traverse(Inorder).Keys())
	_, ok := tree.Search('c')
	require.False(t, ok)

	// Replacement allocates no node.
	require.NoError(t, tree.Insert('a', NewInteger(10)))
	content, _ := tree.Search('a')
	require.Equal(t, 10, intValue(t, content))

	// Room again after a deletion.
	require.True(t, tree.Delete('b'))
	require.NoError(t, tree.Insert('c', NewInteger(4)))
	requireValid(t, tree)
}

func TestBST_NodeLimitFallback(t *testing.T) {
	for _, limit := range []int64{-1, 0, MaxKeys + 1} {
		tree := NewBST(WithBSTNodeLimit(limit))
		for k := 0; k < MaxKeys; k++ {
			require.NoError(t, tree.Insert(byte(k), nil))
		}
		require.Equal(t, int64(MaxKeys), tree.Len())
	}
}

func TestBST_DeleteCases(t *testing.T) {
	type testcase struct {
		name      string
		keys      []byte
		del       byte
		found     bool
		inorder   []byte
		preorder  []byte
		postorder []byte
	}
	testcases := []testcase{
		{
			name:      "two children, predecessor is a leaf",
			keys:      []byte{'5', '3', '8', '1', '4'},
			del:       '5',
			found:     true,
			inorder:   []byte{'1', '3', '4', '8'},
			preorder:  []byte{'4', '3', '1', '8'},
			postorder: []byte{'1', '3', '8', '4'},
		},
		{
			name:      "two children, predecessor has a left child",
			keys:      []byte{'5', '2', '8', '1', '4', '3'},
			del:       '5',
			found:     true,
			inorder:   []byte{'1', '2', '3', '4', '8'},
			preorder:  []byte{'4', '2', '1', '3', '8'},
			postorder: []byte{'1', '3', '2', '8', '4'},
		},
		{
			name:      "two children, predecessor is the left child",
			keys:      []byte{'5', '3', '8', '1'},
			del:       '5',
			found:     true,
			inorder:   []byte{'1', '3', '8'},
			preorder:  []byte{'3', '1', '8'},
			postorder: []byte{'1', '8', '3'},
		},
		{
			name:      "leaf",
			keys:      []byte{'5', '3', '8'},
			del:       '8',
			found:     true,
			inorder:   []byte{'3', '5'},
			preorder:  []byte{'5', '3'},
			postorder: []byte{'3', '5'},
		},
		{
			name:      "only right child",
			keys:      []byte{'5', '3', '4', '8'},
			del:       '3',
			found:     true,
			inorder:   []byte{'4', '5', '8'},
			preorder:  []byte{'5', '4', '8'},
			postorder: []byte{'4', '8', '5'},
		},
		{
			name:      "only left child",
			keys:      []byte{'5', '3', '8', '7'},
			del:       '8',
			found:     true,
			inorder:   []byte{'3', '5', '7'},
			preorder:  []byte{'5', '3', '7'},
			postorder: []byte{'3', '7', '5'},
		},
		{
			name:      "root with only right child",
			keys:      []byte{'1', '2', '3'},
			del:       '1',
			found:     true,
			inorder:   []byte{'2', '3'},
			preorder:  []byte{'2', '3'},
			postorder: []byte{'3', '2'},
		},
		{
			name:      "single root",
			keys:      []byte{'1'},
			del:       '1',
			found:     true,
			inorder:   []byte{},
			preorder:  []byte{},
			postorder: []byte{},
		},
		{
			name:      "absent key",
			keys:      []byte{'5', '3', '8'},
			del:       '4',
			found:     false,
			inorder:   []byte{'3', '5', '8'},
			preorder:  []byte{'5', '3', '8'},
			postorder: []byte{'3', '8', '5'},
		},
		{
			name:      "empty tree",
			keys:      []byte{},
			del:       '4',
			found:     false,
			inorder:   []byte{},
			preorder:  []byte{},
			postorder: []byte{},
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			releasedKeys := make([]byte, 0, 1)
			tree := NewBST(WithBSTReleaseHook(func(key byte, content Content) {
				releasedKeys = append(releasedKeys, key)
			}))
			insertKeys(t, tree, tc.keys...)
			size := tree.Len()

			require.Equal(t, tc.found, tree.Delete(tc.del))
			requireValid(t, tree)
			if tc.found {
				require.Equal(t, size-1, tree.Len())
				require.Equal(t, []byte{tc.del}, releasedKeys)
			} else {
				require.Equal(t, size, tree.Len())
				require.Empty(t, releasedKeys)
			}
			_, ok := tree.Search(tc.del)
			require.False(t, ok)

			require.Equal(t, tc.inorder, tree.Traverse(Inorder).Keys())
			require.Equal(t, tc.preorder, tree.Traverse(Preorder).Keys())
			require.Equal(t, tc.postorder, tree.Traverse(Postorder).Keys())
		})
	}
}

func TestBST_DeleteMovesContent(t *testing.T) {
	tree := NewBST()
	contents := map[byte]*IntegerContent{}
	for i, key := range []byte{'5', '3', '8', '1', '4'} {
		contents[key] = NewInteger(i)
		require.NoError(t, tree.Insert(key, contents[key]))
	}

	require.True(t, tree.Delete('5'))
	require.True(t, contents['5'].Released())
	require.False(t, contents['4'].Released())

	content, ok := tree.Search('4')
	require.True(t, ok)
	require.Same(t, contents['4'], content)
	require.Equal(t, byte('4'), tree.Root().Key())
}

func TestBST_ReplaceByRightmostEmptySubtree(t *testing.T) {
	tree := &bst{}
	target := &bstNode{key: 'a'}
	var empty *bstNode
	require.Panics(t, func() {
		tree.replaceByRightmost(target, &empty)
	})
	require.Panics(t, func() {
		tree.replaceByRightmost(target, nil)
	})
}

func TestBST_Dispose(t *testing.T) {
	released := 0
	tree := NewBST(WithBSTReleaseHook(func(key byte, content Content) {
		released++
	}))

	// Disposing an empty tree is fine.
	tree.Dispose()
	require.Equal(t, 0, released)

	keys := []byte("the quick brown fx jmps ovr lazy dg")
	keys = lo.Uniq(keys)
	contents := make([]Content, 0, len(keys))
	for i, key := range keys {
		c := NewInteger(i)
		contents = append(contents, c)
		require.NoError(t, tree.Insert(key, c))
	}
	require.NoError(t, tree.Insert('?', nil))
	require.Equal(t, int64(len(keys)+1), tree.Len())

	tree.Dispose()
	require.Equal(t, len(keys), released)
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	require.Equal(t, 0, tree.Traverse(Preorder).Len())
	for _, c := range contents {
		require.True(t, c.Released())
	}

	// Same as a fresh tree.
	tree.Dispose()
	require.Equal(t, len(keys), released)
	fresh := NewBST()
	require.Equal(t, fresh.Len(), tree.Len())
	require.Equal(t, fresh.Root(), tree.Root())

	insertKeys(t, tree, 'b', 'a', 'c')
	require.Equal(t, []byte{'a', 'b', 'c'}, tree.Traverse(Inorder).Keys())
	requireValid(t, tree)
}

func TestBST_Init(t *testing.T) {
	tree := NewBST()
	tree.Init()
	require.Nil(t, tree.Root())
	insertKeys(t, tree, 'x')
	tree.Dispose()
	tree.Init()
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
}

func TestBST_Degenerate(t *testing.T) {
	testcases := []struct {
		name string
		keys func() []byte
	}{
		{
			"ascending",
			func() []byte {
				keys := make([]byte, 0, MaxKeys)
				for k := 0; k < MaxKeys; k++ {
					keys = append(keys, byte(k))
				}
				return keys
			},
		},
		{
			"descending",
			func() []byte {
				keys := make([]byte, 0, MaxKeys)
				for k := MaxKeys - 1; k >= 0; k-- {
					keys = append(keys, byte(k))
				}
				return keys
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			released := 0
			tree := NewBST(WithBSTReleaseHook(func(key byte, content Content) {
				released++
			}))
			keys := tc.keys()
			insertKeys(t, tree, keys...)
			require.Equal(t, MaxKeys, Height(tree))
			requireValid(t, tree)

			for _, order := range []TraversalOrder{Preorder, Inorder, Postorder} {
				require.Equal(t, MaxKeys, tree.Traverse(order).Len(), order.String())
			}
			inorder := tree.Traverse(Inorder).Keys()
			for i := 0; i < MaxKeys; i++ {
				require.Equal(t, byte(i), inorder[i])
			}

			tree.Dispose()
			require.Equal(t, MaxKeys, released)
			require.Equal(t, int64(0), tree.Len())
		})
	}
}

func TestBST_RandomOperations(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789 _"
	released := 0
	tree := NewBST(WithBSTReleaseHook(func(key byte, content Content) {
		released++
	}))
	model := make(map[byte]int, len(alphabet))
	expectedReleased := 0

	for i := 0; i < 5000; i++ {
		key := alphabet[randv2.IntN(len(alphabet))]
		switch randv2.IntN(3) {
		case 0, 1:
			if _, exists := model[key]; exists {
				expectedReleased++
			}
			require.NoError(t, tree.Insert(key, NewInteger(i)))
			model[key] = i
			content, ok := tree.Search(key)
			require.True(t, ok)
			require.Equal(t, i, intValue(t, content))
		case 2:
			size := tree.Len()
			_, exists := model[key]
			require.Equal(t, exists, tree.Delete(key))
			if exists {
				expectedReleased++
				require.Equal(t, size-1, tree.Len())
			} else {
				require.Equal(t, size, tree.Len())
			}
			delete(model, key)
			_, ok := tree.Search(key)
			require.False(t, ok)
		}

		require.Equal(t, int64(len(model)), tree.Len())
		require.Equal(t, expectedReleased, released)
		if i%100 == 0 {
			requireValid(t, tree)
			pre := tree.Traverse(Preorder).Keys()
			in := tree.Traverse(Inorder).Keys()
			post := tree.Traverse(Postorder).Keys()
			require.ElementsMatch(t, in, pre)
			require.ElementsMatch(t, in, post)
			require.ElementsMatch(t, lo.Keys(model), in)
		}
	}

	for key, v := range model {
		content, ok := tree.Search(key)
		require.True(t, ok)
		require.Equal(t, v, intValue(t, content))
	}

	tree.Dispose()
	require.Equal(t, expectedReleased+len(model), released)
}

func BenchmarkBST_InsertSearchDelete(b *testing.B) {
	keys := make([]byte, MaxKeys)
	for i := range keys {
		keys[i] = byte(i)
	}
	randv2.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree := NewBST()
		for _, k := range keys {
			_ = tree.Insert(k, NewInteger(int(k)))
		}
		for _, k := range keys {
			_, _ = tree.Search(k)
		}
		for _, k := range keys[:MaxKeys>>1] {
			_ = tree.Delete(k)
		}
		tree.Dispose()
	}
	b.ReportAllocs()
}
