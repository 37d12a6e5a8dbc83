package infra

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	testcases := []struct {
		i, j byte
		want int64
	}{
		{'a', 'a', 0},
		{'a', 'b', -1},
		{'b', 'a', 1},
		{' ', '_', -1},
		{'_', 'a', -1},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.want, Compare[byte](tc.i, tc.j))
	}

	var cmp OrderedKeyComparator[string] = Compare[string]
	require.Equal(t, int64(1), cmp("ab", "aa"))
}
