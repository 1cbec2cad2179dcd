package lob

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// checkTree validates the structural invariants the book relies on: sorted
// keys, node occupancy bounds, routing keys equal to the minimum of their
// right subtree, uniform leaf depth, and a consistent sorted leaf chain.
func checkTree(t *testing.T, tr *btree) {
	t.Helper()

	var leaves []*node
	leafDepth := -1

	var walk func(n *node, depth int, isRoot bool)
	walk = func(n *node, depth int, isRoot bool) {
		if !isRoot {
			require.GreaterOrEqual(t, n.size(), tr.minKeys(), "underflowed node")
		}
		require.LessOrEqual(t, n.size(), tr.maxKeys(), "overflowed node")

		if n.leaf {
			if leafDepth == -1 {
				leafDepth = depth
			}
			require.Equal(t, leafDepth, depth, "leaves at different depths")
			for i := 1; i < len(n.levels); i++ {
				require.Less(t, n.levels[i-1].price, n.levels[i].price, "unsorted leaf")
			}
			require.Empty(t, n.keys, "leaf with routing keys")
			require.Empty(t, n.children, "leaf with children")
			leaves = append(leaves, n)
			return
		}

		require.Len(t, n.children, len(n.keys)+1, "key/child count mismatch")
		require.Empty(t, n.levels, "internal node with levels")
		for i := 1; i < len(n.keys); i++ {
			require.Less(t, n.keys[i-1], n.keys[i], "unsorted routing keys")
		}
		for i, key := range n.keys {
			require.Equal(t, tr.subtreeMin(n.children[i+1]), key,
				"routing key is not the minimum of its right subtree")
		}
		for _, c := range n.children {
			walk(c, depth+1, false)
		}
	}
	walk(tr.root, 0, true)

	// Leaf chain must mirror the in-order leaves in both directions.
	var prev *node
	total := 0
	var lastPrice Price
	for i, leaf := range leaves {
		require.Same(t, prev, leaf.prev, "broken prev link at leaf %d", i)
		if prev != nil {
			require.Same(t, leaf, prev.next, "broken next link at leaf %d", i)
		}
		for _, lvl := range leaf.levels {
			if total > 0 {
				require.Less(t, lastPrice, lvl.price, "leaf chain out of order")
			}
			lastPrice = lvl.price
			total++
		}
		prev = leaf
	}
	require.Nil(t, prev.next, "tail leaf has a next link")
	require.Equal(t, tr.size, total, "tree size does not match live levels")
}

// fillLevel gives the level one resting order so empty-level skipping does
// not hide it from walks.
func fillLevel(lvl *priceLevel) {
	lvl.append(&Order{ID: uint64(lvl.price), Remaining: 1, Quantity: 1})
}

func collectAscending(tr *btree) []Price {
	var prices []Price
	tr.ascend(func(lvl *priceLevel) bool {
		prices = append(prices, lvl.price)
		return true
	})
	return prices
}

func TestUpsertCreatesSortedLevels(t *testing.T) {
	tr := newBTree(2)
	prices := []Price{500, 100, 900, 300, 700, 200, 800, 400, 600, 1000}
	for _, p := range prices {
		fillLevel(tr.upsertLevel(p))
	}
	checkTree(t, tr)

	want := []Price{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}
	require.Equal(t, want, collectAscending(tr))

	for _, p := range want {
		lvl := tr.findLevel(p)
		require.NotNil(t, lvl)
		require.Equal(t, p, lvl.price)
	}
	require.Nil(t, tr.findLevel(550))
}

func TestUpsertReturnsExistingLevel(t *testing.T) {
	tr := newBTree(2)
	first := tr.upsertLevel(100)
	fillLevel(first)
	require.Same(t, first, tr.upsertLevel(100))
	require.Equal(t, 1, tr.size)
}

func TestRootSplitGrowsDepth(t *testing.T) {
	const degree = 2
	tr := newBTree(degree)
	// maxKeys prices keep the root a leaf; one more forces the split.
	for i := 0; i < tr.maxKeys(); i++ {
		fillLevel(tr.upsertLevel(Price(100 * (i + 1))))
	}
	require.True(t, tr.root.leaf)

	fillLevel(tr.upsertLevel(Price(100 * (tr.maxKeys() + 1))))
	require.False(t, tr.root.leaf)
	checkTree(t, tr)
}

func TestExtremaAndWalks(t *testing.T) {
	tr := newBTree(2)
	require.Nil(t, tr.minLevel())
	require.Nil(t, tr.maxLevel())

	for p := Price(1); p <= 100; p++ {
		fillLevel(tr.upsertLevel(p * 10))
	}
	checkTree(t, tr)

	require.Equal(t, Price(10), tr.minLevel().price)
	require.Equal(t, Price(1000), tr.maxLevel().price)

	var down []Price
	tr.descend(func(lvl *priceLevel) bool {
		down = append(down, lvl.price)
		return len(down) < 5
	})
	require.Equal(t, []Price{1000, 990, 980, 970, 960}, down)

	var up []Price
	tr.ascend(func(lvl *priceLevel) bool {
		up = append(up, lvl.price)
		return len(up) < 5
	})
	require.Equal(t, []Price{10, 20, 30, 40, 50}, up)
}

func TestDeleteLevelAscending(t *testing.T) {
	tr := newBTree(2)
	const n = 64
	for p := Price(1); p <= n; p++ {
		fillLevel(tr.upsertLevel(p))
	}
	for p := Price(1); p <= n; p++ {
		require.True(t, tr.deleteLevel(p), "delete %d", p)
		require.Nil(t, tr.findLevel(p))
		checkTree(t, tr)
	}
	require.Equal(t, 0, tr.size)
	require.True(t, tr.root.leaf)
}

func TestDeleteLevelDescending(t *testing.T) {
	tr := newBTree(2)
	const n = 64
	for p := Price(1); p <= n; p++ {
		fillLevel(tr.upsertLevel(p))
	}
	for p := Price(n); p >= 1; p-- {
		require.True(t, tr.deleteLevel(p), "delete %d", p)
		checkTree(t, tr)
	}
	require.Equal(t, 0, tr.size)
}

func TestDeleteLevelRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		tr := newBTree(2)
		perm := rng.Perm(200)
		for _, p := range perm {
			fillLevel(tr.upsertLevel(Price(p + 1)))
		}
		checkTree(t, tr)

		for _, p := range rng.Perm(200) {
			require.True(t, tr.deleteLevel(Price(p+1)))
			checkTree(t, tr)
		}
		require.Equal(t, 0, tr.size)
	}
}

func TestDeleteMissingLevel(t *testing.T) {
	tr := newBTree(2)
	require.False(t, tr.deleteLevel(100))
	fillLevel(tr.upsertLevel(100))
	require.False(t, tr.deleteLevel(200))
	require.Equal(t, 1, tr.size)
	require.True(t, tr.deleteLevel(100))
	require.False(t, tr.deleteLevel(100))
}

func TestDeepBook(t *testing.T) {
	if testing.Short() {
		t.Skip("deep book test")
	}
	const levels = 100000
	tr := newBTree(DefaultDegree)
	rng := rand.New(rand.NewSource(11))
	for _, p := range rng.Perm(levels) {
		fillLevel(tr.upsertLevel(Price(p + 1)))
	}
	checkTree(t, tr)

	require.Equal(t, Price(1), tr.minLevel().price)
	require.Equal(t, Price(levels), tr.maxLevel().price)

	var top []Price
	tr.descend(func(lvl *priceLevel) bool {
		top = append(top, lvl.price)
		return len(top) < 10
	})
	require.Equal(t,
		[]Price{levels, levels - 1, levels - 2, levels - 3, levels - 4,
			levels - 5, levels - 6, levels - 7, levels - 8, levels - 9},
		top)

	// Small-degree variant forces real depth.
	deep := newBTree(2)
	for _, p := range rng.Perm(10000) {
		fillLevel(deep.upsertLevel(Price(p + 1)))
	}
	checkTree(t, deep)
	require.Equal(t, Price(1), deep.minLevel().price)
	require.Equal(t, Price(10000), deep.maxLevel().price)
}
