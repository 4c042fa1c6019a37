package catalog

import (
	"cmp"
	"slices"
)

// Rank sorts every group by descending APK score. The sort is key-based and
// stable: products with equal scores keep their catalog order, though
// callers should not depend on tie order.
func (g *Groups) Rank() {
	rank(g.Beer)
	rank(g.Wine)
	rank(g.Cider)
	rank(g.Liquor)
	rank(g.Other)
}

func rank(products []Product) {
	slices.SortStableFunc(products, func(a, b Product) int {
		return cmp.Compare(b.Score(), a.Score())
	})
}
