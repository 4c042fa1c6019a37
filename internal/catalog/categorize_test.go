package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func eligibleProduct() Product {
	return Product{
		AlcoholPercentage: 5,
		Volume:            330,
		Price:             20,
		Assortment:        "FS",
	}
}

func TestEligibleExclusions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Product)
		want   bool
	}{
		{name: "in stock with alcohol", mutate: func(*Product) {}, want: true},
		{name: "alcohol free", mutate: func(p *Product) { p.AlcoholPercentage = 0 }, want: false},
		{name: "order assortment", mutate: func(p *Product) { p.Assortment = "BS" }, want: false},
		{name: "temporary assortment", mutate: func(p *Product) { p.Assortment = "TSLS" }, want: false},
		{name: "out of stock", mutate: func(p *Product) { p.IsCompletelyOutOfStock = true }, want: false},
		{name: "empty assortment", mutate: func(p *Product) { p.Assortment = "" }, want: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := eligibleProduct()
			tc.mutate(&p)
			require.Equal(t, tc.want, Eligible(p))
		})
	}
}

func TestExcludedProductsNeverGrouped(t *testing.T) {
	t.Parallel()

	// Exclusion applies regardless of how attractive the category is.
	categories := []string{"Öl", "Röda viner", "Sprit", "Cider och blanddrycker", ""}
	var products []Product
	for _, c := range categories {
		p := eligibleProduct()
		p.Category = c
		p.IsCompletelyOutOfStock = true
		products = append(products, p)
	}
	groups := Categorize(products)
	require.Zero(t, groups.Len())
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		category    string
		subCategory string
		want        Group
	}{
		{name: "red wine", category: "Röda viner", want: GroupWine},
		{name: "white wine", category: "Vita viner", want: GroupWine},
		{name: "sparkling wine", category: "Mousserande viner", want: GroupWine},
		{name: "rose wine", category: "Roséviner", want: GroupWine},
		{name: "aperitif", category: "Aperitif & dessert", want: GroupWine},
		{name: "beer", category: "Öl", want: GroupBeer},
		{name: "cider", category: "Cider och blanddrycker", subCategory: "Cider", want: GroupCider},
		{name: "mixed drink", category: "Cider och blanddrycker", subCategory: "Blanddrycker", want: GroupOther},
		{name: "mixed drink without subcategory", category: "Cider och blanddrycker", want: GroupOther},
		{name: "liquor", category: "Sprit", want: GroupLiquor},
		{name: "unknown category", category: "Presentartiklar", want: GroupOther},
		{name: "missing category", want: GroupOther},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := eligibleProduct()
			p.Category = tc.category
			p.SubCategory = tc.subCategory
			require.Equal(t, tc.want, Classify(p))
		})
	}
}

func TestCategorizeEveryEligibleProductInExactlyOneGroup(t *testing.T) {
	t.Parallel()

	var products []Product
	for i, category := range []string{"Öl", "Röda viner", "Sprit", "Cider och blanddrycker", "Okänd", ""} {
		p := eligibleProduct()
		p.ID = string(rune('a' + i))
		p.Category = category
		products = append(products, p)
	}
	groups := Categorize(products)

	require.Equal(t, len(products), groups.Len())

	seen := map[string]int{}
	for _, g := range [][]Product{groups.Beer, groups.Wine, groups.Cider, groups.Liquor, groups.Other} {
		for _, p := range g {
			seen[p.ID]++
		}
	}
	for id, n := range seen {
		require.Equalf(t, 1, n, "product %s appeared in %d groups", id, n)
	}
}

func TestCategorizeEndToEndScenario(t *testing.T) {
	t.Parallel()

	beer := Product{ID: "beer", Category: "Öl", AlcoholPercentage: 5, Volume: 50, Price: 50}
	wine := Product{ID: "wine", Category: "Röda viner", AlcoholPercentage: 10, Volume: 75, Price: 75}
	gone := Product{ID: "gone", Category: "Röda viner", AlcoholPercentage: 20, Volume: 75, Price: 75, IsCompletelyOutOfStock: true}
	liquor := Product{ID: "liquor", Category: "Sprit", AlcoholPercentage: 1, Volume: 70, Price: 70}

	groups := Categorize([]Product{beer, wine, gone, liquor})
	groups.Rank()

	require.Len(t, groups.Beer, 1)
	require.Equal(t, "beer", groups.Beer[0].ID)
	require.Len(t, groups.Wine, 1)
	require.Equal(t, "wine", groups.Wine[0].ID)
	require.Empty(t, groups.Cider)
	require.Len(t, groups.Liquor, 1)
	require.Equal(t, "liquor", groups.Liquor[0].ID)
	require.Empty(t, groups.Other)
}

func TestGroupDisplayNames(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Öl", GroupBeer.DisplayName())
	require.Equal(t, "Vin", GroupWine.DisplayName())
	require.Equal(t, "Cider", GroupCider.DisplayName())
	require.Equal(t, "Sprit", GroupLiquor.DisplayName())
	require.Equal(t, "Annat", GroupOther.DisplayName())
}
