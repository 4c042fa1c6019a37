package catalog

// Group identifies one of the five fixed sections of the rendered page.
type Group int

// Groups in display order.
const (
	GroupBeer Group = iota
	GroupWine
	GroupCider
	GroupLiquor
	GroupOther
)

// DisplayName returns the Swedish heading used on the rendered page.
func (g Group) DisplayName() string {
	switch g {
	case GroupBeer:
		return "Öl"
	case GroupWine:
		return "Vin"
	case GroupCider:
		return "Cider"
	case GroupLiquor:
		return "Sprit"
	default:
		return "Annat"
	}
}

// Groups holds the categorized product lists in display order.
type Groups struct {
	Beer   []Product
	Wine   []Product
	Cider  []Product
	Liquor []Product
	Other  []Product
}

// Len returns the total number of products across all groups.
func (g Groups) Len() int {
	return len(g.Beer) + len(g.Wine) + len(g.Cider) + len(g.Liquor) + len(g.Other)
}

// Eligible reports whether a product may appear on the page at all.
// Alcohol-free products, the order-only and temporary assortments, and
// products completely out of stock are excluded.
func Eligible(p Product) bool {
	return p.AlcoholPercentage > 0 &&
		p.Assortment != assortmentOrderRange &&
		p.Assortment != assortmentTemporary &&
		!p.IsCompletelyOutOfStock
}

// Classify maps a product to its page group. Missing category or
// sub-category labels compare as the fallback, which only ever matches the
// Other branch.
func Classify(p Product) Group {
	switch orFallback(p.Category) {
	case categoryRedWine, categoryWhiteWine, categorySparklingWine, categoryRoseWine, categoryAperitif:
		return GroupWine
	case categoryBeer:
		return GroupBeer
	case categoryCiderMixed:
		if orFallback(p.SubCategory) == subCategoryCider {
			return GroupCider
		}
		return GroupOther
	case categoryLiquor:
		return GroupLiquor
	default:
		return GroupOther
	}
}

// Categorize drops ineligible products and splits the rest into groups.
// Every eligible product lands in exactly one group, in catalog order.
func Categorize(products []Product) Groups {
	var groups Groups
	for _, p := range products {
		if !Eligible(p) {
			continue
		}
		switch Classify(p) {
		case GroupBeer:
			groups.Beer = append(groups.Beer, p)
		case GroupWine:
			groups.Wine = append(groups.Wine, p)
		case GroupCider:
			groups.Cider = append(groups.Cider, p)
		case GroupLiquor:
			groups.Liquor = append(groups.Liquor, p)
		default:
			groups.Other = append(groups.Other, p)
		}
	}
	return groups
}

func orFallback(label string) string {
	if label == "" {
		return fallbackCategory
	}
	return label
}
