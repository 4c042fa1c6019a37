// Package catalog models Systembolaget products and computes the APK
// (alcohol per krona) value metric used to rank them.
package catalog

import "math"

// Taxonomy labels used by the product API.
const (
	categoryRedWine       = "Röda viner"
	categoryWhiteWine     = "Vita viner"
	categorySparklingWine = "Mousserande viner"
	categoryRoseWine      = "Roséviner"
	categoryAperitif      = "Aperitif & dessert"
	categoryBeer          = "Öl"
	categoryCiderMixed    = "Cider och blanddrycker"
	categoryLiquor        = "Sprit"

	subCategoryCider = "Cider"

	// fallbackCategory stands in for a missing category or sub-category.
	// It never matches a taxonomy label, so such products land in Other.
	fallbackCategory = "Other"
)

// Assortment codes whose products never appear on the page.
const (
	assortmentOrderRange = "BS"
	assortmentTemporary  = "TSLS"
)

// Product is one catalog entry. Category, SubCategory and Assortment may be
// empty; the numeric fields are mandatory and validated by the client at
// decode time.
type Product struct {
	ID                     string
	Name                   string
	Producer               string
	Country                string
	Category               string
	SubCategory            string
	Assortment             string
	AlcoholPercentage      float64
	Volume                 float64
	Price                  float64
	RecycleFee             float64
	IsCompletelyOutOfStock bool
}

// Score returns the APK value metric: alcohol percentage times volume
// divided by the total price including the recycle fee. A product whose
// price plus fee is zero scores zero and therefore ranks last.
func (p Product) Score() float64 {
	total := p.Price + p.RecycleFee
	if total == 0 {
		return 0
	}
	return p.AlcoholPercentage * p.Volume / total
}

// BasenPrice estimates the bar price for the product: a 25% markup rounded
// up to the nearest 5 kr.
func (p Product) BasenPrice() float64 {
	return math.Ceil(p.Price*1.25/5) * 5
}

// BasenScore is the value metric with the estimated bar price in place of
// the alcohol percentage, showing how much bar value a krona buys.
func (p Product) BasenScore() float64 {
	total := p.Price + p.RecycleFee
	if total == 0 {
		return 0
	}
	return p.BasenPrice() * p.Volume / total
}
