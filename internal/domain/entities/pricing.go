package entities

import "sort"

// PriceSummary summarizes the union of brand and generic-listing prices for
// a signature. Quartiles are computed by sorted-index truncation, not
// statistical interpolation, so repeated runs over the same rows always
// produce identical values.
type PriceSummary struct {
	Min          float64  `json:"min_price"`
	Q1           float64  `json:"q1"`
	Median       float64  `json:"median"`
	Q3           float64  `json:"q3"`
	Max          float64  `json:"max_price"`
	Count        int      `json:"count"`
	BrandCount   int      `json:"n_brands"`
	GenericCount int      `json:"n_generic"`
	Ceiling      *float64 `json:"ceiling_price"`
}

// Alternatives is the signature-joined view across the three datasets
type Alternatives struct {
	Signature       string            `json:"signature"`
	Brands          []*Product        `json:"brands"`
	GenericListings []*GenericListing `json:"generic_listings"`
	CeilingPrice    *float64          `json:"ceiling_price"`
	PriceSummary    *PriceSummary     `json:"price_summary"`
}

// NewPriceSummary builds a summary over brand and generic prices. It returns
// nil when no price exists in either dataset.
func NewPriceSummary(brandPrices, genericPrices []float64, ceiling *float64) *PriceSummary {
	all := make([]float64, 0, len(brandPrices)+len(genericPrices))
	all = append(all, brandPrices...)
	all = append(all, genericPrices...)
	if len(all) == 0 {
		return nil
	}

	sort.Float64s(all)
	n := len(all)

	return &PriceSummary{
		Min:          all[0],
		Q1:           all[n/4],
		Median:       all[n/2],
		Q3:           all[(3*n)/4],
		Max:          all[n-1],
		Count:        n,
		BrandCount:   len(brandPrices),
		GenericCount: len(genericPrices),
		Ceiling:      ceiling,
	}
}
