package entities

import "time"

// Salt is one active ingredient of a product, in its listed position
type Salt struct {
	Name     string `json:"salt_name" db:"salt_name"`
	Position int    `json:"salt_pos" db:"salt_pos"`
}

// Product represents a branded drug product from the commercial catalog.
// SaltSignature is computed offline by the signature backfill and is nil
// until every read of the product's ingredients has been attempted.
type Product struct {
	ID            int64     `json:"id" db:"id"`
	BrandName     string    `json:"brand_name" db:"brand_name"`
	Strength      string    `json:"strength" db:"strength"`
	DosageForm    string    `json:"dosage_form" db:"dosage_form"`
	Pack          string    `json:"pack" db:"pack"`
	MRPInr        *float64  `json:"mrp_inr" db:"mrp_inr"`
	Manufacturer  string    `json:"manufacturer" db:"manufacturer"`
	Discontinued  bool      `json:"discontinued" db:"discontinued"`
	RxCUIs        []string  `json:"rxcuis" db:"rxcuis"`
	SaltSignature *string   `json:"salt_signature" db:"salt_signature"`
	Salts         []Salt    `json:"salts" db:"-"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// GenericListing is a row from the government generic-drug scheme
type GenericListing struct {
	ID            int64    `json:"id" db:"id"`
	GenericName   string   `json:"generic_name" db:"generic_name"`
	Strength      string   `json:"strength" db:"strength"`
	DosageForm    string   `json:"dosage_form" db:"dosage_form"`
	Pack          string   `json:"pack" db:"pack"`
	MRPInr        *float64 `json:"mrp_inr" db:"mrp_inr"`
	SaltSignature *string  `json:"salt_signature" db:"salt_signature"`
}

// PriceCeiling is a row from the price-ceiling register. SaltSignature is
// independently computed and frequently absent; unassigned rows are matched
// by generic-name token sets instead.
type PriceCeiling struct {
	ID              int64    `json:"id" db:"id"`
	GenericName     string   `json:"generic_name" db:"generic_name"`
	Strength        string   `json:"strength" db:"strength"`
	DosageForm      string   `json:"dosage_form" db:"dosage_form"`
	CeilingPriceInr *float64 `json:"ceiling_price_inr" db:"ceiling_price_inr"`
	SaltSignature   *string  `json:"salt_signature" db:"salt_signature"`
}
