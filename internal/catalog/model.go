package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ExtraOption is a purchasable customisation attached to a product. The set
// stored on the product is authoritative: extras submitted at checkout are
// validated against it by name.
type ExtraOption struct {
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description,omitempty"`
}

// Product is the catalogue truth record. Weighed products derive their price
// from the live silver rate; Price is the flat fallback for legacy products
// without a weight.
type Product struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Description   string        `json:"description,omitempty"`
	Price         int64         `json:"price"`
	WeightGrams   float64       `json:"weightGrams"`
	MakingCharges float64       `json:"makingCharges"`
	StockQuantity int32         `json:"stockQuantity"`
	HotDeal       bool          `json:"hotDeal"`
	ExtraOptions  []ExtraOption `json:"extraOptions"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// ExtraByName looks up an extra option by its exact name.
func (p Product) ExtraByName(name string) (ExtraOption, bool) {
	for _, opt := range p.ExtraOptions {
		if opt.Name == name {
			return opt, true
		}
	}
	return ExtraOption{}, false
}

// AdminPatch carries the fields an admin may change on a product. Price is
// deliberately absent: it is always derived, never set directly.
type AdminPatch struct {
	StockQuantity *int32
	WeightGrams   *float64
	MakingCharges *float64
	HotDeal       *bool
}

// Empty reports whether the patch changes nothing.
func (p AdminPatch) Empty() bool {
	return p.StockQuantity == nil && p.WeightGrams == nil && p.MakingCharges == nil && p.HotDeal == nil
}
