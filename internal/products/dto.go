package product

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/pagination"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

// ProductDTO is a SKU with its variations, category and images.
type ProductDTO struct {
	BarCode           string         `json:"barcode"`
	Name              string         `json:"name"`
	ManufacturingDate *time.Time     `json:"manufacturingDate"`
	ExpiredDate       *time.Time     `json:"expiredDate"`
	Description       *string        `json:"description"`
	SellerID          string         `json:"sellerId"`
	AvgRating         types.Money    `json:"avgRating"`
	Variations        []VariationDTO `json:"variations"`
	Category          *string        `json:"category"`
	Images            []string       `json:"images"`
}

type VariationDTO struct {
	Name  string      `json:"name"`
	Price types.Money `json:"price"`
	Stock int         `json:"stock"`
	Size  *string     `json:"size,omitempty"`
	Color *string     `json:"color,omitempty"`
}

func newVariationDTO(v models.Variation) VariationDTO {
	return VariationDTO{Name: v.Name, Price: types.NewMoney(v.Price), Stock: v.Stock, Size: v.Size, Color: v.Color}
}

// SellerListItem is one row of a seller's product listing with its first image.
type SellerListItem struct {
	BarCode           string     `json:"barcode" gorm:"column:bar_code"`
	Name              string     `json:"name" gorm:"column:name"`
	ManufacturingDate *time.Time `json:"manufacturingDate" gorm:"column:manufacturing_date"`
	ExpiredDate       *time.Time `json:"expiredDate" gorm:"column:expired_date"`
	Description       *string    `json:"description" gorm:"column:description"`
	SellerID          string     `json:"sellerId" gorm:"column:seller_id"`
	ImageURL          *string    `json:"imageUrl" gorm:"column:image_url"`
}

// SummaryDTO is the public catalog card: cheapest variation price and one image.
type SummaryDTO struct {
	BarCode     string       `json:"barcode"`
	ProductName string       `json:"productName"`
	AvgRating   types.Money  `json:"avgRating"`
	Price       *types.Money `json:"price"`
	Image       *string      `json:"image"`
}

type summaryRow struct {
	BarCode     string              `gorm:"column:bar_code"`
	ProductName string              `gorm:"column:product_name"`
	AvgRating   decimal.NullDecimal `gorm:"column:avg_rating"`
	Price       decimal.NullDecimal `gorm:"column:price"`
	Image       *string             `gorm:"column:image"`
}

func (r summaryRow) toDTO() SummaryDTO {
	out := SummaryDTO{BarCode: r.BarCode, ProductName: r.ProductName, Image: r.Image}
	if r.AvgRating.Valid {
		out.AvgRating = types.NewMoney(r.AvgRating.Decimal)
	}
	if r.Price.Valid {
		price := types.NewMoney(r.Price.Decimal)
		out.Price = &price
	}
	return out
}

// Stock and image filter values accepted by ListFilters.
const (
	StockIn        = "in"
	StockOut       = "out"
	ImagesWith     = "with"
	ImagesWithout  = "without"
	defaultOrderBy = "BarCode"
)

// ListFilters narrows a seller listing. Price, size and color match when any
// single variation satisfies all of them.
type ListFilters struct {
	Search    string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Size      string
	Color     string
	Category  string
	Stock     string
	HasImages string
	OrderBy   string
	Order     string
	Page      pagination.Params
}

// VariationInput is one entry of a variation replace set.
type VariationInput struct {
	Name  string          `json:"name" validate:"required"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" validate:"gte=0"`
	Size  *string         `json:"size"`
	Color *string         `json:"color"`
}

type CreateInput struct {
	BarCode           string
	Name              string
	ManufacturingDate *time.Time
	ExpiredDate       *time.Time
	Description       *string
	Variations        []VariationInput
	Category          *string
}

// UpdateInput applies only the fields that are set. Category as an explicit
// null removes the product's category link.
type UpdateInput struct {
	Name              *string
	ManufacturingDate types.Nullable[time.Time]
	ExpiredDate       types.Nullable[time.Time]
	Description       types.Nullable[string]
	Variations        []VariationInput
	Category          types.Nullable[string]
}

func (in UpdateInput) baseUpdates() map[string]any {
	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.ManufacturingDate.Valid {
		updates["manufacturing_date"] = in.ManufacturingDate.Value
	}
	if in.ExpiredDate.Valid {
		updates["expired_date"] = in.ExpiredDate.Value
	}
	if in.Description.Valid {
		updates["description"] = in.Description.Value
	}
	return updates
}

func (in UpdateInput) isEmpty() bool {
	return len(in.baseUpdates()) == 0 && len(in.Variations) == 0 && !in.Category.Valid
}
