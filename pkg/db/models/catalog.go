package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductSKU is a sellable product identified by its barcode.
type ProductSKU struct {
	BarCode           string          `gorm:"column:bar_code;primaryKey"`
	Name              string          `gorm:"column:name;not null"`
	ManufacturingDate *time.Time      `gorm:"column:manufacturing_date"`
	ExpiredDate       *time.Time      `gorm:"column:expired_date"`
	Description       *string         `gorm:"column:description"`
	SellerID          string          `gorm:"column:seller_id;not null;index"`
	AvgRating         decimal.Decimal `gorm:"column:avg_rating;type:numeric(3,2);not null;default:0"`
}

func (ProductSKU) TableName() string { return "product_skus" }

// Variation is a purchasable option of a SKU with its own price and stock.
type Variation struct {
	BarCode string          `gorm:"column:bar_code;primaryKey"`
	Name    string          `gorm:"column:name;primaryKey"`
	Price   decimal.Decimal `gorm:"column:price;type:numeric(18,2);not null"`
	Stock   int             `gorm:"column:stock;not null;default:0"`
	Size    *string         `gorm:"column:size"`
	Color   *string         `gorm:"column:color"`
}

func (Variation) TableName() string { return "variations" }

type Image struct {
	BarCode  string `gorm:"column:bar_code;primaryKey"`
	ImageURL string `gorm:"column:image_url;primaryKey"`
}

func (Image) TableName() string { return "images" }

type Category struct {
	Name string `gorm:"column:name;primaryKey"`
}

func (Category) TableName() string { return "categories" }

// BelongsTo links a SKU to a category.
type BelongsTo struct {
	CategoryName string `gorm:"column:category_name;primaryKey"`
	BarCode      string `gorm:"column:bar_code;primaryKey"`
}

func (BelongsTo) TableName() string { return "belongs_to" }

type Cart struct {
	ID        string    `gorm:"column:id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Cart) TableName() string { return "carts" }

type CartItem struct {
	CartID        string `gorm:"column:cart_id;primaryKey"`
	BarCode       string `gorm:"column:bar_code;primaryKey"`
	VariationName string `gorm:"column:variation_name;primaryKey"`
	Quantity      int    `gorm:"column:quantity;not null"`
}

func (CartItem) TableName() string { return "cart_items" }
