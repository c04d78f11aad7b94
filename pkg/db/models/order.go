package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the header row. Its total is never stored: it is always the sum of
// quantity*price over its items.
type Order struct {
	ID        string    `gorm:"column:id;primaryKey"`
	BuyerID   string    `gorm:"column:buyer_id;not null;index"`
	Address   string    `gorm:"column:address;not null"`
	Status    string    `gorm:"column:status;not null;default:Pending"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID            string          `gorm:"column:id;primaryKey"`
	OrderID       string          `gorm:"column:order_id;not null;index"`
	BarCode       string          `gorm:"column:bar_code;not null"`
	VariationName string          `gorm:"column:variation_name;not null"`
	Quantity      int             `gorm:"column:quantity;not null"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(18,2);not null"`
}

func (OrderItem) TableName() string { return "order_items" }

type Review struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Rating      int       `gorm:"column:rating;not null"`
	Description string    `gorm:"column:description;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Review) TableName() string { return "reviews" }

// WriteReview ties a review to the purchase that makes it legitimate.
type WriteReview struct {
	ReviewID    string `gorm:"column:review_id;primaryKey"`
	UserID      string `gorm:"column:user_id;not null;index"`
	OrderItemID string `gorm:"column:order_item_id;not null"`
	OrderID     string `gorm:"column:order_id;not null"`
}

func (WriteReview) TableName() string { return "write_reviews" }

// Reaction is keyed by (review, author); a later reaction overwrites the type.
type Reaction struct {
	ReviewID  string    `gorm:"column:review_id;primaryKey"`
	AuthorID  string    `gorm:"column:author_id;primaryKey"`
	Type      string    `gorm:"column:type;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Reaction) TableName() string { return "reactions" }
