package reviews

import (
	"time"

	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

// CreateReviewInput ties a review to one purchased order item.
type CreateReviewInput struct {
	OrderID     string
	OrderItemID string
	UserID      string
	Rating      types.FlexInt
	Content     string
}

// Review is the freshly created review as returned to its author.
type Review struct {
	ID           string    `json:"id"`
	Rating       int       `json:"rating"`
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	Description  string    `json:"description"`
	HelpfulCount int64     `json:"helpfulCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProductReview is one row of a product's review listing.
type ProductReview struct {
	ID            string    `json:"id" gorm:"column:id"`
	Rating        int       `json:"rating" gorm:"column:rating"`
	Description   string    `json:"description" gorm:"column:description"`
	CreatedAt     time.Time `json:"createdAt" gorm:"column:created_at"`
	UserID        string    `json:"userId" gorm:"column:user_id"`
	Username      string    `json:"username" gorm:"column:username"`
	HelpfulCount  int64     `json:"helpfulCount" gorm:"column:helpful_count"`
	OrderID       string    `json:"orderId" gorm:"column:order_id"`
	OrderItemID   string    `json:"orderItemId" gorm:"column:order_item_id"`
	VariationName string    `json:"variationName" gorm:"column:variation_name"`
}

// ListFilter selects a product's reviews. A nil Rating lists every rating.
type ListFilter struct {
	BarCode string
	Rating  *int
	Sort    enums.ReviewSort
}

// PurchasedItem is a delivered or completed purchase the buyer has not reviewed yet.
type PurchasedItem struct {
	OrderID       string      `json:"orderId" gorm:"column:order_id"`
	OrderItemID   string      `json:"orderItemId" gorm:"column:order_item_id"`
	ProductID     string      `json:"productId" gorm:"column:product_id"`
	ProductName   string      `json:"productName" gorm:"column:product_name"`
	VariationName string      `json:"variationName" gorm:"column:variation_name"`
	Price         types.Money `json:"price" gorm:"column:price"`
	PurchaseDate  time.Time   `json:"purchaseDate" gorm:"column:purchase_date"`
	ProductImage  *string     `json:"productImage" gorm:"column:product_image"`
}

// ReactionSummary is what reaction endpoints answer with.
type ReactionSummary struct {
	ID           string    `json:"id" gorm:"column:id"`
	Rating       int       `json:"rating" gorm:"column:rating"`
	HelpfulCount int64     `json:"helpfulCount" gorm:"column:helpful_count"`
	CreatedAt    time.Time `json:"createdAt" gorm:"column:created_at"`
}

type SimpleProduct struct {
	BarCode string `json:"barcode" gorm:"column:bar_code"`
	Name    string `json:"name" gorm:"column:name"`
}
