package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

// CreateOrderInput carries one order header plus its single line item. Quantity
// and Price arrive loosely typed from clients and are coerced by the service.
type CreateOrderInput struct {
	BuyerID       string
	Address       string
	Status        string
	Quantity      types.FlexInt
	Price         *decimal.Decimal
	BarCode       string
	VariationName string
}

// Order echoes the created header and item. Total is read back from the items
// after commit, never computed from the input.
type Order struct {
	ID            string      `json:"id"`
	Total         types.Money `json:"total"`
	Address       string      `json:"address"`
	Status        string      `json:"status"`
	BuyerID       string      `json:"buyerId"`
	OrderItemID   string      `json:"orderItemId"`
	Quantity      int         `json:"quantity"`
	Price         types.Money `json:"price"`
	BarCode       string      `json:"barcode"`
	VariationName string      `json:"variationname"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// DetailsFilter narrows the order report. Zero values mean "no filter".
type DetailsFilter struct {
	Status   string
	MinItems int
}

type OrderSummary struct {
	ID        string      `json:"id" gorm:"column:id"`
	Status    string      `json:"status" gorm:"column:status"`
	BuyerID   string      `json:"buyerId" gorm:"column:buyer_id"`
	Buyer     string      `json:"buyer" gorm:"column:buyer"`
	Address   string      `json:"address" gorm:"column:address"`
	ItemCount int64       `json:"itemCount" gorm:"column:item_count"`
	Total     types.Money `json:"total" gorm:"column:total"`
	CreatedAt time.Time   `json:"createdAt" gorm:"column:created_at"`
}

// TopSellingFilter narrows the best-seller report. An empty SellerID covers
// every seller.
type TopSellingFilter struct {
	MinQuantity int
	SellerID    string
}

type TopSellingProduct struct {
	BarCode           string `json:"barcode" gorm:"column:bar_code"`
	Name              string `json:"name" gorm:"column:name"`
	TotalQuantitySold int64  `json:"totalQuantitySold" gorm:"column:total_quantity_sold"`
}
