package cart

import "github.com/storefrontlabs/storefront-backend/pkg/types"

// Item is one cart line joined with its variation and product.
type Item struct {
	BarCode       string      `json:"barcode" gorm:"column:bar_code"`
	VariationName string      `json:"variationName" gorm:"column:variation_name"`
	Quantity      int         `json:"quantity" gorm:"column:quantity"`
	ProductName   string      `json:"productName" gorm:"column:product_name"`
	Price         types.Money `json:"price" gorm:"column:price"`
	Stock         int         `json:"stock" gorm:"column:stock"`
	ImageURL      *string     `json:"imageUrl" gorm:"column:image_url"`
}

// AddItemInput adds Quantity units of a variation; an omitted quantity means one.
type AddItemInput struct {
	BarCode       string
	VariationName string
	Quantity      types.FlexInt
}
