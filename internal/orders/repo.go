package orders

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	"github.com/storefrontlabs/storefront-backend/pkg/types"
)

// Repository reads and writes orders and their items.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) InsertOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *Repository) InsertItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Total sums quantity*price over the order's items; an order without items totals zero.
func (r *Repository) Total(ctx context.Context, orderID string) (types.Money, error) {
	var row struct {
		Total types.Money `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).
		Raw(`SELECT COALESCE(SUM(quantity * price), 0) AS total FROM order_items WHERE order_id = ?`, orderID).
		Scan(&row).Error
	return row.Total, err
}

const orderDetailsRoutineSQL = `
SELECT id, status, buyer_id, buyer, address, item_count, total, created_at
FROM usp_get_order_details(CAST(? AS TEXT), CAST(? AS INTEGER))`

func (r *Repository) OrderDetailsViaRoutine(ctx context.Context, f DetailsFilter) ([]OrderSummary, error) {
	var rows []OrderSummary
	err := r.db.WithContext(ctx).Raw(orderDetailsRoutineSQL, nullIfEmpty(f.Status), f.MinItems).Scan(&rows).Error
	return rows, err
}

// OrderDetailsFallback mirrors usp_get_order_details with inline SQL.
func (r *Repository) OrderDetailsFallback(ctx context.Context, f DetailsFilter) ([]OrderSummary, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`
SELECT o.id AS id, o.status AS status, o.buyer_id AS buyer_id, u.full_name AS buyer, o.address AS address,
       COUNT(oi.id) AS item_count, COALESCE(SUM(oi.quantity * oi.price), 0) AS total, o.created_at AS created_at
FROM orders o
JOIN users u ON u.id = o.buyer_id
LEFT JOIN order_items oi ON oi.order_id = o.id`)
	if status := strings.TrimSpace(f.Status); status != "" {
		sb.WriteString(`
WHERE o.status = ?`)
		args = append(args, status)
	}
	sb.WriteString(`
GROUP BY o.id, o.status, o.buyer_id, u.full_name, o.address, o.created_at
HAVING COUNT(oi.id) >= ?
ORDER BY o.created_at DESC, o.id DESC`)
	args = append(args, f.MinItems)

	var rows []OrderSummary
	err := r.db.WithContext(ctx).Raw(sb.String(), args...).Scan(&rows).Error
	return rows, err
}

const topSellingRoutineSQL = `
SELECT bar_code, name, total_quantity_sold
FROM usp_get_top_selling_products(CAST(? AS INTEGER), CAST(? AS TEXT))`

func (r *Repository) TopSellingViaRoutine(ctx context.Context, f TopSellingFilter) ([]TopSellingProduct, error) {
	var rows []TopSellingProduct
	err := r.db.WithContext(ctx).Raw(topSellingRoutineSQL, f.MinQuantity, nullIfEmpty(f.SellerID)).Scan(&rows).Error
	return rows, err
}

// TopSellingFallback mirrors usp_get_top_selling_products. Only delivered or
// completed orders count as sales.
func (r *Repository) TopSellingFallback(ctx context.Context, f TopSellingFilter) ([]TopSellingProduct, error) {
	var sb strings.Builder
	args := []any{enums.SaleStatuses()}
	sb.WriteString(`
SELECT p.bar_code AS bar_code, p.name AS name, SUM(oi.quantity) AS total_quantity_sold
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
JOIN product_skus p ON p.bar_code = oi.bar_code
WHERE o.status IN ?`)
	if seller := strings.TrimSpace(f.SellerID); seller != "" {
		sb.WriteString(` AND p.seller_id = ?`)
		args = append(args, seller)
	}
	sb.WriteString(`
GROUP BY p.bar_code, p.name
HAVING SUM(oi.quantity) >= ?
ORDER BY total_quantity_sold DESC, p.bar_code ASC`)
	args = append(args, f.MinQuantity)

	var rows []TopSellingProduct
	err := r.db.WithContext(ctx).Raw(sb.String(), args...).Scan(&rows).Error
	return rows, err
}

func nullIfEmpty(s string) any {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return s
}
