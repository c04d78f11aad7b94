package product

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
)

// Repository persists SKUs together with their variations, images and category link.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// orderColumns is the allow-list of sortable listing columns.
var orderColumns = map[string]string{
	"BarCode":            "p.bar_code",
	"Name":               "p.name",
	"Manufacturing_date": "p.manufacturing_date",
	"Expired_date":       "p.expired_date",
}

func orderClause(orderBy, order string) string {
	col, ok := orderColumns[orderBy]
	if !ok {
		col = orderColumns[defaultOrderBy]
	}
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(order), "ASC") {
		dir = "ASC"
	}
	if col == "p.bar_code" {
		return col + " " + dir
	}
	return col + " " + dir + ", p.bar_code ASC"
}

// ListBySeller applies filters, the allow-listed ordering and offset pagination.
func (r *Repository) ListBySeller(ctx context.Context, sellerID string, f ListFilters) ([]SellerListItem, error) {
	where := []string{"p.seller_id = ?"}
	args := []any{sellerID}

	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		where = append(where, "(LOWER(p.name) LIKE ? OR LOWER(p.bar_code) LIKE ?)")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}

	var variationConds []string
	if f.MinPrice != nil {
		variationConds = append(variationConds, "v.price >= ?")
		args = append(args, f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		variationConds = append(variationConds, "v.price <= ?")
		args = append(args, f.MaxPrice.String())
	}
	if size := strings.TrimSpace(f.Size); size != "" {
		variationConds = append(variationConds, "v.size = ?")
		args = append(args, size)
	}
	if color := strings.TrimSpace(f.Color); color != "" {
		variationConds = append(variationConds, "v.color = ?")
		args = append(args, color)
	}
	if len(variationConds) > 0 {
		where = append(where, "EXISTS (SELECT 1 FROM variations v WHERE v.bar_code = p.bar_code AND "+strings.Join(variationConds, " AND ")+")")
	}

	if category := strings.TrimSpace(f.Category); category != "" {
		where = append(where, "EXISTS (SELECT 1 FROM belongs_to b WHERE b.bar_code = p.bar_code AND b.category_name = ?)")
		args = append(args, category)
	}
	switch f.Stock {
	case StockIn:
		where = append(where, "EXISTS (SELECT 1 FROM variations v WHERE v.bar_code = p.bar_code AND v.stock > 0)")
	case StockOut:
		// Out of stock when any variation is empty or none has stock left.
		where = append(where, "(EXISTS (SELECT 1 FROM variations v WHERE v.bar_code = p.bar_code AND v.stock = 0)"+
			" OR NOT EXISTS (SELECT 1 FROM variations v WHERE v.bar_code = p.bar_code AND v.stock > 0))")
	}
	switch f.HasImages {
	case ImagesWith:
		where = append(where, "EXISTS (SELECT 1 FROM images im WHERE im.bar_code = p.bar_code)")
	case ImagesWithout:
		where = append(where, "NOT EXISTS (SELECT 1 FROM images im WHERE im.bar_code = p.bar_code)")
	}

	page := f.Page.Normalize()
	args = append(args, page.Limit, page.Offset)

	query := `
SELECT p.bar_code AS bar_code, p.name AS name, p.manufacturing_date AS manufacturing_date,
       p.expired_date AS expired_date, p.description AS description, p.seller_id AS seller_id,
       (SELECT MIN(im.image_url) FROM images im WHERE im.bar_code = p.bar_code) AS image_url
FROM product_skus p
WHERE ` + strings.Join(where, " AND ") + `
ORDER BY ` + orderClause(f.OrderBy, f.Order) + `
LIMIT ? OFFSET ?`

	var rows []SellerListItem
	err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	return rows, err
}

// Find loads a SKU; an empty sellerID skips the ownership filter.
func (r *Repository) Find(ctx context.Context, sellerID, barCode string) (*models.ProductSKU, error) {
	q := r.db.WithContext(ctx).Where("bar_code = ?", barCode)
	if sellerID != "" {
		q = q.Where("seller_id = ?", sellerID)
	}
	var sku models.ProductSKU
	if err := q.First(&sku).Error; err != nil {
		return nil, err
	}
	return &sku, nil
}

// The detail lookups below degrade to empty results on a partially migrated
// schema so a product page still renders.

func (r *Repository) Variations(ctx context.Context, barCode string) ([]models.Variation, error) {
	var rows []models.Variation
	err := r.db.WithContext(ctx).Where("bar_code = ?", barCode).Order("name ASC").Find(&rows).Error
	if db.IsUndefinedRelation(err) {
		return []models.Variation{}, nil
	}
	return rows, err
}

func (r *Repository) Category(ctx context.Context, barCode string) (*string, error) {
	var links []models.BelongsTo
	err := r.db.WithContext(ctx).Where("bar_code = ?", barCode).Order("category_name ASC").Limit(1).Find(&links).Error
	if db.IsUndefinedRelation(err) {
		return nil, nil
	}
	if err != nil || len(links) == 0 {
		return nil, err
	}
	return &links[0].CategoryName, nil
}

func (r *Repository) Images(ctx context.Context, barCode string) ([]string, error) {
	var urls []string
	err := r.db.WithContext(ctx).Model(&models.Image{}).Where("bar_code = ?", barCode).Order("image_url ASC").Pluck("image_url", &urls).Error
	if db.IsUndefinedRelation(err) {
		return []string{}, nil
	}
	return urls, err
}

func (r *Repository) InsertProduct(ctx context.Context, sku *models.ProductSKU) error {
	return r.db.WithContext(ctx).Create(sku).Error
}

// ReplaceVariations deletes every variation of the SKU and inserts the new set.
func (r *Repository) ReplaceVariations(ctx context.Context, barCode string, variations []models.Variation) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("bar_code = ?", barCode).Delete(&models.Variation{}).Error; err != nil {
		return err
	}
	if len(variations) == 0 {
		return nil
	}
	return tx.Create(&variations).Error
}

// ReplaceCategory links the SKU to exactly one category, creating the category if needed.
func (r *Repository) ReplaceCategory(ctx context.Context, barCode, category string) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Category{Name: category}).Error; err != nil {
		return err
	}
	if err := r.ClearCategory(ctx, barCode); err != nil {
		return err
	}
	return tx.Create(&models.BelongsTo{CategoryName: category, BarCode: barCode}).Error
}

func (r *Repository) ClearCategory(ctx context.Context, barCode string) error {
	return r.db.WithContext(ctx).Where("bar_code = ?", barCode).Delete(&models.BelongsTo{}).Error
}

// UpdateProduct reports how many of the seller's rows matched.
func (r *Repository) UpdateProduct(ctx context.Context, sellerID, barCode string, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ProductSKU{}).
		Where("bar_code = ? AND seller_id = ?", barCode, sellerID).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *Repository) Owns(ctx context.Context, sellerID, barCode string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ProductSKU{}).Where("bar_code = ? AND seller_id = ?", barCode, sellerID).Count(&n).Error
	return n > 0, err
}

func (r *Repository) Delete(ctx context.Context, sellerID, barCode string) (bool, error) {
	res := r.db.WithContext(ctx).Where("bar_code = ? AND seller_id = ?", barCode, sellerID).Delete(&models.ProductSKU{})
	return res.RowsAffected > 0, res.Error
}

const summarySelect = `
SELECT p.bar_code AS bar_code, p.name AS product_name, p.avg_rating AS avg_rating,
       (SELECT MIN(v.price) FROM variations v WHERE v.bar_code = p.bar_code) AS price,
       (SELECT MIN(im.image_url) FROM images im WHERE im.bar_code = p.bar_code) AS image
FROM product_skus p`

func (r *Repository) summaries(ctx context.Context, where string, args ...any) ([]SummaryDTO, error) {
	query := summarySelect
	if where != "" {
		query += "\n" + where
	}
	query += "\nORDER BY p.name ASC, p.bar_code ASC"

	var rows []summaryRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]SummaryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDTO())
	}
	return out, nil
}

func (r *Repository) All(ctx context.Context) ([]SummaryDTO, error) {
	return r.summaries(ctx, "")
}

func (r *Repository) SearchByName(ctx context.Context, name string) ([]SummaryDTO, error) {
	return r.summaries(ctx, "WHERE LOWER(p.name) LIKE ?", "%"+strings.ToLower(name)+"%")
}

func (r *Repository) ByCategory(ctx context.Context, category string) ([]SummaryDTO, error) {
	return r.summaries(ctx, "JOIN belongs_to b ON b.bar_code = p.bar_code\nWHERE b.category_name = ?", category)
}

func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&models.Category{}).Order("name ASC").Pluck("name", &names).Error
	return names, err
}
