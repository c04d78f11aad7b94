package reviews

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
)

// Repository reads and writes reviews, their purchase links and reactions.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) InsertReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *Repository) InsertLink(ctx context.Context, link *models.WriteReview) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// Purchase reports whether orderID belongs to userID and whether itemID is a
// line of orderID.
func (r *Repository) Purchase(ctx context.Context, orderID, itemID, userID string) (ownsOrder, itemInOrder bool, err error) {
	var row struct {
		Owned  int64 `gorm:"column:owned"`
		InItem int64 `gorm:"column:in_order"`
	}
	err = r.db.WithContext(ctx).Raw(`
SELECT
  (SELECT COUNT(*) FROM orders WHERE id = ? AND buyer_id = ?) AS owned,
  (SELECT COUNT(*) FROM order_items WHERE id = ? AND order_id = ?) AS in_order`,
		orderID, userID, itemID, orderID).Scan(&row).Error
	return row.Owned > 0, row.InItem > 0, err
}

func (r *Repository) Username(ctx context.Context, userID string) (string, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Select("username").First(&user, "id = ?", userID).Error; err != nil {
		return "", err
	}
	return user.Username, nil
}

const reviewColumns = `
SELECT r.id AS id, r.rating AS rating, r.description AS description, r.created_at AS created_at,
       wr.user_id AS user_id, u.username AS username,
       (SELECT COUNT(*) FROM reactions rx WHERE rx.review_id = r.id AND rx.type = 'helpful') AS helpful_count,
       wr.order_id AS order_id, wr.order_item_id AS order_item_id, oi.variation_name AS variation_name
FROM reviews r
JOIN write_reviews wr ON wr.review_id = r.id
JOIN order_items oi ON oi.id = wr.order_item_id
JOIN users u ON u.id = wr.user_id`

// GetByID returns gorm.ErrRecordNotFound when no such review exists.
func (r *Repository) GetByID(ctx context.Context, id string) (*ProductReview, error) {
	var rows []ProductReview
	if err := r.db.WithContext(ctx).Raw(reviewColumns+`
WHERE r.id = ?`, id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

const productReviewsRoutineSQL = `
SELECT id, rating, description, created_at, user_id, username, helpful_count, order_id, order_item_id, variation_name
FROM usp_get_product_reviews(CAST(? AS TEXT), CAST(? AS INTEGER), CAST(? AS TEXT))`

func (r *Repository) ListViaRoutine(ctx context.Context, f ListFilter) ([]ProductReview, error) {
	var rating any
	if f.Rating != nil {
		rating = *f.Rating
	}
	var rows []ProductReview
	err := r.db.WithContext(ctx).Raw(productReviewsRoutineSQL, f.BarCode, rating, f.Sort.String()).Scan(&rows).Error
	return rows, err
}

var reviewOrderBy = map[enums.ReviewSort]string{
	enums.ReviewSortNewest:     "r.created_at DESC, r.id DESC",
	enums.ReviewSortOldest:     "r.created_at ASC, r.id DESC",
	enums.ReviewSortRatingDesc: "r.rating DESC, r.created_at DESC, r.id DESC",
	enums.ReviewSortRatingAsc:  "r.rating ASC, r.created_at DESC, r.id DESC",
	enums.ReviewSortHelpful:    "helpful_count DESC, r.created_at DESC, r.id DESC",
}

// ListFallback mirrors usp_get_product_reviews.
func (r *Repository) ListFallback(ctx context.Context, f ListFilter) ([]ProductReview, error) {
	var sb strings.Builder
	args := []any{f.BarCode}
	sb.WriteString(reviewColumns)
	sb.WriteString(`
WHERE oi.bar_code = ?`)
	if f.Rating != nil {
		sb.WriteString(` AND r.rating = ?`)
		args = append(args, *f.Rating)
	}
	orderBy, ok := reviewOrderBy[f.Sort]
	if !ok {
		orderBy = reviewOrderBy[enums.ReviewSortNewest]
	}
	sb.WriteString(`
ORDER BY ` + orderBy)

	var rows []ProductReview
	err := r.db.WithContext(ctx).Raw(sb.String(), args...).Scan(&rows).Error
	return rows, err
}

const purchasedRoutineSQL = `
SELECT order_id, order_item_id, product_id, product_name, variation_name, price, purchase_date, product_image
FROM usp_get_purchased_items_for_review(CAST(? AS TEXT))`

func (r *Repository) PurchasedViaRoutine(ctx context.Context, userID string) ([]PurchasedItem, error) {
	var rows []PurchasedItem
	err := r.db.WithContext(ctx).Raw(purchasedRoutineSQL, userID).Scan(&rows).Error
	return rows, err
}

// PurchasedFallback mirrors usp_get_purchased_items_for_review.
func (r *Repository) PurchasedFallback(ctx context.Context, userID string) ([]PurchasedItem, error) {
	var rows []PurchasedItem
	err := r.db.WithContext(ctx).Raw(`
SELECT o.id AS order_id, oi.id AS order_item_id, oi.bar_code AS product_id, COALESCE(p.name, '') AS product_name,
       oi.variation_name AS variation_name, oi.price AS price, o.created_at AS purchase_date,
       (SELECT MIN(im.image_url) FROM images im WHERE im.bar_code = oi.bar_code) AS product_image
FROM orders o
JOIN order_items oi ON oi.order_id = o.id
LEFT JOIN product_skus p ON p.bar_code = oi.bar_code
WHERE o.buyer_id = ?
  AND o.status IN ?
  AND NOT EXISTS (SELECT 1 FROM write_reviews wr WHERE wr.order_id = o.id AND wr.order_item_id = oi.id)
ORDER BY o.created_at DESC, oi.id ASC`, userID, enums.SaleStatuses()).Scan(&rows).Error
	return rows, err
}

func (r *Repository) UpsertReactionViaRoutine(ctx context.Context, reviewID string, reactionType enums.ReactionType, authorID string) error {
	return r.db.WithContext(ctx).
		Exec(`SELECT usp_reactions_upsert(CAST(? AS TEXT), CAST(? AS TEXT), CAST(? AS TEXT))`, reviewID, reactionType.String(), authorID).
		Error
}

// UpsertReactionFallback keeps one reaction per (review, author); a repeat
// overwrites the type and bumps updated_at.
func (r *Repository) UpsertReactionFallback(ctx context.Context, reviewID string, reactionType enums.ReactionType, authorID string, now time.Time) error {
	reaction := models.Reaction{
		ReviewID:  reviewID,
		AuthorID:  authorID,
		Type:      reactionType.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "review_id"}, {Name: "author_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
		}).
		Create(&reaction).Error
}

// Summary returns gorm.ErrRecordNotFound when the review does not exist.
func (r *Repository) Summary(ctx context.Context, reviewID string) (*ReactionSummary, error) {
	var rows []ReactionSummary
	err := r.db.WithContext(ctx).Raw(`
SELECT r.id AS id, r.rating AS rating, r.created_at AS created_at,
       (SELECT COUNT(*) FROM reactions rx WHERE rx.review_id = r.id AND rx.type = 'helpful') AS helpful_count
FROM reviews r
WHERE r.id = ?`, reviewID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

const productsSimpleRoutineSQL = `SELECT bar_code, name FROM usp_get_all_products_simple()`

func (r *Repository) ProductsSimpleViaRoutine(ctx context.Context) ([]SimpleProduct, error) {
	var rows []SimpleProduct
	err := r.db.WithContext(ctx).Raw(productsSimpleRoutineSQL).Scan(&rows).Error
	return rows, err
}

func (r *Repository) ProductsSimpleFallback(ctx context.Context) ([]SimpleProduct, error) {
	var rows []SimpleProduct
	err := r.db.WithContext(ctx).
		Model(&models.ProductSKU{}).
		Select("bar_code, name").
		Order("name ASC, bar_code ASC").
		Scan(&rows).Error
	return rows, err
}
