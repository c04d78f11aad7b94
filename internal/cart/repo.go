package cart

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
)

// ErrNoCart is returned when the user has no buyer row and therefore no cart.
var ErrNoCart = errors.New("cart not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CartIDForUser(ctx context.Context, userID string) (string, error) {
	var buyer models.Buyer
	err := r.db.WithContext(ctx).Select("cart_id").First(&buyer, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNoCart
	}
	if err != nil {
		return "", err
	}
	return buyer.CartID, nil
}

const cartItemsRoutineSQL = `
SELECT bar_code, variation_name, quantity, product_name, price, stock, image_url
FROM usp_get_cart_items(CAST(? AS TEXT))`

func (r *Repository) ItemsViaRoutine(ctx context.Context, cartID string) ([]Item, error) {
	var rows []Item
	err := r.db.WithContext(ctx).Raw(cartItemsRoutineSQL, cartID).Scan(&rows).Error
	return rows, err
}

// ItemsFallback mirrors usp_get_cart_items.
func (r *Repository) ItemsFallback(ctx context.Context, cartID string) ([]Item, error) {
	var rows []Item
	err := r.db.WithContext(ctx).Raw(`
SELECT ci.bar_code AS bar_code, ci.variation_name AS variation_name, ci.quantity AS quantity,
       p.name AS product_name, v.price AS price, v.stock AS stock,
       (SELECT MIN(im.image_url) FROM images im WHERE im.bar_code = ci.bar_code) AS image_url
FROM cart_items ci
JOIN variations v ON v.bar_code = ci.bar_code AND v.name = ci.variation_name
JOIN product_skus p ON p.bar_code = ci.bar_code
WHERE ci.cart_id = ?
ORDER BY p.name ASC, ci.variation_name ASC`, cartID).Scan(&rows).Error
	return rows, err
}

// AddItem inserts the line or, when it already exists, adds to its quantity.
func (r *Repository) AddItem(ctx context.Context, item models.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "bar_code"}, {Name: "variation_name"}},
			DoUpdates: clause.Set{{
				Column: clause.Column{Name: "quantity"},
				Value:  gorm.Expr("cart_items.quantity + excluded.quantity"),
			}},
		}).
		Create(&item).Error
}

// RemoveItem reports whether a line was deleted.
func (r *Repository) RemoveItem(ctx context.Context, cartID, barCode, variationName string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND bar_code = ? AND variation_name = ?", cartID, barCode, variationName).
		Delete(&models.CartItem{})
	return res.RowsAffected > 0, res.Error
}
