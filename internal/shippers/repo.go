package shippers

import (
	"context"

	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Find(ctx context.Context, id string) (*models.Shipper, error) {
	var shipper models.Shipper
	if err := r.db.WithContext(ctx).First(&shipper, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shipper, nil
}

// Update applies column updates and reports whether the shipper row exists.
func (r *Repository) Update(ctx context.Context, id string, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Shipper{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected > 0, res.Error
}
