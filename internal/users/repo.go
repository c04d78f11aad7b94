package users

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/enums"
	"github.com/storefrontlabs/storefront-backend/pkg/ids"
)

// Repository exposes user and role persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByEmail matches case-insensitively; emails are stored lowercased.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

const resolveRoleSQL = `
SELECT CASE
  WHEN EXISTS (SELECT 1 FROM admins WHERE id = ?) THEN 'admin'
  WHEN EXISTS (SELECT 1 FROM sellers WHERE id = ?) THEN 'seller'
  WHEN EXISTS (SELECT 1 FROM buyers WHERE id = ?) THEN 'buyer'
  WHEN EXISTS (SELECT 1 FROM shippers WHERE id = ?) THEN 'shipper'
  ELSE 'unknown'
END AS role`

// ResolveRole derives the user's role from the role tables in a single round
// trip. A user present in several tables gets the highest-priority role.
func (r *Repository) ResolveRole(ctx context.Context, userID string) (enums.Role, error) {
	var role string
	if err := r.db.WithContext(ctx).Raw(resolveRoleSQL, userID, userID, userID, userID).Scan(&role).Error; err != nil {
		return enums.RoleUnknown, err
	}
	parsed, err := enums.ParseRole(role)
	if err != nil {
		return enums.RoleUnknown, nil
	}
	return parsed, nil
}

// PhoneNumbers lists the user's phone numbers in insertion-independent order.
func (r *Repository) PhoneNumbers(ctx context.Context, userID string) ([]string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.UserPhoneNumber{}).
		Where("user_id = ?", userID).
		Order("phone_number ASC").
		Pluck("phone_number", &numbers).Error
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

// Create inserts the user and the rows its role needs. Callers run it inside a
// transaction so a failed extension leaves no orphan user.
func (r *Repository) Create(ctx context.Context, gen ids.Generator, user *models.User, ext Extension) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(user).Error; err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if phone := strings.TrimSpace(ext.PhoneNumber); phone != "" {
		if err := db.Create(&models.UserPhoneNumber{UserID: user.ID, PhoneNumber: phone}).Error; err != nil {
			return fmt.Errorf("insert phone number: %w", err)
		}
	}

	switch ext.Role {
	case enums.RoleBuyer:
		cart := models.Cart{ID: gen.NewID()}
		if err := db.Create(&cart).Error; err != nil {
			return fmt.Errorf("insert cart: %w", err)
		}
		if err := db.Create(&models.Buyer{ID: user.ID, CartID: cart.ID}).Error; err != nil {
			return fmt.Errorf("insert buyer: %w", err)
		}
	case enums.RoleSeller:
		if err := db.Create(&models.Seller{ID: user.ID}).Error; err != nil {
			return fmt.Errorf("insert seller: %w", err)
		}
	case enums.RoleShipper:
		shipper := models.Shipper{
			ID:           user.ID,
			LicensePlate: strings.TrimSpace(ext.LicensePlate),
			Company:      strings.TrimSpace(ext.Company),
		}
		if err := db.Create(&shipper).Error; err != nil {
			return fmt.Errorf("insert shipper: %w", err)
		}
	default:
		return fmt.Errorf("role %q cannot be created here", ext.Role)
	}
	return nil
}

// UpdatePasswordHash replaces the stored hash, used when upgrading legacy hashes.
func (r *Repository) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("password_hash", hash).Error
}
