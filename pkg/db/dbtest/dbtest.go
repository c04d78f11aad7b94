// Package dbtest opens throwaway SQLite databases carrying the full storefront
// schema, plus a handful of seed helpers shared by repository tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/storefrontlabs/storefront-backend/pkg/db"
	"github.com/storefrontlabs/storefront-backend/pkg/db/models"
	"github.com/storefrontlabs/storefront-backend/pkg/migrate"
)

// Open returns a db.Client over a private in-memory SQLite database. A single
// connection is used so the transaction and the pool never race each other.
func Open(t testing.TB) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.ApplyLite(context.Background(), conn); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db.NewFromGorm(conn)
}

// Role names accepted by SeedUser.
const (
	RoleBuyer   = "buyer"
	RoleSeller  = "seller"
	RoleShipper = "shipper"
	RoleAdmin   = "admin"
)

// SeedUser inserts a user plus one row per requested role table. Buyers get a cart.
func SeedUser(t testing.TB, conn *gorm.DB, id string, roles ...string) models.User {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        id + "@example.com",
		Username:     id,
		FullName:     "User " + id,
		PasswordHash: "x",
		Rank:         "Bronze",
		CreatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	must(t, conn.Create(&user).Error)
	for _, role := range roles {
		switch role {
		case RoleBuyer:
			cartID := "cart-" + id
			must(t, conn.Create(&models.Cart{ID: cartID}).Error)
			must(t, conn.Create(&models.Buyer{ID: id, CartID: cartID}).Error)
		case RoleSeller:
			must(t, conn.Create(&models.Seller{ID: id}).Error)
		case RoleShipper:
			must(t, conn.Create(&models.Shipper{ID: id}).Error)
		case RoleAdmin:
			must(t, conn.Create(&models.Admin{ID: id}).Error)
		default:
			t.Fatalf("unknown role %q", role)
		}
	}
	return user
}

// SeedProduct inserts a SKU owned by sellerID with a single variation.
func SeedProduct(t testing.TB, conn *gorm.DB, sellerID, barCode, name, variation, price string) {
	t.Helper()
	must(t, conn.Create(&models.ProductSKU{BarCode: barCode, Name: name, SellerID: sellerID}).Error)
	SeedVariation(t, conn, barCode, variation, price, 100)
}

func SeedVariation(t testing.TB, conn *gorm.DB, barCode, name, price string, stock int) {
	t.Helper()
	must(t, conn.Create(&models.Variation{
		BarCode: barCode,
		Name:    name,
		Price:   decimal.RequireFromString(price),
		Stock:   stock,
	}).Error)
}

// Item describes one order line for SeedOrder.
type Item struct {
	ID        string
	BarCode   string
	Variation string
	Quantity  int
	Price     string
}

// SeedOrder inserts an order header and its items in one go.
func SeedOrder(t testing.TB, conn *gorm.DB, id, buyerID, status string, createdAt time.Time, items ...Item) {
	t.Helper()
	must(t, conn.Create(&models.Order{
		ID:        id,
		BuyerID:   buyerID,
		Address:   "1 Main St",
		Status:    status,
		CreatedAt: createdAt.UTC(),
	}).Error)
	for _, it := range items {
		must(t, conn.Create(&models.OrderItem{
			ID:            it.ID,
			OrderID:       id,
			BarCode:       it.BarCode,
			VariationName: it.Variation,
			Quantity:      it.Quantity,
			Price:         decimal.RequireFromString(it.Price),
		}).Error)
	}
}

// SeedReview inserts a review and its purchase link.
func SeedReview(t testing.TB, conn *gorm.DB, id, userID, orderID, orderItemID string, rating int, createdAt time.Time) {
	t.Helper()
	must(t, conn.Create(&models.Review{ID: id, Rating: rating, Description: "review " + id, CreatedAt: createdAt.UTC()}).Error)
	must(t, conn.Create(&models.WriteReview{ReviewID: id, UserID: userID, OrderID: orderID, OrderItemID: orderItemID}).Error)
}

func SeedReaction(t testing.TB, conn *gorm.DB, reviewID, authorID, reactionType string) {
	t.Helper()
	now := time.Now().UTC()
	must(t, conn.Create(&models.Reaction{ReviewID: reviewID, AuthorID: authorID, Type: reactionType, CreatedAt: now, UpdatedAt: now}).Error)
}

func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}
