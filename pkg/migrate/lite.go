package migrate

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// liteSchema mirrors the core goose migration for SQLite. Report routines are
// Postgres-only; on SQLite every report runs its inline fallback query.
var liteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		rank TEXT NOT NULL DEFAULT 'Bronze',
		is_banned BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS user_phone_numbers (
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		phone_number TEXT NOT NULL,
		PRIMARY KEY (user_id, phone_number)
	)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS buyers (
		id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		cart_id TEXT NOT NULL UNIQUE REFERENCES carts(id)
	)`,
	`CREATE TABLE IF NOT EXISTS sellers (
		id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS shippers (
		id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		license_plate TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS product_skus (
		bar_code TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		manufacturing_date DATETIME,
		expired_date DATETIME,
		description TEXT,
		seller_id TEXT NOT NULL REFERENCES sellers(id),
		avg_rating NUMERIC(3,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS variations (
		bar_code TEXT NOT NULL REFERENCES product_skus(bar_code) ON DELETE CASCADE,
		name TEXT NOT NULL,
		price NUMERIC(18,2) NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		size TEXT,
		color TEXT,
		PRIMARY KEY (bar_code, name)
	)`,
	`CREATE TABLE IF NOT EXISTS images (
		bar_code TEXT NOT NULL REFERENCES product_skus(bar_code) ON DELETE CASCADE,
		image_url TEXT NOT NULL,
		PRIMARY KEY (bar_code, image_url)
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS belongs_to (
		category_name TEXT NOT NULL REFERENCES categories(name) ON DELETE CASCADE,
		bar_code TEXT NOT NULL REFERENCES product_skus(bar_code) ON DELETE CASCADE,
		PRIMARY KEY (category_name, bar_code)
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		cart_id TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
		bar_code TEXT NOT NULL,
		variation_name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		PRIMARY KEY (cart_id, bar_code, variation_name),
		FOREIGN KEY (bar_code, variation_name) REFERENCES variations(bar_code, name) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		buyer_id TEXT NOT NULL REFERENCES users(id),
		address TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		bar_code TEXT NOT NULL,
		variation_name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		price NUMERIC(18,2) NOT NULL CHECK (price >= 0),
		FOREIGN KEY (bar_code, variation_name) REFERENCES variations(bar_code, name)
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 0 AND 5),
		description TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS write_reviews (
		review_id TEXT PRIMARY KEY REFERENCES reviews(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		order_item_id TEXT NOT NULL REFERENCES order_items(id),
		order_id TEXT NOT NULL REFERENCES orders(id),
		CONSTRAINT write_reviews_order_item_key UNIQUE (order_id, order_item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reactions (
		review_id TEXT NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
		author_id TEXT NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (review_id, author_id),
		CHECK (type IN ('helpful', 'like', 'love', 'haha', 'wow', 'sad', 'angry', 'unhelpful'))
	)`,
}

// ApplyLite creates the core schema on a SQLite connection. It is idempotent.
func ApplyLite(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	db := conn.WithContext(ctx)
	for _, stmt := range liteSchema {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
