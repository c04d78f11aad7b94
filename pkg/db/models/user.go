package models

import "time"

// User is the account identity. Its role is never stored here; it is derived from
// which role table (admins, sellers, buyers, shippers) holds a matching row.
type User struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	Username     string    `gorm:"column:username;not null;uniqueIndex"`
	FullName     string    `gorm:"column:full_name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Rank         string    `gorm:"column:rank;not null;default:Bronze"`
	IsBanned     bool      `gorm:"column:is_banned;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string { return "users" }

type UserPhoneNumber struct {
	UserID      string `gorm:"column:user_id;primaryKey"`
	PhoneNumber string `gorm:"column:phone_number;primaryKey"`
}

func (UserPhoneNumber) TableName() string { return "user_phone_numbers" }

// Buyer owns exactly one cart.
type Buyer struct {
	ID     string `gorm:"column:id;primaryKey"`
	CartID string `gorm:"column:cart_id;not null;uniqueIndex"`
}

func (Buyer) TableName() string { return "buyers" }

type Seller struct {
	ID string `gorm:"column:id;primaryKey"`
}

func (Seller) TableName() string { return "sellers" }

type Shipper struct {
	ID           string `gorm:"column:id;primaryKey" json:"id"`
	LicensePlate string `gorm:"column:license_plate" json:"licensePlate"`
	Company      string `gorm:"column:company" json:"company"`
}

func (Shipper) TableName() string { return "shippers" }

type Admin struct {
	ID string `gorm:"column:id;primaryKey"`
}

func (Admin) TableName() string { return "admins" }
