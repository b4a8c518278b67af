package domain

import (
	"time"
)

// CREATE TABLE searches (
//     id          BIGINT NOT NULL,            -- user id, not unique
//     search      TEXT,
//     category    TEXT,
//     searched_at TIMESTAMPTZ,
//     success     BOOLEAN
// );

// SearchActivity is one historical search event for a user. Rows are
// read-only; the service never writes into the activity tables.
type SearchActivity struct {
	UserID     uint64    `gorm:"column:id" json:"user_id"`
	Search     string    `gorm:"column:search" json:"search"`
	Category   string    `gorm:"column:category" json:"category"`
	SearchedAt time.Time `gorm:"column:searched_at" json:"searched_at"`
	Success    bool      `gorm:"column:success" json:"success"`
}

func (SearchActivity) TableName() string {
	return "searches"
}

// CREATE TABLE purchase (
//     id               BIGINT NOT NULL,       -- user id, not unique
//     product_name     TEXT,
//     product_category TEXT,
//     purchased_at     TIMESTAMPTZ,
//     success          BOOLEAN
// );

// PurchaseActivity is one historical purchase event for a user.
type PurchaseActivity struct {
	UserID          uint64    `gorm:"column:id" json:"user_id"`
	ProductName     string    `gorm:"column:product_name" json:"product_name"`
	ProductCategory string    `gorm:"column:product_category" json:"product_category"`
	PurchasedAt     time.Time `gorm:"column:purchased_at" json:"purchased_at"`
	Success         bool      `gorm:"column:success" json:"success"`
}

func (PurchaseActivity) TableName() string {
	return "purchase"
}
