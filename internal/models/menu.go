package models

import (
	"time"
)

// MenuStatus represents whether a menu can currently be ordered
type MenuStatus string

const (
	MenuStatusForSale MenuStatus = "FOR_SALE"
	MenuStatusSoldOut MenuStatus = "SOLD_OUT"
)

// StatusForStock derives the initial status of a menu from its stock
func StatusForStock(stock int) MenuStatus {
	if stock == 0 {
		return MenuStatusSoldOut
	}
	return MenuStatusForSale
}

// Category represents a menu category
type Category struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Rank      int        `db:"rank" json:"order"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"-"`
	UpdatedAt time.Time  `db:"updated_at" json:"-"`
}

// Menu represents a menu
type Menu struct {
	ID          int64      `db:"id" json:"id"`
	CategoryID  int64      `db:"category_id" json:"category_id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Image       string     `db:"image" json:"image"`
	Price       int64      `db:"price" json:"price"`
	Stock       int        `db:"stock" json:"stock"`
	Status      MenuStatus `db:"status" json:"status"`
	Rank        int        `db:"rank" json:"order"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
	CreatedAt   time.Time  `db:"created_at" json:"-"`
	UpdatedAt   time.Time  `db:"updated_at" json:"-"`
}

// CategoryRequest is used for category creation
type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CategoryUpdateRequest is used for category update
type CategoryUpdateRequest struct {
	Name string `json:"name" validate:"required"`
	Rank *int   `json:"order" validate:"required"`
}

// MenuRequest is used for menu creation. Status is derived, never accepted.
type MenuRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Image       string `json:"image" validate:"required"`
	Price       *int64 `json:"price" validate:"required,gte=0,max=1000000000"`
	Stock       *int   `json:"stock" validate:"required,gte=0,max=1000000"`
}

// MenuUpdateRequest is used for menu update
type MenuUpdateRequest struct {
	Name        string     `json:"name" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Image       *string    `json:"image"`
	Price       *int64     `json:"price" validate:"required,gte=0,max=1000000000"`
	Stock       *int       `json:"stock" validate:"required,gte=0,max=1000000"`
	Rank        *int       `json:"order" validate:"required"`
	Status      MenuStatus `json:"status" validate:"required,oneof=FOR_SALE SOLD_OUT"`
}
