package models

import (
	"time"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusAccepted OrderStatus = "ACCEPTED"
	OrderStatusCancel   OrderStatus = "CANCEL"
)

// Valid reports whether s is part of the order lifecycle
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusCancel:
		return true
	}
	return false
}

// Order is a single ordered menu line. TotalPrice is the menu price at
// order time multiplied by Quantity and never changes afterwards.
type Order struct {
	ID         int64       `db:"id" json:"id"`
	UserID     int64       `db:"user_id" json:"user_id"`
	MenuID     int64       `db:"menu_id" json:"menu_id"`
	Quantity   int         `db:"quantity" json:"quantity"`
	TotalPrice int64       `db:"total_price" json:"totalPrice"`
	Status     OrderStatus `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time   `db:"updated_at" json:"-"`
}

// OrderMenu is the menu projection shown next to an order
type OrderMenu struct {
	Name  string `db:"name" json:"name"`
	Price int64  `db:"price" json:"price"`
}

// OrderUser is the user projection shown in the proprietor listing
type OrderUser struct {
	Nickname string `db:"nickname" json:"nickname"`
}

// OrderView is an order joined with display fields at read time
type OrderView struct {
	ID         int64       `db:"id" json:"id"`
	Menu       OrderMenu   `db:"menu" json:"menu"`
	User       *OrderUser  `db:"-" json:"user,omitempty"`
	Quantity   int         `db:"quantity" json:"quantity"`
	Status     OrderStatus `db:"status" json:"status"`
	TotalPrice int64       `db:"total_price" json:"totalPrice"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
}

// OrderLineRequest is one line of an order placement. Both fields are
// pointers so that a missing value can be told apart from zero.
type OrderLineRequest struct {
	MenuID   *int64 `json:"menuId" validate:"required,gt=0"`
	Quantity *int   `json:"quantity" validate:"required,gt=0,max=1000"`
}

// OrderStatusRequest is used for order status updates
type OrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}
