package models

import (
	"time"
)

// Role is the class of a user account. It is fixed at sign-up.
type Role string

const (
	RoleProprietor Role = "PROPRIETOR"
	RoleCustomer   Role = "CUSTOMER"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleProprietor || r == RoleCustomer
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Nickname     string    `db:"nickname" json:"nickname"`
	PasswordHash string    `db:"password_hash" json:"-"` // Never expose in JSON
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SignUpRequest is used for account creation
type SignUpRequest struct {
	Nickname string `json:"nickname" validate:"required,alphanum,min=3,max=15"`
	Password string `json:"password" validate:"required,min=8,max=20"`
	Role     Role   `json:"usertype" validate:"omitempty,oneof=PROPRIETOR CUSTOMER"`
}

// SignInRequest is used for login
type SignInRequest struct {
	Nickname string `json:"nickname" validate:"required,alphanum,min=3,max=15"`
	Password string `json:"password" validate:"required,min=8,max=20"`
}
