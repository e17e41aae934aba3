package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pizza-nz/food-ordering/internal/models"
)

// ErrDuplicate is returned when an insert violates a unique constraint
var ErrDuplicate = errors.New("duplicate key")

const uniqueViolation = "23505"

// UserRepository handles user data access
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByNickname retrieves a user by nickname
func (r *UserRepository) GetByNickname(ctx context.Context, nickname string) (*models.User, error) {
	query := `
		SELECT id, nickname, password_hash, role, created_at, updated_at
		FROM users
		WHERE nickname = $1
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by nickname: %w", err)
	}

	return &user, nil
}

// Create creates a new user. A taken nickname yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user models.User) (*models.User, error) {
	query := `
		INSERT INTO users (nickname, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, nickname, password_hash, role, created_at, updated_at
	`

	var createdUser models.User
	err := r.db.GetContext(
		ctx,
		&createdUser,
		query,
		user.Nickname,
		user.PasswordHash,
		user.Role,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("failed to create user: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &createdUser, nil
}
