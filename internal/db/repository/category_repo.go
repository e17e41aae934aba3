package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pizza-nz/food-ordering/internal/models"
)

const categoryColumns = `id, name, rank, deleted_at, created_at, updated_at`

// categoryRankLock is the advisory lock key held while a category rank is assigned
const categoryRankLock = 7301

// CategoryRepository handles category data access.
// Every lookup excludes soft-deleted rows; a miss wraps sql.ErrNoRows.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetActive retrieves a category that has not been soft-deleted
func (r *CategoryRepository) GetActive(ctx context.Context, id int64) (*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1 AND deleted_at IS NULL
	`

	var category models.Category
	err := r.db.GetContext(ctx, &category, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}

// ListActive retrieves active categories in display order
func (r *CategoryRepository) ListActive(ctx context.Context) ([]models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE deleted_at IS NULL
		ORDER BY rank ASC, id ASC
	`

	categories := []models.Category{}
	err := r.db.SelectContext(ctx, &categories, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// Create appends a category after the current highest rank. Concurrent
// creates are serialized so that each gets its own rank.
func (r *CategoryRepository) Create(ctx context.Context, name string) (*models.Category, error) {
	query := `
		INSERT INTO categories (name, rank)
		SELECT $1, COALESCE(MAX(rank), 0) + 1 FROM categories
		RETURNING ` + categoryColumns

	var created models.Category
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, categoryRankLock); err != nil {
			return err
		}
		return tx.GetContext(ctx, &created, query, name)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &created, nil
}

// Update updates the name and rank of an active category
func (r *CategoryRepository) Update(ctx context.Context, id int64, name string, rank int) (*models.Category, error) {
	query := `
		UPDATE categories
		SET name = $1, rank = $2, updated_at = NOW()
		WHERE id = $3 AND deleted_at IS NULL
		RETURNING ` + categoryColumns

	var updated models.Category
	err := r.db.GetContext(ctx, &updated, query, name, rank, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return &updated, nil
}

// SoftDelete marks an active category as deleted
func (r *CategoryRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE categories
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("failed to delete category: %w", sql.ErrNoRows)
	}

	return nil
}
