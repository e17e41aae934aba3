package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pizza-nz/food-ordering/internal/models"
)

const menuColumns = `id, category_id, name, description, image, price, stock, status, rank, deleted_at, created_at, updated_at`

// MenuRepository handles menu data access
type MenuRepository struct {
	db *sqlx.DB
}

// NewMenuRepository creates a new menu repository
func NewMenuRepository(db *sqlx.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// ListActiveByCategory retrieves the active menus of a category in display order
func (r *MenuRepository) ListActiveByCategory(ctx context.Context, categoryID int64) ([]models.Menu, error) {
	query := `
		SELECT ` + menuColumns + `
		FROM menus
		WHERE category_id = $1 AND deleted_at IS NULL
		ORDER BY rank ASC, id ASC
	`

	menus := []models.Menu{}
	err := r.db.SelectContext(ctx, &menus, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list menus: %w", err)
	}

	return menus, nil
}

// GetActive retrieves an active menu that belongs to categoryID
func (r *MenuRepository) GetActive(ctx context.Context, categoryID, menuID int64) (*models.Menu, error) {
	query := `
		SELECT ` + menuColumns + `
		FROM menus
		WHERE id = $1 AND category_id = $2 AND deleted_at IS NULL
	`

	var menu models.Menu
	err := r.db.GetContext(ctx, &menu, query, menuID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}

	return &menu, nil
}

// Create appends a menu after the highest rank within its category. The
// category row is locked so concurrent creates in it get distinct ranks.
func (r *MenuRepository) Create(ctx context.Context, menu models.Menu) (*models.Menu, error) {
	query := `
		INSERT INTO menus (category_id, name, description, image, price, stock, status, rank)
		SELECT $1, $2, $3, $4, $5, $6, $7, COALESCE(MAX(rank), 0) + 1
		FROM menus
		WHERE category_id = $1
		RETURNING ` + menuColumns

	var created models.Menu
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT id FROM categories WHERE id = $1 FOR UPDATE`, menu.CategoryID); err != nil {
			return err
		}
		return tx.GetContext(
			ctx,
			&created,
			query,
			menu.CategoryID,
			menu.Name,
			menu.Description,
			menu.Image,
			menu.Price,
			menu.Stock,
			menu.Status,
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create menu: %w", err)
	}

	return &created, nil
}

// Update overwrites the mutable fields of an active menu
func (r *MenuRepository) Update(ctx context.Context, menu models.Menu) (*models.Menu, error) {
	query := `
		UPDATE menus
		SET name = $1, description = $2, image = $3, price = $4, stock = $5,
		    status = $6, rank = $7, updated_at = NOW()
		WHERE id = $8 AND category_id = $9 AND deleted_at IS NULL
		RETURNING ` + menuColumns

	var updated models.Menu
	err := r.db.GetContext(
		ctx,
		&updated,
		query,
		menu.Name,
		menu.Description,
		menu.Image,
		menu.Price,
		menu.Stock,
		menu.Status,
		menu.Rank,
		menu.ID,
		menu.CategoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update menu: %w", err)
	}

	return &updated, nil
}

// SoftDelete marks an active menu as deleted
func (r *MenuRepository) SoftDelete(ctx context.Context, categoryID, menuID int64) error {
	query := `
		UPDATE menus
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND category_id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, menuID, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete menu: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("failed to delete menu: %w", sql.ErrNoRows)
	}

	return nil
}
