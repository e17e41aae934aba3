package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pizza-nz/food-ordering/internal/models"
)

// OrderWriter is the set of operations available inside an order
// placement transaction.
type OrderWriter interface {
	// GetOrderableMenu returns an active menu whose category is active too
	GetOrderableMenu(ctx context.Context, menuID int64) (*models.Menu, error)
	// Insert stores order and fills in its generated fields
	Insert(ctx context.Context, order *models.Order) error
}

// OrderRepository handles order data access
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// InTx runs fn inside a single transaction. Any error returned by fn, or
// a panic inside it, rolls back every write made through the OrderWriter.
func (r *OrderRepository) InTx(ctx context.Context, fn func(OrderWriter) error) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&orderTx{tx: tx})
	})
}

type orderTx struct {
	tx *sqlx.Tx
}

func (o *orderTx) GetOrderableMenu(ctx context.Context, menuID int64) (*models.Menu, error) {
	query := `
		SELECT m.id, m.category_id, m.name, m.description, m.image, m.price, m.stock,
		       m.status, m.rank, m.deleted_at, m.created_at, m.updated_at
		FROM menus m
		JOIN categories c ON c.id = m.category_id
		WHERE m.id = $1 AND m.deleted_at IS NULL AND c.deleted_at IS NULL
	`

	var menu models.Menu
	err := o.tx.GetContext(ctx, &menu, query, menuID)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}

	return &menu, nil
}

func (o *orderTx) Insert(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, menu_id, quantity, total_price, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, menu_id, quantity, total_price, status, created_at, updated_at
	`

	err := o.tx.GetContext(
		ctx,
		order,
		query,
		order.UserID,
		order.MenuID,
		order.Quantity,
		order.TotalPrice,
		order.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// ListByUser retrieves the orders of a user, newest first. Menu name and
// price are read at query time, deleted menus included.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]models.OrderView, error) {
	query := `
		SELECT o.id, m.name AS "menu.name", m.price AS "menu.price",
		       o.quantity, o.status, o.total_price, o.created_at
		FROM orders o
		JOIN menus m ON m.id = o.menu_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC
	`

	orders := []models.OrderView{}
	err := r.db.SelectContext(ctx, &orders, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}

	return orders, nil
}

// ListAll retrieves every order with the ordering user's nickname, newest first
func (r *OrderRepository) ListAll(ctx context.Context) ([]models.OrderView, error) {
	query := `
		SELECT o.id, m.name AS "menu.name", m.price AS "menu.price",
		       u.nickname, o.quantity, o.status, o.total_price, o.created_at
		FROM orders o
		JOIN menus m ON m.id = o.menu_id
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC
	`

	var rows []struct {
		models.OrderView
		Nickname string `db:"nickname"`
	}
	err := r.db.SelectContext(ctx, &rows, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]models.OrderView, 0, len(rows))
	for _, row := range rows {
		view := row.OrderView
		view.User = &models.OrderUser{Nickname: row.Nickname}
		orders = append(orders, view)
	}

	return orders, nil
}

// UpdateStatus updates the status of an order
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("failed to update order status: %w", sql.ErrNoRows)
	}

	return nil
}
