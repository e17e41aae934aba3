package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/pizza-nz/food-ordering/internal/db/repository"
	"github.com/pizza-nz/food-ordering/internal/models"
)

// OrderStore is the order persistence used by OrderService
type OrderStore interface {
	InTx(ctx context.Context, fn func(repository.OrderWriter) error) error
	ListByUser(ctx context.Context, userID int64) ([]models.OrderView, error)
	ListAll(ctx context.Context) ([]models.OrderView, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error
}

// OrderService handles order placement and the order lifecycle
type OrderService struct {
	orders    OrderStore
	publisher Publisher
	logger    *slog.Logger
	validate  *validator.Validate
}

// NewOrderService creates a new order service. publisher may be nil.
func NewOrderService(orders OrderStore, publisher Publisher, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		publisher: publisher,
		logger:    logger,
		validate:  newValidator(),
	}
}

// PlaceOrders records one PENDING order per line for customer. Every line
// is checked before anything is written and the batch commits as a whole:
// a single bad line leaves no orders behind.
func (s *OrderService) PlaceOrders(ctx context.Context, customer *models.User, lines []models.OrderLineRequest) error {
	if len(lines) == 0 {
		return newError(KindInvalidInput, "at least one order line is required")
	}

	for i, line := range lines {
		if err := s.validate.Struct(line); err != nil {
			return lineError(KindInvalidLineInput, i+1, len(lines), describe(err))
		}
	}

	created := make([]models.Order, 0, len(lines))
	err := s.orders.InTx(ctx, func(w repository.OrderWriter) error {
		for i, line := range lines {
			menu, err := w.GetOrderableMenu(ctx, *line.MenuID)
			if errors.Is(err, sql.ErrNoRows) {
				return lineError(KindMenuNotFound, i+1, len(lines), menuNotFound(*line.MenuID).Message)
			}
			if err != nil {
				return err
			}
			if menu.Price > math.MaxInt64/int64(*line.Quantity) {
				return lineError(KindInvalidLineInput, i+1, len(lines), "total price is too large")
			}

			order := models.Order{
				UserID:     customer.ID,
				MenuID:     menu.ID,
				Quantity:   *line.Quantity,
				TotalPrice: menu.Price * int64(*line.Quantity),
				Status:     models.OrderStatusPending,
			}
			if err := w.Insert(ctx, &order); err != nil {
				return err
			}
			created = append(created, order)
		}
		return nil
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return svcErr
		}
		return internalError("place orders", err)
	}

	s.logger.InfoContext(ctx, "orders placed", "user_id", customer.ID, "lines", len(created))
	publish(ctx, s.logger, s.publisher, EventOrderPlaced, created)
	return nil
}

// SetStatus overwrites the status of an order. Orders already ACCEPTED or
// CANCEL may be moved again.
func (s *OrderService) SetStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	if !status.Valid() {
		return newError(KindInvalidStatus, "status must be one of %s, %s, %s",
			models.OrderStatusPending, models.OrderStatusAccepted, models.OrderStatusCancel)
	}

	err := s.orders.UpdateStatus(ctx, orderID, status)
	if errors.Is(err, sql.ErrNoRows) {
		return newError(KindOrderNotFound, "order %d not found", orderID)
	}
	if err != nil {
		return internalError("update order status", err)
	}

	publish(ctx, s.logger, s.publisher, EventOrderStatus, OrderStatusEvent{OrderID: orderID, Status: string(status)})
	return nil
}

// ListCustomerOrders returns the orders of customer, newest first
func (s *OrderService) ListCustomerOrders(ctx context.Context, customer *models.User) ([]models.OrderView, error) {
	orders, err := s.orders.ListByUser(ctx, customer.ID)
	if err != nil {
		return nil, internalError("list orders", err)
	}
	return orders, nil
}

// ListAllOrders returns every order with its customer, newest first
func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.OrderView, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, internalError("list orders", err)
	}
	return orders, nil
}
