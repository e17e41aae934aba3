package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pizza-nz/food-ordering/internal/api"
	"github.com/pizza-nz/food-ordering/internal/middleware"
	"github.com/pizza-nz/food-ordering/internal/models"
	"github.com/pizza-nz/food-ordering/internal/service"
)

const maxOrderBody = 1 << 20

// OrderHandler handles order requests
type OrderHandler struct {
	orderService *service.OrderService
	logger       *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// PlaceOrders handles POST /api/orders. The body is either one order line
// or an array of them; an array is placed all or nothing.
func (h *OrderHandler) PlaceOrders(c *gin.Context) {
	customer, ok := middleware.CurrentUser(c)
	if !ok {
		api.RespondError(c, h.logger, fmt.Errorf("order route is missing the role gate"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxOrderBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.TooLarge(c, "request body too large")
			return
		}
		api.BadRequest(c, "failed to read request body")
		return
	}

	lines, ok := decodeOrderLines(c, body)
	if !ok {
		return
	}

	if err := h.orderService.PlaceOrders(c.Request.Context(), customer, lines); err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "order placed"})
}

// decodeOrderLines decodes each array element separately so that a badly
// typed line can be reported by its 1-based index.
func decodeOrderLines(c *gin.Context, body []byte) ([]models.OrderLineRequest, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		api.BadRequest(c, "request body is required")
		return nil, false
	}

	if body[0] != '[' {
		var line models.OrderLineRequest
		if err := json.Unmarshal(body, &line); err != nil {
			api.BadLine(c, 0, "order line is malformed")
			return nil, false
		}
		return []models.OrderLineRequest{line}, true
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		api.BadRequest(c, "request body must be an order line or an array of order lines")
		return nil, false
	}

	lines := make([]models.OrderLineRequest, len(raw))
	for i, element := range raw {
		if err := json.Unmarshal(element, &lines[i]); err != nil {
			if len(raw) == 1 {
				api.BadLine(c, 0, "order line is malformed")
			} else {
				api.BadLine(c, i+1, fmt.Sprintf("line %d: order line is malformed", i+1))
			}
			return nil, false
		}
	}
	return lines, true
}

// ListCustomerOrders handles GET /api/orders/customer
func (h *OrderHandler) ListCustomerOrders(c *gin.Context) {
	customer, ok := middleware.CurrentUser(c)
	if !ok {
		api.RespondError(c, h.logger, fmt.Errorf("order route is missing the role gate"))
		return
	}

	orders, err := h.orderService.ListCustomerOrders(c.Request.Context(), customer)
	if err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// ListAllOrders handles GET /api/orders/owner
func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	orders, err := h.orderService.ListAllOrders(c.Request.Context())
	if err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// UpdateStatus handles PUT /api/orders/:orderId/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	var req models.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "invalid request body")
		return
	}

	if err := h.orderService.SetStatus(c.Request.Context(), orderID, req.Status); err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "order status updated"})
}
