package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pizza-nz/food-ordering/internal/api"
	"github.com/pizza-nz/food-ordering/internal/models"
	"github.com/pizza-nz/food-ordering/internal/service"
)

// MenuHandler handles category and menu requests
type MenuHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(catalog *service.CatalogService, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ListCategories handles GET /api/categories
func (h *MenuHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// CreateCategory handles POST /api/categories
func (h *MenuHandler) CreateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "invalid request body")
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": category})
}

// UpdateCategory handles PUT /api/categories/:categoryId
func (h *MenuHandler) UpdateCategory(c *gin.Context) {
	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		return
	}

	var req models.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "invalid request body")
		return
	}

	category, err := h.catalog.UpdateCategory(c.Request.Context(), categoryID, req)
	if err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": category})
}

// DeleteCategory handles DELETE /api/categories/:categoryId
func (h *MenuHandler) DeleteCategory(c *gin.Context) {
	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		return
	}

	if err := h.catalog.SoftDeleteCategory(c.Request.Context(), categoryID); err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}

// ListMenus handles GET /api/categories/:categoryId/menus
func (h *MenuHandler) ListMenus(c *gin.Context) {
	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		return
	}

	menus, err := h.catalog.ListMenus(c.Request.Context(), categoryID)
	if err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": menus})
}

// GetMenu handles GET /api/categories/:categoryId/menus/:menuId
func (h *MenuHandler) GetMenu(c *gin.Context) {
	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		return
	}
	menuID, ok := pathID(c, "menuId")
	if !ok {
		return
	}

	menu, err := h.catalog.GetMenu(c.Request.Context(), categoryID, menuID)
	if err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": menu})
}

// CreateMenu handles POST /api/categories/:categoryId/menus
func (h *MenuHandler) CreateMenu(c *gin.Context) {
	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		return
	}

	var req models.MenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "invalid request body")
		return
	}

	menu, err := h.catalog.CreateMenu(c.Request.Context(), categoryID, req)
	if err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": menu})
}

// UpdateMenu handles PUT /api/categories/:categoryId/menus/:menuId
func (h *MenuHandler) UpdateMenu(c *gin.Context) {
	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		return
	}
	menuID, ok := pathID(c, "menuId")
	if !ok {
		return
	}

	var req models.MenuUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequest(c, "invalid request body")
		return
	}

	menu, err := h.catalog.UpdateMenu(c.Request.Context(), categoryID, menuID, req)
	if err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": menu})
}

// DeleteMenu handles DELETE /api/categories/:categoryId/menus/:menuId
func (h *MenuHandler) DeleteMenu(c *gin.Context) {
	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		return
	}
	menuID, ok := pathID(c, "menuId")
	if !ok {
		return
	}

	if err := h.catalog.SoftDeleteMenu(c.Request.Context(), categoryID, menuID); err != nil {
		api.RespondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "menu deleted"})
}
