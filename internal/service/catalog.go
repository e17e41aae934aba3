package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/pizza-nz/food-ordering/internal/models"
)

const categoriesCacheKey = "catalog:categories"

func menusCacheKey(categoryID int64) string {
	return fmt.Sprintf("catalog:menus:%d", categoryID)
}

// CategoryStore is the category persistence used by CatalogService
type CategoryStore interface {
	GetActive(ctx context.Context, id int64) (*models.Category, error)
	ListActive(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, name string) (*models.Category, error)
	Update(ctx context.Context, id int64, name string, rank int) (*models.Category, error)
	SoftDelete(ctx context.Context, id int64) error
}

// MenuStore is the menu persistence used by CatalogService
type MenuStore interface {
	ListActiveByCategory(ctx context.Context, categoryID int64) ([]models.Menu, error)
	GetActive(ctx context.Context, categoryID, menuID int64) (*models.Menu, error)
	Create(ctx context.Context, menu models.Menu) (*models.Menu, error)
	Update(ctx context.Context, menu models.Menu) (*models.Menu, error)
	SoftDelete(ctx context.Context, categoryID, menuID int64) error
}

// CatalogCache stores catalog listings. Get reports whether key was found.
type CatalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// CatalogService manages categories and menus
type CatalogService struct {
	categories CategoryStore
	menus      MenuStore
	cache      CatalogCache
	publisher  Publisher
	logger     *slog.Logger
	validate   *validator.Validate
}

// NewCatalogService creates a new catalog service. cache and publisher may be nil.
func NewCatalogService(categories CategoryStore, menus MenuStore, cache CatalogCache, publisher Publisher, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		categories: categories,
		menus:      menus,
		cache:      cache,
		publisher:  publisher,
		logger:     logger,
		validate:   newValidator(),
	}
}

// ListCategories returns active categories ordered by rank
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if s.cacheGet(ctx, categoriesCacheKey, &categories) {
		return categories, nil
	}

	categories, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, internalError("list categories", err)
	}

	s.cacheSet(ctx, categoriesCacheKey, categories)
	return categories, nil
}

// CreateCategory appends a category after the last one
func (s *CatalogService) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, newError(KindInvalidInput, "%s", describe(err))
	}

	category, err := s.categories.Create(ctx, req.Name)
	if err != nil {
		return nil, internalError("create category", err)
	}

	s.cacheDelete(ctx, categoriesCacheKey)
	return category, nil
}

// UpdateCategory renames and re-ranks an active category
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, req models.CategoryUpdateRequest) (*models.Category, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, newError(KindInvalidInput, "%s", describe(err))
	}

	category, err := s.categories.Update(ctx, id, req.Name, *req.Rank)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, categoryNotFound(id)
	}
	if err != nil {
		return nil, internalError("update category", err)
	}

	s.cacheDelete(ctx, categoriesCacheKey)
	return category, nil
}

// SoftDeleteCategory hides a category and, with it, all of its menus
func (s *CatalogService) SoftDeleteCategory(ctx context.Context, id int64) error {
	err := s.categories.SoftDelete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return categoryNotFound(id)
	}
	if err != nil {
		return internalError("delete category", err)
	}

	s.cacheDelete(ctx, categoriesCacheKey, menusCacheKey(id))
	return nil
}

// ListMenus returns the active menus of an active category ordered by rank
func (s *CatalogService) ListMenus(ctx context.Context, categoryID int64) ([]models.Menu, error) {
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	key := menusCacheKey(categoryID)
	var menus []models.Menu
	if s.cacheGet(ctx, key, &menus) {
		return menus, nil
	}

	menus, err := s.menus.ListActiveByCategory(ctx, categoryID)
	if err != nil {
		return nil, internalError("list menus", err)
	}

	s.cacheSet(ctx, key, menus)
	return menus, nil
}

// GetMenu returns an active menu of an active category
func (s *CatalogService) GetMenu(ctx context.Context, categoryID, menuID int64) (*models.Menu, error) {
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	return s.getMenu(ctx, categoryID, menuID)
}

// CreateMenu adds a menu at the end of its category. The status is
// derived from the stock and never taken from the request.
func (s *CatalogService) CreateMenu(ctx context.Context, categoryID int64, req models.MenuRequest) (*models.Menu, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, newError(KindInvalidInput, "%s", describe(err))
	}

	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	menu, err := s.menus.Create(ctx, models.Menu{
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Price:       *req.Price,
		Stock:       *req.Stock,
		Status:      models.StatusForStock(*req.Stock),
	})
	if err != nil {
		return nil, internalError("create menu", err)
	}

	s.cacheDelete(ctx, menusCacheKey(categoryID))
	return menu, nil
}

// UpdateMenu overwrites a menu. A menu without stock cannot be put on sale;
// every other stock and status combination is accepted as given.
func (s *CatalogService) UpdateMenu(ctx context.Context, categoryID, menuID int64, req models.MenuUpdateRequest) (*models.Menu, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, newError(KindInvalidInput, "%s", describe(err))
	}

	if req.Status == models.MenuStatusForSale && *req.Stock == 0 {
		return nil, newError(KindInvalidStateTransition, "a menu with no stock cannot be %s", models.MenuStatusForSale)
	}

	if err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	menu, err := s.getMenu(ctx, categoryID, menuID)
	if err != nil {
		return nil, err
	}

	menu.Name = req.Name
	menu.Description = req.Description
	if req.Image != nil {
		menu.Image = *req.Image
	}
	menu.Price = *req.Price
	menu.Stock = *req.Stock
	menu.Rank = *req.Rank
	menu.Status = req.Status

	updated, err := s.menus.Update(ctx, *menu)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, menuNotFound(menuID)
	}
	if err != nil {
		return nil, internalError("update menu", err)
	}

	s.cacheDelete(ctx, menusCacheKey(categoryID))
	publish(ctx, s.logger, s.publisher, EventMenuUpdated, updated)
	return updated, nil
}

// SoftDeleteMenu hides a menu. Orders that reference it are untouched.
func (s *CatalogService) SoftDeleteMenu(ctx context.Context, categoryID, menuID int64) error {
	if err := s.requireCategory(ctx, categoryID); err != nil {
		return err
	}

	err := s.menus.SoftDelete(ctx, categoryID, menuID)
	if errors.Is(err, sql.ErrNoRows) {
		return menuNotFound(menuID)
	}
	if err != nil {
		return internalError("delete menu", err)
	}

	s.cacheDelete(ctx, menusCacheKey(categoryID))
	publish(ctx, s.logger, s.publisher, EventMenuRemoved, MenuRemovedEvent{CategoryID: categoryID, MenuID: menuID})
	return nil
}

func (s *CatalogService) requireCategory(ctx context.Context, categoryID int64) error {
	_, err := s.categories.GetActive(ctx, categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return categoryNotFound(categoryID)
	}
	if err != nil {
		return internalError("get category", err)
	}
	return nil
}

func (s *CatalogService) getMenu(ctx context.Context, categoryID, menuID int64) (*models.Menu, error) {
	menu, err := s.menus.GetActive(ctx, categoryID, menuID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, menuNotFound(menuID)
	}
	if err != nil {
		return nil, internalError("get menu", err)
	}
	return menu, nil
}

func categoryNotFound(id int64) *Error {
	return newError(KindCategoryNotFound, "category %d not found", id)
}

func menuNotFound(id int64) *Error {
	return newError(KindMenuNotFound, "menu %d not found", id)
}

// Cache failures degrade to a database read and are never surfaced.

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog cache read failed", "key", key, "error", err)
		return false
	}
	return found
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.WarnContext(ctx, "catalog cache write failed", "key", key, "error", err)
	}
}

func (s *CatalogService) cacheDelete(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "catalog cache invalidation failed", "keys", keys, "error", err)
	}
}
