// Package testutil provides in-memory stand-ins for the PostgreSQL
// repositories. They follow the same contracts: misses wrap sql.ErrNoRows,
// soft-deleted rows are invisible and a duplicate nickname wraps
// repository.ErrDuplicate.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pizza-nz/food-ordering/internal/db/repository"
	"github.com/pizza-nz/food-ordering/internal/models"
)

// Store holds every table in memory
type Store struct {
	mu         sync.Mutex
	clock      time.Time
	nextID     int64
	users      []models.User
	categories []models.Category
	menus      []models.Menu
	orders     []models.Order

	// InsertHook, when set, runs before each order insert inside a
	// transaction. A non-nil error aborts the insert.
	InsertHook func(order models.Order) error
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// tick advances the fake clock so that creation times are strictly increasing
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Users returns the user table
func (s *Store) Users() *Users { return &Users{s: s} }

// Categories returns the category table
func (s *Store) Categories() *Categories { return &Categories{s: s} }

// Menus returns the menu table
func (s *Store) Menus() *Menus { return &Menus{s: s} }

// Orders returns the order table
func (s *Store) Orders() *Orders { return &Orders{s: s} }

// OrderCount returns the number of committed orders
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// CommittedOrders returns a copy of the committed orders in insertion order
func (s *Store) CommittedOrders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Order(nil), s.orders...)
}

func notFound(what string) error {
	return fmt.Errorf("failed to get %s: %w", what, sql.ErrNoRows)
}

// Users implements the user store
type Users struct{ s *Store }

func (u *Users) GetByNickname(ctx context.Context, nickname string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, user := range u.s.users {
		if user.Nickname == nickname {
			user := user
			return &user, nil
		}
	}
	return nil, notFound("user")
}

func (u *Users) Create(ctx context.Context, user models.User) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.Nickname == user.Nickname {
			return nil, fmt.Errorf("failed to create user: %w", repository.ErrDuplicate)
		}
	}
	user.ID = u.s.id()
	user.CreatedAt = u.s.tick()
	user.UpdatedAt = user.CreatedAt
	u.s.users = append(u.s.users, user)
	return &user, nil
}

// Categories implements the category store
type Categories struct{ s *Store }

func (c *Categories) find(id int64) int {
	for i, category := range c.s.categories {
		if category.ID == id && category.DeletedAt == nil {
			return i
		}
	}
	return -1
}

func (c *Categories) GetActive(ctx context.Context, id int64) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	i := c.find(id)
	if i < 0 {
		return nil, notFound("category")
	}
	category := c.s.categories[i]
	return &category, nil
}

func (c *Categories) ListActive(ctx context.Context) ([]models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	categories := []models.Category{}
	for _, category := range c.s.categories {
		if category.DeletedAt == nil {
			categories = append(categories, category)
		}
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Rank < categories[j].Rank
	})
	return categories, nil
}

func (c *Categories) Create(ctx context.Context, name string) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	rank := 0
	for _, category := range c.s.categories {
		if category.Rank > rank {
			rank = category.Rank
		}
	}
	category := models.Category{ID: c.s.id(), Name: name, Rank: rank + 1, CreatedAt: c.s.tick()}
	category.UpdatedAt = category.CreatedAt
	c.s.categories = append(c.s.categories, category)
	return &category, nil
}

func (c *Categories) Update(ctx context.Context, id int64, name string, rank int) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	i := c.find(id)
	if i < 0 {
		return nil, notFound("category")
	}
	c.s.categories[i].Name = name
	c.s.categories[i].Rank = rank
	c.s.categories[i].UpdatedAt = c.s.tick()
	category := c.s.categories[i]
	return &category, nil
}

func (c *Categories) SoftDelete(ctx context.Context, id int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	i := c.find(id)
	if i < 0 {
		return notFound("category")
	}
	now := c.s.tick()
	c.s.categories[i].DeletedAt = &now
	return nil
}

// Menus implements the menu store
type Menus struct{ s *Store }

func (m *Menus) find(categoryID, menuID int64) int {
	for i, menu := range m.s.menus {
		if menu.ID == menuID && menu.CategoryID == categoryID && menu.DeletedAt == nil {
			return i
		}
	}
	return -1
}

func (m *Menus) ListActiveByCategory(ctx context.Context, categoryID int64) ([]models.Menu, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	menus := []models.Menu{}
	for _, menu := range m.s.menus {
		if menu.CategoryID == categoryID && menu.DeletedAt == nil {
			menus = append(menus, menu)
		}
	}
	sort.SliceStable(menus, func(i, j int) bool {
		return menus[i].Rank < menus[j].Rank
	})
	return menus, nil
}

func (m *Menus) GetActive(ctx context.Context, categoryID, menuID int64) (*models.Menu, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i := m.find(categoryID, menuID)
	if i < 0 {
		return nil, notFound("menu")
	}
	menu := m.s.menus[i]
	return &menu, nil
}

func (m *Menus) Create(ctx context.Context, menu models.Menu) (*models.Menu, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	rank := 0
	for _, existing := range m.s.menus {
		if existing.CategoryID == menu.CategoryID && existing.Rank > rank {
			rank = existing.Rank
		}
	}
	menu.ID = m.s.id()
	menu.Rank = rank + 1
	menu.CreatedAt = m.s.tick()
	menu.UpdatedAt = menu.CreatedAt
	m.s.menus = append(m.s.menus, menu)
	return &menu, nil
}

func (m *Menus) Update(ctx context.Context, menu models.Menu) (*models.Menu, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i := m.find(menu.CategoryID, menu.ID)
	if i < 0 {
		return nil, notFound("menu")
	}
	menu.CreatedAt = m.s.menus[i].CreatedAt
	menu.UpdatedAt = m.s.tick()
	m.s.menus[i] = menu
	return &menu, nil
}

func (m *Menus) SoftDelete(ctx context.Context, categoryID, menuID int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	i := m.find(categoryID, menuID)
	if i < 0 {
		return notFound("menu")
	}
	now := m.s.tick()
	m.s.menus[i].DeletedAt = &now
	return nil
}

// Orders implements the order store. InTx stages inserts and publishes
// them only when the callback succeeds.
type Orders struct{ s *Store }

func (o *Orders) InTx(ctx context.Context, fn func(repository.OrderWriter) error) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	tx := &orderTx{s: o.s}
	if err := fn(tx); err != nil {
		return err
	}
	o.s.orders = append(o.s.orders, tx.staged...)
	return nil
}

type orderTx struct {
	s      *Store
	staged []models.Order
}

func (t *orderTx) GetOrderableMenu(ctx context.Context, menuID int64) (*models.Menu, error) {
	for _, menu := range t.s.menus {
		if menu.ID != menuID || menu.DeletedAt != nil {
			continue
		}
		for _, category := range t.s.categories {
			if category.ID == menu.CategoryID && category.DeletedAt == nil {
				menu := menu
				return &menu, nil
			}
		}
	}
	return nil, notFound("menu")
}

func (t *orderTx) Insert(ctx context.Context, order *models.Order) error {
	if t.s.InsertHook != nil {
		if err := t.s.InsertHook(*order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
	}
	order.ID = t.s.id()
	order.CreatedAt = t.s.tick()
	order.UpdatedAt = order.CreatedAt
	t.staged = append(t.staged, *order)
	return nil
}

func (o *Orders) view(order models.Order) models.OrderView {
	view := models.OrderView{
		ID:         order.ID,
		Quantity:   order.Quantity,
		Status:     order.Status,
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
	}
	for _, menu := range o.s.menus {
		if menu.ID == order.MenuID {
			view.Menu = models.OrderMenu{Name: menu.Name, Price: menu.Price}
		}
	}
	return view
}

func sortNewestFirst(views []models.OrderView) {
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].CreatedAt.Equal(views[j].CreatedAt) {
			return views[i].ID > views[j].ID
		}
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
}

func (o *Orders) ListByUser(ctx context.Context, userID int64) ([]models.OrderView, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	views := []models.OrderView{}
	for _, order := range o.s.orders {
		if order.UserID == userID {
			views = append(views, o.view(order))
		}
	}
	sortNewestFirst(views)
	return views, nil
}

func (o *Orders) ListAll(ctx context.Context) ([]models.OrderView, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	views := []models.OrderView{}
	for _, order := range o.s.orders {
		view := o.view(order)
		for _, user := range o.s.users {
			if user.ID == order.UserID {
				view.User = &models.OrderUser{Nickname: user.Nickname}
			}
		}
		views = append(views, view)
	}
	sortNewestFirst(views)
	return views, nil
}

func (o *Orders) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()
	for i := range o.s.orders {
		if o.s.orders[i].ID == id {
			o.s.orders[i].Status = status
			o.s.orders[i].UpdatedAt = o.s.tick()
			return nil
		}
	}
	return fmt.Errorf("failed to update order status: %w", sql.ErrNoRows)
}

// SetMenuPrice changes a menu's price directly, bypassing the service
func (s *Store) SetMenuPrice(menuID int64, price int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.menus {
		if s.menus[i].ID == menuID {
			s.menus[i].Price = price
		}
	}
}
