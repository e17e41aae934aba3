package repository

import (
	"github.com/pizza-nz/food-ordering/internal/db"
)

// Repositories provides access to all repository instances
type Repositories struct {
	User     *UserRepository
	Category *CategoryRepository
	Menu     *MenuRepository
	Order    *OrderRepository
}

// NewRepositories creates a new repositories container
func NewRepositories(database *db.Postgres) *Repositories {
	return &Repositories{
		User:     NewUserRepository(database.DB),
		Category: NewCategoryRepository(database.DB),
		Menu:     NewMenuRepository(database.DB),
		Order:    NewOrderRepository(database.DB),
	}
}
