package repository

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"fmt"
	"os"
	"sort"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pizza-nz/food-ordering/internal/db"
	"github.com/pizza-nz/food-ordering/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// openTestDB connects to TEST_DATABASE_URL, migrates it and empties every
// table. Tests are skipped when the variable is not set.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	require.NoError(t, db.MigrateURL(url, slog.New(slog.NewTextHandler(io.Discard, nil))))

	conn, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Exec(`TRUNCATE orders, menus, categories, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return conn
}

func TestUserRepository(t *testing.T) {
	conn := openTestDB(t)
	repo := NewUserRepository(conn)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.User{Nickname: "chef01", PasswordHash: "hash", Role: models.RoleCustomer})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = repo.Create(ctx, models.User{Nickname: "chef01", PasswordHash: "hash", Role: models.RoleCustomer})
	assert.ErrorIs(t, err, ErrDuplicate)

	found, err := repo.GetByNickname(ctx, "chef01")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.GetByNickname(ctx, "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCategoryRepository(t *testing.T) {
	conn := openTestDB(t)
	repo := NewCategoryRepository(conn)
	ctx := context.Background()

	for i, name := range []string{"Soup", "Rice", "Noodle"} {
		category, err := repo.Create(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, i+1, category.Rank)
	}

	categories, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)

	require.NoError(t, repo.SoftDelete(ctx, categories[0].ID))
	assert.ErrorIs(t, repo.SoftDelete(ctx, categories[0].ID), sql.ErrNoRows)

	_, err = repo.GetActive(ctx, categories[0].ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = repo.Update(ctx, categories[0].ID, "Soups", 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	categories, err = repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)

	// ranks keep growing past deleted categories
	category, err := repo.Create(ctx, "Dessert")
	require.NoError(t, err)
	assert.Equal(t, 4, category.Rank)
}

func TestMenuRepository_StockStatusConstraint(t *testing.T) {
	conn := openTestDB(t)
	categories := NewCategoryRepository(conn)
	menus := NewMenuRepository(conn)
	ctx := context.Background()

	soup, err := categories.Create(ctx, "Soup")
	require.NoError(t, err)

	stew, err := menus.Create(ctx, models.Menu{
		CategoryID: soup.ID, Name: "Kimchi Stew", Description: "spicy", Image: "stew.png",
		Price: 8000, Stock: 0, Status: models.MenuStatusSoldOut,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stew.Rank)

	stew.Status = models.MenuStatusForSale
	_, err = menus.Update(ctx, *stew)
	assert.Error(t, err)

	_, err = menus.GetActive(ctx, soup.ID+1, stew.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestOrderRepository_InTx(t *testing.T) {
	conn := openTestDB(t)
	users := NewUserRepository(conn)
	categories := NewCategoryRepository(conn)
	menus := NewMenuRepository(conn)
	orders := NewOrderRepository(conn)
	ctx := context.Background()

	customer, err := users.Create(ctx, models.User{Nickname: "diner1", PasswordHash: "hash", Role: models.RoleCustomer})
	require.NoError(t, err)
	soup, err := categories.Create(ctx, "Soup")
	require.NoError(t, err)
	stew, err := menus.Create(ctx, models.Menu{
		CategoryID: soup.ID, Name: "Kimchi Stew", Description: "spicy", Image: "stew.png",
		Price: 8000, Stock: 3, Status: models.MenuStatusForSale,
	})
	require.NoError(t, err)

	insert := func(w OrderWriter, quantity int) error {
		menu, err := w.GetOrderableMenu(ctx, stew.ID)
		if err != nil {
			return err
		}
		return w.Insert(ctx, &models.Order{
			UserID: customer.ID, MenuID: menu.ID, Quantity: quantity,
			TotalPrice: menu.Price * int64(quantity), Status: models.OrderStatusPending,
		})
	}

	errAbort := errors.New("abort")
	err = orders.InTx(ctx, func(w OrderWriter) error {
		if err := insert(w, 1); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	assert.Panics(t, func() {
		_ = orders.InTx(ctx, func(w OrderWriter) error {
			if err := insert(w, 1); err != nil {
				return err
			}
			panic("writer failed")
		})
	})

	views, err := orders.ListByUser(ctx, customer.ID)
	require.NoError(t, err)
	assert.Empty(t, views)

	err = orders.InTx(ctx, func(w OrderWriter) error {
		return w.Insert(ctx, &models.Order{
			UserID: customer.ID, MenuID: stew.ID, Quantity: 1,
			TotalPrice: -1, Status: models.OrderStatusPending,
		})
	})
	assert.Error(t, err)

	err = orders.InTx(ctx, func(w OrderWriter) error {
		if err := insert(w, 1); err != nil {
			return err
		}
		return insert(w, 2)
	})
	require.NoError(t, err)

	views, err = orders.ListByUser(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, int64(16000), views[0].TotalPrice)
	assert.Equal(t, "Kimchi Stew", views[0].Menu.Name)

	all, err := orders.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "diner1", all[0].User.Nickname)

	require.NoError(t, orders.UpdateStatus(ctx, all[0].ID, models.OrderStatusAccepted))
	assert.ErrorIs(t, orders.UpdateStatus(ctx, 999, models.OrderStatusAccepted), sql.ErrNoRows)

	require.NoError(t, categories.SoftDelete(ctx, soup.ID))
	err = orders.InTx(ctx, func(w OrderWriter) error { return insert(w, 1) })
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestConcurrentCreatesGetDistinctRanks(t *testing.T) {
	conn := openTestDB(t)
	categories := NewCategoryRepository(conn)
	menus := NewMenuRepository(conn)
	ctx := context.Background()

	const creates = 10
	soup, err := categories.Create(ctx, "Soup")
	require.NoError(t, err)

	categoryRanks := make([]int, creates)
	menuRanks := make([]int, creates)
	var g errgroup.Group
	for i := 0; i < creates; i++ {
		i := i
		g.Go(func() error {
			category, err := categories.Create(ctx, fmt.Sprintf("Category %d", i))
			if err != nil {
				return err
			}
			categoryRanks[i] = category.Rank
			return nil
		})
		g.Go(func() error {
			menu, err := menus.Create(ctx, models.Menu{
				CategoryID: soup.ID, Name: fmt.Sprintf("Menu %d", i), Description: "d", Image: "i.png",
				Price: 1000, Stock: 1, Status: models.MenuStatusForSale,
			})
			if err != nil {
				return err
			}
			menuRanks[i] = menu.Rank
			return nil
		})
	}
	require.NoError(t, g.Wait())

	sort.Ints(categoryRanks)
	sort.Ints(menuRanks)
	for i := 0; i < creates; i++ {
		assert.Equal(t, i+2, categoryRanks[i])
		assert.Equal(t, i+1, menuRanks[i])
	}
}
