package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.StringCmd)
}

func (m *mockClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *mockClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

type entry struct {
	Name string `json:"name"`
}

func TestRedis_GetHit(t *testing.T) {
	client := new(mockClient)
	client.On("Get", mock.Anything, "catalog:categories").
		Return(redis.NewStringResult(`[{"name":"Soup"}]`, nil))
	c := NewRedis(client, time.Minute)

	var entries []entry
	found, err := c.Get(context.Background(), "catalog:categories", &entries)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []entry{{Name: "Soup"}}, entries)
}

func TestRedis_GetMiss(t *testing.T) {
	client := new(mockClient)
	client.On("Get", mock.Anything, "catalog:menus:1").Return(redis.NewStringResult("", redis.Nil))
	c := NewRedis(client, time.Minute)

	var entries []entry
	found, err := c.Get(context.Background(), "catalog:menus:1", &entries)

	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedis_GetError(t *testing.T) {
	client := new(mockClient)
	client.On("Get", mock.Anything, "catalog:menus:1").
		Return(redis.NewStringResult("", errors.New("connection refused")))
	c := NewRedis(client, time.Minute)

	var entries []entry
	found, err := c.Get(context.Background(), "catalog:menus:1", &entries)

	assert.Error(t, err)
	assert.False(t, found)
}

func TestRedis_SetEncodesJSON(t *testing.T) {
	client := new(mockClient)
	client.On("Set", mock.Anything, "catalog:categories", []byte(`[{"name":"Soup"}]`), time.Minute).
		Return(redis.NewStatusResult("OK", nil))
	c := NewRedis(client, time.Minute)

	err := c.Set(context.Background(), "catalog:categories", []entry{{Name: "Soup"}})

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestRedis_Delete(t *testing.T) {
	client := new(mockClient)
	client.On("Del", mock.Anything, []string{"catalog:categories", "catalog:menus:3"}).
		Return(redis.NewIntResult(2, nil))
	c := NewRedis(client, time.Minute)

	require.NoError(t, c.Delete(context.Background(), "catalog:categories", "catalog:menus:3"))
	require.NoError(t, c.Delete(context.Background()))

	client.AssertNumberOfCalls(t, "Del", 1)
}
