package services

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/catalog"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/redis"
)

var testItems = []models.MenuItem{
	{ID: "101", Name: "Chicken 65", Price: 180, Category: models.Starters, IsAvailable: true},
	{ID: "203", Name: "Paneer Butter Masala", Price: 180, Category: models.MainCourse, IsAvailable: true, IsVegetarian: true},
	{ID: "301", Name: "Butter Chicken", Price: 320, Category: models.MainCourse, IsAvailable: true},
	{ID: "404", Name: "Garlic Naan", Price: 60, Category: models.Breads, IsAvailable: true, IsVegetarian: true},
	{ID: "501", Name: "Jeera Rice", Price: 150, Category: models.Rice, IsAvailable: true, IsVegetarian: true},
	{ID: "602", Name: "Sweet Lassi", Price: 80, Category: models.Beverages, IsAvailable: true, IsVegetarian: true},
	{ID: "999", Name: "Mutton Biryani", Price: 400, Category: models.Rice, IsAvailable: false},
}

func newTestMenu(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(testItems, []models.Table{
		{ID: "t1", Number: 1, Seats: 4},
		{ID: "t2", Number: 2, Seats: 4, IsOccupied: true},
	})
	require.NoError(t, err)
	return c
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

// fakeGenerator answers prompts through fn and records them.
type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	fn      func(ctx context.Context, prompt string) (string, error)
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	return g.fn(ctx, prompt)
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func reply(text string) *fakeGenerator {
	return &fakeGenerator{fn: func(context.Context, string) (string, error) { return text, nil }}
}
