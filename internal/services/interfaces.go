package services

import (
	"context"
	"time"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/store"
)

// Menu is the catalog as seen by the services. *catalog.Catalog implements it.
type Menu interface {
	List() []models.MenuItem
	Get(id string) (models.MenuItem, bool)
	UpdateDescription(id, text string) (models.MenuItem, error)
	Tables() []models.Table
}

// OrderStore is implemented by *store.OrderStore.
type OrderStore interface {
	Place(ctx context.Context, req store.PlaceRequest) (models.Order, error)
	UpdateStatusIf(ctx context.Context, id string, next models.OrderStatus, by models.Role, guard func(models.Order) error) (models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id string) (models.Order, error)
}

// SessionStore, TempStore and HistoryStore are implemented by *redis.Client.
type SessionStore interface {
	SetSession(ctx context.Context, sessionID string, user models.User, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (models.User, error)
	TouchSession(ctx context.Context, sessionID string, ttl time.Duration) error
	DeleteSession(ctx context.Context, sessionID string) error
}

type TempStore interface {
	SetTempData(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetTempData(ctx context.Context, key string, dest interface{}) error
	DeleteTempData(ctx context.Context, key string) error
}

type HistoryStore interface {
	AppendHistory(ctx context.Context, key, entry string, max int, ttl time.Duration) error
	GetHistory(ctx context.Context, key string) ([]string, error)
	DeleteHistory(ctx context.Context, key string) error
}
