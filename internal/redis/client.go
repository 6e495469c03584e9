package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

// SessionKeyPrefix namespaces the logged-in user objects.
const SessionKeyPrefix = "dhaba_user:"

var (
	ErrNotFound = errors.New("key not found")
	ErrCorrupt  = errors.New("stored session is corrupt")
)

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewFromClient wraps an existing connection.
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Session management
func (c *Client) SetSession(ctx context.Context, sessionID string, user models.User, ttl time.Duration) error {
	jsonData, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}
	return c.rdb.Set(ctx, SessionKeyPrefix+sessionID, jsonData, ttl).Err()
}

// GetSession loads the user for sessionID. An entry that does not decode to
// a usable user is deleted and reported as ErrCorrupt.
func (c *Client) GetSession(ctx context.Context, sessionID string) (models.User, error) {
	val, err := c.rdb.Get(ctx, SessionKeyPrefix+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("failed to get session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(val), &user); err != nil || !validUser(user) {
		if delErr := c.DeleteSession(ctx, sessionID); delErr != nil {
			return models.User{}, fmt.Errorf("failed to clear corrupt session: %w", delErr)
		}
		return models.User{}, ErrCorrupt
	}
	return user, nil
}

func validUser(u models.User) bool {
	if u.ID == "" || u.Name == "" {
		return false
	}
	_, ok := models.ParseRole(string(u.Role))
	return ok
}

// TouchSession extends the session's lifetime.
func (c *Client) TouchSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, SessionKeyPrefix+sessionID, ttl).Err()
}

func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, SessionKeyPrefix+sessionID).Err()
}

// Temporary data management
func (c *Client) SetTempData(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal temp data: %w", err)
	}
	return c.rdb.Set(ctx, "temp:"+key, jsonData, ttl).Err()
}

func (c *Client) GetTempData(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, "temp:"+key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get temp data: %w", err)
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) DeleteTempData(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, "temp:"+key).Err()
}

// Conversation history

// AppendHistory pushes entry onto the list at key, keeping only the newest
// max entries.
func (c *Client) AppendHistory(ctx context.Context, key, entry string, max int, ttl time.Duration) error {
	k := "history:" + key
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, k, entry)
		pipe.LTrim(ctx, k, int64(-max), -1)
		pipe.Expire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (c *Client) GetHistory(ctx context.Context, key string) ([]string, error) {
	return c.rdb.LRange(ctx, "history:"+key, 0, -1).Result()
}

func (c *Client) DeleteHistory(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, "history:"+key).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
