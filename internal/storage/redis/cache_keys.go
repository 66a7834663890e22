package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"personality-bot/internal/board"
	"personality-bot/internal/models"
)

const (
	SessionCacheTTL    = 24 * time.Hour
	RateLimitWindowTTL = 1 * time.Minute
	UserStateCacheTTL  = 30 * time.Minute
	TempDataTTL        = 30 * time.Minute
)

func SessionKey(userID int64) string {
	return fmt.Sprintf("session:user:%d", userID)
}

func BoardKey(userID int64) string {
	return fmt.Sprintf("board:user:%d", userID)
}

func RateLimitKey(userID int64) string {
	return fmt.Sprintf("ratelimit:user:%d", userID)
}

func UserStateKey(userID int64) string {
	return fmt.Sprintf("state:user:%d", userID)
}

func TempDataKey(userID int64, key string) string {
	return fmt.Sprintf("temp:user:%d:%s", userID, key)
}

// GetSession returns nil, nil on a cache miss.
func (c *Cache) GetSession(ctx context.Context, userID int64) (*models.Session, error) {
	var session models.Session
	err := c.Get(ctx, SessionKey(userID), &session)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Cache) SetSession(ctx context.Context, session *models.Session) error {
	return c.Set(ctx, SessionKey(session.UserID), session, SessionCacheTTL)
}

func (c *Cache) DeleteSession(ctx context.Context, userID int64) error {
	return c.Delete(ctx, SessionKey(userID))
}

// GetBoard returns the stored board, or the zero (not loaded) board when it expired.
func (c *Cache) GetBoard(ctx context.Context, userID int64) (board.State, error) {
	var state board.State
	err := c.Get(ctx, BoardKey(userID), &state)
	if errors.Is(err, ErrNotFound) {
		return board.State{}, nil
	}
	if err != nil {
		return board.State{}, err
	}
	return state, nil
}

func (c *Cache) SetBoard(ctx context.Context, userID int64, state board.State, ttl time.Duration) error {
	return c.Set(ctx, BoardKey(userID), state, ttl)
}

func (c *Cache) DeleteBoard(ctx context.Context, userID int64) error {
	return c.Delete(ctx, BoardKey(userID))
}

func (c *Cache) IncrementUserRateLimit(ctx context.Context, userID int64) (int64, error) {
	return c.IncrementWithExpiry(ctx, RateLimitKey(userID), RateLimitWindowTTL)
}

func (c *Cache) SetUserState(ctx context.Context, userID int64, state string) error {
	return c.SetString(ctx, UserStateKey(userID), state, UserStateCacheTTL)
}

// GetUserState returns "" when the user is not in a conversation.
func (c *Cache) GetUserState(ctx context.Context, userID int64) (string, error) {
	state, err := c.GetString(ctx, UserStateKey(userID))
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return state, err
}

func (c *Cache) DeleteUserState(ctx context.Context, userID int64) error {
	return c.Delete(ctx, UserStateKey(userID))
}

func (c *Cache) SetTempData(ctx context.Context, userID int64, key string, value interface{}) error {
	return c.Set(ctx, TempDataKey(userID, key), value, TempDataTTL)
}

// GetTempData returns ErrNotFound when nothing is stored under key.
func (c *Cache) GetTempData(ctx context.Context, userID int64, key string, dest interface{}) error {
	return c.Get(ctx, TempDataKey(userID, key), dest)
}

func (c *Cache) DeleteTempData(ctx context.Context, userID int64, keys ...string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = TempDataKey(userID, k)
	}
	return c.Delete(ctx, full...)
}
