// backend/pkg/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"quiz-platform/internal/models"
)

// ErrMiss is returned when a key is not cached.
var ErrMiss = errors.New("cache miss")

const defaultTTL = 24 * time.Hour

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: client,
		ttl:    defaultTTL,
	}
}

func quizKey(id uint) string        { return fmt.Sprintf("quiz:%d", id) }
func leaderboardKey(id uint) string { return fmt.Sprintf("leaderboard:%d", id) }

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) SetQuiz(ctx context.Context, quiz *models.Quiz) error {
	return c.setJSON(ctx, quizKey(quiz.ID), quiz, c.ttl)
}

func (c *RedisCache) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := c.getJSON(ctx, quizKey(id), &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (c *RedisCache) SetLeaderboard(ctx context.Context, quizID uint, entries []models.LeaderboardEntry) error {
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return c.setJSON(ctx, leaderboardKey(quizID), entries, c.ttl)
}

func (c *RedisCache) GetLeaderboard(ctx context.Context, quizID uint) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	if err := c.getJSON(ctx, leaderboardKey(quizID), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *RedisCache) InvalidateLeaderboard(ctx context.Context, quizID uint) error {
	return c.client.Del(ctx, leaderboardKey(quizID)).Err()
}

// InvalidateQuiz drops every key derived from the quiz.
func (c *RedisCache) InvalidateQuiz(ctx context.Context, quizID uint) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, quizKey(quizID))
	pipe.Del(ctx, leaderboardKey(quizID))
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisCache) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *RedisCache) getJSON(ctx context.Context, key string, v interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
