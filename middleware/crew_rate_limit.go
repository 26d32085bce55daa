package middleware

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/sirupsen/logrus"

	"crewmatch/config"
	"crewmatch/models"
	"crewmatch/utils"
)

// CrewActionRateLimiter limits apply/invite bursts per user per event so a
// misbehaving client cannot hammer the application endpoints.
func CrewActionRateLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.AppConfig.RateLimitCrewActions,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			// Get user from context (set by JWT middleware)
			user := c.Locals("user").(*models.User)

			eventID := c.Params("id")
			return utils.GenerateRateLimitKey(user.ID, eventID, c.Path())
		},
		LimitReached: func(c *fiber.Ctx) error {
			user := c.Locals("user").(*models.User)
			logrus.WithFields(logrus.Fields{
				"user_id":  user.ID,
				"endpoint": c.Path(),
				"ip":       c.IP(),
			}).Warn("rate limit hit")

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many crew actions. Please wait before trying again.",
				"retry_after": "1 minute",
			})
		},
		Storage: createRateLimitStorage(),
	})
}

// createRateLimitStorage creates a persistent storage for rate limiting
func createRateLimitStorage() fiber.Storage {
	if config.AppConfig.Redis.Enabled {
		return NewRedisStorage(config.AppConfig.Redis)
	}
	return nil
}

// RedisStorage implements fiber.Storage for Redis
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(config config.RedisConfig) *RedisStorage {
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     config.Address,
			Password: config.Password,
			DB:       config.DB,
		}),
	}
}

func (r *RedisStorage) Get(key string) ([]byte, error) {
	val, err := r.client.Get(context.Background(), key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (r *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	return r.client.Set(context.Background(), key, val, exp).Err()
}

func (r *RedisStorage) Delete(key string) error {
	return r.client.Del(context.Background(), key).Err()
}

func (r *RedisStorage) Reset() error {
	return r.client.FlushDB(context.Background()).Err()
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
