package cache

import (
	"fmt"

	"github.com/go-redis/redis/v7"
)

const oneHour int = 3600

// Expire24HR - 24 hours
const Expire24HR int = oneHour * 24

// Cache redis cache
type Cache struct {
	Client *redis.Client
}

// New create new cache
func New(config *Config) *Cache {
	cache := &Cache{}
	cache.Client = redis.NewClient(&redis.Options{
		Addr:     getCacheURL(config),
		Password: config.Password,
	})
	return cache
}

// Close cache
func (c *Cache) Close() error {
	return c.Client.Close()
}

func getCacheURL(config *Config) string {
	return fmt.Sprintf("%s:%s", config.Host, config.Port)
}

// GetValue - get value string by key
func (c *Cache) GetValue(key string) (string, error) {
	val, err := c.Client.Get(key).Result()
	if err != nil {
		return "", err
	}
	return val, nil
}

// SetValue - set value string by key
func (c *Cache) SetValue(key string, val string) error {
	return c.Client.Set(key, val, 0).Err()
}

// ExpireKey - set a redis key to expire
func (c *Cache) ExpireKey(key string, ttl int) {
	c.Client.Do("EXPIRE", key, fmt.Sprintf("%v", ttl))
}

// Publish - publish a message on a channel
func (c *Cache) Publish(key string, val string) error {
	return c.Client.Publish(key, val).Err()
}

// Subscribe - subscribe to a channel. The returned closer releases the
// subscription; leaking it leaves the server fanning out to a dead channel.
func (c *Cache) Subscribe(key string) (<-chan *redis.Message, func() error, error) {
	sub := c.Client.Subscribe(key)
	_, err := sub.Receive()
	if err != nil {
		return nil, nil, err
	}
	return sub.Channel(), sub.Close, nil
}

// DeleteValue - delete value string by key
func (c *Cache) DeleteValue(key string) error {
	return c.Client.Del(key).Err()
}
