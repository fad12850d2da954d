/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cache

import (
	"context"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/sieve/config"
	"github.com/blnkfinance/sieve/filter"
	redis_db "github.com/blnkfinance/sieve/internal/redis-db"
)

// localCacheSize is the number of entries kept in the in-process TinyLFU tier.
const localCacheSize = 10000

const keyPrefix = "sieve:choices:"

// Choices memoizes filter choice suppliers. Entries live in redis when a
// client is given and always in a small local tier in front of it.
type Choices struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewChoices builds a choices cache. client may be nil for a local-only cache.
func NewChoices(client redis.UniversalClient, ttl time.Duration) *Choices {
	if ttl <= 0 {
		ttl = config.DEFAULT_CHOICES_TTL * time.Second
	}
	localTTL := time.Minute
	if ttl < localTTL {
		localTTL = ttl
	}
	opts := &cache.Options{LocalCache: cache.NewTinyLFU(localCacheSize, localTTL)}
	if client != nil {
		opts.Redis = client
	}
	return &Choices{cache: cache.New(opts), ttl: ttl}
}

// NewChoicesFromConfig connects to redis if an address is configured and
// falls back to a local-only cache otherwise.
func NewChoicesFromConfig(cfg *config.Configuration) (*Choices, error) {
	ttl := time.Duration(cfg.Redis.ChoicesTTLSec) * time.Second
	if cfg.Redis.Dns == "" {
		logrus.Debug("redis not configured, caching filter choices in process only")
		return NewChoices(nil, ttl), nil
	}
	client, err := redis_db.FromConfig(cfg.Redis)
	if err != nil {
		return nil, err
	}
	return NewChoices(client.Client(), ttl), nil
}

// Wrap returns a supplier that calls fn at most once per TTL for key.
// Concurrent callers share one call.
func (c *Choices) Wrap(key string, fn filter.ChoiceFunc) filter.ChoiceFunc {
	return func() ([]filter.Choice, error) {
		var choices []filter.Choice
		err := c.cache.Once(&cache.Item{
			Ctx:   context.Background(),
			Key:   keyPrefix + key,
			Value: &choices,
			TTL:   c.ttl,
			Do: func(*cache.Item) (interface{}, error) {
				return fn()
			},
		})
		if err != nil {
			return nil, err
		}
		return choices, nil
	}
}

// Invalidate drops the cached choices for key.
func (c *Choices) Invalidate(ctx context.Context, key string) error {
	err := c.cache.Delete(ctx, keyPrefix+key)
	if err == cache.ErrCacheMiss {
		return nil
	}
	return err
}
