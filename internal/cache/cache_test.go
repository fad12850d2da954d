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
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/sieve/config"
	"github.com/blnkfinance/sieve/filter"
)

func countingSource(calls *int, values ...string) filter.ChoiceFunc {
	return func() ([]filter.Choice, error) {
		*calls++
		return filter.Choices(values...), nil
	}
}

func TestChoices_Wrap(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	calls := 0
	choices := NewChoices(client, 10*time.Minute)
	source := choices.Wrap("posts.status", countingSource(&calls, "draft", "live"))

	first, err := source()
	require.NoError(t, err)
	second, err := source()
	require.NoError(t, err)

	assert.Equal(t, filter.Choices("draft", "live"), first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists(keyPrefix+"posts.status"))

	require.NoError(t, choices.Invalidate(context.Background(), "posts.status"))
	_, err = source()
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestChoices_SharedAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	calls := 0
	_, err := NewChoices(client, time.Minute).Wrap("k", countingSource(&calls, "a"))()
	require.NoError(t, err)

	got, err := NewChoices(client, time.Minute).Wrap("k", countingSource(&calls, "b"))()
	require.NoError(t, err)
	assert.Equal(t, filter.Choices("a"), got)
	assert.Equal(t, 1, calls)
}

func TestChoices_ErrorsAreNotCached(t *testing.T) {
	choices := NewChoices(nil, time.Minute)
	calls := 0
	source := choices.Wrap("broken", func() ([]filter.Choice, error) {
		calls++
		return nil, errors.New("boom")
	})

	_, err := source()
	assert.Error(t, err)
	_, err = source()
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestNewChoicesFromConfig(t *testing.T) {
	local, err := NewChoicesFromConfig(&config.Configuration{Redis: config.RedisConfig{ChoicesTTLSec: 60}})
	require.NoError(t, err)
	assert.Equal(t, time.Minute, local.ttl)

	mr := miniredis.RunT(t)
	remote, err := NewChoicesFromConfig(&config.Configuration{Redis: config.RedisConfig{Dns: mr.Addr(), ChoicesTTLSec: 30}})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, remote.ttl)

	_, err = NewChoicesFromConfig(&config.Configuration{Redis: config.RedisConfig{Dns: "127.0.0.1:1"}})
	assert.Error(t, err)
}
