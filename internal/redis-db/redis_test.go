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

package redis_db

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/sieve/config"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		password string
		tls      bool
		wantErr  bool
	}{
		{name: "docker style", url: "redis:6379", addr: "redis:6379"},
		{name: "password only", url: "redis://secret@localhost:6379", addr: "localhost:6379", password: "secret"},
		{name: "user and password", url: "redis://:password123@localhost:6379", addr: "localhost:6379", password: "password123"},
		{name: "tls", url: "rediss://cache.example.com:6380", addr: "cache.example.com:6380", tls: true},
		{name: "empty", url: "  ", wantErr: true},
		{name: "bad scheme", url: "http://localhost:6379", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRedisURL(tt.url, true)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.addr, got.Addr)
			assert.Equal(t, tt.password, got.Password)
			if tt.tls {
				require.NotNil(t, got.TLSConfig)
				assert.True(t, got.TLSConfig.InsecureSkipVerify)
			}
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient([]string{mr.Addr()}, false)
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, []string{mr.Addr()}, client.Addresses())
	assert.NotNil(t, client.Client())

	_, err = NewRedisClient(nil, false)
	assert.Error(t, err)

	_, err = NewRedisClient([]string{"127.0.0.1:1"}, false)
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := FromConfig(config.RedisConfig{Dns: " " + mr.Addr() + " ,"})
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, []string{mr.Addr()}, client.Addresses())

	_, err = FromConfig(config.RedisConfig{})
	assert.Error(t, err)
}
