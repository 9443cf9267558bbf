// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/zeebo/blake3"
)

var rdb *redis.Client
var cache *lru.Cache

// SetupCache creates the in-process LRU cache and, when `cache.redis` is
// enabled, a redis client used as a second tier. Until SetupCache is called
// every lookup is a miss and every store is dropped.
func SetupCache() error {
	var err error
	if viper.GetBool("cache.redis") {
		opt, err := redis.ParseURL(viper.GetString("cache.redis_url"))
		if err != nil {
			log.Error().Err(err).Msg("could not parse redis URL")
			return err
		}

		rdb = redis.NewClient(opt)
	}

	size := viper.GetInt("cache.local_size")
	if size <= 0 {
		size = 128
	}

	cache, err = lru.New(size)
	if err != nil {
		log.Error().Err(err).Int("Size", size).Msg("could not create LRU cache")
		return err
	}

	return nil
}

// DisableCache drops the cache tiers; subsequent lookups miss
func DisableCache() {
	cache = nil
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("could not close redis client")
		}
	}
	rdb = nil
}

// CacheKey hashes the parts into a fixed length key
func CacheKey(parts ...string) string {
	sum := blake3.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// CacheSet stores a compressed copy of bytes under key
func CacheSet(ctx context.Context, key string, bytes []byte) error {
	if cache == nil {
		return nil
	}

	b2, err := Compress(bytes)
	if err != nil {
		return err
	}
	cache.Add(key, b2)

	if rdb != nil {
		return rdb.Set(ctx, key, b2, cacheTTL()).Err()
	}
	return nil
}

// CacheGet returns the bytes stored under key; ok is false on a miss
func CacheGet(ctx context.Context, key string) (val []byte, ok bool) {
	if cache == nil {
		return nil, false
	}

	if v, found := cache.Get(key); found {
		val, err := Decompress(v.([]byte))
		if err != nil {
			log.Warn().Err(err).Str("Key", key).Msg("could not decompress cached value")
			return nil, false
		}
		return val, true
	}

	if rdb == nil {
		return nil, false
	}

	compressed, err := rdb.GetEx(ctx, key, cacheTTL()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("Key", key).Msg("redis get failed")
		}
		return nil, false
	}

	val, err = Decompress(compressed)
	if err != nil {
		log.Warn().Err(err).Str("Key", key).Msg("could not decompress cached value")
		return nil, false
	}

	cache.Add(key, compressed)
	return val, true
}

func cacheTTL() time.Duration {
	return time.Duration(viper.GetInt("cache.ttl")) * time.Second
}
