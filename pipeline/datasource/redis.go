/*
 *     Copyright 2023 The Modelpipe Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package datasource

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"

	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pkg/frame"
)

const (
	// redisScanCount is the hint of keys returned by one scan call.
	redisScanCount = 1000
)

type redisSource struct {
	client redis.UniversalClient
}

// newRedis connects to redis, every record is a hash stored under "<collection>:<id>".
func newRedis(ctx context.Context, cfg *config.RedisConfig) (DataSource, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:      cfg.Addrs,
		MasterName: cfg.MasterName,
		DB:         cfg.DB,
		Username:   cfg.Username,
		Password:   cfg.Password,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &redisSource{client}, nil
}

// Export returns all hashes of the collection ordered by key.
func (r *redisSource) Export(ctx context.Context, collection string) (*frame.Frame, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, RedisKeyPattern(collection), redisScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)

	hashes := make([]map[string]string, 0, len(keys))
	for _, key := range keys {
		hash, err := r.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("get hash %s: %w", key, err)
		}

		hashes = append(hashes, hash)
	}

	logger.WithSource(config.SourceTypeRedis, collection).Infof("exported %d hashes", len(hashes))
	return newFrame(hashesToRecords(hashes)), nil
}

// Close closes the redis client.
func (r *redisSource) Close(ctx context.Context) error {
	return r.client.Close()
}

// RedisKeyPattern returns the key pattern of records in a collection.
func RedisKeyPattern(collection string) string {
	return collection + ":*"
}

// hashesToRecords orders hash fields by name, hashes carry no field order.
func hashesToRecords(hashes []map[string]string) [][]field {
	records := make([][]field, 0, len(hashes))
	for _, hash := range hashes {
		keys := make([]string, 0, len(hash))
		for key := range hash {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		record := make([]field, 0, len(keys))
		for _, key := range keys {
			record = append(record, field{key: key, value: hash[key]})
		}

		records = append(records, record)
	}

	return records
}
