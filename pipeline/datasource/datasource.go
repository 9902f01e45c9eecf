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

//go:generate mockgen -destination mocks/datasource_mock.go -source datasource.go -package mocks

package datasource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pkg/frame"
)

const (
	// IDField is the document identity field, it is never exported.
	IDField = "_id"

	// NAValue is the placeholder of a missing value in stored records.
	NAValue = "na"
)

// DataSource is the interface used for exporting collections.
type DataSource interface {
	// Export returns all records of the collection as a frame.
	Export(ctx context.Context, collection string) (*frame.Frame, error)

	// Close releases the connection of the data source.
	Close(ctx context.Context) error
}

// New returns the data source of the configured type.
func New(ctx context.Context, cfg *config.SourceConfig, verbose bool) (DataSource, error) {
	switch cfg.Type {
	case config.SourceTypeMongo:
		return newMongo(ctx, &cfg.Mongo)
	case config.SourceTypeRedis:
		return newRedis(ctx, &cfg.Redis)
	case config.SourceTypeMysql:
		return newMysql(&cfg.Mysql, verbose)
	case config.SourceTypePostgres:
		return newPostgres(&cfg.Postgres, verbose)
	}

	return nil, fmt.Errorf("unknown source type %s", cfg.Type)
}

// field is one key value pair of a record, in stored order.
type field struct {
	key   string
	value any
}

// newFrame builds a frame from records, columns are ordered by first appearance,
// identity fields are dropped and absent fields are missing.
func newFrame(records [][]field) *frame.Frame {
	var columns []string
	index := map[string]int{}
	for _, record := range records {
		for _, f := range record {
			if f.key == IDField {
				continue
			}

			if _, ok := index[f.key]; !ok {
				index[f.key] = len(columns)
				columns = append(columns, f.key)
			}
		}
	}

	fr := frame.New(columns, nil)
	for _, record := range records {
		row := make([]string, len(columns))
		for _, f := range record {
			idx, ok := index[f.key]
			if !ok {
				continue
			}

			row[idx] = formatValue(f.value)
		}

		fr.Append(row)
	}

	return fr
}

// formatValue converts a stored value to its cell text.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return frame.MissingValue
	case string:
		if strings.EqualFold(strings.TrimSpace(v), NAValue) {
			return frame.MissingValue
		}

		return v
	case []byte:
		return formatValue(string(v))
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC().Format(time.RFC3339)
	case primitive.Decimal128:
		return v.String()
	case primitive.Null, primitive.Undefined:
		return frame.MissingValue
	}

	return fmt.Sprint(value)
}
