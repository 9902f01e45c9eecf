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

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pkg/frame"
)

type mongoSource struct {
	client   *mongo.Client
	database string
}

// newMongo connects to mongodb and checks the primary is reachable.
func newMongo(ctx context.Context, cfg *config.MongoConfig) (DataSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &mongoSource{
		client:   client,
		database: cfg.Database,
	}, nil
}

// Export returns all documents of the collection.
func (m *mongoSource) Export(ctx context.Context, collection string) (*frame.Frame, error) {
	cursor, err := m.client.Database(m.database).Collection(collection).Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var documents []bson.D
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, err
	}

	logger.WithSource(config.SourceTypeMongo, collection).Infof("exported %d documents", len(documents))
	return newFrame(documentsToRecords(documents)), nil
}

// Close disconnects from mongodb.
func (m *mongoSource) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func documentsToRecords(documents []bson.D) [][]field {
	records := make([][]field, 0, len(documents))
	for _, document := range documents {
		record := make([]field, 0, len(document))
		for _, e := range document {
			record = append(record, field{key: e.Key, value: e.Value})
		}

		records = append(records, record)
	}

	return records
}
