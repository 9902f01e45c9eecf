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

package config

import (
	"time"

	"modelpipe.io/modelpipe/pkg/objectstorage"
)

const (
	// SourceTypeMongo is the mongodb document store.
	SourceTypeMongo = "mongo"

	// SourceTypeRedis is the redis hash store.
	SourceTypeRedis = "redis"

	// SourceTypeMysql is the mysql table store.
	SourceTypeMysql = "mysql"

	// SourceTypePostgres is the postgres table store.
	SourceTypePostgres = "postgres"
)

const (
	// DefaultSourceTimeout is the default timeout of exporting a collection.
	DefaultSourceTimeout = 5 * time.Minute

	// DefaultSourceMongoDatabase is the default mongodb database.
	DefaultSourceMongoDatabase = "modelpipe"

	// DefaultSourceMysqlPort is the default port of mysql.
	DefaultSourceMysqlPort = 3306

	// DefaultSourcePostgresPort is the default port of postgres.
	DefaultSourcePostgresPort = 5432

	// DefaultSourcePostgresSSLMode is the default sslmode of postgres.
	DefaultSourcePostgresSSLMode = "disable"

	// DefaultSourcePostgresTimezone is the default timezone of postgres.
	DefaultSourcePostgresTimezone = "UTC"
)

const (
	// DefaultDataSplitRatio is the default ratio of test records.
	DefaultDataSplitRatio = 0.2

	// DefaultSeed is the default seed of split and model initialization.
	DefaultSeed = 42
)

const (
	// DefaultTrainingLearningRate is the default learning rate of gradient descent.
	DefaultTrainingLearningRate = 0.1

	// DefaultTrainingEpochs is the default number of gradient descent epochs.
	DefaultTrainingEpochs = 200

	// DefaultTrainingExpectedScore is the default minimum f1 score of a trained model.
	DefaultTrainingExpectedScore = 0.6
)

const (
	// DefaultObjectStorageName is the default object storage service.
	DefaultObjectStorageName = objectstorage.ServiceNameS3

	// DefaultRegistryBucketSuffix is appended to account id to build the bucket name.
	DefaultRegistryBucketSuffix = "-model-registry"

	// DefaultRegistryModelKey is the default remote key of the model.
	DefaultRegistryModelKey = "model-registry/model.json"

	// DefaultRegistryMetricKey is the default remote key of the metrics.
	DefaultRegistryMetricKey = "model-registry/metrics.json"
)

const (
	// DefaultLogRotateMaxSize is the default maximum size in megabytes of log files before rotation.
	DefaultLogRotateMaxSize = 1024

	// DefaultLogRotateMaxAge is the default number of days to retain old log files.
	DefaultLogRotateMaxAge = 7

	// DefaultLogRotateMaxBackups is the default number of old log files to keep.
	DefaultLogRotateMaxBackups = 20
)

const (
	// DefaultMetricsAddr is the default address of metrics server.
	DefaultMetricsAddr = ":8000"

	// DefaultMetricsJobName is the default job name of pushgateway.
	DefaultMetricsJobName = "modelpipe"
)
