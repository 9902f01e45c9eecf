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
	"errors"
	"time"

	"golang.org/x/exp/slices"

	"modelpipe.io/modelpipe/cmd/dependency/base"
	"modelpipe.io/modelpipe/pkg/objectstorage"
)

type Config struct {
	// Base options.
	base.Options `yaml:",inline" mapstructure:",squash"`

	// Server configuration.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Source configuration.
	Source SourceConfig `yaml:"source" mapstructure:"source"`

	// Data configuration.
	Data DataConfig `yaml:"data" mapstructure:"data"`

	// Training configuration.
	Training TrainingConfig `yaml:"training" mapstructure:"training"`

	// ObjectStorage configuration.
	ObjectStorage ObjectStorageConfig `yaml:"objectStorage" mapstructure:"objectStorage"`

	// Registry configuration.
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`

	// Metrics configuration.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

type ServerConfig struct {
	// WorkHome is working directory.
	WorkHome string `yaml:"workHome" mapstructure:"workHome"`

	// Server log directory.
	LogDir string `yaml:"logDir" mapstructure:"logDir"`

	// Maximum size in megabytes of log files before rotation (default: 1024)
	LogMaxSize int `yaml:"logMaxSize" mapstructure:"logMaxSize"`

	// Maximum number of days to retain old log files (default: 7)
	LogMaxAge int `yaml:"logMaxAge" mapstructure:"logMaxAge"`

	// Maximum number of old log files to keep (default: 20)
	LogMaxBackups int `yaml:"logMaxBackups" mapstructure:"logMaxBackups"`

	// ArtifactDir is the root directory of run artifacts.
	ArtifactDir string `yaml:"artifactDir" mapstructure:"artifactDir"`
}

type SourceConfig struct {
	// Type is the source type, one of mongo, redis, mysql and postgres.
	Type string `yaml:"type" mapstructure:"type"`

	// Collection is the collection, key prefix or table to export.
	Collection string `yaml:"collection" mapstructure:"collection"`

	// Timeout of connecting to the source and of exporting the collection.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Mongo configuration.
	Mongo MongoConfig `yaml:"mongo" mapstructure:"mongo"`

	// Redis configuration.
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`

	// Mysql configuration.
	Mysql MysqlConfig `yaml:"mysql" mapstructure:"mysql"`

	// Postgres configuration.
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
}

type MongoConfig struct {
	// URL is the connection string, like mongodb://localhost:27017.
	URL string `yaml:"url" mapstructure:"url"`

	// Database name.
	Database string `yaml:"database" mapstructure:"database"`
}

type RedisConfig struct {
	// Addrs is server addresses.
	Addrs []string `yaml:"addrs" mapstructure:"addrs"`

	// MasterName is the sentinel master name.
	MasterName string `yaml:"masterName" mapstructure:"masterName"`

	// Username is server username.
	Username string `yaml:"username" mapstructure:"username"`

	// Password is server password.
	Password string `yaml:"password" mapstructure:"password"`

	// DB is server db.
	DB int `yaml:"db" mapstructure:"db"`
}

type MysqlConfig struct {
	// Server username.
	User string `yaml:"user" mapstructure:"user"`

	// Server password.
	Password string `yaml:"password" mapstructure:"password"`

	// Server host.
	Host string `yaml:"host" mapstructure:"host"`

	// Server port.
	Port int `yaml:"port" mapstructure:"port"`

	// Server DB name.
	DBName string `yaml:"dbname" mapstructure:"dbname"`

	// Client TLS configuration.
	TLS *TLSClientConfig `yaml:"tls" mapstructure:"tls"`
}

type PostgresConfig struct {
	// Server username.
	User string `yaml:"user" mapstructure:"user"`

	// Server password.
	Password string `yaml:"password" mapstructure:"password"`

	// Server host.
	Host string `yaml:"host" mapstructure:"host"`

	// Server port.
	Port int `yaml:"port" mapstructure:"port"`

	// Server DB name.
	DBName string `yaml:"dbname" mapstructure:"dbname"`

	// SSL mode.
	SSLMode string `yaml:"sslMode" mapstructure:"sslMode"`

	// Server timezone.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
}

type TLSClientConfig struct {
	// Client certificate file path.
	Cert string `yaml:"cert" mapstructure:"cert"`

	// Client key file path.
	Key string `yaml:"key" mapstructure:"key"`

	// CA file path.
	CA string `yaml:"ca" mapstructure:"ca"`

	// InsecureSkipVerify controls whether a client verifies the
	// server's certificate chain and host name.
	InsecureSkipVerify bool `yaml:"insecureSkipVerify" mapstructure:"insecureSkipVerify"`
}

type DataConfig struct {
	// SchemaPath is the path of schema descriptor.
	SchemaPath string `yaml:"schemaPath" mapstructure:"schemaPath"`

	// SplitRatio is the ratio of test records, in (0, 1).
	SplitRatio float64 `yaml:"splitRatio" mapstructure:"splitRatio"`

	// Seed of the train and test split.
	Seed int64 `yaml:"seed" mapstructure:"seed"`
}

type TrainingConfig struct {
	// LearningRate of gradient descent.
	LearningRate float64 `yaml:"learningRate" mapstructure:"learningRate"`

	// Epochs of gradient descent.
	Epochs int `yaml:"epochs" mapstructure:"epochs"`

	// ExpectedScore is the minimum f1 score of a trained model.
	ExpectedScore float64 `yaml:"expectedScore" mapstructure:"expectedScore"`

	// Seed of coefficient initialization.
	Seed int64 `yaml:"seed" mapstructure:"seed"`
}

type ObjectStorageConfig struct {
	// Name is object storage name of type, it can be s3 or oss.
	Name string `yaml:"name" mapstructure:"name"`

	// Region is storage region.
	Region string `yaml:"region" mapstructure:"region"`

	// Endpoint is datacenter endpoint.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// AccessKey is access key ID.
	AccessKey string `yaml:"accessKey" mapstructure:"accessKey"`

	// SecretKey is access key secret.
	SecretKey string `yaml:"secretKey" mapstructure:"secretKey"`

	// S3ForcePathStyle sets force path style for s3 compatible storage.
	S3ForcePathStyle bool `yaml:"s3ForcePathStyle" mapstructure:"s3ForcePathStyle"`
}

type RegistryConfig struct {
	// AccountID is the account identifier prefixing the bucket name.
	AccountID string `yaml:"accountID" mapstructure:"accountID"`

	// BucketSuffix is appended to account id.
	BucketSuffix string `yaml:"bucketSuffix" mapstructure:"bucketSuffix"`

	// BucketName overrides the derived bucket name.
	BucketName string `yaml:"bucketName" mapstructure:"bucketName"`

	// ModelKey is the remote key of the production model.
	ModelKey string `yaml:"modelKey" mapstructure:"modelKey"`

	// MetricKey is the remote key of the production metrics.
	MetricKey string `yaml:"metricKey" mapstructure:"metricKey"`

	// StrictLookup fails evaluation when the production metric can not be read,
	// otherwise it is treated as absent.
	StrictLookup bool `yaml:"strictLookup" mapstructure:"strictLookup"`

	// CreateBucket creates the bucket before publishing when it does not exist.
	CreateBucket bool `yaml:"createBucket" mapstructure:"createBucket"`
}

type MetricsConfig struct {
	// Enable metrics service.
	Enable bool `yaml:"enable" mapstructure:"enable"`

	// Metrics service address.
	Addr string `yaml:"addr" mapstructure:"addr"`

	// PushGateway address, metrics are pushed when the run ends.
	PushGateway string `yaml:"pushGateway" mapstructure:"pushGateway"`

	// JobName of pushed metrics.
	JobName string `yaml:"jobName" mapstructure:"jobName"`
}

// New default configuration.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			LogMaxSize:    DefaultLogRotateMaxSize,
			LogMaxAge:     DefaultLogRotateMaxAge,
			LogMaxBackups: DefaultLogRotateMaxBackups,
		},
		Source: SourceConfig{
			Type:    SourceTypeMongo,
			Timeout: DefaultSourceTimeout,
			Mongo: MongoConfig{
				Database: DefaultSourceMongoDatabase,
			},
			Mysql: MysqlConfig{
				Port: DefaultSourceMysqlPort,
			},
			Postgres: PostgresConfig{
				Port:     DefaultSourcePostgresPort,
				SSLMode:  DefaultSourcePostgresSSLMode,
				Timezone: DefaultSourcePostgresTimezone,
			},
		},
		Data: DataConfig{
			SplitRatio: DefaultDataSplitRatio,
			Seed:       DefaultSeed,
		},
		Training: TrainingConfig{
			LearningRate:  DefaultTrainingLearningRate,
			Epochs:        DefaultTrainingEpochs,
			ExpectedScore: DefaultTrainingExpectedScore,
			Seed:          DefaultSeed,
		},
		ObjectStorage: ObjectStorageConfig{
			Name: DefaultObjectStorageName,
		},
		Registry: RegistryConfig{
			BucketSuffix: DefaultRegistryBucketSuffix,
			ModelKey:     DefaultRegistryModelKey,
			MetricKey:    DefaultRegistryMetricKey,
			StrictLookup: true,
		},
		Metrics: MetricsConfig{
			Enable:  false,
			Addr:    DefaultMetricsAddr,
			JobName: DefaultMetricsJobName,
		},
	}
}

// Validate config parameters.
func (cfg *Config) Validate() error {
	if err := cfg.Source.Validate(); err != nil {
		return err
	}

	if cfg.Data.SchemaPath == "" {
		return errors.New("data requires parameter schemaPath")
	}

	if cfg.Data.SplitRatio <= 0 || cfg.Data.SplitRatio >= 1 {
		return errors.New("data requires parameter splitRatio in range (0, 1)")
	}

	if cfg.Training.LearningRate <= 0 {
		return errors.New("training requires parameter learningRate")
	}

	if cfg.Training.Epochs <= 0 {
		return errors.New("training requires parameter epochs")
	}

	if cfg.Training.ExpectedScore < 0 || cfg.Training.ExpectedScore > 1 {
		return errors.New("training requires parameter expectedScore in range [0, 1]")
	}

	if err := cfg.ObjectStorage.Validate(); err != nil {
		return err
	}

	if err := cfg.Registry.Validate(); err != nil {
		return err
	}

	if cfg.Metrics.Enable {
		if cfg.Metrics.Addr == "" {
			return errors.New("metrics requires parameter addr")
		}
	}

	if cfg.Metrics.PushGateway != "" && cfg.Metrics.JobName == "" {
		return errors.New("metrics requires parameter jobName")
	}

	return nil
}

// Validate source parameters.
func (cfg *SourceConfig) Validate() error {
	if !slices.Contains([]string{SourceTypeMongo, SourceTypeRedis, SourceTypeMysql, SourceTypePostgres}, cfg.Type) {
		return errors.New("source requires parameter type")
	}

	if cfg.Collection == "" {
		return errors.New("source requires parameter collection")
	}

	switch cfg.Type {
	case SourceTypeMongo:
		if cfg.Mongo.URL == "" {
			return errors.New("mongo requires parameter url")
		}

		if cfg.Mongo.Database == "" {
			return errors.New("mongo requires parameter database")
		}
	case SourceTypeRedis:
		if len(cfg.Redis.Addrs) == 0 {
			return errors.New("redis requires parameter addrs")
		}
	case SourceTypeMysql:
		if cfg.Mysql.Host == "" {
			return errors.New("mysql requires parameter host")
		}

		if cfg.Mysql.DBName == "" {
			return errors.New("mysql requires parameter dbname")
		}
	case SourceTypePostgres:
		if cfg.Postgres.Host == "" {
			return errors.New("postgres requires parameter host")
		}

		if cfg.Postgres.DBName == "" {
			return errors.New("postgres requires parameter dbname")
		}
	}

	return nil
}

// Validate object storage parameters.
func (cfg *ObjectStorageConfig) Validate() error {
	if !slices.Contains([]string{objectstorage.ServiceNameS3, objectstorage.ServiceNameOSS}, cfg.Name) {
		return errors.New("objectStorage requires parameter name")
	}

	if cfg.Name == objectstorage.ServiceNameOSS {
		if cfg.Endpoint == "" {
			return errors.New("objectStorage requires parameter endpoint")
		}

		if cfg.AccessKey == "" {
			return errors.New("objectStorage requires parameter accessKey")
		}

		if cfg.SecretKey == "" {
			return errors.New("objectStorage requires parameter secretKey")
		}
	}

	return nil
}

// Validate registry parameters.
func (cfg *RegistryConfig) Validate() error {
	if cfg.BucketName == "" {
		return errors.New("registry requires parameter accountID or bucketName")
	}

	if cfg.ModelKey == "" {
		return errors.New("registry requires parameter modelKey")
	}

	if cfg.MetricKey == "" {
		return errors.New("registry requires parameter metricKey")
	}

	if cfg.ModelKey == cfg.MetricKey {
		return errors.New("registry requires different modelKey and metricKey")
	}

	return nil
}

// Convert fills the derived parameters.
func (cfg *Config) Convert() error {
	if cfg.Registry.BucketName == "" && cfg.Registry.AccountID != "" {
		cfg.Registry.BucketName = cfg.Registry.AccountID + cfg.Registry.BucketSuffix
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = DefaultMetricsJobName
	}

	return nil
}
