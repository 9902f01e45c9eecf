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
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"

	"modelpipe.io/modelpipe/cmd/dependency/base"
)

var (
	mockSourceConfig = SourceConfig{
		Type:       SourceTypeMongo,
		Collection: "records",
		Timeout:    DefaultSourceTimeout,
		Mongo: MongoConfig{
			URL:      "mongodb://localhost:27017",
			Database: DefaultSourceMongoDatabase,
		},
	}

	mockDataConfig = DataConfig{
		SchemaPath: "testdata/schema.yaml",
		SplitRatio: DefaultDataSplitRatio,
		Seed:       DefaultSeed,
	}

	mockRegistryConfig = RegistryConfig{
		AccountID:    "123456",
		BucketSuffix: DefaultRegistryBucketSuffix,
		ModelKey:     DefaultRegistryModelKey,
		MetricKey:    DefaultRegistryMetricKey,
		StrictLookup: true,
	}
)

func TestConfig_Load(t *testing.T) {
	config := &Config{
		Options: base.Options{
			Console:   true,
			Verbose:   true,
			PProfPort: 1000,
			Telemetry: base.TelemetryOption{
				Jaeger:      "http://localhost:14268/api/traces",
				ServiceName: "modelpipe-test",
			},
		},
		Server: ServerConfig{
			WorkHome:      "/tmp/modelpipe",
			LogDir:        "/tmp/modelpipe/logs",
			LogMaxSize:    512,
			LogMaxAge:     5,
			LogMaxBackups: 3,
			ArtifactDir:   "/tmp/modelpipe/artifacts",
		},
		Source: SourceConfig{
			Type:       SourceTypeMongo,
			Collection: "records",
			Timeout:    time.Minute,
			Mongo: MongoConfig{
				URL:      "mongodb://localhost:27017",
				Database: "foo",
			},
			Redis: RedisConfig{
				Addrs:      []string{"127.0.0.1:6379"},
				MasterName: "master",
				Username:   "foo",
				Password:   "bar",
				DB:         1,
			},
			Mysql: MysqlConfig{
				User:     "foo",
				Password: "bar",
				Host:     "localhost",
				Port:     3306,
				DBName:   "modelpipe",
				TLS: &TLSClientConfig{
					Cert:               "cert.pem",
					Key:                "key.pem",
					CA:                 "ca.pem",
					InsecureSkipVerify: true,
				},
			},
			Postgres: PostgresConfig{
				User:     "foo",
				Password: "bar",
				Host:     "localhost",
				Port:     5432,
				DBName:   "modelpipe",
				SSLMode:  "disable",
				Timezone: "UTC",
			},
		},
		Data: DataConfig{
			SchemaPath: "testdata/schema.yaml",
			SplitRatio: 0.25,
			Seed:       7,
		},
		Training: TrainingConfig{
			LearningRate:  0.05,
			Epochs:        100,
			ExpectedScore: 0.5,
			Seed:          7,
		},
		ObjectStorage: ObjectStorageConfig{
			Name:             "s3",
			Region:           "us-east-1",
			Endpoint:         "http://localhost:9000",
			AccessKey:        "foo",
			SecretKey:        "bar",
			S3ForcePathStyle: true,
		},
		Registry: RegistryConfig{
			AccountID:    "123456",
			BucketSuffix: "-registry",
			ModelKey:     "production/model.json",
			MetricKey:    "production/metrics.json",
			StrictLookup: false,
			CreateBucket: true,
		},
		Metrics: MetricsConfig{
			Enable:      true,
			Addr:        ":8000",
			PushGateway: "http://localhost:9091",
			JobName:     "modelpipe",
		},
	}

	pipelineConfigYAML := &Config{}
	contentYAML, _ := os.ReadFile("./testdata/pipeline.yaml")
	if err := yaml.Unmarshal(contentYAML, &pipelineConfigYAML); err != nil {
		t.Fatal(err)
	}

	assert := assert.New(t)
	assert.EqualValues(config, pipelineConfigYAML)
	assert.NoError(pipelineConfigYAML.Convert())
	assert.Equal("123456-registry", pipelineConfigYAML.Registry.BucketName)
	assert.NoError(pipelineConfigYAML.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		mock   func(cfg *Config)
		expect func(t *testing.T, err error)
	}{
		{
			name:   "valid config",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Data = mockDataConfig
				cfg.Registry = mockRegistryConfig
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.NoError(err)
			},
		},
		{
			name:   "source requires parameter type",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Source.Type = "foo"
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "source requires parameter type")
			},
		},
		{
			name:   "source requires parameter collection",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Source.Collection = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "source requires parameter collection")
			},
		},
		{
			name:   "mongo requires parameter url",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Source.Mongo.URL = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "mongo requires parameter url")
			},
		},
		{
			name:   "redis requires parameter addrs",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Source.Type = SourceTypeRedis
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "redis requires parameter addrs")
			},
		},
		{
			name:   "mysql requires parameter host",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Source.Type = SourceTypeMysql
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "mysql requires parameter host")
			},
		},
		{
			name:   "postgres requires parameter dbname",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Source.Type = SourceTypePostgres
				cfg.Source.Postgres.Host = "localhost"
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "postgres requires parameter dbname")
			},
		},
		{
			name:   "data requires parameter schemaPath",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "data requires parameter schemaPath")
			},
		},
		{
			name:   "data requires parameter splitRatio",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Data = mockDataConfig
				cfg.Data.SplitRatio = 1
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "data requires parameter splitRatio in range (0, 1)")
			},
		},
		{
			name:   "training requires parameter learningRate",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Data = mockDataConfig
				cfg.Training.LearningRate = 0
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "training requires parameter learningRate")
			},
		},
		{
			name:   "training requires parameter epochs",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Data = mockDataConfig
				cfg.Training.Epochs = 0
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "training requires parameter epochs")
			},
		},
		{
			name:   "training requires parameter expectedScore",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Data = mockDataConfig
				cfg.Training.ExpectedScore = 1.5
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "training requires parameter expectedScore in range [0, 1]")
			},
		},
		{
			name:   "objectStorage requires parameter name",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Data = mockDataConfig
				cfg.ObjectStorage.Name = "foo"
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "objectStorage requires parameter name")
			},
		},
		{
			name:   "objectStorage requires parameter endpoint",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Data = mockDataConfig
				cfg.ObjectStorage.Name = "oss"
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "objectStorage requires parameter endpoint")
			},
		},
		{
			name:   "registry requires parameter accountID or bucketName",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Data = mockDataConfig
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "registry requires parameter accountID or bucketName")
			},
		},
		{
			name:   "registry requires different keys",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Data = mockDataConfig
				cfg.Registry = mockRegistryConfig
				cfg.Registry.MetricKey = cfg.Registry.ModelKey
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "registry requires different modelKey and metricKey")
			},
		},
		{
			name:   "metrics requires parameter addr",
			config: New(),
			mock: func(cfg *Config) {
				cfg.Source = mockSourceConfig
				cfg.Data = mockDataConfig
				cfg.Registry = mockRegistryConfig
				cfg.Metrics.Enable = true
				cfg.Metrics.Addr = ""
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "metrics requires parameter addr")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.mock(tc.config)
			if err := tc.config.Convert(); err != nil {
				t.Fatal(err)
			}

			tc.expect(t, tc.config.Validate())
		})
	}
}

func TestConfig_Convert(t *testing.T) {
	assert := assert.New(t)
	cfg := New()
	cfg.Registry.AccountID = "123456"
	assert.NoError(cfg.Convert())
	assert.Equal("123456-model-registry", cfg.Registry.BucketName)
	assert.Equal(DefaultMetricsJobName, cfg.Telemetry.ServiceName)

	cfg = New()
	cfg.Registry.AccountID = "123456"
	cfg.Registry.BucketName = "foo"
	assert.NoError(cfg.Convert())
	assert.Equal("foo", cfg.Registry.BucketName)
}
