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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewStageConfigs(t *testing.T) {
	assert := assert.New(t)
	cfg := New()
	cfg.Source.Collection = "records"
	cfg.Data.SchemaPath = "schema.yaml"
	cfg.Registry.AccountID = "123456"
	assert.NoError(cfg.Convert())

	timestamp := time.Date(2023, 3, 4, 5, 6, 7, 0, time.UTC)
	s := NewStageConfigs(cfg, "/foo", timestamp)

	runDir := filepath.Join("/foo", "03_04_2023_05_06_07")
	assert.Equal(runDir, s.RunDir)
	assert.Equal(&DataIngestionConfig{
		Collection:       "records",
		FeatureStorePath: filepath.Join(runDir, "data_ingestion/feature_store/data.csv"),
		TrainPath:        filepath.Join(runDir, "data_ingestion/ingested/train.csv"),
		TestPath:         filepath.Join(runDir, "data_ingestion/ingested/test.csv"),
		SplitRatio:       DefaultDataSplitRatio,
		Seed:             DefaultSeed,
		ExportTimeout:    DefaultSourceTimeout,
	}, s.DataIngestion)
	assert.Equal(filepath.Join(runDir, "data_validation/report.json"), s.DataValidation.ReportPath)
	assert.Equal("schema.yaml", s.DataTransformation.SchemaPath)
	assert.Equal(filepath.Join(runDir, "data_transformation/transformed_object/preprocessing.json"), s.DataTransformation.TransformedObjectPath)
	assert.Equal(filepath.Join(runDir, "model_trainer/trained_model/model.json"), s.ModelTrainer.ModelPath)
	assert.Equal(filepath.Join(runDir, "model_trainer/metrics.json"), s.ModelTrainer.MetricFilePath)
	assert.Equal(&ModelEvaluationConfig{
		RemoteModelKey:  DefaultRegistryModelKey,
		RemoteMetricKey: DefaultRegistryMetricKey,
		StrictLookup:    true,
	}, s.ModelEvaluation)
	assert.Equal(&ModelPusherConfig{
		Bucket:          "123456-model-registry",
		RemoteModelKey:  DefaultRegistryModelKey,
		RemoteMetricKey: DefaultRegistryMetricKey,
	}, s.ModelPusher)
}
