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
	"time"
)

// RunDirTimeLayout is the layout of per run directory names.
const RunDirTimeLayout = "01_02_2006_15_04_05"

const (
	dataIngestionDirName      = "data_ingestion"
	featureStoreDirName       = "feature_store"
	ingestedDirName           = "ingested"
	featureStoreFileName      = "data.csv"
	trainFileName             = "train.csv"
	testFileName              = "test.csv"
	dataValidationDirName     = "data_validation"
	reportFileName            = "report.json"
	dataTransformationDirName = "data_transformation"
	transformedObjectDirName  = "transformed_object"
	transformedDirName        = "transformed"
	transformedObjectFileName = "preprocessing.json"
	modelTrainerDirName       = "model_trainer"
	trainedModelDirName       = "trained_model"
	modelFileName             = "model.json"
	metricFileName            = "metrics.json"
)

type DataIngestionConfig struct {
	// Collection to export.
	Collection string

	// FeatureStorePath is the path of the full snapshot.
	FeatureStorePath string

	// TrainPath is the path of the train partition.
	TrainPath string

	// TestPath is the path of the test partition.
	TestPath string

	// SplitRatio is the ratio of test records.
	SplitRatio float64

	// Seed of the split.
	Seed int64

	// ExportTimeout bounds exporting the collection, zero means no bound.
	ExportTimeout time.Duration
}

type DataValidationConfig struct {
	SchemaPath string
	ReportPath string
}

type DataTransformationConfig struct {
	SchemaPath            string
	TransformedObjectPath string
	TransformedTrainPath  string
	TransformedTestPath   string
}

type ModelTrainerConfig struct {
	ModelPath      string
	MetricFilePath string
	LearningRate   float64
	Epochs         int
	ExpectedScore  float64
	Seed           int64
}

type ModelEvaluationConfig struct {
	RemoteModelKey  string
	RemoteMetricKey string

	// StrictLookup fails on unreadable production metrics.
	StrictLookup bool
}

type ModelPusherConfig struct {
	Bucket          string
	RemoteModelKey  string
	RemoteMetricKey string
}

// StageConfigs are the read-only configs of one run.
type StageConfigs struct {
	// RunDir is the artifact directory of the run.
	RunDir string

	DataIngestion      *DataIngestionConfig
	DataValidation     *DataValidationConfig
	DataTransformation *DataTransformationConfig
	ModelTrainer       *ModelTrainerConfig
	ModelEvaluation    *ModelEvaluationConfig
	ModelPusher        *ModelPusherConfig
}

// NewStageConfigs builds the stage configs of a run started at timestamp.
func NewStageConfigs(cfg *Config, artifactDir string, timestamp time.Time) *StageConfigs {
	runDir := filepath.Join(artifactDir, timestamp.Format(RunDirTimeLayout))
	ingestionDir := filepath.Join(runDir, dataIngestionDirName)
	transformationDir := filepath.Join(runDir, dataTransformationDirName)
	trainerDir := filepath.Join(runDir, modelTrainerDirName)

	return &StageConfigs{
		RunDir: runDir,
		DataIngestion: &DataIngestionConfig{
			Collection:       cfg.Source.Collection,
			FeatureStorePath: filepath.Join(ingestionDir, featureStoreDirName, featureStoreFileName),
			TrainPath:        filepath.Join(ingestionDir, ingestedDirName, trainFileName),
			TestPath:         filepath.Join(ingestionDir, ingestedDirName, testFileName),
			SplitRatio:       cfg.Data.SplitRatio,
			Seed:             cfg.Data.Seed,
			ExportTimeout:    cfg.Source.Timeout,
		},
		DataValidation: &DataValidationConfig{
			SchemaPath: cfg.Data.SchemaPath,
			ReportPath: filepath.Join(runDir, dataValidationDirName, reportFileName),
		},
		DataTransformation: &DataTransformationConfig{
			SchemaPath:            cfg.Data.SchemaPath,
			TransformedObjectPath: filepath.Join(transformationDir, transformedObjectDirName, transformedObjectFileName),
			TransformedTrainPath:  filepath.Join(transformationDir, transformedDirName, trainFileName),
			TransformedTestPath:   filepath.Join(transformationDir, transformedDirName, testFileName),
		},
		ModelTrainer: &ModelTrainerConfig{
			ModelPath:      filepath.Join(trainerDir, trainedModelDirName, modelFileName),
			MetricFilePath: filepath.Join(trainerDir, metricFileName),
			LearningRate:   cfg.Training.LearningRate,
			Epochs:         cfg.Training.Epochs,
			ExpectedScore:  cfg.Training.ExpectedScore,
			Seed:           cfg.Training.Seed,
		},
		ModelEvaluation: &ModelEvaluationConfig{
			RemoteModelKey:  cfg.Registry.ModelKey,
			RemoteMetricKey: cfg.Registry.MetricKey,
			StrictLookup:    cfg.Registry.StrictLookup,
		},
		ModelPusher: &ModelPusherConfig{
			Bucket:          cfg.Registry.BucketName,
			RemoteModelKey:  cfg.Registry.ModelKey,
			RemoteMetricKey: cfg.Registry.MetricKey,
		},
	}
}
