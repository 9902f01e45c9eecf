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

// Package artifact defines the immutable records passed between stages.
package artifact

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})

	return validate
}

// Validate checks every required field of an artifact is populated.
func Validate(a any) error {
	if err := getValidator().Struct(a); err != nil {
		return fmt.Errorf("incomplete %T: %w", a, err)
	}

	return nil
}

type IngestionArtifact struct {
	TrainPath string `validate:"required"`
	TestPath  string `validate:"required"`
}

func (a *IngestionArtifact) String() string {
	return fmt.Sprintf("IngestionArtifact{TrainPath: %s, TestPath: %s}", a.TrainPath, a.TestPath)
}

type ValidationArtifact struct {
	Status     bool
	Message    string
	ReportPath string `validate:"required"`
}

func (a *ValidationArtifact) String() string {
	return fmt.Sprintf("ValidationArtifact{Status: %t, Message: %q, ReportPath: %s}", a.Status, a.Message, a.ReportPath)
}

type TransformationArtifact struct {
	TransformedObjectPath string `validate:"required"`
	TransformedTrainPath  string `validate:"required"`
	TransformedTestPath   string `validate:"required"`
}

func (a *TransformationArtifact) String() string {
	return fmt.Sprintf("TransformationArtifact{TransformedObjectPath: %s, TransformedTrainPath: %s, TransformedTestPath: %s}",
		a.TransformedObjectPath, a.TransformedTrainPath, a.TransformedTestPath)
}

// ClassificationMetric is also the layout of the metrics file.
type ClassificationMetric struct {
	Accuracy  float64 `json:"accuracy_score" validate:"gte=0,lte=1"`
	F1        float64 `json:"f1_score" validate:"gte=0,lte=1"`
	Precision float64 `json:"precision_score" validate:"gte=0,lte=1"`
	Recall    float64 `json:"recall_score" validate:"gte=0,lte=1"`
}

type TrainerArtifact struct {
	ModelPath      string               `validate:"required"`
	Metric         ClassificationMetric
	MetricFilePath string               `validate:"required"`
}

func (a *TrainerArtifact) String() string {
	return fmt.Sprintf("TrainerArtifact{ModelPath: %s, F1: %f, MetricFilePath: %s}", a.ModelPath, a.Metric.F1, a.MetricFilePath)
}

// EvaluationResult is the outcome of the promotion gate, BestF1 is nil
// when there is no production model.
type EvaluationResult struct {
	TrainedF1 float64
	BestF1    *float64
	Accepted  bool
	Diff      float64
}

type EvaluationArtifact struct {
	Accepted         bool
	RemoteModelKey   string `validate:"required"`
	RemoteMetricKey  string `validate:"required"`
	TrainedModelPath string `validate:"required"`
	MetricFilePath   string `validate:"required"`
	Diff             float64
}

func (a *EvaluationArtifact) String() string {
	return fmt.Sprintf("EvaluationArtifact{Accepted: %t, Diff: %f, TrainedModelPath: %s}", a.Accepted, a.Diff, a.TrainedModelPath)
}

// PusherArtifact keys are nil when nothing was published.
type PusherArtifact struct {
	Bucket          string  `validate:"required"`
	RemoteModelKey  *string `validate:"omitempty,min=1"`
	RemoteMetricKey *string `validate:"omitempty,min=1"`
}

// Pushed returns whether the model was published.
func (a *PusherArtifact) Pushed() bool {
	return a.RemoteModelKey != nil && a.RemoteMetricKey != nil
}

func (a *PusherArtifact) String() string {
	if !a.Pushed() {
		return fmt.Sprintf("PusherArtifact{Bucket: %s, skipped}", a.Bucket)
	}

	return fmt.Sprintf("PusherArtifact{Bucket: %s, RemoteModelKey: %s, RemoteMetricKey: %s}", a.Bucket, *a.RemoteModelKey, *a.RemoteMetricKey)
}
