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

package training

import (
	"context"
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/evaluation"

	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/internal/pipeerrors"
	"modelpipe.io/modelpipe/pipeline/artifact"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pipeline/models"
	"modelpipe.io/modelpipe/pipeline/storage"
	"modelpipe.io/modelpipe/pkg/frame"
)

// Name is the stage name.
const Name = "training"

// Trainer fits the classifier and scores it on the test partition.
type Trainer struct {
	config *config.ModelTrainerConfig
}

// New returns a new Trainer instance.
func New(cfg *config.ModelTrainerConfig) *Trainer {
	return &Trainer{config: cfg}
}

// Run writes the estimator and its metrics, nothing is kept on failure.
func (t *Trainer) Run(ctx context.Context, transformation *artifact.TransformationArtifact) (*artifact.TrainerArtifact, error) {
	log := logger.With("stage", Name)

	transformer := &models.Transformer{}
	if err := storage.ReadJSON(transformation.TransformedObjectPath, transformer); err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTraining, "LoadTransformer", err)
	}

	trainFrame, err := frame.ReadFile(transformation.TransformedTrainPath)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTraining, "ReadTrain", err)
	}

	testFrame, err := frame.ReadFile(transformation.TransformedTestPath)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTraining, "ReadTest", err)
	}

	train, err := models.NewInstances(trainFrame, true)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTraining, "ReadTrain", err)
	}

	test, err := models.NewInstances(testFrame, true)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTraining, "ReadTest", err)
	}

	classifier := models.NewLogisticRegression()
	if err := classifier.Fit(train, t.config.LearningRate, t.config.Epochs, t.config.Seed); err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTraining, "Fit", err)
	}

	predicted, err := classifier.Predict(test)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTraining, "Predict", err)
	}

	actual, err := models.ClassValues(test)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTraining, "Predict", err)
	}

	metric := Score(actual, predicted)
	log.Infof("trained model scored accuracy %f f1 %f precision %f recall %f", metric.Accuracy, metric.F1, metric.Precision, metric.Recall)

	if metric.F1 < t.config.ExpectedScore {
		return nil, pipeerrors.New(pipeerrors.KindTraining, "Run",
			fmt.Errorf("%w: f1 score %f, expected score %f", pipeerrors.ErrBelowExpectedScore, metric.F1, t.config.ExpectedScore))
	}

	scope := storage.NewScope()
	if err := scope.WriteJSON(t.config.ModelPath, models.NewEstimator(transformer, classifier)); err != nil {
		return nil, t.rollback(scope, "WriteModel", err)
	}

	if err := scope.WriteJSON(t.config.MetricFilePath, metric); err != nil {
		return nil, t.rollback(scope, "WriteMetrics", err)
	}

	a := &artifact.TrainerArtifact{
		ModelPath:      t.config.ModelPath,
		Metric:         metric,
		MetricFilePath: t.config.MetricFilePath,
	}
	if err := artifact.Validate(a); err != nil {
		return nil, t.rollback(scope, "Run", err)
	}

	log.Infof("training completed: %s", a)
	return a, nil
}

func (t *Trainer) rollback(scope storage.Scope, op string, err error) error {
	if rerr := scope.Rollback(); rerr != nil {
		logger.With("stage", Name).Warnf("rollback failed: %s", rerr.Error())
	}

	return pipeerrors.New(pipeerrors.KindTraining, op, err)
}

// Score returns the metrics of the positive class, undefined scores are 0.
func Score(actual []float64, predicted []int) artifact.ClassificationMetric {
	matrix := evaluation.ConfusionMatrix{
		models.NegativeClass: map[string]int{},
		models.PositiveClass: map[string]int{},
	}

	for i, class := range predicted {
		matrix[className(int(actual[i]))][className(class)]++
	}

	return artifact.ClassificationMetric{
		Accuracy:  finite(evaluation.GetAccuracy(matrix)),
		F1:        finite(evaluation.GetF1Score(models.PositiveClass, matrix)),
		Precision: finite(evaluation.GetPrecision(models.PositiveClass, matrix)),
		Recall:    finite(evaluation.GetRecall(models.PositiveClass, matrix)),
	}
}

func className(class int) string {
	if class == 1 {
		return models.PositiveClass
	}

	return models.NegativeClass
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	return v
}
