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

package evaluation

import (
	"context"

	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/internal/pipeerrors"
	"modelpipe.io/modelpipe/pipeline/artifact"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pipeline/registry"
)

// Name is the stage name.
const Name = "evaluation"

// Evaluation compares the trained model against the production model.
type Evaluation struct {
	config   *config.ModelEvaluationConfig
	registry registry.Registry
}

// New returns a new Evaluation instance.
func New(cfg *config.ModelEvaluationConfig, r registry.Registry) *Evaluation {
	return &Evaluation{
		config:   cfg,
		registry: r,
	}
}

// Run returns the promotion decision of the trained model.
func (e *Evaluation) Run(ctx context.Context, trainer *artifact.TrainerArtifact) (*artifact.EvaluationArtifact, error) {
	result, err := e.Evaluate(ctx, trainer)
	if err != nil {
		return nil, err
	}

	a := &artifact.EvaluationArtifact{
		Accepted:         result.Accepted,
		RemoteModelKey:   e.config.RemoteModelKey,
		RemoteMetricKey:  e.config.RemoteMetricKey,
		TrainedModelPath: trainer.ModelPath,
		MetricFilePath:   trainer.MetricFilePath,
		Diff:             result.Diff,
	}
	if err := artifact.Validate(a); err != nil {
		return nil, pipeerrors.New(pipeerrors.KindEvaluation, "Run", err)
	}

	logger.With("stage", Name).Infof("evaluation completed: %s", a)
	return a, nil
}

// Evaluate accepts the trained model when its f1 score is strictly greater than the
// production f1 score. A missing or zero production score means no production model,
// the baseline is 0 and BestF1 is nil.
func (e *Evaluation) Evaluate(ctx context.Context, trainer *artifact.TrainerArtifact) (*artifact.EvaluationResult, error) {
	log := logger.With("stage", Name)

	var best *float64
	lookup := e.registry.LookupF1Score(ctx)
	switch lookup.Status {
	case registry.Found:
		if lookup.Value != 0 {
			value := lookup.Value
			best = &value
		}
	case registry.NotFound:
		log.Info("no production model, trained model is compared with baseline 0")
	case registry.TransientError:
		if e.config.StrictLookup {
			return nil, pipeerrors.New(pipeerrors.KindEvaluation, "LookupF1Score", lookup.Err)
		}

		log.Warnf("production f1 score can not be read, treated as absent: %v", lookup.Err)
	}

	var baseline float64
	if best != nil {
		baseline = *best
	}

	trainedF1 := trainer.Metric.F1
	result := &artifact.EvaluationResult{
		TrainedF1: trainedF1,
		BestF1:    best,
		Accepted:  trainedF1 > baseline,
		Diff:      trainedF1 - baseline,
	}

	log.Infof("trained f1 score %f, baseline %f, accepted %t", trainedF1, baseline, result.Accepted)
	return result, nil
}
