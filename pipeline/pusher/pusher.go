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

package pusher

import (
	"context"

	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/internal/pipeerrors"
	"modelpipe.io/modelpipe/pipeline/artifact"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pipeline/registry"
)

// Name is the stage name.
const Name = "pusher"

// Pusher publishes an accepted model to the production registry.
type Pusher struct {
	config   *config.ModelPusherConfig
	registry registry.Registry
}

// New returns a new Pusher instance.
func New(cfg *config.ModelPusherConfig, r registry.Registry) *Pusher {
	return &Pusher{
		config:   cfg,
		registry: r,
	}
}

// Run uploads the model and then its metrics. A rejected model is never uploaded
// and the returned artifact has no remote keys. A failed metrics upload leaves
// the uploaded model in place.
func (p *Pusher) Run(ctx context.Context, evaluation *artifact.EvaluationArtifact) (*artifact.PusherArtifact, error) {
	log := logger.With("stage", Name, "bucket", p.config.Bucket)

	if !evaluation.Accepted {
		log.Info("trained model is not accepted, push skipped")
		return &artifact.PusherArtifact{Bucket: p.config.Bucket}, nil
	}

	if err := p.registry.PutModel(ctx, evaluation.TrainedModelPath); err != nil {
		return nil, pipeerrors.New(pipeerrors.KindPush, "PutModel", err)
	}

	if err := p.registry.PutMetrics(ctx, evaluation.MetricFilePath); err != nil {
		log.Errorf("model %s was published without metrics", p.config.RemoteModelKey)
		return nil, pipeerrors.New(pipeerrors.KindPush, "PutMetrics", err)
	}

	modelKey, metricKey := p.config.RemoteModelKey, p.config.RemoteMetricKey
	a := &artifact.PusherArtifact{
		Bucket:          p.config.Bucket,
		RemoteModelKey:  &modelKey,
		RemoteMetricKey: &metricKey,
	}
	if err := artifact.Validate(a); err != nil {
		return nil, pipeerrors.New(pipeerrors.KindPush, "Run", err)
	}

	log.Infof("push completed: %s", a)
	return a, nil
}
