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

package transformation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/internal/pipeerrors"
	"modelpipe.io/modelpipe/pipeline/artifact"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pipeline/models"
	"modelpipe.io/modelpipe/pipeline/storage"
	"modelpipe.io/modelpipe/pkg/frame"
)

// Name is the stage name.
const Name = "transformation"

// Transformation fits the transformer on the train partition and transforms both partitions.
type Transformation struct {
	config *config.DataTransformationConfig
}

// New returns a new Transformation instance.
func New(cfg *config.DataTransformationConfig) *Transformation {
	return &Transformation{config: cfg}
}

// Run writes the fitted transformer and the transformed partitions, nothing is kept on failure.
func (t *Transformation) Run(ctx context.Context, ingestion *artifact.IngestionArtifact, validation *artifact.ValidationArtifact) (*artifact.TransformationArtifact, error) {
	log := logger.With("stage", Name)

	if !validation.Status {
		return nil, pipeerrors.New(pipeerrors.KindTransformation, "Run",
			fmt.Errorf("%w: %s", pipeerrors.ErrValidationFailed, validation.Message))
	}

	schema, err := config.LoadSchema(t.config.SchemaPath)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTransformation, "LoadSchema", err)
	}

	if err := schema.ValidateTarget(); err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTransformation, "LoadSchema", err)
	}

	train, err := frame.ReadFile(ingestion.TrainPath)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTransformation, "ReadTrain", err)
	}

	test, err := frame.ReadFile(ingestion.TestPath)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTransformation, "ReadTest", err)
	}

	transformer := models.NewTransformer(schema)
	if err := transformer.Fit(train); err != nil {
		return nil, pipeerrors.New(pipeerrors.KindTransformation, "Fit", err)
	}
	log.Infof("transformer fitted with features %v", transformer.FeatureNames())

	var transformedTrain, transformedTest *frame.Frame
	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		if transformedTrain, err = transformer.Transform(train); err != nil {
			return pipeerrors.New(pipeerrors.KindTransformation, "TransformTrain", err)
		}

		return nil
	})

	eg.Go(func() (err error) {
		if transformedTest, err = transformer.Transform(test); err != nil {
			return pipeerrors.New(pipeerrors.KindTransformation, "TransformTest", err)
		}

		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	scope := storage.NewScope()
	if err := t.write(scope, transformer, transformedTrain, transformedTest); err != nil {
		return nil, t.rollback(scope, "Write", err)
	}

	a := &artifact.TransformationArtifact{
		TransformedObjectPath: t.config.TransformedObjectPath,
		TransformedTrainPath:  t.config.TransformedTrainPath,
		TransformedTestPath:   t.config.TransformedTestPath,
	}
	if err := artifact.Validate(a); err != nil {
		return nil, t.rollback(scope, "Run", err)
	}

	log.Infof("transformation completed: %s", a)
	return a, nil
}

func (t *Transformation) rollback(scope storage.Scope, op string, err error) error {
	if rerr := scope.Rollback(); rerr != nil {
		logger.With("stage", Name).Warnf("rollback failed: %s", rerr.Error())
	}

	return pipeerrors.New(pipeerrors.KindTransformation, op, err)
}

func (t *Transformation) write(scope storage.Scope, transformer *models.Transformer, train, test *frame.Frame) error {
	if err := scope.WriteJSON(t.config.TransformedObjectPath, transformer); err != nil {
		return err
	}

	if err := scope.WriteFrame(t.config.TransformedTrainPath, train); err != nil {
		return err
	}

	return scope.WriteFrame(t.config.TransformedTestPath, test)
}
