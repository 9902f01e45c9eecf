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

package ingestion

import (
	"context"
	"fmt"

	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/internal/pipeerrors"
	"modelpipe.io/modelpipe/pipeline/artifact"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pipeline/datasource"
	"modelpipe.io/modelpipe/pipeline/storage"
	"modelpipe.io/modelpipe/pkg/frame"
)

// Name is the stage name.
const Name = "ingestion"

// Ingestion exports a collection and splits it into train and test partitions.
type Ingestion struct {
	config *config.DataIngestionConfig
	source datasource.DataSource
}

// New returns a new Ingestion instance.
func New(cfg *config.DataIngestionConfig, source datasource.DataSource) *Ingestion {
	return &Ingestion{
		config: cfg,
		source: source,
	}
}

// Run writes the feature store snapshot and the train and test partitions.
func (i *Ingestion) Run(ctx context.Context) (*artifact.IngestionArtifact, error) {
	log := logger.With("stage", Name, "collection", i.config.Collection)

	if i.config.SplitRatio <= 0 || i.config.SplitRatio >= 1 {
		return nil, pipeerrors.New(pipeerrors.KindIngestion, "Run",
			fmt.Errorf("%w: %v", pipeerrors.ErrInvalidSplitRatio, i.config.SplitRatio))
	}

	f, err := i.export(ctx)
	if err != nil {
		log.Errorf("export collection failed: %s", err.Error())
		return nil, pipeerrors.New(pipeerrors.KindIngestion, "Export", err)
	}

	if len(f.Columns) == 0 {
		return nil, pipeerrors.New(pipeerrors.KindIngestion, "Export",
			fmt.Errorf("%w: %s", pipeerrors.ErrEmptyCollection, i.config.Collection))
	}
	log.Infof("exported %d records with columns %v", f.Len(), f.Columns)

	scope := storage.NewScope()
	if err := scope.WriteFrame(i.config.FeatureStorePath, f); err != nil {
		return nil, i.rollback(scope, "WriteFeatureStore", err)
	}

	train, test, err := f.Split(i.config.SplitRatio, i.config.Seed)
	if err != nil {
		return nil, i.rollback(scope, "Split", err)
	}

	if err := scope.WriteFrame(i.config.TrainPath, train); err != nil {
		return nil, i.rollback(scope, "WriteTrain", err)
	}

	if err := scope.WriteFrame(i.config.TestPath, test); err != nil {
		return nil, i.rollback(scope, "WriteTest", err)
	}
	log.Infof("split %d records into %d train and %d test records", f.Len(), train.Len(), test.Len())

	a := &artifact.IngestionArtifact{
		TrainPath: i.config.TrainPath,
		TestPath:  i.config.TestPath,
	}
	if err := artifact.Validate(a); err != nil {
		return nil, i.rollback(scope, "Run", err)
	}

	log.Infof("ingestion completed: %s", a)
	return a, nil
}

func (i *Ingestion) export(ctx context.Context) (*frame.Frame, error) {
	if i.config.ExportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.config.ExportTimeout)
		defer cancel()
	}

	return i.source.Export(ctx, i.config.Collection)
}

func (i *Ingestion) rollback(scope storage.Scope, op string, err error) error {
	if rerr := scope.Rollback(); rerr != nil {
		logger.With("stage", Name).Warnf("rollback failed: %s", rerr.Error())
	}

	return pipeerrors.New(pipeerrors.KindIngestion, op, err)
}
