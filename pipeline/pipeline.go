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

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/pipeline/artifact"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pipeline/datasource"
	"modelpipe.io/modelpipe/pipeline/evaluation"
	"modelpipe.io/modelpipe/pipeline/ingestion"
	"modelpipe.io/modelpipe/pipeline/metrics"
	"modelpipe.io/modelpipe/pipeline/pusher"
	"modelpipe.io/modelpipe/pipeline/registry"
	"modelpipe.io/modelpipe/pipeline/training"
	"modelpipe.io/modelpipe/pipeline/transformation"
	"modelpipe.io/modelpipe/pipeline/validation"
	"modelpipe.io/modelpipe/pkg/types"
)

const (
	// Pipeline has not started.
	StatePending = "Pending"

	// Exporting and splitting the collection.
	StateIngesting = "Ingesting"

	// Checking partitions against the schema.
	StateValidating = "Validating"

	// Fitting the transformer.
	StateTransforming = "Transforming"

	// Fitting the classifier.
	StateTraining = "Training"

	// Comparing with the production model.
	StateEvaluating = "Evaluating"

	// Publishing the accepted model.
	StatePushing = "Pushing"

	// Trained model is not accepted.
	StateSkipped = "Skipped"

	// Pipeline completed.
	StateDone = "Done"

	// A stage failed.
	StateFailed = "Failed"
)

const (
	EventIngest    = "Ingest"
	EventValidate  = "Validate"
	EventTransform = "Transform"
	EventTrain     = "Train"
	EventEvaluate  = "Evaluate"
	EventPush      = "Push"
	EventSkip      = "Skip"
	EventFinish    = "Finish"
	EventFail      = "Fail"
)

var tracer trace.Tracer

func init() {
	tracer = otel.Tracer(types.TracerName)
}

type Ingester interface {
	Run(ctx context.Context) (*artifact.IngestionArtifact, error)
}

type Validator interface {
	Run(ctx context.Context, ingestion *artifact.IngestionArtifact) (*artifact.ValidationArtifact, error)
}

type Transformer interface {
	Run(ctx context.Context, ingestion *artifact.IngestionArtifact, validation *artifact.ValidationArtifact) (*artifact.TransformationArtifact, error)
}

type Trainer interface {
	Run(ctx context.Context, transformation *artifact.TransformationArtifact) (*artifact.TrainerArtifact, error)
}

type Evaluator interface {
	Run(ctx context.Context, trainer *artifact.TrainerArtifact) (*artifact.EvaluationArtifact, error)
}

type Pusher interface {
	Run(ctx context.Context, evaluation *artifact.EvaluationArtifact) (*artifact.PusherArtifact, error)
}

// Stages holds the stage components of a run.
type Stages struct {
	Ingestion      Ingester
	Validation     Validator
	Transformation Transformer
	Training       Trainer
	Evaluation     Evaluator
	Pusher         Pusher
}

// NewStages returns the stage components built from the run configs.
func NewStages(cfgs *config.StageConfigs, source datasource.DataSource, r registry.Registry) *Stages {
	return &Stages{
		Ingestion:      ingestion.New(cfgs.DataIngestion, source),
		Validation:     validation.New(cfgs.DataValidation),
		Transformation: transformation.New(cfgs.DataTransformation),
		Training:       training.New(cfgs.ModelTrainer),
		Evaluation:     evaluation.New(cfgs.ModelEvaluation, r),
		Pusher:         pusher.New(cfgs.ModelPusher, r),
	}
}

// Result holds the artifacts of a run, artifacts of stages not reached are nil.
type Result struct {
	RunID          string
	State          string
	Ingestion      *artifact.IngestionArtifact
	Validation     *artifact.ValidationArtifact
	Transformation *artifact.TransformationArtifact
	Trainer        *artifact.TrainerArtifact
	Evaluation     *artifact.EvaluationArtifact
	Pusher         *artifact.PusherArtifact
}

// Option is a functional option for configuring the pipeline.
type Option func(p *Pipeline)

// WithRunID sets the run id, a random uuid is used by default.
func WithRunID(runID string) Option {
	return func(p *Pipeline) {
		p.runID = runID
	}
}

// Pipeline runs the stages in order and stops at the first failure.
type Pipeline struct {
	config *config.Config
	stages *Stages
	runID  string
}

// New returns a new Pipeline instance.
func New(cfg *config.Config, stages *Stages, options ...Option) *Pipeline {
	p := &Pipeline{
		config: cfg,
		stages: stages,
		runID:  uuid.NewString(),
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// RunID returns the run id.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run executes the stages. Artifacts written by completed stages are kept when
// a later stage fails.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	log := logger.WithRun(p.runID)
	metrics.RunCount.Inc()

	ctx, span := tracer.Start(ctx, config.SpanRun)
	defer span.End()
	span.SetAttributes(config.AttributeRunID.String(p.runID))
	span.SetAttributes(config.AttributeCollection.String(p.config.Source.Collection))

	result := &Result{RunID: p.runID}
	machine := newFSM(log)
	err := p.run(ctx, machine, result)
	result.State = machine.Current()
	span.SetAttributes(config.AttributeState.String(result.State))

	if err != nil {
		metrics.RunFailureCount.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("pipeline failed: %s", err.Error())
	} else {
		log.Infof("pipeline completed in state %s", result.State)
	}

	if perr := metrics.Push(&p.config.Metrics); perr != nil {
		log.Warnf("push metrics failed: %s", perr.Error())
	}

	return result, err
}

func (p *Pipeline) run(ctx context.Context, machine *fsm.FSM, result *Result) error {
	if err := p.stage(ctx, machine, EventIngest, ingestion.Name, config.SpanIngestion, func(ctx context.Context) (err error) {
		result.Ingestion, err = p.stages.Ingestion.Run(ctx)
		return err
	}); err != nil {
		return err
	}

	if err := p.stage(ctx, machine, EventValidate, validation.Name, config.SpanValidation, func(ctx context.Context) (err error) {
		result.Validation, err = p.stages.Validation.Run(ctx, result.Ingestion)
		return err
	}); err != nil {
		return err
	}

	if err := p.stage(ctx, machine, EventTransform, transformation.Name, config.SpanTransformation, func(ctx context.Context) (err error) {
		result.Transformation, err = p.stages.Transformation.Run(ctx, result.Ingestion, result.Validation)
		return err
	}); err != nil {
		return err
	}

	if err := p.stage(ctx, machine, EventTrain, training.Name, config.SpanTraining, func(ctx context.Context) (err error) {
		result.Trainer, err = p.stages.Training.Run(ctx, result.Transformation)
		if err == nil {
			metrics.CandidateF1Score.Set(result.Trainer.Metric.F1)
		}
		return err
	}); err != nil {
		return err
	}

	if err := p.stage(ctx, machine, EventEvaluate, evaluation.Name, config.SpanEvaluation, func(ctx context.Context) (err error) {
		result.Evaluation, err = p.stages.Evaluation.Run(ctx, result.Trainer)
		if err != nil {
			return err
		}

		trace.SpanFromContext(ctx).SetAttributes(
			config.AttributeAccepted.Bool(result.Evaluation.Accepted),
			config.AttributeTrainedF1.Float64(result.Trainer.Metric.F1),
			config.AttributeDiff.Float64(result.Evaluation.Diff),
		)
		if result.Evaluation.Accepted {
			metrics.EvaluationCount.WithLabelValues(metrics.EvaluationAcceptedResult).Inc()
		} else {
			metrics.EvaluationCount.WithLabelValues(metrics.EvaluationRejectedResult).Inc()
		}
		return nil
	}); err != nil {
		return err
	}

	// A rejected model still passes through the pusher, which returns the skipped artifact.
	event := EventPush
	if !result.Evaluation.Accepted {
		event = EventSkip
	}

	if err := p.stage(ctx, machine, event, pusher.Name, config.SpanPush, func(ctx context.Context) (err error) {
		result.Pusher, err = p.stages.Pusher.Run(ctx, result.Evaluation)
		return err
	}); err != nil {
		return err
	}

	return machine.Event(ctx, EventFinish)
}

// stage moves the machine with event and runs the stage in its own span,
// a stage error moves the machine to failed.
func (p *Pipeline) stage(ctx context.Context, machine *fsm.FSM, event, name, spanName string, run func(ctx context.Context) error) error {
	if err := machine.Event(ctx, event); err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	start := time.Now()
	err := run(ctx)
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StageFailureCount.WithLabelValues(name).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if ferr := machine.Event(ctx, EventFail); ferr != nil {
			logger.WithStage(p.runID, name).Errorf("transit to failed state: %s", ferr.Error())
		}

		return fmt.Errorf("%s stage: %w", name, err)
	}

	return nil
}

func newFSM(log *logger.SugaredLoggerOnWith) *fsm.FSM {
	return fsm.NewFSM(
		StatePending,
		fsm.Events{
			{Name: EventIngest, Src: []string{StatePending}, Dst: StateIngesting},
			{Name: EventValidate, Src: []string{StateIngesting}, Dst: StateValidating},
			{Name: EventTransform, Src: []string{StateValidating}, Dst: StateTransforming},
			{Name: EventTrain, Src: []string{StateTransforming}, Dst: StateTraining},
			{Name: EventEvaluate, Src: []string{StateTraining}, Dst: StateEvaluating},
			{Name: EventPush, Src: []string{StateEvaluating}, Dst: StatePushing},
			{Name: EventSkip, Src: []string{StateEvaluating}, Dst: StateSkipped},
			{Name: EventFinish, Src: []string{StatePushing, StateSkipped}, Dst: StateDone},
			{Name: EventFail, Src: []string{
				StateIngesting, StateValidating, StateTransforming, StateTraining, StateEvaluating, StatePushing, StateSkipped,
			}, Dst: StateFailed},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				log.Infof("pipeline state is %s", e.Dst)
			},
		},
	)
}
