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

package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"modelpipe.io/modelpipe/cmd/dependency"
	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/pipeline"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pipeline/datasource"
	"modelpipe.io/modelpipe/pipeline/metrics"
	"modelpipe.io/modelpipe/version"
)

// metricsShutdownTimeout bounds the graceful stop of metrics server.
const metricsShutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the training pipeline once",
	Long: `run executes ingestion, validation, transformation, training and evaluation in order,
and pushes the trained model to the registry when it is accepted.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Convert(); err != nil {
			return err
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		w, err := initWorkpath(cfg)
		if err != nil {
			return err
		}

		if err := logger.InitPipeline(cfg.Verbose, cfg.Console, w.LogDir(), logRotateConfig(cfg)); err != nil {
			return err
		}

		return runPipeline(cmd.Context(), cfg, w.ArtifactDir())
	},
}

func runPipeline(ctx context.Context, cfg *config.Config, artifactDir string) error {
	logger.Infof("version: %s", version.Version())
	logger.Debugf("pipeline configuration: %#v", cfg)

	ff := dependency.InitMonitor(cfg.PProfPort, cfg.Telemetry)
	defer ff()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	dependency.SetupQuitSignalHandler(cancel)

	if cfg.Metrics.Enable {
		srv := metrics.New(&cfg.Metrics)
		go func() {
			logger.Infof("started metrics server at %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("metrics server closed unexpect: %v", err)
			}
		}()

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warnf("shutdown metrics server error: %v", err)
			}
		}()
	}

	r, err := newRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	sourceCtx, sourceCancel := context.WithTimeout(ctx, cfg.Source.Timeout)
	defer sourceCancel()

	source, err := datasource.New(sourceCtx, &cfg.Source, cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(context.Background()); err != nil {
			logger.Warnf("close source error: %v", err)
		}
	}()

	stageConfigs := config.NewStageConfigs(cfg, artifactDir, time.Now())
	p := pipeline.New(cfg, pipeline.NewStages(stageConfigs, source, r))
	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	log := logger.WithRun(result.RunID)
	if result.Pusher != nil && result.Pusher.Pushed() {
		log.Infof("model published to %s", result.Pusher)
		return nil
	}

	log.Infof("model not published, artifacts are kept in %s", stageConfigs.RunDir)
	return nil
}
