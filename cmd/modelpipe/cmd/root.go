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
	"os"

	"github.com/spf13/cobra"

	"modelpipe.io/modelpipe/cmd/dependency"
	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pipeline/registry"
	"modelpipe.io/modelpipe/pkg/objectstorage"
	"modelpipe.io/modelpipe/pkg/workpath"
)

var (
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "modelpipe",
	Short: "Training pipeline of the production classifier",
	Long: `modelpipe exports a collection from the configured source, validates and transforms it,
trains a logistic regression classifier, and publishes it to the model registry
when it scores better than the production model.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func init() {
	// Initialize default pipeline config
	cfg = config.New()

	// Initialize command and config
	dependency.InitCommandAndConfig(rootCmd, true, cfg)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(predictCmd)
}

func initWorkpath(cfg *config.Config) (workpath.Workpath, error) {
	var options []workpath.Option
	if cfg.Server.WorkHome != "" {
		options = append(options, workpath.WithWorkHome(cfg.Server.WorkHome))
	}

	if cfg.Server.LogDir != "" {
		options = append(options, workpath.WithLogDir(cfg.Server.LogDir))
	}

	if cfg.Server.ArtifactDir != "" {
		options = append(options, workpath.WithArtifactDir(cfg.Server.ArtifactDir))
	}

	return workpath.New(options...)
}

func logRotateConfig(cfg *config.Config) logger.LogRotateConfig {
	return logger.LogRotateConfig{
		MaxSize:    cfg.Server.LogMaxSize,
		MaxAge:     cfg.Server.LogMaxAge,
		MaxBackups: cfg.Server.LogMaxBackups,
	}
}

func newRegistry(ctx context.Context, cfg *config.Config) (registry.Registry, error) {
	storage, err := objectstorage.New(
		cfg.ObjectStorage.Name,
		cfg.ObjectStorage.Region,
		cfg.ObjectStorage.Endpoint,
		cfg.ObjectStorage.AccessKey,
		cfg.ObjectStorage.SecretKey,
		objectstorage.WithS3ForcePathStyle(cfg.ObjectStorage.S3ForcePathStyle),
	)
	if err != nil {
		return nil, err
	}

	r := registry.New(storage, cfg.Registry.BucketName, cfg.Registry.ModelKey, cfg.Registry.MetricKey)
	if cfg.Registry.CreateBucket {
		if err := r.EnsureBucket(ctx); err != nil {
			return nil, err
		}
	}

	return r, nil
}
