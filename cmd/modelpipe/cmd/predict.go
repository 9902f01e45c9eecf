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
	"fmt"
	"io"

	"github.com/spf13/cobra"

	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/pipeline/registry"
	"modelpipe.io/modelpipe/pkg/frame"
)

var predictInput string

var predictCmd = &cobra.Command{
	Use:               "predict",
	Short:             "Predict labels of csv records with the production model",
	Long:              `predict loads the production model from the registry and prints one predicted label per input row.`,
	Args:              cobra.NoArgs,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Convert(); err != nil {
			return err
		}

		if err := cfg.ObjectStorage.Validate(); err != nil {
			return err
		}

		if err := cfg.Registry.Validate(); err != nil {
			return err
		}

		w, err := initWorkpath(cfg)
		if err != nil {
			return err
		}

		if err := logger.InitPredictor(cfg.Verbose, cfg.Console, w.LogDir(), logRotateConfig(cfg)); err != nil {
			return err
		}

		ctx := cmd.Context()
		r, err := newRegistry(ctx, cfg)
		if err != nil {
			return err
		}

		return predict(ctx, r, predictInput, cmd.OutOrStdout())
	},
}

func init() {
	predictCmd.Flags().StringVarP(&predictInput, "input", "i", "", "path of csv file with a header row")
	_ = predictCmd.MarkFlagRequired("input")
}

func predict(ctx context.Context, r registry.Registry, input string, w io.Writer) error {
	rows, err := frame.ReadFile(input)
	if err != nil {
		return err
	}

	labels, err := r.Predict(ctx, rows)
	if err != nil {
		return err
	}

	logger.With("bucket", r.Bucket()).Infof("predicted %d rows of %s", len(labels), input)
	for _, label := range labels {
		if _, err := fmt.Fprintln(w, label); err != nil {
			return err
		}
	}

	return nil
}
