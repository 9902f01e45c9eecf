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

package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelpipe.io/modelpipe/internal/pipeerrors"
	"modelpipe.io/modelpipe/pipeline/artifact"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pkg/frame"
)

const mockSchemaPath = "testdata/schema.yaml"

var (
	mockColumns = []string{"age", "income", "category", "class"}
	mockRows    = [][]string{{"25", "1000", "a", "pos"}, {"32", "", "b", "neg"}}
)

func writeFrames(t *testing.T, dir string, train, test *frame.Frame) *artifact.IngestionArtifact {
	a := &artifact.IngestionArtifact{
		TrainPath: filepath.Join(dir, "ingested", "train.csv"),
		TestPath:  filepath.Join(dir, "ingested", "test.csv"),
	}
	require.NoError(t, train.WriteFile(a.TrainPath))
	require.NoError(t, test.WriteFile(a.TestPath))
	return a
}

func TestValidation_Run(t *testing.T) {
	tests := []struct {
		name   string
		train  *frame.Frame
		test   *frame.Frame
		expect func(t *testing.T, a *artifact.ValidationArtifact, err error)
	}{
		{
			name:  "frames match schema",
			train: frame.New(mockColumns, mockRows),
			test:  frame.New(mockColumns, mockRows),
			expect: func(t *testing.T, a *artifact.ValidationArtifact, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.True(a.Status)
				assert.Equal("", a.Message)

				data, err := os.ReadFile(a.ReportPath)
				assert.NoError(err)
				assert.Equal("{\n    \"validation_status\": true,\n    \"message\": \"\"\n}\n", string(data))
			},
		},
		{
			name:  "reordered columns pass",
			train: frame.New([]string{"class", "category", "income", "age"}, nil),
			test:  frame.New(mockColumns, nil),
			expect: func(t *testing.T, a *artifact.ValidationArtifact, err error) {
				assert.NoError(t, err)
				assert.True(t, a.Status)
			},
		},
		{
			name:  "train misses category column",
			train: frame.New([]string{"age", "income", "class"}, nil),
			test:  frame.New(mockColumns, nil),
			expect: func(t *testing.T, a *artifact.ValidationArtifact, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.False(a.Status)
				assert.Equal("Columns are missing in the training dataframe: expected 4 columns, got 3. "+
					"Missing columns in the training dataframe: [category].", a.Message)
			},
		},
		{
			name:  "both frames miss columns",
			train: frame.New([]string{"age", "income"}, nil),
			test:  frame.New([]string{"age"}, nil),
			expect: func(t *testing.T, a *artifact.ValidationArtifact, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.False(a.Status)
				assert.Equal("Columns are missing in the training dataframe: expected 4 columns, got 2. "+
					"Columns are missing in the test dataframe: expected 4 columns, got 1. "+
					"Missing columns in the training dataframe: [category]. "+
					"Missing columns in the test dataframe: [income, category].", a.Message)
			},
		},
		{
			name:  "right count with wrong names",
			train: frame.New([]string{"a", "b", "c", "d"}, nil),
			test:  frame.New(mockColumns, nil),
			expect: func(t *testing.T, a *artifact.ValidationArtifact, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.False(a.Status)
				assert.Equal("Missing columns in the training dataframe: [age, income, category].", a.Message)
			},
		},
		{
			name:  "extra column fails count",
			train: frame.New(append(mockColumns, "extra"), nil),
			test:  frame.New(mockColumns, nil),
			expect: func(t *testing.T, a *artifact.ValidationArtifact, err error) {
				assert.False(t, a.Status)
				assert.Equal(t, "Columns are missing in the training dataframe: expected 4 columns, got 5.", a.Message)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := &config.DataValidationConfig{
				SchemaPath: mockSchemaPath,
				ReportPath: filepath.Join(dir, "data_validation", "report.json"),
			}

			a, err := New(cfg).Run(context.Background(), writeFrames(t, dir, tc.train, tc.test))
			tc.expect(t, a, err)
		})
	}
}

func TestValidation_RunIdempotent(t *testing.T) {
	dir := t.TempDir()
	ingestion := writeFrames(t, dir, frame.New([]string{"age"}, nil), frame.New(mockColumns, mockRows))
	cfg := &config.DataValidationConfig{
		SchemaPath: mockSchemaPath,
		ReportPath: filepath.Join(dir, "report.json"),
	}

	var reports []string
	for i := 0; i < 2; i++ {
		_, err := New(cfg).Run(context.Background(), ingestion)
		require.NoError(t, err)

		data, err := os.ReadFile(cfg.ReportPath)
		require.NoError(t, err)
		reports = append(reports, string(data))
	}

	assert.Equal(t, reports[0], reports[1])
}

func TestValidation_RunError(t *testing.T) {
	dir := t.TempDir()
	ingestion := writeFrames(t, dir, frame.New(mockColumns, nil), frame.New(mockColumns, nil))

	_, err := New(&config.DataValidationConfig{
		SchemaPath: filepath.Join(dir, "missing.yaml"),
		ReportPath: filepath.Join(dir, "report.json"),
	}).Run(context.Background(), ingestion)
	assert.True(t, pipeerrors.IsKind(err, pipeerrors.KindValidation))

	_, err = New(&config.DataValidationConfig{
		SchemaPath: mockSchemaPath,
		ReportPath: filepath.Join(dir, "report.json"),
	}).Run(context.Background(), &artifact.IngestionArtifact{
		TrainPath: filepath.Join(dir, "missing.csv"),
		TestPath:  ingestion.TestPath,
	})
	assert.True(t, pipeerrors.IsKind(err, pipeerrors.KindValidation))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
