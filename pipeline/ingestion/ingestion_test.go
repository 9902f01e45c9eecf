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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelpipe.io/modelpipe/internal/pipeerrors"
	"modelpipe.io/modelpipe/pipeline/artifact"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pipeline/datasource/mocks"
	"modelpipe.io/modelpipe/pkg/frame"
)

func newConfig(dir string, ratio float64) *config.DataIngestionConfig {
	return &config.DataIngestionConfig{
		Collection:       "sensor",
		FeatureStorePath: filepath.Join(dir, "data_ingestion", "feature_store", "data.csv"),
		TrainPath:        filepath.Join(dir, "data_ingestion", "ingested", "train.csv"),
		TestPath:         filepath.Join(dir, "data_ingestion", "ingested", "test.csv"),
		SplitRatio:       ratio,
		Seed:             42,
	}
}

func mockFrame(n int) *frame.Frame {
	f := frame.New([]string{"age", "income", "category", "class"}, nil)
	for i := 0; i < n; i++ {
		f.Append([]string{fmt.Sprint(20 + i), fmt.Sprint(1000 * i), "a", "pos"})
	}

	return f
}

func TestIngestion_Run(t *testing.T) {
	tests := []struct {
		name   string
		ratio  float64
		mock   func(m *mocks.MockDataSourceMockRecorder)
		expect func(t *testing.T, cfg *config.DataIngestionConfig, a *artifact.IngestionArtifact, err error)
	}{
		{
			name:  "split 100 records",
			ratio: 0.2,
			mock: func(m *mocks.MockDataSourceMockRecorder) {
				m.Export(gomock.Any(), "sensor").Return(mockFrame(100), nil)
			},
			expect: func(t *testing.T, cfg *config.DataIngestionConfig, a *artifact.IngestionArtifact, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(cfg.TrainPath, a.TrainPath)
				assert.Equal(cfg.TestPath, a.TestPath)

				store, err := frame.ReadFile(cfg.FeatureStorePath)
				assert.NoError(err)
				assert.Equal(100, store.Len())

				train, err := frame.ReadFile(a.TrainPath)
				assert.NoError(err)
				test, err := frame.ReadFile(a.TestPath)
				assert.NoError(err)
				assert.Equal(80, train.Len())
				assert.Equal(20, test.Len())
				assert.Equal(store.Columns, train.Columns)
			},
		},
		{
			name:  "empty table keeps header",
			ratio: 0.2,
			mock: func(m *mocks.MockDataSourceMockRecorder) {
				m.Export(gomock.Any(), "sensor").Return(mockFrame(0), nil)
			},
			expect: func(t *testing.T, cfg *config.DataIngestionConfig, a *artifact.IngestionArtifact, err error) {
				assert := assert.New(t)
				assert.NoError(err)

				test, err := frame.ReadFile(a.TestPath)
				assert.NoError(err)
				assert.Equal([]string{"age", "income", "category", "class"}, test.Columns)
				assert.Equal(0, test.Len())
			},
		},
		{
			name:  "invalid split ratio",
			ratio: 1,
			mock:  func(m *mocks.MockDataSourceMockRecorder) {},
			expect: func(t *testing.T, cfg *config.DataIngestionConfig, a *artifact.IngestionArtifact, err error) {
				assert := assert.New(t)
				assert.Nil(a)
				assert.True(pipeerrors.IsKind(err, pipeerrors.KindIngestion))
				assert.ErrorIs(err, pipeerrors.ErrInvalidSplitRatio)
			},
		},
		{
			name:  "source unreachable",
			ratio: 0.2,
			mock: func(m *mocks.MockDataSourceMockRecorder) {
				m.Export(gomock.Any(), "sensor").Return(nil, errors.New("server selection timeout"))
			},
			expect: func(t *testing.T, cfg *config.DataIngestionConfig, a *artifact.IngestionArtifact, err error) {
				assert := assert.New(t)
				assert.Nil(a)
				assert.EqualError(err, "ingestion error: Export: server selection timeout")

				_, err = os.Stat(cfg.FeatureStorePath)
				assert.True(os.IsNotExist(err))
			},
		},
		{
			name:  "empty collection",
			ratio: 0.2,
			mock: func(m *mocks.MockDataSourceMockRecorder) {
				m.Export(gomock.Any(), "sensor").Return(frame.New(nil, nil), nil)
			},
			expect: func(t *testing.T, cfg *config.DataIngestionConfig, a *artifact.IngestionArtifact, err error) {
				assert.ErrorIs(t, err, pipeerrors.ErrEmptyCollection)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()
			source := mocks.NewMockDataSource(ctl)
			tc.mock(source.EXPECT())

			cfg := newConfig(t.TempDir(), tc.ratio)
			a, err := New(cfg, source).Run(context.Background())
			tc.expect(t, cfg, a, err)
		})
	}
}

func TestIngestion_RunDeterministic(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()
	source := mocks.NewMockDataSource(ctl)
	source.EXPECT().Export(gomock.Any(), "sensor").Return(mockFrame(30), nil).Times(2)

	var results [][]byte
	for i := 0; i < 2; i++ {
		cfg := newConfig(t.TempDir(), 0.3)
		a, err := New(cfg, source).Run(context.Background())
		require.NoError(t, err)

		data, err := os.ReadFile(a.TestPath)
		require.NoError(t, err)
		results = append(results, data)
	}

	assert.Equal(t, results[0], results[1])
}

func TestIngestion_RunExportTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		mock    func(m *mocks.MockDataSourceMockRecorder)
		expect  func(t *testing.T, a *artifact.IngestionArtifact, err error)
	}{
		{
			name:    "export under deadline",
			timeout: time.Minute,
			mock: func(m *mocks.MockDataSourceMockRecorder) {
				m.Export(gomock.Any(), "sensor").DoAndReturn(func(ctx context.Context, collection string) (*frame.Frame, error) {
					deadline, ok := ctx.Deadline()
					assert.True(t, ok)
					assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
					return mockFrame(10), nil
				}).Times(1)
			},
			expect: func(t *testing.T, a *artifact.IngestionArtifact, err error) {
				assert.NoError(t, err)
				assert.NotNil(t, a)
			},
		},
		{
			name:    "export without deadline",
			timeout: 0,
			mock: func(m *mocks.MockDataSourceMockRecorder) {
				m.Export(gomock.Any(), "sensor").DoAndReturn(func(ctx context.Context, collection string) (*frame.Frame, error) {
					_, ok := ctx.Deadline()
					assert.False(t, ok)
					return mockFrame(10), nil
				}).Times(1)
			},
			expect: func(t *testing.T, a *artifact.IngestionArtifact, err error) {
				assert.NoError(t, err)
				assert.NotNil(t, a)
			},
		},
		{
			name:    "export exceeds deadline",
			timeout: 10 * time.Millisecond,
			mock: func(m *mocks.MockDataSourceMockRecorder) {
				m.Export(gomock.Any(), "sensor").DoAndReturn(func(ctx context.Context, collection string) (*frame.Frame, error) {
					<-ctx.Done()
					return nil, ctx.Err()
				}).Times(1)
			},
			expect: func(t *testing.T, a *artifact.IngestionArtifact, err error) {
				assert := assert.New(t)
				assert.Nil(a)
				assert.True(pipeerrors.IsKind(err, pipeerrors.KindIngestion))
				assert.ErrorIs(err, context.DeadlineExceeded)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()

			source := mocks.NewMockDataSource(ctl)
			tc.mock(source.EXPECT())

			cfg := newConfig(t.TempDir(), 0.2)
			cfg.ExportTimeout = tc.timeout
			a, err := New(cfg, source).Run(context.Background())
			tc.expect(t, a, err)
		})
	}
}
