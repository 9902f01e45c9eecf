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
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"modelpipe.io/modelpipe/internal/pipeerrors"
	"modelpipe.io/modelpipe/pipeline/artifact"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pipeline/registry/mocks"
)

var mockConfig = &config.ModelPusherConfig{
	Bucket:          "123456789012-model-registry",
	RemoteModelKey:  "model-registry/model.json",
	RemoteMetricKey: "model-registry/metrics.json",
}

func mockEvaluation(accepted bool) *artifact.EvaluationArtifact {
	return &artifact.EvaluationArtifact{
		Accepted:         accepted,
		RemoteModelKey:   mockConfig.RemoteModelKey,
		RemoteMetricKey:  mockConfig.RemoteMetricKey,
		TrainedModelPath: "model_trainer/trained_model/model.json",
		MetricFilePath:   "model_trainer/metrics.json",
		Diff:             0.1,
	}
}

func TestPusher_Run(t *testing.T) {
	tests := []struct {
		name     string
		accepted bool
		mock     func(m *mocks.MockRegistryMockRecorder)
		expect   func(t *testing.T, a *artifact.PusherArtifact, err error)
	}{
		{
			name:     "rejected model is not uploaded",
			accepted: false,
			mock:     func(m *mocks.MockRegistryMockRecorder) {},
			expect: func(t *testing.T, a *artifact.PusherArtifact, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.False(a.Pushed())
				assert.Nil(a.RemoteModelKey)
				assert.Nil(a.RemoteMetricKey)
				assert.Equal(mockConfig.Bucket, a.Bucket)
			},
		},
		{
			name:     "model is uploaded before metrics",
			accepted: true,
			mock: func(m *mocks.MockRegistryMockRecorder) {
				gomock.InOrder(
					m.PutModel(gomock.Any(), "model_trainer/trained_model/model.json").Return(nil),
					m.PutMetrics(gomock.Any(), "model_trainer/metrics.json").Return(nil),
				)
			},
			expect: func(t *testing.T, a *artifact.PusherArtifact, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.True(a.Pushed())
				assert.Equal(mockConfig.RemoteModelKey, *a.RemoteModelKey)
				assert.Equal(mockConfig.RemoteMetricKey, *a.RemoteMetricKey)
			},
		},
		{
			name:     "model upload failed",
			accepted: true,
			mock: func(m *mocks.MockRegistryMockRecorder) {
				m.PutModel(gomock.Any(), gomock.Any()).Return(errors.New("access denied"))
			},
			expect: func(t *testing.T, a *artifact.PusherArtifact, err error) {
				assert := assert.New(t)
				assert.Nil(a)
				assert.EqualError(err, "push error: PutModel: access denied")
			},
		},
		{
			name:     "metrics upload failed",
			accepted: true,
			mock: func(m *mocks.MockRegistryMockRecorder) {
				gomock.InOrder(
					m.PutModel(gomock.Any(), gomock.Any()).Return(nil),
					m.PutMetrics(gomock.Any(), gomock.Any()).Return(errors.New("timeout")),
				)
			},
			expect: func(t *testing.T, a *artifact.PusherArtifact, err error) {
				assert := assert.New(t)
				assert.Nil(a)
				assert.True(pipeerrors.IsKind(err, pipeerrors.KindPush))
				assert.EqualError(err, "push error: PutMetrics: timeout")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()
			r := mocks.NewMockRegistry(ctl)
			tc.mock(r.EXPECT())

			a, err := New(mockConfig, r).Run(context.Background(), mockEvaluation(tc.accepted))
			tc.expect(t, a, err)
		})
	}
}
