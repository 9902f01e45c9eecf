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

package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	key := "model.json"
	empty := ""
	tests := []struct {
		name     string
		artifact any
		expect   func(t *testing.T, err error)
	}{
		{
			name:     "complete ingestion artifact",
			artifact: &IngestionArtifact{TrainPath: "train.csv", TestPath: "test.csv"},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.NoError(err)
			},
		},
		{
			name:     "ingestion artifact without test path",
			artifact: &IngestionArtifact{TrainPath: "train.csv"},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "incomplete *artifact.IngestionArtifact")
				assert.ErrorContains(err, "TestPath")
			},
		},
		{
			name:     "failed validation artifact is complete",
			artifact: &ValidationArtifact{Status: false, Message: "foo", ReportPath: "report.json"},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.NoError(err)
			},
		},
		{
			name: "trainer artifact with metric out of range",
			artifact: &TrainerArtifact{
				ModelPath:      "model.json",
				Metric:         ClassificationMetric{F1: 1.5},
				MetricFilePath: "metrics.json",
			},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "F1")
			},
		},
		{
			name:     "skipped pusher artifact",
			artifact: &PusherArtifact{Bucket: "foo"},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.NoError(err)
			},
		},
		{
			name:     "pushed artifact",
			artifact: &PusherArtifact{Bucket: "foo", RemoteModelKey: &key, RemoteMetricKey: &key},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.NoError(err)
			},
		},
		{
			name:     "pusher artifact with empty key",
			artifact: &PusherArtifact{Bucket: "foo", RemoteModelKey: &empty},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "RemoteModelKey")
			},
		},
		{
			name:     "evaluation artifact without keys",
			artifact: &EvaluationArtifact{Accepted: true, TrainedModelPath: "model.json", MetricFilePath: "metrics.json"},
			expect: func(t *testing.T, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "RemoteModelKey")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.expect(t, Validate(tc.artifact))
		})
	}
}

func TestPusherArtifact_String(t *testing.T) {
	assert := assert.New(t)
	key := "model.json"
	metric := "metrics.json"
	assert.Equal("PusherArtifact{Bucket: foo, skipped}", (&PusherArtifact{Bucket: "foo"}).String())
	assert.False((&PusherArtifact{Bucket: "foo"}).Pushed())

	pushed := &PusherArtifact{Bucket: "foo", RemoteModelKey: &key, RemoteMetricKey: &metric}
	assert.True(pushed.Pushed())
	assert.Equal("PusherArtifact{Bucket: foo, RemoteModelKey: model.json, RemoteMetricKey: metrics.json}", pushed.String())
}
