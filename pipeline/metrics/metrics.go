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

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pkg/types"
	"modelpipe.io/modelpipe/version"
)

var (
	// EvaluationAcceptedResult is result label of an accepted candidate.
	EvaluationAcceptedResult = "accepted"

	// EvaluationRejectedResult is result label of a rejected candidate.
	EvaluationRejectedResult = "rejected"
)

// Variables declared for metrics.
var (
	RunCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.PipelineMetricsSubsystem,
		Name:      "run_total",
		Help:      "Counter of the number of the pipeline run.",
	})

	RunFailureCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.PipelineMetricsSubsystem,
		Name:      "run_failure_total",
		Help:      "Counter of the number of failed of the pipeline run.",
	})

	StageFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.PipelineMetricsSubsystem,
		Name:      "stage_failure_total",
		Help:      "Counter of the number of failed of the stage.",
	}, []string{"stage"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.PipelineMetricsSubsystem,
		Name:      "stage_duration_seconds",
		Help:      "Histogram of the time each stage took.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
	}, []string{"stage"})

	EvaluationCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.PipelineMetricsSubsystem,
		Name:      "evaluation_total",
		Help:      "Counter of the number of the candidate evaluation.",
	}, []string{"result"})

	CandidateF1Score = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.PipelineMetricsSubsystem,
		Name:      "candidate_f1_score",
		Help:      "Gauge of the f1 score of the last trained candidate.",
	})

	UploadCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.RegistryMetricsSubsystem,
		Name:      "upload_total",
		Help:      "Counter of the number of the registry upload.",
	}, []string{"key"})

	UploadFailureCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.RegistryMetricsSubsystem,
		Name:      "upload_failure_total",
		Help:      "Counter of the number of failed of the registry upload.",
	}, []string{"key"})

	LookupFailureCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.RegistryMetricsSubsystem,
		Name:      "lookup_failure_total",
		Help:      "Counter of the number of failed of the production metric lookup.",
	})

	VersionGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: types.MetricsNamespace,
		Subsystem: types.PipelineMetricsSubsystem,
		Name:      "version",
		Help:      "Version info of the service.",
	}, []string{"major", "minor", "git_version", "git_commit", "platform", "build_time", "go_version"})
)

// New returns the metrics http server.
func New(cfg *config.MetricsConfig) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	VersionGauge.WithLabelValues(version.Major, version.Minor, version.GitVersion, version.GitCommit, version.Platform, version.BuildTime, version.GoVersion).Set(1)
	return &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}
}

// Push sends all collected metrics to the pushgateway, no-op without a gateway address.
func Push(cfg *config.MetricsConfig) error {
	if cfg.PushGateway == "" {
		return nil
	}

	return push.New(cfg.PushGateway, cfg.JobName).Gatherer(prometheus.DefaultGatherer).Push()
}
