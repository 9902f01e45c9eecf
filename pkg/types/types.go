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

package types

const (
	// PipelineName is name of the training pipeline.
	PipelineName = "pipeline"

	// PredictorName is name of the predictor.
	PredictorName = "predictor"
)

const (
	// MetricsNamespace is namespace of metrics.
	MetricsNamespace = "modelpipe"

	// PipelineMetricsSubsystem is subsystem of pipeline metrics.
	PipelineMetricsSubsystem = "pipeline"

	// RegistryMetricsSubsystem is subsystem of registry metrics.
	RegistryMetricsSubsystem = "registry"
)

const (
	// TracerName is name of the pipeline tracer.
	TracerName = "modelpipe"
)
