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

package config

import "go.opentelemetry.io/otel/attribute"

const (
	AttributeRunID      = attribute.Key("modelpipe.run.id")
	AttributeCollection = attribute.Key("modelpipe.collection")
	AttributeState      = attribute.Key("modelpipe.state")
	AttributeAccepted   = attribute.Key("modelpipe.evaluation.accepted")
	AttributeTrainedF1  = attribute.Key("modelpipe.evaluation.trained.f1")
	AttributeDiff       = attribute.Key("modelpipe.evaluation.diff")
)

const (
	SpanRun            = "pipeline-run"
	SpanIngestion      = "data-ingestion"
	SpanValidation     = "data-validation"
	SpanTransformation = "data-transformation"
	SpanTraining       = "model-training"
	SpanEvaluation     = "model-evaluation"
	SpanPush           = "model-push"
)
