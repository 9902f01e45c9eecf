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

package models

import (
	"fmt"

	"modelpipe.io/modelpipe/pkg/frame"
)

// Estimator is the published model blob, a fitted transformer and classifier pair.
type Estimator struct {
	Transformer *Transformer        `json:"transformer"`
	Classifier  *LogisticRegression `json:"classifier"`
}

// NewEstimator returns an estimator of fitted parts.
func NewEstimator(transformer *Transformer, classifier *LogisticRegression) *Estimator {
	return &Estimator{
		Transformer: transformer,
		Classifier:  classifier,
	}
}

// Predict returns the predicted target value of every raw record.
func (e *Estimator) Predict(f *frame.Frame) ([]string, error) {
	if e.Transformer == nil || e.Classifier == nil {
		return nil, ErrNotFitted
	}

	features, err := e.Transformer.TransformFeatures(f)
	if err != nil {
		return nil, fmt.Errorf("transform features: %w", err)
	}

	inst, err := NewInstances(features, false)
	if err != nil {
		return nil, err
	}

	classes, err := e.Classifier.Predict(inst)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(classes))
	for i, class := range classes {
		labels[i] = e.Transformer.Label(class)
	}

	return labels, nil
}
