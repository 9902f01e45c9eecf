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
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/sjwhitworth/golearn/base"

	logger "modelpipe.io/modelpipe/internal/pipelog"
)

// DecisionThreshold is the probability from which a row is positive.
const DecisionThreshold = 0.5

// LogisticRegression logistic regression model struct.
type LogisticRegression struct {
	Fitted       bool      `json:"fitted"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
	Attrs        []string  `json:"attrs"`
	Cls          string    `json:"cls"`
}

// NewLogisticRegression return an instance of logistic regression model.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{Fitted: false}
}

// Fit train parameters of model with batch gradient descent,
// coefficients are initialized from seed.
func (lr *LogisticRegression) Fit(inst base.FixedDataGrid, learningRate float64, epochs int, seed int64) error {
	_, rows := inst.Size()
	if rows == 0 {
		return errors.New("no rows to fit")
	}

	classAttrs := inst.AllClassAttributes()
	if len(classAttrs) != 1 {
		return errors.New("only 1 class variable is permitted")
	}
	classAttrSpecs := base.ResolveAttributes(inst, classAttrs)

	allAttrs := base.NonClassAttributes(inst)
	attrs := make([]base.Attribute, 0)
	for _, a := range allAttrs {
		if _, ok := a.(*base.FloatAttribute); ok {
			attrs = append(attrs, a)
		}
	}
	attrSpecs := base.ResolveAttributes(inst, attrs)

	x := make([][]float64, rows)
	y := make([]float64, rows)
	for i := 0; i < rows; i++ {
		x[i] = make([]float64, len(attrs))
		for j := range attrSpecs {
			x[i][j] = base.UnpackBytesToFloat(inst.Get(attrSpecs[j], i))
		}
		y[i] = base.UnpackBytesToFloat(inst.Get(classAttrSpecs[0], i))
	}

	r := rand.New(rand.NewSource(seed))
	cols := len(attrs) + 1
	weights := make([]float64, cols)
	for i := 0; i < cols; i++ {
		weights[i] = (r.Float64() - 0.5) * 0.01
	}

	gradient := make([]float64, cols)
	for epoch := 0; epoch < epochs; epoch++ {
		for j := range gradient {
			gradient[j] = 0
		}

		for i := 0; i < rows; i++ {
			diff := sigmoid(dot(weights, x[i])) - y[i]
			gradient[0] += diff
			for j := 1; j < cols; j++ {
				gradient[j] += diff * x[i][j-1]
			}
		}

		for j := range weights {
			weights[j] -= learningRate * gradient[j] / float64(rows)
		}
	}

	lr.Intercept = weights[0]
	lr.Coefficients = weights[1:]
	lr.Attrs = make([]string, len(attrs))
	for idx, a := range attrs {
		lr.Attrs[idx] = a.GetName()
	}
	lr.Cls = classAttrs[0].GetName()
	lr.Fitted = true
	return nil
}

// PredictProba returns the positive class probability of every row.
func (lr *LogisticRegression) PredictProba(X base.FixedDataGrid) ([]float64, error) {
	if !lr.Fitted {
		logger.Info("no fitted model")
		return nil, ErrNotFitted
	}

	attrSpecs := make([]base.AttributeSpec, len(lr.Attrs))
	for idx, name := range lr.Attrs {
		attr := base.GetAttributeByName(X, name)
		if attr == nil {
			return nil, fmt.Errorf("attribute %s not found", name)
		}

		spec, err := X.GetAttribute(attr)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}

		attrSpecs[idx] = spec
	}

	_, rows := X.Size()
	probabilities := make([]float64, rows)
	err := X.MapOverRows(attrSpecs, func(row [][]byte, i int) (bool, error) {
		z := lr.Intercept
		for j, r := range row {
			z += base.UnpackBytesToFloat(r) * lr.Coefficients[j]
		}

		probabilities[i] = sigmoid(z)
		return true, nil
	})
	if err != nil {
		logger.Infof("LogisticRegression error happens, error is %v", err)
		return nil, err
	}

	return probabilities, nil
}

// Predict returns the predicted class of every row.
func (lr *LogisticRegression) Predict(X base.FixedDataGrid) ([]int, error) {
	probabilities, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}

	classes := make([]int, len(probabilities))
	for i, p := range probabilities {
		if p >= DecisionThreshold {
			classes[i] = 1
		}
	}

	return classes, nil
}

// dot returns w0 + w[1:]·x.
func dot(w, x []float64) float64 {
	z := w[0]
	for j, v := range x {
		z += w[j+1] * v
	}

	return z
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
