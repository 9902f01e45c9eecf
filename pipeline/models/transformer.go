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
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pkg/frame"
)

const (
	// LabelColumn is the name of the transformed class column.
	LabelColumn = "label"

	// PositiveClass is the transformed value of the positive label.
	PositiveClass = "1"

	// NegativeClass is the transformed value of every other label.
	NegativeClass = "0"

	// DefaultNegativeLabel is reported for negative predictions when training saw no negative label.
	DefaultNegativeLabel = "other"
)

var (
	// ErrNotFitted is returned when a model is used before fitting.
	ErrNotFitted = errors.New("no fitted model")
)

// NumericalColumn holds the train statistics of a numerical column.
type NumericalColumn struct {
	Name   string  `json:"name"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// CategoricalColumn holds the train vocabulary of a categorical column.
type CategoricalColumn struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// Transformer turns raw records into scaled numeric features.
type Transformer struct {
	Fitted             bool                 `json:"fitted"`
	NumericalColumns   []*NumericalColumn   `json:"numerical_columns"`
	CategoricalColumns []*CategoricalColumn `json:"categorical_columns"`
	DropColumns        []string             `json:"drop_columns"`
	TargetColumn       string               `json:"target_column"`
	PositiveLabel      string               `json:"positive_label"`
	NegativeLabel      string               `json:"negative_label"`
}

// NewTransformer return an unfitted transformer of the schema.
func NewTransformer(schema *config.Schema) *Transformer {
	t := &Transformer{
		DropColumns:   append([]string(nil), schema.DropColumns...),
		TargetColumn:  schema.TargetColumn,
		PositiveLabel: schema.PositiveLabel,
		NegativeLabel: DefaultNegativeLabel,
	}

	for _, name := range schema.NumericalColumns {
		t.NumericalColumns = append(t.NumericalColumns, &NumericalColumn{Name: name})
	}

	for _, name := range schema.CategoricalColumns {
		t.CategoricalColumns = append(t.CategoricalColumns, &CategoricalColumn{Name: name})
	}

	return t
}

// Fit learns column statistics from the train frame.
func (t *Transformer) Fit(f *frame.Frame) error {
	f = f.Drop(t.DropColumns...)

	for _, c := range t.NumericalColumns {
		cells, ok := f.Column(c.Name)
		if !ok {
			return fmt.Errorf("numerical column %s not found", c.Name)
		}

		values, err := parseNumbers(c.Name, cells)
		if err != nil {
			return err
		}

		c.Median, c.Min, c.Max = 0, 0, 0
		if len(values) == 0 {
			continue
		}

		data := stats.Float64Data(values)
		if c.Median, err = data.Median(); err != nil {
			return err
		}

		if c.Min, err = data.Min(); err != nil {
			return err
		}

		if c.Max, err = data.Max(); err != nil {
			return err
		}
	}

	for _, c := range t.CategoricalColumns {
		cells, ok := f.Column(c.Name)
		if !ok {
			return fmt.Errorf("categorical column %s not found", c.Name)
		}

		c.Categories = vocabulary(cells)
	}

	targets, ok := f.Column(t.TargetColumn)
	if !ok {
		return fmt.Errorf("target column %s not found", t.TargetColumn)
	}
	t.NegativeLabel = negativeLabel(targets, t.PositiveLabel)

	t.Fitted = true
	return nil
}

// FeatureNames returns the transformed feature column names.
func (t *Transformer) FeatureNames() []string {
	var names []string
	for _, c := range t.NumericalColumns {
		names = append(names, c.Name)
	}

	for _, c := range t.CategoricalColumns {
		for _, category := range c.Categories {
			names = append(names, c.Name+"_"+category)
		}
	}

	return names
}

// Transform returns the feature columns followed by the label column.
func (t *Transformer) Transform(f *frame.Frame) (*frame.Frame, error) {
	features, err := t.TransformFeatures(f)
	if err != nil {
		return nil, err
	}

	targets, ok := f.Column(t.TargetColumn)
	if !ok {
		return nil, fmt.Errorf("target column %s not found", t.TargetColumn)
	}

	out := frame.New(append(features.Columns, LabelColumn), nil)
	for i, row := range features.Rows {
		out.Append(append(row, t.Class(targets[i])))
	}

	return out, nil
}

// TransformFeatures returns the feature columns only, the target column may be absent.
func (t *Transformer) TransformFeatures(f *frame.Frame) (*frame.Frame, error) {
	if !t.Fitted {
		return nil, ErrNotFitted
	}

	columns := make([][]string, 0, len(t.NumericalColumns)+len(t.CategoricalColumns))
	for _, c := range t.NumericalColumns {
		cells, ok := f.Column(c.Name)
		if !ok {
			return nil, fmt.Errorf("numerical column %s not found", c.Name)
		}

		scaled, err := c.transform(cells)
		if err != nil {
			return nil, err
		}

		columns = append(columns, scaled)
	}

	for _, c := range t.CategoricalColumns {
		cells, ok := f.Column(c.Name)
		if !ok {
			return nil, fmt.Errorf("categorical column %s not found", c.Name)
		}

		columns = append(columns, c.transform(cells)...)
	}

	out := frame.New(t.FeatureNames(), nil)
	for i := 0; i < f.Len(); i++ {
		row := make([]string, len(columns))
		for j := range columns {
			row[j] = columns[j][i]
		}

		out.Append(row)
	}

	return out, nil
}

// Class maps a target value to its transformed class.
func (t *Transformer) Class(target string) string {
	if target == t.PositiveLabel {
		return PositiveClass
	}

	return NegativeClass
}

// Label maps a predicted class back to a target value.
func (t *Transformer) Label(class int) string {
	if class == 1 {
		return t.PositiveLabel
	}

	return t.NegativeLabel
}

func (c *NumericalColumn) transform(cells []string) ([]string, error) {
	out := make([]string, len(cells))
	for i, cell := range cells {
		value := c.Median
		if cell != frame.MissingValue {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", c.Name, i, err)
			}

			value = v
		}

		out[i] = formatFloat(c.scale(value))
	}

	return out, nil
}

// scale applies min-max scaling, a constant column scales to zero.
func (c *NumericalColumn) scale(value float64) float64 {
	if c.Max == c.Min {
		return 0
	}

	return (value - c.Min) / (c.Max - c.Min)
}

// transform one-hot encodes cells, unknown and missing values encode to all zeros.
func (c *CategoricalColumn) transform(cells []string) [][]string {
	out := make([][]string, len(c.Categories))
	for j := range out {
		out[j] = make([]string, len(cells))
	}

	for i, cell := range cells {
		for j, category := range c.Categories {
			if cell == category {
				out[j][i] = "1"
			} else {
				out[j][i] = "0"
			}
		}
	}

	return out
}

func parseNumbers(name string, cells []string) ([]float64, error) {
	values := make([]float64, 0, len(cells))
	for i, cell := range cells {
		if cell == frame.MissingValue {
			continue
		}

		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s row %d: %w", name, i, err)
		}

		values = append(values, v)
	}

	return values, nil
}

func vocabulary(cells []string) []string {
	seen := map[string]struct{}{}
	var categories []string
	for _, cell := range cells {
		if cell == frame.MissingValue {
			continue
		}

		if _, ok := seen[cell]; !ok {
			seen[cell] = struct{}{}
			categories = append(categories, cell)
		}
	}

	sort.Strings(categories)
	return categories
}

// negativeLabel returns the most frequent non positive target, ties break by name.
func negativeLabel(targets []string, positive string) string {
	counts := map[string]int{}
	for _, target := range targets {
		if target != positive && target != frame.MissingValue {
			counts[target]++
		}
	}

	label, count := DefaultNegativeLabel, 0
	for target, n := range counts {
		if n > count || (n == count && target < label) {
			label, count = target, n
		}
	}

	return label
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
