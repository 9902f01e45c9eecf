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
	"strconv"

	"github.com/sjwhitworth/golearn/base"

	"modelpipe.io/modelpipe/pkg/frame"
)

// NewInstances converts a numeric frame to dense instances,
// the last column becomes the class attribute when withClass is set.
func NewInstances(f *frame.Frame, withClass bool) (*base.DenseInstances, error) {
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(f.Columns))
	for i, column := range f.Columns {
		attr := base.NewFloatAttribute(column)
		specs[i] = inst.AddAttribute(attr)

		if withClass && i == len(f.Columns)-1 {
			if err := inst.AddClassAttribute(attr); err != nil {
				return nil, err
			}
		}
	}

	if err := inst.Extend(f.Len()); err != nil {
		return nil, err
	}

	for i, row := range f.Rows {
		for j, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", f.Columns[j], i, err)
			}

			inst.Set(specs[j], i, base.PackFloatToBytes(v))
		}
	}

	return inst, nil
}

// ClassValues returns the class attribute of every row.
func ClassValues(inst base.FixedDataGrid) ([]float64, error) {
	classAttrs := inst.AllClassAttributes()
	if len(classAttrs) != 1 {
		return nil, fmt.Errorf("only 1 class variable is permitted, got %d", len(classAttrs))
	}

	spec, err := inst.GetAttribute(classAttrs[0])
	if err != nil {
		return nil, err
	}

	_, rows := inst.Size()
	values := make([]float64, rows)
	for i := 0; i < rows; i++ {
		values[i] = base.UnpackBytesToFloat(inst.Get(spec, i))
	}

	return values, nil
}
