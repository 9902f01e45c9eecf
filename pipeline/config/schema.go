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

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Schema describes the columns expected in ingested records.
type Schema struct {
	// Columns is the ordered list of single entry maps of column name to type.
	Columns []map[string]string `yaml:"columns"`

	// NumericalColumns are columns holding numbers.
	NumericalColumns []string `yaml:"numerical_columns"`

	// CategoricalColumns are columns holding labels.
	CategoricalColumns []string `yaml:"categorical_columns"`

	// DropColumns are removed before transformation.
	DropColumns []string `yaml:"drop_columns"`

	// TargetColumn is the class column.
	TargetColumn string `yaml:"target_column"`

	// PositiveLabel is the target value of the positive class.
	PositiveLabel string `yaml:"positive_label"`
}

// LoadSchema reads the schema descriptor from a yaml file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("unmarshal schema %s: %w", path, err)
	}

	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", path, err)
	}

	return &schema, nil
}

// Validate schema parameters.
func (s *Schema) Validate() error {
	if len(s.Columns) == 0 {
		return errors.New("schema requires parameter columns")
	}

	for _, column := range s.Columns {
		if len(column) != 1 {
			return errors.New("schema columns require one name per entry")
		}
	}

	return nil
}

// ColumnCount returns the number of declared columns.
func (s *Schema) ColumnCount() int {
	return len(s.Columns)
}

// ColumnNames returns the declared column names in order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, 0, len(s.Columns))
	for _, column := range s.Columns {
		for name := range column {
			names = append(names, name)
		}
	}

	return names
}

// RequiredColumns returns numerical columns followed by categorical columns.
func (s *Schema) RequiredColumns() []string {
	columns := make([]string, 0, len(s.NumericalColumns)+len(s.CategoricalColumns))
	columns = append(columns, s.NumericalColumns...)
	return append(columns, s.CategoricalColumns...)
}

// ValidateTarget checks the parameters used by transformation.
func (s *Schema) ValidateTarget() error {
	if s.TargetColumn == "" {
		return errors.New("schema requires parameter target_column")
	}

	if s.PositiveLabel == "" {
		return errors.New("schema requires parameter positive_label")
	}

	return nil
}
