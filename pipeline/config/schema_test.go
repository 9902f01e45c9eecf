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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadSchema(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		expect func(t *testing.T, schema *Schema, err error)
	}{
		{
			name: "load schema",
			expect: func(t *testing.T, schema *Schema, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(5, schema.ColumnCount())
				assert.Equal([]string{"age", "income", "category", "id", "class"}, schema.ColumnNames())
				assert.Equal([]string{"age", "income", "category"}, schema.RequiredColumns())
				assert.Equal([]string{"id"}, schema.DropColumns)
				assert.NoError(schema.ValidateTarget())
			},
		},
		{
			name: "schema without columns",
			data: "numerical_columns:\n  - age\n",
			expect: func(t *testing.T, schema *Schema, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "schema requires parameter columns")
			},
		},
		{
			name: "schema with invalid column entry",
			data: "columns:\n  - age: int\n    income: float\n",
			expect: func(t *testing.T, schema *Schema, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "schema columns require one name per entry")
			},
		},
		{
			name: "schema without target",
			data: "columns:\n  - age: int\n",
			expect: func(t *testing.T, schema *Schema, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.EqualError(schema.ValidateTarget(), "schema requires parameter target_column")
			},
		},
		{
			name: "invalid yaml",
			data: "columns: [",
			expect: func(t *testing.T, schema *Schema, err error) {
				assert := assert.New(t)
				assert.ErrorContains(err, "unmarshal schema")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := "testdata/schema.yaml"
			if tc.data != "" {
				path = filepath.Join(t.TempDir(), "schema.yaml")
				if err := os.WriteFile(path, []byte(tc.data), 0644); err != nil {
					t.Fatal(err)
				}
			}

			schema, err := LoadSchema(path)
			tc.expect(t, schema, err)
		})
	}

	_, err := LoadSchema("testdata/foo.yaml")
	assert.Error(t, err)
}
