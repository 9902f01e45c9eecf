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

package validation

import (
	"context"
	"fmt"
	"strings"

	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/internal/pipeerrors"
	"modelpipe.io/modelpipe/pipeline/artifact"
	"modelpipe.io/modelpipe/pipeline/config"
	"modelpipe.io/modelpipe/pipeline/storage"
	"modelpipe.io/modelpipe/pkg/frame"
)

// Name is the stage name.
const Name = "validation"

const (
	trainingFrameName = "training"
	testFrameName     = "test"
)

// Report is the layout of the validation report file.
type Report struct {
	ValidationStatus bool   `json:"validation_status"`
	Message          string `json:"message"`
}

// Validation checks the ingested partitions against the schema.
type Validation struct {
	config *config.DataValidationConfig
}

// New returns a new Validation instance.
func New(cfg *config.DataValidationConfig) *Validation {
	return &Validation{config: cfg}
}

// Run checks both partitions and always writes the report,
// a failed check is reported in the artifact rather than returned as error.
func (v *Validation) Run(ctx context.Context, ingestion *artifact.IngestionArtifact) (*artifact.ValidationArtifact, error) {
	log := logger.With("stage", Name)

	schema, err := config.LoadSchema(v.config.SchemaPath)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindValidation, "LoadSchema", err)
	}

	train, err := frame.ReadFile(ingestion.TrainPath)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindValidation, "ReadTrain", err)
	}

	test, err := frame.ReadFile(ingestion.TestPath)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindValidation, "ReadTest", err)
	}

	message := Validate(schema, train, test)
	report := &Report{
		ValidationStatus: message == "",
		Message:          message,
	}

	if err := storage.NewScope().WriteJSON(v.config.ReportPath, report); err != nil {
		return nil, pipeerrors.New(pipeerrors.KindValidation, "WriteReport", err)
	}

	a := &artifact.ValidationArtifact{
		Status:     report.ValidationStatus,
		Message:    report.Message,
		ReportPath: v.config.ReportPath,
	}
	if err := artifact.Validate(a); err != nil {
		return nil, pipeerrors.New(pipeerrors.KindValidation, "Run", err)
	}

	if !a.Status {
		log.Warnf("validation did not pass: %s", a.Message)
	}

	log.Infof("validation completed: %s", a)
	return a, nil
}

// Validate returns the failure message of both partitions, empty when every check passed.
// Fragments are ordered train count, test count, train presence, test presence.
func Validate(schema *config.Schema, train, test *frame.Frame) string {
	var b strings.Builder
	b.WriteString(validateColumnCount(schema, trainingFrameName, train))
	b.WriteString(validateColumnCount(schema, testFrameName, test))
	b.WriteString(validateColumnPresence(schema, trainingFrameName, train))
	b.WriteString(validateColumnPresence(schema, testFrameName, test))

	return strings.TrimSpace(b.String())
}

// validateColumnCount compares the number of columns only, names are not checked.
func validateColumnCount(schema *config.Schema, name string, f *frame.Frame) string {
	expected := schema.ColumnCount()
	if got := len(f.Columns); got != expected {
		return fmt.Sprintf("Columns are missing in the %s dataframe: expected %d columns, got %d. ", name, expected, got)
	}

	return ""
}

// validateColumnPresence collects every absent numerical and categorical column.
func validateColumnPresence(schema *config.Schema, name string, f *frame.Frame) string {
	var missing []string
	for _, column := range schema.RequiredColumns() {
		if !f.HasColumn(column) {
			missing = append(missing, column)
		}
	}

	if len(missing) > 0 {
		return fmt.Sprintf("Missing columns in the %s dataframe: [%s]. ", name, strings.Join(missing, ", "))
	}

	return ""
}
