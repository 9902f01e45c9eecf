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

// Package frame holds tabular records as ordered string columns.
package frame

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// MissingValue is the cell value of a missing record field.
const MissingValue = ""

var (
	// ErrEmptyCSV is returned when a csv file has no header.
	ErrEmptyCSV = errors.New("empty csv file given")

	// ErrInvalidRatio is returned when a split ratio is not in (0, 1).
	ErrInvalidRatio = errors.New("ratio must be in range (0, 1)")
)

// splitEpsilon absorbs float rounding of ratio * rows.
const splitEpsilon = 1e-9

// Frame is an in-memory table, every row has len(Columns) cells.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// New returns a frame, short rows are padded with missing values.
func New(columns []string, rows [][]string) *Frame {
	f := &Frame{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, 0, len(rows)),
	}

	for _, row := range rows {
		f.Append(row)
	}

	return f
}

// Append adds a row to the frame.
func (f *Frame) Append(row []string) {
	cells := make([]string, len(f.Columns))
	copy(cells, row)
	f.Rows = append(f.Rows, cells)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Index returns the position of column name, -1 if absent.
func (f *Frame) Index(name string) int {
	for i, column := range f.Columns {
		if column == name {
			return i
		}
	}

	return -1
}

// HasColumn returns whether the frame has column name.
func (f *Frame) HasColumn(name string) bool {
	return f.Index(name) >= 0
}

// Column returns the cells of column name.
func (f *Frame) Column(name string) ([]string, bool) {
	idx := f.Index(name)
	if idx < 0 {
		return nil, false
	}

	cells := make([]string, 0, len(f.Rows))
	for _, row := range f.Rows {
		cells = append(cells, row[idx])
	}

	return cells, true
}

// Drop returns a copy of the frame without the named columns.
func (f *Frame) Drop(names ...string) *Frame {
	dropped := make(map[string]struct{}, len(names))
	for _, name := range names {
		dropped[name] = struct{}{}
	}

	var (
		columns []string
		keep    []int
	)
	for i, column := range f.Columns {
		if _, ok := dropped[column]; ok {
			continue
		}

		columns = append(columns, column)
		keep = append(keep, i)
	}

	rows := make([][]string, 0, len(f.Rows))
	for _, row := range f.Rows {
		cells := make([]string, 0, len(keep))
		for _, i := range keep {
			cells = append(cells, row[i])
		}
		rows = append(rows, cells)
	}

	return &Frame{Columns: columns, Rows: rows}
}

// TestSize returns ceil(ratio * n).
func TestSize(n int, ratio float64) int {
	size := int(math.Ceil(float64(n)*ratio - splitEpsilon))
	if size < 0 {
		return 0
	}

	if size > n {
		return n
	}

	return size
}

// Split shuffles rows with a seeded source and returns the train and test partitions,
// the test partition holds TestSize(n, ratio) rows.
func (f *Frame) Split(ratio float64, seed int64) (*Frame, *Frame, error) {
	if math.IsNaN(ratio) || ratio <= 0 || ratio >= 1 {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidRatio, ratio)
	}

	n := len(f.Rows)
	nTest := TestSize(n, ratio)
	perm := rand.New(rand.NewSource(seed)).Perm(n)

	train := &Frame{Columns: append([]string(nil), f.Columns...), Rows: make([][]string, 0, n-nTest)}
	test := &Frame{Columns: append([]string(nil), f.Columns...), Rows: make([][]string, 0, nTest)}
	for i, idx := range perm {
		if i < nTest {
			test.Rows = append(test.Rows, f.Rows[idx])
			continue
		}

		train.Rows = append(train.Rows, f.Rows[idx])
	}

	return train, test, nil
}

// Read parses csv data whose first record is the header.
func Read(r io.Reader) (*Frame, error) {
	records, err := gocsv.DefaultCSVReader(r).ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrEmptyCSV
	}

	return New(records[0], records[1:]), nil
}

// ReadFile parses the csv file at path.
func ReadFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return f, nil
}

// Write writes the header and rows as csv.
func (f *Frame) Write(w io.Writer) error {
	writer := gocsv.DefaultCSVWriter(w)
	if err := writer.Write(f.Columns); err != nil {
		return err
	}

	for _, row := range f.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes the frame to path, parent directories are created on demand.
func (f *Frame) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0755)); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	return f.Write(file)
}
