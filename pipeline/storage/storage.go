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

package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"

	"modelpipe.io/modelpipe/pkg/frame"
)

const (
	// jsonIndent is the indent of json artifact files.
	jsonIndent = "    "

	// defaultDirMode is the mode of created artifact directories.
	defaultDirMode = os.FileMode(0755)

	// defaultFileMode is the mode of created artifact files.
	defaultFileMode = os.FileMode(0644)
)

// Scope tracks the files written by one stage, either all of them are kept or none.
type Scope interface {
	// WriteFile writes a file atomically and tracks its path.
	WriteFile(path string, write func(w io.Writer) error) error

	// WriteJSON writes v as indented json.
	WriteJSON(path string, v any) error

	// WriteFrame writes f as csv.
	WriteFrame(path string, f *frame.Frame) error

	// Paths returns the tracked paths in write order.
	Paths() []string

	// Rollback removes all tracked files.
	Rollback() error
}

type scope struct {
	mu    sync.Mutex
	paths []string
}

// NewScope returns a new Scope instance.
func NewScope() Scope {
	return &scope{}
}

// WriteFile writes into a temporary file of the same directory and renames it to path.
func (s *scope) WriteFile(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Chmod(tmp.Name(), defaultFileMode); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	s.mu.Lock()
	s.paths = append(s.paths, path)
	s.mu.Unlock()
	return nil
}

// WriteJSON writes v as indented json.
func (s *scope) WriteJSON(path string, v any) error {
	return s.WriteFile(path, func(w io.Writer) error {
		return EncodeJSON(w, v)
	})
}

// WriteFrame writes f as csv.
func (s *scope) WriteFrame(path string, f *frame.Frame) error {
	return s.WriteFile(path, f.Write)
}

// Paths returns the tracked paths in write order.
func (s *scope) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.paths...)
}

// Rollback removes all tracked files.
func (s *scope) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs *multierror.Error
	for _, path := range s.paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			errs = multierror.Append(errs, err)
		}
	}
	s.paths = nil

	return errs.ErrorOrNil()
}

// EncodeJSON writes v as indented json without html escaping.
func EncodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", jsonIndent)
	return encoder.Encode(v)
}

// ReadJSON decodes the json file at path into v.
func ReadJSON(path string, v any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(v)
}

// Clear removes the artifact directory of a run.
func Clear(runDir string) error {
	return os.RemoveAll(runDir)
}
