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

package pipeerrors

import (
	"errors"
	"fmt"
)

// Kind is the stage or component an error originates from.
type Kind int

const (
	KindUnknown Kind = iota
	KindIngestion
	KindValidation
	KindTransformation
	KindTraining
	KindEvaluation
	KindPush
	KindRegistry
	KindConfig
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindIngestion:      "ingestion",
	KindValidation:     "validation",
	KindTransformation: "transformation",
	KindTraining:       "training",
	KindEvaluation:     "evaluation",
	KindPush:           "push",
	KindRegistry:       "registry",
	KindConfig:         "config",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return kindNames[KindUnknown]
}

// common pipeline errors
var (
	ErrInvalidSplitRatio  = errors.New("split ratio must be in range (0, 1)")
	ErrEmptyCollection    = errors.New("collection has no records")
	ErrValidationFailed   = errors.New("data validation did not pass")
	ErrNotFound           = errors.New("object not found")
	ErrBelowExpectedScore = errors.New("model score is below expected score")
	ErrModelNotLoaded     = errors.New("model is not loaded")
)

// Error wraps a cause with the kind and operation it failed in.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}

	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match for any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

func New(kind Kind, op string, err error) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}

func Newf(kind Kind, op string, format string, a ...any) *Error {
	return &Error{
		Kind: kind,
		Op:   op,
		Err:  fmt.Errorf(format, a...),
	}
}

// IsKind reports whether any error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, &Error{Kind: kind})
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return KindUnknown, false
	}

	return e.Kind, true
}
