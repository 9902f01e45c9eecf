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

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"modelpipe.io/modelpipe/pipeline/registry/mocks"
	"modelpipe.io/modelpipe/pkg/frame"
)

func TestPredict(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		mock   func(m *mocks.MockRegistryMockRecorder)
		expect func(t *testing.T, out string, err error)
	}{
		{
			name:  "print one label per row",
			input: "age,income\n10,1\n0,2\n",
			mock: func(m *mocks.MockRegistryMockRecorder) {
				m.Bucket().Return("bucket").AnyTimes()
				m.Predict(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, rows *frame.Frame) ([]string, error) {
					assert.Equal(t, []string{"age", "income"}, rows.Columns)
					assert.Equal(t, 2, rows.Len())
					return []string{"pos", "other"}, nil
				}).Times(1)
			},
			expect: func(t *testing.T, out string, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("pos\nother\n", out)
			},
		},
		{
			name:  "registry failed",
			input: "age,income\n10,1\n",
			mock: func(m *mocks.MockRegistryMockRecorder) {
				m.Predict(gomock.Any(), gomock.Any()).Return(nil, errors.New("foo")).Times(1)
			},
			expect: func(t *testing.T, out string, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "foo")
				assert.Empty(out)
			},
		},
		{
			name:  "empty input",
			input: "",
			mock:  func(m *mocks.MockRegistryMockRecorder) {},
			expect: func(t *testing.T, out string, err error) {
				assert := assert.New(t)
				assert.ErrorIs(err, frame.ErrEmptyCSV)
				assert.Empty(out)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctl := gomock.NewController(t)
			defer ctl.Finish()

			r := mocks.NewMockRegistry(ctl)
			tc.mock(r.EXPECT())

			input := filepath.Join(t.TempDir(), "input.csv")
			if err := os.WriteFile(input, []byte(tc.input), 0644); err != nil {
				t.Fatal(err)
			}

			var out bytes.Buffer
			err := predict(context.Background(), r, input, &out)
			tc.expect(t, out.String(), err)
		})
	}
}

func TestPredict_InputNotExist(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	var out bytes.Buffer
	err := predict(context.Background(), mocks.NewMockRegistry(ctl), filepath.Join(t.TempDir(), "foo.csv"), &out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
