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

package workpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		options []Option
		expect  func(t *testing.T, w Workpath, err error)
	}{
		{
			name:    "new workpath failed",
			options: []Option{WithWorkHome(filepath.Join(dir, "foo")), WithLogDir(""), WithArtifactDir("")},
			expect: func(t *testing.T, w Workpath, err error) {
				assert := assert.New(t)
				assert.Error(err)
				assert.Nil(w)
			},
		},
		{
			name: "new workpath",
			options: []Option{
				WithWorkHome(filepath.Join(dir, "home")),
				WithWorkHomeMode(os.FileMode(0700)),
				WithLogDir(filepath.Join(dir, "logs")),
				WithArtifactDir(filepath.Join(dir, "artifacts")),
				WithArtifactDirMode(os.FileMode(0750)),
			},
			expect: func(t *testing.T, w Workpath, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal(filepath.Join(dir, "home"), w.WorkHome())
				assert.Equal(os.FileMode(0700), w.WorkHomeMode())
				assert.Equal(filepath.Join(dir, "logs"), w.LogDir())
				assert.Equal(filepath.Join(dir, "artifacts"), w.ArtifactDir())
				assert.Equal(os.FileMode(0750), w.ArtifactDirMode())
				assert.DirExists(w.WorkHome())
				assert.DirExists(w.LogDir())
				assert.DirExists(w.ArtifactDir())
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, err := New(tc.options...)
			tc.expect(t, w, err)
		})
	}
}
