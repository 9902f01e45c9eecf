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

package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
)

func TestSHA256FromStrings(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", SHA256FromStrings("hello"))
	assert.Equal(SHA256FromStrings("hello"), SHA256FromStrings("he", "llo"))
	assert.Equal("", SHA256FromStrings())
}

func TestFromReader(t *testing.T) {
	tests := []struct {
		name      string
		algorithm digest.Algorithm
		expect    func(t *testing.T, d digest.Digest, err error)
	}{
		{
			name:      "sha256 digest",
			algorithm: AlgorithmSHA256,
			expect: func(t *testing.T, d digest.Digest, err error) {
				assert := assert.New(t)
				assert.NoError(err)
				assert.Equal("sha256:2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", d.String())
			},
		},
		{
			name:      "unavailable algorithm",
			algorithm: digest.Algorithm("foo"),
			expect: func(t *testing.T, d digest.Digest, err error) {
				assert := assert.New(t)
				assert.EqualError(err, "digest algorithm foo is unavailable")
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := FromReader(tc.algorithm, strings.NewReader("hello"))
			tc.expect(t, d, err)
		})
	}
}

func TestHashFile(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	assert.NoError(os.WriteFile(path, []byte("hello"), 0644))

	d, err := HashFile(path, AlgorithmSHA256)
	assert.NoError(err)
	assert.Equal("2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", d.Encoded())
	assert.NoError(Validate(d.String()))

	_, err = HashFile(dir, AlgorithmSHA256)
	assert.Error(err)

	_, err = HashFile(filepath.Join(dir, "foo"), AlgorithmSHA256)
	assert.Error(err)
	assert.Error(Validate("foo"))
}
