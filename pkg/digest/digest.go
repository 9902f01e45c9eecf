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
	"bufio"
	_ "crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"
)

const (
	// AlgorithmSHA256 is the default algorithm of artifact digests.
	AlgorithmSHA256 = digest.SHA256

	// readBufferSize is buffer size of file reader.
	readBufferSize = 4 * 1024 * 1024
)

// SHA256FromStrings returns the hex encoded sha256 of the concatenated values.
func SHA256FromStrings(values ...string) string {
	if len(values) == 0 {
		return ""
	}

	digester := AlgorithmSHA256.Digester()
	for _, value := range values {
		if _, err := digester.Hash().Write([]byte(value)); err != nil {
			return ""
		}
	}

	return digester.Digest().Encoded()
}

// FromReader returns the digest of reader in "<algorithm>:<encoded>" form.
func FromReader(algorithm digest.Algorithm, r io.Reader) (digest.Digest, error) {
	if !algorithm.Available() {
		return "", fmt.Errorf("digest algorithm %s is unavailable", algorithm)
	}

	return algorithm.FromReader(r)
}

// HashFile returns the digest of a regular file.
func HashFile(path string, algorithm digest.Algorithm) (digest.Digest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return FromReader(algorithm, bufio.NewReaderSize(f, readBufferSize))
}

// Validate parses s and checks it is a well formed digest.
func Validate(s string) error {
	d, err := digest.Parse(s)
	if err != nil {
		return err
	}

	return d.Validate()
}
