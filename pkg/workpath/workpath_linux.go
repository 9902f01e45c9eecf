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

import "os"

var (
	DefaultWorkHome        = "/usr/local/modelpipe"
	DefaultWorkHomeMode    = os.FileMode(0700)
	DefaultConfigDir       = "/etc/modelpipe"
	DefaultLogDir          = "/var/log/modelpipe"
	DefaultArtifactDir     = "/var/lib/modelpipe/artifacts"
	DefaultArtifactDirMode = os.FileMode(0755)
)
