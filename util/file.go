// Copyright 2023 - 2026 The cubectl Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// OutputPath returns the path of the file the dataset with the given id is
// exported to.
func OutputPath(dir, dataset, ext string) string {
	return filepath.Join(dir, dataset+ext)
}

// CreateOutputFileOrDie creates the output file at the given filepath if it does not already exist
// and returns the file handle.
// Existing files are never overwritten. If the file already exists the command exits with code 3,
// if it can't be created for any other reason with code 4.
//
// Note: The callee has to make sure that the file handle is closed properly.
func CreateOutputFileOrDie(filepath string) *os.File {
	outputFile, err := os.OpenFile(filepath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			fmt.Fprintf(os.Stderr, "The output file %s does already exist.\n", filepath)
			os.Exit(3)
		} else {
			fmt.Fprintf(os.Stderr, "could not open/create the output file %s: %v\n", filepath, err)
			os.Exit(4)
		}
	}
	return outputFile
}
