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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/corovcam/cubectl/cube"
	"github.com/corovcam/cubectl/data"
)

const bom = "\ufeff"

// ReadRows parses delimited text with a header row into rows keyed by the
// header names. A leading byte order mark is dropped.
func ReadRows(r io.Reader, delimiter rune) ([]cube.Row, error) {
	reader := csv.NewReader(r)
	if delimiter != 0 {
		reader.Comma = delimiter
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error while reading the header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}

	var rows []cube.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row := make(cube.Row, len(header))
		for i, column := range header {
			row[column] = record[i]
		}
		rows = append(rows, row)
	}
}

// ParseDelimiter returns the first rune of s, or a comma if s is empty.
func ParseDelimiter(s string) (rune, error) {
	if s == "" {
		return ',', nil
	}
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("delimiter `%s` is not a single character", s)
	}
	return r, nil
}

// ReadRowsFromFile reads the rows of the given input.
func ReadRowsFromFile(in data.Input) ([]cube.Row, error) {
	delimiter, err := ParseDelimiter(in.Delimiter)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(in.Path)
	if err != nil {
		return nil, fmt.Errorf("error while opening the input file %s: %w", in.Path, err)
	}
	defer f.Close()

	rows, err := ReadRows(f, delimiter)
	if err != nil {
		return nil, fmt.Errorf("error while reading the input file %s: %w", in.Path, err)
	}
	return rows, nil
}
