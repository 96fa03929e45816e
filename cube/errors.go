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

package cube

import (
	"errors"
	"fmt"
)

var ErrModelSealed = errors.New("model is already built")

var (
	ErrNotFinite  = errors.New("not a finite number")
	ErrNotInteger = errors.New("not an integer")
)

// RegistrySealedError is returned when a value is registered into a category
// whose code list was already sealed.
type RegistrySealedError struct {
	Category Category
	Value    string
}

func (e *RegistrySealedError) Error() string {
	return fmt.Sprintf("code list of category %s is sealed, can't register `%s`", e.Category, e.Value)
}

type DuplicateDimensionError struct {
	Name string
}

func (e *DuplicateDimensionError) Error() string {
	return fmt.Sprintf("dimension `%s` is already declared", e.Name)
}

type DuplicateMeasureError struct {
	Name string
}

func (e *DuplicateMeasureError) Error() string {
	return fmt.Sprintf("measure `%s` is already declared", e.Name)
}

// DuplicateStructureError is returned when a second structure definition is
// built for the same dataset.
type DuplicateStructureError struct {
	Existing string
	ID       string
}

func (e *DuplicateStructureError) Error() string {
	return fmt.Sprintf("structure `%s` can't be built, structure `%s` already exists", e.ID, e.Existing)
}

type DuplicateDatasetError struct {
	Existing string
	ID       string
}

func (e *DuplicateDatasetError) Error() string {
	return fmt.Sprintf("dataset `%s` can't be created, dataset `%s` already exists", e.ID, e.Existing)
}

// UnmappedRowError reports a row whose value could not be coded by the code
// list of a dimension.
type UnmappedRowError struct {
	Row       int
	Column    string
	Dimension string
	Category  Category
	Value     string
}

func (e *UnmappedRowError) Error() string {
	return fmt.Sprintf("row %d: value `%s` of column `%s` is not in the %s code list of dimension `%s`",
		e.Row, e.Value, e.Column, e.Category, e.Dimension)
}

// MissingColumnError reports a row without a value for a required column.
type MissingColumnError struct {
	Row    int
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("row %d: missing value for column `%s`", e.Row, e.Column)
}

// InvalidValueError reports a measure value that can't be parsed as a number or
// doesn't fit the type of the measure.
type InvalidValueError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("row %d: invalid numeric value `%s` in column `%s`: %v", e.Row, e.Value, e.Column, e.Err)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

// DuplicateKeyError reports a second row for the same dimension tuple under
// the passthrough rule.
type DuplicateKeyError struct {
	Row      int
	FirstRow int
	Key      string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("row %d: dimension values %s were already taken by row %d", e.Row, e.Key, e.FirstRow)
}
