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
	"math"
	"slices"
	"strconv"
	"strings"
)

// Row is one parsed input record mapping column names to raw values. An absent
// column and an empty value are both treated as missing.
type Row map[string]string

type RuleKind int

const (
	// Count sets the measure to the number of rows in a group.
	Count RuleKind = iota
	// Passthrough copies the measure from a numeric column of the single row
	// of a group.
	Passthrough
)

func (k RuleKind) String() string {
	switch k {
	case Count:
		return "count"
	case Passthrough:
		return "passthrough"
	}
	return fmt.Sprintf("RuleKind(%d)", int(k))
}

func ParseRuleKind(s string) (RuleKind, error) {
	switch s {
	case "count":
		return Count, nil
	case "passthrough":
		return Passthrough, nil
	}
	return 0, fmt.Errorf("unknown aggregation rule `%s`", s)
}

type Rule struct {
	Kind    RuleKind
	Measure *Measure
	Column  string
}

// GroupBy maps an input column onto a dimension.
type GroupBy struct {
	Dimension *Dimension
	Column    string
}

const (
	DefaultIDPrefix = "observation-"
	DefaultIDWidth  = 4
)

// Aggregator groups rows by their coded dimension values and derives one
// observation per group.
type Aggregator struct {
	GroupBy  []GroupBy
	Rule     Rule
	IDPrefix string
	IDWidth  int

	// RowIndex maps the position of a row to the row number reported in
	// errors and to OnRow, e.g. its index in the input before filtering. Rows
	// are numbered by position if RowIndex is nil.
	RowIndex []int

	// OnRow is called after each row was processed, successful or not.
	OnRow func(row int)
}

func (a *Aggregator) rowNumber(pos int) int {
	if pos < len(a.RowIndex) {
		return a.RowIndex[pos]
	}
	return pos
}

// AggregateResult holds the observations and the per row errors of the rows
// that were excluded.
type AggregateResult struct {
	Observations []*Observation
	Errors       []error
}

type group struct {
	values   []Value
	rows     int
	value    float64
	firstRow int
}

// Aggregate derives observations from rows. The returned error is only set
// for an unusable aggregator, failing rows are reported in the result.
func (a *Aggregator) Aggregate(rows []Row) (AggregateResult, error) {
	if len(a.GroupBy) == 0 {
		return AggregateResult{}, errors.New("aggregation needs at least one group-by dimension")
	}
	if a.Rule.Measure == nil {
		return AggregateResult{}, errors.New("aggregation rule has no measure")
	}
	if a.RowIndex != nil && len(a.RowIndex) != len(rows) {
		return AggregateResult{}, fmt.Errorf("row index has %d entries for %d rows", len(a.RowIndex), len(rows))
	}
	if a.Rule.Kind == Passthrough && a.Rule.Column == "" {
		return AggregateResult{}, errors.New("passthrough rule has no source column")
	}
	for _, g := range a.GroupBy {
		if g.Dimension == nil {
			return AggregateResult{}, fmt.Errorf("group-by column `%s` has no dimension", g.Column)
		}
	}

	var result AggregateResult
	groups := make(map[string]*group)
	for pos, row := range rows {
		idx := a.rowNumber(pos)
		if err := a.add(groups, idx, row); err != nil {
			result.Errors = append(result.Errors, err)
		}
		if a.OnRow != nil {
			a.OnRow(idx)
		}
	}

	sorted := make([]*group, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	slices.SortFunc(sorted, func(a, b *group) int {
		return compareValueTuples(a.values, b.values)
	})

	prefix := a.IDPrefix
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	width := a.IDWidth
	if width <= 0 {
		width = DefaultIDWidth
	}
	result.Observations = make([]*Observation, 0, len(sorted))
	for i, g := range sorted {
		obs := NewObservation(fmt.Sprintf("%s%0*d", prefix, width, i))
		for j, by := range a.GroupBy {
			obs.Dimensions[by.Dimension] = g.values[j]
		}
		if a.Rule.Kind == Count {
			obs.Measures[a.Rule.Measure] = float64(g.rows)
		} else {
			obs.Measures[a.Rule.Measure] = g.value
		}
		result.Observations = append(result.Observations, obs)
	}
	return result, nil
}

func (a *Aggregator) add(groups map[string]*group, idx int, row Row) error {
	values := make([]Value, 0, len(a.GroupBy))
	for _, by := range a.GroupBy {
		raw := strings.TrimSpace(row[by.Column])
		if raw == "" {
			return &MissingColumnError{Row: idx, Column: by.Column}
		}
		if !by.Dimension.Coded {
			values = append(values, LiteralValue(raw))
			continue
		}
		code, ok := by.Dimension.CodeList.Resolve(raw)
		if !ok {
			return &UnmappedRowError{
				Row:       idx,
				Column:    by.Column,
				Dimension: by.Dimension.Name,
				Category:  by.Dimension.Range,
				Value:     raw,
			}
		}
		values = append(values, CodeValue(code))
	}

	var measure float64
	if a.Rule.Kind == Passthrough {
		raw := strings.TrimSpace(row[a.Rule.Column])
		if raw == "" {
			return &MissingColumnError{Row: idx, Column: a.Rule.Column}
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return &InvalidValueError{Row: idx, Column: a.Rule.Column, Value: raw, Err: err}
		}
		if err := checkValue(a.Rule.Measure.Type, v); err != nil {
			return &InvalidValueError{Row: idx, Column: a.Rule.Column, Value: raw, Err: err}
		}
		measure = v
	}

	key := tupleKey(values)
	g, ok := groups[key]
	if !ok {
		groups[key] = &group{values: values, rows: 1, value: measure, firstRow: idx}
		return nil
	}
	if a.Rule.Kind == Passthrough {
		return &DuplicateKeyError{Row: idx, FirstRow: g.firstRow, Key: key}
	}
	g.rows++
	return nil
}

// checkValue rejects values a measure of type t can't hold.
func checkValue(t ValueType, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrNotFinite
	}
	if t == Integer && (v != math.Trunc(v) || math.Abs(v) >= 1<<63) {
		return ErrNotInteger
	}
	return nil
}

func tupleKey(values []Value) string {
	keys := make([]string, len(values))
	for i, v := range values {
		keys[i] = v.Key()
	}
	return "(" + strings.Join(keys, ", ") + ")"
}

func compareValueTuples(a, b []Value) int {
	for i := range a {
		if c := compareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareValues(a, b Value) int {
	if a.Code != nil && b.Code != nil {
		if a.Code.Category != b.Code.Category {
			return strings.Compare(string(a.Code.Category), string(b.Code.Category))
		}
		return compareCodes(a.Code.ID, b.Code.ID)
	}
	if c := compareCodes(a.String(), b.String()); c != 0 {
		return c
	}
	return strings.Compare(a.Key(), b.Key())
}
