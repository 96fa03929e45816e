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

// Package pipeline builds one cube from its definition and input rows.
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/corovcam/cubectl/cube"
	"github.com/corovcam/cubectl/data"
	"github.com/corovcam/cubectl/util"
	"github.com/corovcam/cubectl/validate"
	"github.com/rs/zerolog"
)

// Progress receives the number of rows to aggregate and one increment per
// aggregated row. Aggregation ends with SetTotal(-1, true).
type Progress interface {
	SetTotal(total int64, complete bool)
	Increment()
}

// Pipeline builds the cube of a definition. Every run uses its own registry,
// builder and validator, so pipelines of different cubes may run concurrently.
type Pipeline struct {
	Cube *data.Cube
	// Filter overrides the filters of the definition when not nil.
	Filter   url.Values
	Logger   zerolog.Logger
	Progress Progress
	// Load reads the rows of an input. Defaults to util.ReadRowsFromFile.
	Load func(in data.Input) ([]cube.Row, error)
}

type Result struct {
	Model      *cube.Model
	RowErrors  []error
	Results    []validate.Result
	Violations []validate.Violation
	Stats      util.BuildStats
}

func (p *Pipeline) load(in data.Input) ([]cube.Row, error) {
	if p.Load != nil {
		return p.Load(in)
	}
	return util.ReadRowsFromFile(in)
}

// Run reads the input of the definition and builds the cube from it.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	rows, err := p.load(p.Cube.Input)
	if err != nil {
		return nil, err
	}
	return p.Build(ctx, rows)
}

// Build builds the cube from the given rows. The rows are not modified.
func (p *Pipeline) Build(ctx context.Context, rows []cube.Row) (*Result, error) {
	start := time.Now()
	def := p.Cube
	logger := p.Logger.With().Str("dataset", def.Dataset.ID).Logger()
	logger.Debug().Int("rows", len(rows)).Msg("rows loaded")

	filter := p.Filter
	if filter == nil && def.Filters != "" {
		var err error
		if filter, err = util.ParseRowFilter(def.Filters); err != nil {
			return nil, fmt.Errorf("error while parsing the filters of %s: %w", def.Dataset.ID, err)
		}
	}
	selected, rowIndex := filterRows(rows, filter)
	logger.Debug().Int("rows", len(selected)).Msg("rows filtered")

	for _, lookup := range def.Lookups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := p.load(lookup.Input)
		if err != nil {
			return nil, err
		}
		joined := join(selected, table, lookup)
		logger.Debug().Str("lookup", lookup.Path).Int("joined", joined).Msg("rows joined")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	codeLists, err := p.register(selected)
	if err != nil {
		return nil, err
	}

	b := cube.NewBuilder(codeLists...)
	groupBy, err := declareDimensions(b, def, codeLists)
	if err != nil {
		return nil, err
	}
	measures, err := declareMeasures(b, def)
	if err != nil {
		return nil, err
	}
	structure, err := b.BuildStructure(def.StructureID(), dimensionsOf(groupBy), measures)
	if err != nil {
		return nil, err
	}
	if _, err := b.CreateDataset(def.Dataset.ID, structure, metadataOf(def.Dataset)); err != nil {
		return nil, err
	}

	aggregator, err := p.aggregator(def, groupBy, measures)
	if err != nil {
		return nil, err
	}
	aggregator.RowIndex = rowIndex
	if p.Progress != nil {
		p.Progress.SetTotal(int64(len(selected)), false)
	}
	aggregated, err := aggregator.Aggregate(selected)
	if p.Progress != nil {
		p.Progress.SetTotal(-1, true)
	}
	if err != nil {
		return nil, err
	}
	for _, rowErr := range aggregated.Errors {
		event := logger.Warn().Err(rowErr)
		if row, ok := util.RowOf(rowErr); ok {
			event = event.Int("row", row)
		}
		event.Msg("row excluded")
	}
	if err := b.AddObservations(aggregated.Observations...); err != nil {
		return nil, err
	}
	model, err := b.Build()
	if err != nil {
		return nil, err
	}
	logger.Debug().Int("observations", len(model.Observations)).Msg("observations aggregated")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := validate.Check(model)
	var violations []validate.Violation
	for _, r := range results {
		violations = append(violations, r.Violations...)
	}

	codes := 0
	for _, cl := range model.CodeLists {
		codes += cl.Len()
	}
	return &Result{
		Model:      model,
		RowErrors:  aggregated.Errors,
		Results:    results,
		Violations: violations,
		Stats: util.BuildStats{
			Dataset:       def.Dataset.ID,
			Rows:          len(rows),
			FilteredRows:  len(selected),
			RowErrors:     len(aggregated.Errors),
			CodeLists:     len(model.CodeLists),
			Codes:         codes,
			Observations:  len(model.Observations),
			Violations:    len(violations),
			TotalDuration: time.Since(start),
		},
	}, nil
}

// filterRows returns copies of the rows matching every filter key together
// with their indexes in rows. A row matches a key when its trimmed value equals
// one of the key's values.
func filterRows(rows []cube.Row, filter url.Values) ([]cube.Row, []int) {
	selected := make([]cube.Row, 0, len(rows))
	index := make([]int, 0, len(rows))
	for i, row := range rows {
		if matches(row, filter) {
			selected = append(selected, copyRow(row))
			index = append(index, i)
		}
	}
	return selected, index
}

func matches(row cube.Row, filter url.Values) bool {
	for column, values := range filter {
		v := strings.TrimSpace(row[column])
		found := false
		for _, want := range values {
			if v == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func copyRow(row cube.Row) cube.Row {
	c := make(cube.Row, len(row))
	for k, v := range row {
		c[k] = v
	}
	return c
}

// join copies the looked up columns into the rows and returns the number of
// rows that found a match.
func join(rows, table []cube.Row, lookup data.Lookup) int {
	index := make(map[string]cube.Row, len(table))
	for _, r := range table {
		key := strings.TrimSpace(r[lookup.Key])
		if _, ok := index[key]; !ok && key != "" {
			index[key] = r
		}
	}
	joined := 0
	for _, row := range rows {
		match, ok := index[strings.TrimSpace(row[lookup.On])]
		if !ok {
			continue
		}
		for from, to := range lookup.Columns {
			row[to] = match[from]
		}
		joined++
	}
	return joined
}

// register fills a fresh registry from the code list definitions and seals it.
func (p *Pipeline) register(rows []cube.Row) ([]*cube.CodeList, error) {
	registry := cube.NewRegistry()
	for _, def := range p.Cube.CodeLists {
		if err := registry.Name(def.Category, def.Name, def.Labels...); err != nil {
			return nil, err
		}
		source := rows
		if def.Source != nil {
			var err error
			if source, err = p.load(*def.Source); err != nil {
				return nil, err
			}
		}
		for _, row := range source {
			raw := strings.TrimSpace(row[def.Column])
			if raw == "" {
				continue
			}
			var labels []cube.Label
			label := raw
			if def.LabelColumn != "" {
				label = strings.TrimSpace(row[def.LabelColumn])
			}
			if label != "" {
				labels = append(labels, cube.Label{Value: label, Lang: def.LabelLang})
			}
			code := raw
			if def.Scheme == data.Sequential {
				var err error
				if code, err = registry.AssignSequentialCode(def.Category, raw); err != nil {
					return nil, err
				}
			}
			if _, err := registry.Register(def.Category, code, labels...); err != nil {
				return nil, err
			}
		}
		p.Logger.Debug().Str("codeList", def.Name).Msg("codes registered")
	}
	return registry.SealAll(), nil
}

func declareDimensions(b *cube.Builder, def *data.Cube, codeLists []*cube.CodeList) ([]cube.GroupBy, error) {
	byName := make(map[string]*cube.CodeList, len(codeLists))
	for _, cl := range codeLists {
		byName[cl.Name] = cl
	}
	groupBy := make([]cube.GroupBy, 0, len(def.Dimensions))
	for _, d := range def.Dimensions {
		codeList := byName[d.CodeList]
		category := d.Range
		if category == "" && codeList != nil {
			category = codeList.Category
		}
		dim, err := b.DeclareDimension(d.Name, category, codeList, d.Labels...)
		if err != nil {
			return nil, err
		}
		dim.Concept = d.Concept
		groupBy = append(groupBy, cube.GroupBy{Dimension: dim, Column: d.Column})
	}
	return groupBy, nil
}

func declareMeasures(b *cube.Builder, def *data.Cube) ([]*cube.Measure, error) {
	measures := make([]*cube.Measure, 0, len(def.Measures))
	for _, m := range def.Measures {
		valueType, err := cube.ParseValueType(m.Type)
		if err != nil {
			return nil, fmt.Errorf("measure `%s`: %w", m.Name, err)
		}
		measure, err := b.DeclareMeasure(m.Name, valueType, m.Labels...)
		if err != nil {
			return nil, err
		}
		measures = append(measures, measure)
	}
	return measures, nil
}

func dimensionsOf(groupBy []cube.GroupBy) []*cube.Dimension {
	dims := make([]*cube.Dimension, len(groupBy))
	for i, g := range groupBy {
		dims[i] = g.Dimension
	}
	return dims
}

func metadataOf(ds data.Dataset) cube.Metadata {
	return cube.Metadata{
		Labels:    ds.Labels,
		Issued:    ds.Issued,
		Modified:  ds.Modified,
		Publisher: ds.Publisher,
		License:   ds.License,
	}
}

func (p *Pipeline) aggregator(def *data.Cube, groupBy []cube.GroupBy, measures []*cube.Measure) (*cube.Aggregator, error) {
	rule := def.Aggregation.Rule
	if rule == "" {
		rule = "count"
	}
	kind, err := cube.ParseRuleKind(rule)
	if err != nil {
		return nil, err
	}
	measure := measures[0]
	if def.Aggregation.Measure != "" {
		measure = nil
		for _, m := range measures {
			if m.Name == def.Aggregation.Measure {
				measure = m
			}
		}
		if measure == nil {
			return nil, fmt.Errorf("aggregation references unknown measure `%s`", def.Aggregation.Measure)
		}
	}
	a := &cube.Aggregator{
		GroupBy:  groupBy,
		Rule:     cube.Rule{Kind: kind, Measure: measure, Column: def.Aggregation.Column},
		IDPrefix: def.Observations.IDPrefix,
		IDWidth:  def.Observations.IDWidth,
	}
	if p.Progress != nil {
		a.OnRow = func(int) { p.Progress.Increment() }
	}
	return a, nil
}
