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

package validate

import (
	"sort"

	"github.com/corovcam/cubectl/cube"
)

// The helpers below collect every entity reachable from the model exactly
// once, in first-seen order, skipping nil references.

func observations(m *cube.Model) []*cube.Observation {
	seen := make(map[*cube.Observation]bool)
	var out []*cube.Observation
	add := func(obs *cube.Observation) {
		if obs != nil && !seen[obs] {
			seen[obs] = true
			out = append(out, obs)
		}
	}
	for _, obs := range m.Observations {
		add(obs)
	}
	for _, ds := range m.Datasets {
		if ds == nil {
			continue
		}
		for _, obs := range ds.Observations {
			add(obs)
		}
		for _, slice := range ds.Slices {
			if slice == nil {
				continue
			}
			for _, obs := range slice.Observations {
				add(obs)
			}
		}
	}
	return out
}

func datasets(m *cube.Model) []*cube.Dataset {
	seen := make(map[*cube.Dataset]bool)
	var out []*cube.Dataset
	add := func(ds *cube.Dataset) {
		if ds != nil && !seen[ds] {
			seen[ds] = true
			out = append(out, ds)
		}
	}
	for _, ds := range m.Datasets {
		add(ds)
	}
	for _, obs := range m.Observations {
		if obs == nil {
			continue
		}
		for _, ds := range obs.Datasets {
			add(ds)
		}
	}
	return out
}

func structures(m *cube.Model) []*cube.StructureDefinition {
	seen := make(map[*cube.StructureDefinition]bool)
	var out []*cube.StructureDefinition
	add := func(s *cube.StructureDefinition) {
		if s != nil && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range m.Structures {
		add(s)
	}
	for _, ds := range datasets(m) {
		for _, s := range ds.Structures {
			add(s)
		}
	}
	return out
}

func dimensions(m *cube.Model) []*cube.Dimension {
	seen := make(map[*cube.Dimension]bool)
	var out []*cube.Dimension
	add := func(d *cube.Dimension) {
		if d != nil && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	for _, d := range m.Dimensions {
		add(d)
	}
	for _, s := range structures(m) {
		for _, c := range s.Components {
			if c != nil {
				add(c.Dimension)
			}
		}
	}
	return out
}

func slices(m *cube.Model) []*cube.Slice {
	var out []*cube.Slice
	for _, ds := range datasets(m) {
		for _, slice := range ds.Slices {
			if slice != nil {
				out = append(out, slice)
			}
		}
	}
	return out
}

func sliceKeys(m *cube.Model) []*cube.SliceKey {
	seen := make(map[*cube.SliceKey]bool)
	var out []*cube.SliceKey
	add := func(k *cube.SliceKey) {
		if k != nil && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, k := range m.SliceKeys {
		add(k)
	}
	for _, s := range structures(m) {
		for _, k := range s.SliceKeys {
			add(k)
		}
	}
	for _, slice := range slices(m) {
		for _, k := range slice.Keys {
			add(k)
		}
	}
	return out
}

func nonNilDatasets(obs *cube.Observation) []*cube.Dataset {
	var out []*cube.Dataset
	for _, ds := range obs.Datasets {
		if ds != nil {
			out = append(out, ds)
		}
	}
	return out
}

func nonNilStructures(ds *cube.Dataset) []*cube.StructureDefinition {
	var out []*cube.StructureDefinition
	for _, s := range ds.Structures {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// observationStructures returns the structures an observation is bound to
// through its datasets.
func observationStructures(obs *cube.Observation) []*cube.StructureDefinition {
	seen := make(map[*cube.StructureDefinition]bool)
	var out []*cube.StructureDefinition
	for _, ds := range nonNilDatasets(obs) {
		for _, s := range nonNilStructures(ds) {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}

func components(s *cube.StructureDefinition) []*cube.Component {
	var out []*cube.Component
	for _, c := range s.Components {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

func structureDimensions(s *cube.StructureDefinition) []*cube.Dimension {
	var out []*cube.Dimension
	for _, c := range components(s) {
		if c.Dimension != nil {
			out = append(out, c.Dimension)
		}
	}
	return out
}

func structureMeasures(s *cube.StructureDefinition) []*cube.Measure {
	var out []*cube.Measure
	for _, c := range components(s) {
		if c.Measure != nil {
			out = append(out, c.Measure)
		}
	}
	return out
}

func hasDimensionValue(obs *cube.Observation, dim *cube.Dimension) bool {
	v, ok := obs.Dimensions[dim]
	return ok && (v.Code != nil || v.Literal != "")
}

func hasMeasureValue(obs *cube.Observation, measure *cube.Measure) bool {
	_, ok := obs.Measures[measure]
	return ok
}

func belongsTo(obs *cube.Observation, ds *cube.Dataset) bool {
	for _, d := range obs.Datasets {
		if d == ds {
			return true
		}
	}
	return false
}

// sortedDimensions returns the dimensions an observation has values for,
// ordered by name.
func sortedDimensions(obs *cube.Observation) []*cube.Dimension {
	dims := make([]*cube.Dimension, 0, len(obs.Dimensions))
	for dim := range obs.Dimensions {
		if dim != nil {
			dims = append(dims, dim)
		}
	}
	sort.Slice(dims, func(i, j int) bool {
		return dims[i].Name < dims[j].Name
	})
	return dims
}

func sortedMeasures(obs *cube.Observation) []*cube.Measure {
	measures := make([]*cube.Measure, 0, len(obs.Measures))
	for measure := range obs.Measures {
		if measure != nil {
			measures = append(measures, measure)
		}
	}
	sort.Slice(measures, func(i, j int) bool {
		return measures[i].Name < measures[j].Name
	})
	return measures
}
