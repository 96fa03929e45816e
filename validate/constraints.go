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
	"fmt"
	"sort"
	"strings"

	"github.com/corovcam/cubectl/cube"
)

func checkUniqueDataset(m *cube.Model, r *reporter) {
	for _, obs := range observations(m) {
		switch n := len(nonNilDatasets(obs)); {
		case n == 0:
			r.report(fmt.Sprintf("observation %s has no dataset", obs.ID), obs.ID)
		case n > 1:
			r.report(fmt.Sprintf("observation %s belongs to %d datasets", obs.ID, n), obs.ID)
		}
	}
}

func checkUniqueStructure(m *cube.Model, r *reporter) {
	for _, ds := range datasets(m) {
		switch n := len(nonNilStructures(ds)); {
		case n == 0:
			r.report(fmt.Sprintf("dataset %s has no structure definition", ds.ID), ds.ID)
		case n > 1:
			r.report(fmt.Sprintf("dataset %s has %d structure definitions", ds.ID, n), ds.ID)
		}
	}
}

func checkMeasurePresent(m *cube.Model, r *reporter) {
	for _, s := range structures(m) {
		if len(structureMeasures(s)) == 0 {
			r.report(fmt.Sprintf("structure %s has no measure component", s.ID), s.ID)
		}
	}
}

func checkDimensionRange(m *cube.Model, r *reporter) {
	for _, dim := range dimensions(m) {
		if dim.Range == "" {
			r.report(fmt.Sprintf("dimension %s has no range", dim.Name), dim.Name)
		}
	}
}

func checkCodeListPresent(m *cube.Model, r *reporter) {
	for _, dim := range dimensions(m) {
		if dim.Coded && dim.CodeList == nil {
			r.report(fmt.Sprintf("coded dimension %s has no code list", dim.Name), dim.Name)
		}
	}
}

func checkOptionalComponents(m *cube.Model, r *reporter) {
	for _, s := range structures(m) {
		for _, c := range components(s) {
			if !c.Required && (c.Role != cube.RoleAttribute || c.Attribute == nil) {
				r.report(fmt.Sprintf("structure %s declares the %s %s optional", s.ID, c.Role, c.PropertyName()),
					s.ID, c.PropertyName())
			}
		}
	}
}

func checkSliceKeysDeclared(m *cube.Model, r *reporter) {
	declared := make(map[*cube.SliceKey]bool)
	for _, s := range structures(m) {
		for _, k := range s.SliceKeys {
			declared[k] = true
		}
	}
	for _, k := range sliceKeys(m) {
		if !declared[k] {
			r.report(fmt.Sprintf("slice key %s isn't associated with a structure definition", k.ID), k.ID)
		}
	}
}

func checkSliceKeyConsistent(m *cube.Model, r *reporter) {
	for _, s := range structures(m) {
		dims := make(map[*cube.Dimension]bool)
		for _, dim := range structureDimensions(s) {
			dims[dim] = true
		}
		for _, k := range s.SliceKeys {
			if k == nil {
				continue
			}
			for _, dim := range k.Dimensions {
				if dim != nil && !dims[dim] {
					r.report(fmt.Sprintf("slice key %s uses dimension %s which isn't a component of structure %s",
						k.ID, dim.Name, s.ID), s.ID, k.ID, dim.Name)
				}
			}
		}
	}
}

func checkUniqueSliceKey(m *cube.Model, r *reporter) {
	for _, slice := range slices(m) {
		n := 0
		for _, k := range slice.Keys {
			if k != nil {
				n++
			}
		}
		switch {
		case n == 0:
			r.report(fmt.Sprintf("slice %s has no slice key", slice.ID), slice.ID)
		case n > 1:
			r.report(fmt.Sprintf("slice %s has %d slice keys", slice.ID, n), slice.ID)
		}
	}
}

func checkSliceDimensionsComplete(m *cube.Model, r *reporter) {
	for _, slice := range slices(m) {
		for _, k := range slice.Keys {
			if k == nil {
				continue
			}
			for _, dim := range k.Dimensions {
				if dim == nil {
					continue
				}
				if v, ok := slice.Values[dim]; !ok || (v.Code == nil && v.Literal == "") {
					r.report(fmt.Sprintf("slice %s has no value for dimension %s", slice.ID, dim.Name),
						slice.ID, dim.Name)
				}
			}
		}
	}
}

func checkDimensionsComplete(m *cube.Model, r *reporter) {
	for _, obs := range observations(m) {
		for _, s := range observationStructures(obs) {
			for _, dim := range structureDimensions(s) {
				if !hasDimensionValue(obs, dim) {
					r.report(fmt.Sprintf("observation %s has no value for dimension %s", obs.ID, dim.Name),
						obs.ID, dim.Name)
				}
			}
		}
	}
}

// checkNoDuplicateObservations compares complete dimension tuples by coded
// resource identity. Incomplete tuples are left to IC11.
func checkNoDuplicateObservations(m *cube.Model, r *reporter) {
	all := observations(m)
	for _, ds := range datasets(m) {
		var dims []*cube.Dimension
		seen := make(map[*cube.Dimension]bool)
		for _, s := range nonNilStructures(ds) {
			for _, dim := range structureDimensions(s) {
				if !seen[dim] {
					seen[dim] = true
					dims = append(dims, dim)
				}
			}
		}
		if len(dims) == 0 {
			continue
		}
		sort.Slice(dims, func(i, j int) bool { return dims[i].Name < dims[j].Name })

		first := make(map[string]*cube.Observation)
		for _, obs := range all {
			if !belongsTo(obs, ds) {
				continue
			}
			key, complete := tupleKey(obs, dims)
			if !complete {
				continue
			}
			if other, ok := first[key]; ok {
				r.report(fmt.Sprintf("observations %s and %s of dataset %s share the dimension values %s",
					other.ID, obs.ID, ds.ID, key), ds.ID, other.ID, obs.ID)
				continue
			}
			first[key] = obs
		}
	}
}

func tupleKey(obs *cube.Observation, dims []*cube.Dimension) (string, bool) {
	keys := make([]string, 0, len(dims))
	for _, dim := range dims {
		if !hasDimensionValue(obs, dim) {
			return "", false
		}
		keys = append(keys, dim.Name+"="+obs.Dimensions[dim].Key())
	}
	return "(" + strings.Join(keys, ", ") + ")", true
}

func checkRequiredAttributes(m *cube.Model, r *reporter) {
	for _, obs := range observations(m) {
		for _, s := range observationStructures(obs) {
			for _, c := range components(s) {
				if !c.Required {
					continue
				}
				switch {
				case c.Dimension != nil && !hasDimensionValue(obs, c.Dimension):
					r.report(fmt.Sprintf("observation %s has no value for required dimension %s", obs.ID, c.Dimension.Name),
						obs.ID, c.Dimension.Name)
				case c.Attribute != nil:
					if v, ok := obs.Attributes[c.Attribute]; !ok || v == "" {
						r.report(fmt.Sprintf("observation %s has no value for required attribute %s", obs.ID, c.Attribute.Name),
							obs.ID, c.Attribute.Name)
					}
				}
			}
		}
	}
}

func checkAllMeasuresPresent(m *cube.Model, r *reporter) {
	for _, obs := range observations(m) {
		for _, s := range observationStructures(obs) {
			if s.UsesMeasureType() {
				continue
			}
			for _, measure := range structureMeasures(s) {
				if !hasMeasureValue(obs, measure) {
					r.report(fmt.Sprintf("observation %s has no value for measure %s", obs.ID, measure.Name),
						obs.ID, measure.Name)
				}
			}
		}
	}
}

func checkMeasureTypeValue(m *cube.Model, r *reporter) {
	for _, obs := range observations(m) {
		if obs.MeasureType == nil {
			continue
		}
		for _, s := range observationStructures(obs) {
			if s.UsesMeasureType() && !hasMeasureValue(obs, obs.MeasureType) {
				r.report(fmt.Sprintf("observation %s has no value for its measure type %s", obs.ID, obs.MeasureType.Name),
					obs.ID, obs.MeasureType.Name)
			}
		}
	}
}

func checkSingleMeasureValue(m *cube.Model, r *reporter) {
	for _, obs := range observations(m) {
		if obs.MeasureType == nil {
			continue
		}
		for _, s := range observationStructures(obs) {
			if !s.UsesMeasureType() {
				continue
			}
			declared := make(map[*cube.Measure]bool)
			for _, measure := range structureMeasures(s) {
				declared[measure] = true
			}
			for _, measure := range sortedMeasures(obs) {
				if declared[measure] && measure != obs.MeasureType {
					r.report(fmt.Sprintf("observation %s with measure type %s carries measure %s",
						obs.ID, obs.MeasureType.Name, measure.Name), obs.ID, measure.Name)
				}
			}
		}
	}
}

// checkAllMeasuresPresentInMeasureTypeCube requires one observation per
// declared measure at every point of a measure-type cube.
func checkAllMeasuresPresentInMeasureTypeCube(m *cube.Model, r *reporter) {
	all := observations(m)
	for _, ds := range datasets(m) {
		for _, s := range nonNilStructures(ds) {
			if !s.UsesMeasureType() {
				continue
			}
			numMeasures := len(structureMeasures(s))
			var dims []*cube.Dimension
			for _, dim := range structureDimensions(s) {
				if !dim.MeasureType {
					dims = append(dims, dim)
				}
			}
			sort.Slice(dims, func(i, j int) bool { return dims[i].Name < dims[j].Name })

			points := make(map[string][]*cube.Observation)
			var order []string
			for _, obs := range all {
				if !belongsTo(obs, ds) || obs.MeasureType == nil {
					continue
				}
				key, complete := tupleKey(obs, dims)
				if !complete {
					continue
				}
				if _, ok := points[key]; !ok {
					order = append(order, key)
				}
				points[key] = append(points[key], obs)
			}
			for _, key := range order {
				group := points[key]
				if len(group) == numMeasures {
					continue
				}
				ids := make([]string, 0, len(group)+1)
				ids = append(ids, ds.ID)
				for _, obs := range group {
					ids = append(ids, obs.ID)
				}
				r.report(fmt.Sprintf("dataset %s has %d observations at %s but declares %d measures",
					ds.ID, len(group), key, numMeasures), ids...)
			}
		}
	}
}

func checkConsistentDatasetLinks(m *cube.Model, r *reporter) {
	for _, ds := range datasets(m) {
		for _, slice := range ds.Slices {
			if slice == nil {
				continue
			}
			for _, obs := range slice.Observations {
				if obs != nil && !belongsTo(obs, ds) {
					r.report(fmt.Sprintf("observation %s is in slice %s of dataset %s but doesn't declare the dataset",
						obs.ID, slice.ID, ds.ID), ds.ID, slice.ID, obs.ID)
				}
			}
		}
	}
}

func checkCodesFromCodeList(m *cube.Model, r *reporter) {
	for _, obs := range observations(m) {
		for _, dim := range sortedDimensions(obs) {
			if dim.CodeList == nil {
				continue
			}
			v := obs.Dimensions[dim]
			switch {
			case v.Code == nil:
				r.report(fmt.Sprintf("observation %s has the uncoded value `%s` for coded dimension %s",
					obs.ID, v.Literal, dim.Name), obs.ID, dim.Name)
			case !dim.CodeList.Contains(v.Code):
				r.report(fmt.Sprintf("observation %s has value %s for dimension %s which isn't in code list %s",
					obs.ID, v.Code.Key(), dim.Name, dim.CodeList.Name), obs.ID, dim.Name)
			}
		}
	}
}

func reachable(h *cube.Hierarchy) map[*cube.CodedResource]bool {
	seen := make(map[*cube.CodedResource]bool)
	stack := append([]*cube.CodedResource(nil), h.Roots...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil || seen[node] {
			continue
		}
		seen[node] = true
		stack = append(stack, h.Narrower[node]...)
	}
	return seen
}

func checkCodesFromHierarchy(m *cube.Model, r *reporter) {
	cache := make(map[*cube.Hierarchy]map[*cube.CodedResource]bool)
	for _, obs := range observations(m) {
		for _, dim := range sortedDimensions(obs) {
			if dim.CodeList == nil || dim.CodeList.Hierarchy == nil {
				continue
			}
			h := dim.CodeList.Hierarchy
			if _, ok := cache[h]; !ok {
				cache[h] = reachable(h)
			}
			v := obs.Dimensions[dim]
			if v.Code != nil && !cache[h][v.Code] {
				r.report(fmt.Sprintf("observation %s has value %s for dimension %s which isn't reachable from a root of code list %s",
					obs.ID, v.Code.Key(), dim.Name, dim.CodeList.Name), obs.ID, dim.Name)
			}
		}
	}
}

func checkHierarchyMembers(m *cube.Model, r *reporter) {
	lists := make(map[*cube.CodeList]bool)
	var ordered []*cube.CodeList
	add := func(cl *cube.CodeList) {
		if cl != nil && !lists[cl] {
			lists[cl] = true
			ordered = append(ordered, cl)
		}
	}
	for _, cl := range m.CodeLists {
		add(cl)
	}
	for _, dim := range dimensions(m) {
		add(dim.CodeList)
	}
	for _, cl := range ordered {
		if cl.Hierarchy == nil {
			continue
		}
		nodes := make([]*cube.CodedResource, 0, len(cl.Hierarchy.Roots))
		nodes = append(nodes, cl.Hierarchy.Roots...)
		parents := make([]*cube.CodedResource, 0, len(cl.Hierarchy.Narrower))
		for parent := range cl.Hierarchy.Narrower {
			if parent != nil {
				parents = append(parents, parent)
			}
		}
		cube.SortResources(parents)
		for _, parent := range parents {
			nodes = append(nodes, parent)
			nodes = append(nodes, cl.Hierarchy.Narrower[parent]...)
		}
		for _, node := range nodes {
			if node != nil && !cl.Contains(node) {
				r.report(fmt.Sprintf("hierarchy of code list %s references %s which isn't a member", cl.Name, node.Key()),
					cl.Name, node.Key())
			}
		}
	}
}
