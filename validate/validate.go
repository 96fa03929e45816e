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

// Package validate checks a dimensional model against the integrity
// constraints IC1 to IC21 of the RDF Data Cube vocabulary.
//
// Each constraint is a direct structural check over the typed model. The
// checks never modify the model and never fail: a malformed model yields
// violations, not errors.
package validate

import (
	"strings"

	"github.com/corovcam/cubectl/cube"
)

// Violation is one breach of a constraint by a tuple of entities.
type Violation struct {
	Constraint string   `json:"constraint" yaml:"constraint"`
	Entities   []string `json:"entities" yaml:"entities"`
	Message    string   `json:"message" yaml:"message"`
}

type Constraint struct {
	ID          string
	Description string
	check       func(m *cube.Model, r *reporter)
}

// Result is the outcome of evaluating one constraint.
type Result struct {
	Constraint Constraint
	Violations []Violation
}

func (r Result) OK() bool {
	return len(r.Violations) == 0
}

var constraints = []Constraint{
	{"IC1", "every observation has exactly one dataset", checkUniqueDataset},
	{"IC2", "every dataset has exactly one structure definition", checkUniqueStructure},
	{"IC3", "every structure definition includes at least one measure", checkMeasurePresent},
	{"IC4", "every dimension has a declared range", checkDimensionRange},
	{"IC5", "every coded dimension has a code list", checkCodeListPresent},
	{"IC6", "only attributes may be optional", checkOptionalComponents},
	{"IC7", "every slice key is associated with a structure definition", checkSliceKeysDeclared},
	{"IC8", "slice key dimensions are components of their structure", checkSliceKeyConsistent},
	{"IC9", "every slice has exactly one slice key", checkUniqueSliceKey},
	{"IC10", "every slice has a value for each dimension of its key", checkSliceDimensionsComplete},
	{"IC11", "every observation has a value for every dimension", checkDimensionsComplete},
	{"IC12", "no two observations of a dataset share all dimension values", checkNoDuplicateObservations},
	{"IC13", "every observation has a value for every required component", checkRequiredAttributes},
	{"IC14", "every observation has a value for every measure", checkAllMeasuresPresent},
	{"IC15", "measure-type observations carry their measure", checkMeasureTypeValue},
	{"IC16", "measure-type observations carry no other measure", checkSingleMeasureValue},
	{"IC17", "measure-type observations are complete at each dimension point", checkAllMeasuresPresentInMeasureTypeCube},
	{"IC18", "observations in a slice belong to the dataset of the slice", checkConsistentDatasetLinks},
	{"IC19", "coded dimension values are members of the dimension's code list", checkCodesFromCodeList},
	{"IC20", "hierarchical code values are reachable from a root", checkCodesFromHierarchy},
	{"IC21", "hierarchy members belong to their code list", checkHierarchyMembers},
}

// Constraints returns the constraints in evaluation order.
func Constraints() []Constraint {
	return append([]Constraint(nil), constraints...)
}

// Check evaluates every constraint independently and returns one result per
// constraint, satisfied ones included.
func Check(m *cube.Model) []Result {
	if m == nil {
		m = &cube.Model{}
	}
	results := make([]Result, 0, len(constraints))
	for _, c := range constraints {
		r := newReporter(c.ID)
		c.check(m, r)
		results = append(results, Result{Constraint: c, Violations: r.violations})
	}
	return results
}

// Validate returns all violations of m ordered by constraint. An empty result
// means the model is structurally valid.
func Validate(m *cube.Model) []Violation {
	var violations []Violation
	for _, result := range Check(m) {
		violations = append(violations, result.Violations...)
	}
	return violations
}

type reporter struct {
	constraint string
	seen       map[string]struct{}
	violations []Violation
}

func newReporter(constraint string) *reporter {
	return &reporter{constraint: constraint, seen: make(map[string]struct{})}
}

// report records a violation once per entity tuple.
func (r *reporter) report(message string, entities ...string) {
	key := strings.Join(entities, "\x00")
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	r.violations = append(r.violations, Violation{
		Constraint: r.constraint,
		Entities:   entities,
		Message:    message,
	})
}
