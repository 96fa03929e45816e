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
	"fmt"
	"strconv"
)

type ValueType int

const (
	Integer ValueType = iota
	Decimal
	String
)

func (t ValueType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	case String:
		return "string"
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// ParseValueType parses the names returned by ValueType.String.
func ParseValueType(s string) (ValueType, error) {
	switch s {
	case "integer", "":
		return Integer, nil
	case "decimal":
		return Decimal, nil
	case "string":
		return String, nil
	}
	return 0, fmt.Errorf("unknown value type `%s`", s)
}

// Format renders a measure value according to the type.
func (t ValueType) Format(v float64) string {
	if t == Integer {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Dimension is an axis observations are classified by. A coded dimension takes
// its values from CodeList.
type Dimension struct {
	Name     string
	Labels   Labels
	Range    Category
	Coded    bool
	CodeList *CodeList
	Concept  string

	// MeasureType marks the measure dimension of a measure-type cube.
	MeasureType bool
}

type Measure struct {
	Name    string
	Labels  Labels
	Type    ValueType
	Concept string
}

type Attribute struct {
	Name   string
	Labels Labels
}

type Role int

const (
	RoleDimension Role = iota
	RoleMeasure
	RoleAttribute
)

func (r Role) String() string {
	switch r {
	case RoleDimension:
		return "dimension"
	case RoleMeasure:
		return "measure"
	case RoleAttribute:
		return "attribute"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Component binds a property into a structure definition. Exactly one of
// Dimension, Measure and Attribute is set, matching Role.
type Component struct {
	Role      Role
	Required  bool
	Dimension *Dimension
	Measure   *Measure
	Attribute *Attribute
}

// PropertyName returns the name of the bound property or "" if none is bound.
func (c *Component) PropertyName() string {
	switch {
	case c.Dimension != nil:
		return c.Dimension.Name
	case c.Measure != nil:
		return c.Measure.Name
	case c.Attribute != nil:
		return c.Attribute.Name
	}
	return ""
}

type SliceKey struct {
	ID         string
	Dimensions []*Dimension
}

type StructureDefinition struct {
	ID         string
	Components []*Component
	SliceKeys  []*SliceKey
}

func (s *StructureDefinition) Dimensions() []*Dimension {
	var dims []*Dimension
	for _, c := range s.Components {
		if c.Dimension != nil {
			dims = append(dims, c.Dimension)
		}
	}
	return dims
}

func (s *StructureDefinition) Measures() []*Measure {
	var measures []*Measure
	for _, c := range s.Components {
		if c.Measure != nil {
			measures = append(measures, c.Measure)
		}
	}
	return measures
}

// UsesMeasureType reports whether the structure addresses measures through a
// measure dimension instead of carrying every measure on each observation.
func (s *StructureDefinition) UsesMeasureType() bool {
	for _, c := range s.Components {
		if c.Dimension != nil && c.Dimension.MeasureType {
			return true
		}
	}
	return false
}

// Metadata holds the descriptive facts of a dataset.
type Metadata struct {
	Labels    Labels
	Issued    string
	Modified  string
	Publisher string
	License   string
}

// Value is a dimension value: a coded resource for coded dimensions and a
// literal otherwise.
type Value struct {
	Code    *CodedResource
	Literal string
}

func CodeValue(r *CodedResource) Value {
	return Value{Code: r}
}

func LiteralValue(s string) Value {
	return Value{Literal: s}
}

// Key identifies the value by resource identity, not by label.
func (v Value) Key() string {
	if v.Code != nil {
		return v.Code.Key()
	}
	return "\"" + v.Literal + "\""
}

func (v Value) String() string {
	if v.Code != nil {
		return v.Code.ID
	}
	return v.Literal
}

type Slice struct {
	ID           string
	Keys         []*SliceKey
	Values       map[*Dimension]Value
	Observations []*Observation
}

type Dataset struct {
	ID           string
	Structures   []*StructureDefinition
	Metadata     Metadata
	Slices       []*Slice
	Observations []*Observation
}

// Structure returns the single structure definition of the dataset or nil if
// there is none or more than one.
func (d *Dataset) Structure() *StructureDefinition {
	if len(d.Structures) != 1 {
		return nil
	}
	return d.Structures[0]
}

type Observation struct {
	ID         string
	Datasets   []*Dataset
	Dimensions map[*Dimension]Value
	Measures   map[*Measure]float64
	Attributes map[*Attribute]string

	// MeasureType names the measure carried in a measure-type cube.
	MeasureType *Measure
}

func NewObservation(id string) *Observation {
	return &Observation{
		ID:         id,
		Dimensions: make(map[*Dimension]Value),
		Measures:   make(map[*Measure]float64),
		Attributes: make(map[*Attribute]string),
	}
}

// Model is a complete dimensional model. It is not modified after Build.
type Model struct {
	CodeLists    []*CodeList
	Dimensions   []*Dimension
	Measures     []*Measure
	Attributes   []*Attribute
	Structures   []*StructureDefinition
	SliceKeys    []*SliceKey
	Datasets     []*Dataset
	Observations []*Observation
}

// Dataset returns the first dataset of the model.
func (m *Model) Dataset() *Dataset {
	if m == nil || len(m.Datasets) == 0 {
		return nil
	}
	return m.Datasets[0]
}
