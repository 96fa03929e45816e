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

import "fmt"

// Builder assembles one dimensional model: dimensions and measures first, then
// the structure and the dataset, then observations. Construction errors are
// programming errors and leave the builder unusable for the failed step only.
type Builder struct {
	codeLists  []*CodeList
	dimensions []*Dimension
	dimIndex   map[string]*Dimension
	measures   []*Measure
	measIndex  map[string]*Measure
	structure  *StructureDefinition
	dataset    *Dataset
	built      bool
}

// NewBuilder creates a builder over sealed code lists.
func NewBuilder(codeLists ...*CodeList) *Builder {
	return &Builder{
		codeLists: codeLists,
		dimIndex:  make(map[string]*Dimension),
		measIndex: make(map[string]*Measure),
	}
}

// DeclareDimension declares a dimension whose values range over category. A
// nil code list declares an uncoded dimension.
func (b *Builder) DeclareDimension(name string, category Category, codeList *CodeList, labels ...Label) (*Dimension, error) {
	if b.built {
		return nil, ErrModelSealed
	}
	if _, ok := b.dimIndex[name]; ok {
		return nil, &DuplicateDimensionError{Name: name}
	}
	if codeList != nil && codeList.Category != category {
		return nil, fmt.Errorf("code list %s of category %s can't code dimension `%s` ranging over %s",
			codeList.Name, codeList.Category, name, category)
	}
	dim := &Dimension{
		Name:     name,
		Labels:   append(Labels(nil), labels...),
		Range:    category,
		Coded:    codeList != nil,
		CodeList: codeList,
	}
	b.dimIndex[name] = dim
	b.dimensions = append(b.dimensions, dim)
	return dim, nil
}

func (b *Builder) DeclareMeasure(name string, valueType ValueType, labels ...Label) (*Measure, error) {
	if b.built {
		return nil, ErrModelSealed
	}
	if _, ok := b.measIndex[name]; ok {
		return nil, &DuplicateMeasureError{Name: name}
	}
	measure := &Measure{Name: name, Labels: append(Labels(nil), labels...), Type: valueType}
	b.measIndex[name] = measure
	b.measures = append(b.measures, measure)
	return measure, nil
}

// BuildStructure creates the structure definition with one required component
// per dimension and measure. It may be called only once.
func (b *Builder) BuildStructure(id string, dimensions []*Dimension, measures []*Measure) (*StructureDefinition, error) {
	if b.built {
		return nil, ErrModelSealed
	}
	if b.structure != nil {
		return nil, &DuplicateStructureError{Existing: b.structure.ID, ID: id}
	}
	for _, dim := range dimensions {
		if b.dimIndex[dim.Name] != dim {
			return nil, fmt.Errorf("dimension `%s` wasn't declared by this builder", dim.Name)
		}
	}
	for _, measure := range measures {
		if b.measIndex[measure.Name] != measure {
			return nil, fmt.Errorf("measure `%s` wasn't declared by this builder", measure.Name)
		}
	}
	structure := &StructureDefinition{
		ID:         id,
		Components: make([]*Component, 0, len(dimensions)+len(measures)),
	}
	for _, dim := range dimensions {
		structure.Components = append(structure.Components, &Component{Role: RoleDimension, Required: true, Dimension: dim})
	}
	for _, measure := range measures {
		structure.Components = append(structure.Components, &Component{Role: RoleMeasure, Required: true, Measure: measure})
	}
	b.structure = structure
	return structure, nil
}

func (b *Builder) CreateDataset(id string, structure *StructureDefinition, metadata Metadata) (*Dataset, error) {
	if b.built {
		return nil, ErrModelSealed
	}
	if b.dataset != nil {
		return nil, &DuplicateDatasetError{Existing: b.dataset.ID, ID: id}
	}
	if structure == nil || structure != b.structure {
		return nil, fmt.Errorf("dataset `%s` needs the structure built by this builder", id)
	}
	b.dataset = &Dataset{
		ID:         id,
		Structures: []*StructureDefinition{structure},
		Metadata:   metadata,
	}
	return b.dataset, nil
}

// AddObservations attaches observations to the dataset.
func (b *Builder) AddObservations(observations ...*Observation) error {
	if b.built {
		return ErrModelSealed
	}
	if b.dataset == nil {
		return fmt.Errorf("observations can't be added before the dataset is created")
	}
	for _, obs := range observations {
		obs.Datasets = []*Dataset{b.dataset}
		b.dataset.Observations = append(b.dataset.Observations, obs)
	}
	return nil
}

// Build seals the builder and returns the model.
func (b *Builder) Build() (*Model, error) {
	if b.built {
		return nil, ErrModelSealed
	}
	if b.dataset == nil {
		return nil, fmt.Errorf("model can't be built without a dataset")
	}
	b.built = true
	return &Model{
		CodeLists:    b.codeLists,
		Dimensions:   b.dimensions,
		Measures:     b.measures,
		Structures:   []*StructureDefinition{b.structure},
		Datasets:     []*Dataset{b.dataset},
		Observations: b.dataset.Observations,
	}, nil
}
