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

package data

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/corovcam/cubectl/cube"
	"github.com/corovcam/cubectl/vocabulary"
	"gopkg.in/yaml.v3"
)

// Scheme selects how the codes of a code list are derived from raw values.
type Scheme string

const (
	// Natural uses the raw value as code.
	Natural Scheme = "natural"
	// Sequential assigns the index of first appearance as code.
	Sequential Scheme = "sequential"
)

type Dataset struct {
	ID        string
	Labels    cube.Labels
	Issued    string
	Modified  string
	Publisher string
	License   string
}

// Input is a delimited text file with a header row.
type Input struct {
	Path      string
	Delimiter string
}

// Lookup joins the rows with another file. For each row the first lookup row
// whose Key column equals the row's On column contributes its Columns, mapped
// from lookup column to row column.
type Lookup struct {
	Input   `yaml:",inline"`
	Key     string
	On      string
	Columns map[string]string
}

type CodeList struct {
	Name     string
	Category cube.Category
	// Source is read instead of the input when set.
	Source      *Input
	Column      string
	LabelColumn string `yaml:"labelColumn"`
	LabelLang   string `yaml:"labelLang"`
	Scheme      Scheme
	Labels      cube.Labels
}

type Dimension struct {
	Name     string
	Range    cube.Category
	CodeList string `yaml:"codeList"`
	Column   string
	Concept  string
	Labels   cube.Labels
}

type Measure struct {
	Name   string
	Type   string
	Labels cube.Labels
}

type Aggregation struct {
	Rule    string
	Measure string
	Column  string
}

type Observations struct {
	IDPrefix string `yaml:"idPrefix"`
	IDWidth  int    `yaml:"idWidth"`
}

// Cube is the definition of one cube: where its rows come from and how they map
// onto code lists, dimensions and a measure.
type Cube struct {
	Dataset      Dataset
	Structure    string
	Namespace    *vocabulary.Namespace
	Input        Input
	Filters      string
	Lookups      []Lookup
	CodeLists    []CodeList `yaml:"codeLists"`
	Dimensions   []Dimension
	Measures     []Measure
	Aggregation  Aggregation
	Observations Observations
}

// NamespaceOrDefault returns the configured namespace or the default one.
func (c *Cube) NamespaceOrDefault() vocabulary.Namespace {
	if c.Namespace == nil {
		return vocabulary.DefaultNamespace()
	}
	return *c.Namespace
}

// StructureID returns the id of the structure definition of the cube.
func (c *Cube) StructureID() string {
	if c.Structure != "" {
		return c.Structure
	}
	return "structure"
}

// CodeList returns the code list definition with the given name.
func (c *Cube) CodeList(name string) (*CodeList, bool) {
	for i := range c.CodeLists {
		if c.CodeLists[i].Name == name {
			return &c.CodeLists[i], true
		}
	}
	return nil, false
}

func (c *Cube) validate() error {
	if c.Dataset.ID == "" {
		return fmt.Errorf("missing dataset id")
	}
	if c.Input.Path == "" {
		return fmt.Errorf("missing input path")
	}
	if len(c.Dimensions) == 0 {
		return fmt.Errorf("at least one dimension is required")
	}
	if len(c.Measures) != 1 {
		return fmt.Errorf("exactly one measure is required, got %d", len(c.Measures))
	}
	categories := make(map[cube.Category]string)
	for _, cl := range c.CodeLists {
		if cl.Name == "" || cl.Category == "" || cl.Column == "" {
			return fmt.Errorf("code list `%s` needs a name, a category and a column", cl.Name)
		}
		if other, ok := categories[cl.Category]; ok {
			return fmt.Errorf("code lists `%s` and `%s` share the category %s", other, cl.Name, cl.Category)
		}
		categories[cl.Category] = cl.Name
		switch cl.Scheme {
		case "", Natural, Sequential:
		default:
			return fmt.Errorf("code list `%s` has unknown scheme `%s`", cl.Name, cl.Scheme)
		}
	}
	for _, dim := range c.Dimensions {
		if dim.Name == "" || dim.Column == "" {
			return fmt.Errorf("dimension `%s` needs a name and a column", dim.Name)
		}
		if dim.CodeList == "" && dim.Range == "" {
			return fmt.Errorf("dimension `%s` needs a range or a code list", dim.Name)
		}
		if dim.CodeList != "" {
			if _, ok := c.CodeList(dim.CodeList); !ok {
				return fmt.Errorf("dimension `%s` references unknown code list `%s`", dim.Name, dim.CodeList)
			}
		}
	}
	for _, l := range c.Lookups {
		if l.Path == "" || l.Key == "" || l.On == "" || len(l.Columns) == 0 {
			return fmt.Errorf("lookup `%s` needs a path, a key, an on column and columns", l.Path)
		}
	}
	return nil
}

func resolve(dir string, in *Input) {
	if in != nil && in.Path != "" && !filepath.IsAbs(in.Path) {
		in.Path = filepath.Join(dir, in.Path)
	}
}

// ParseCube decodes a cube definition. Relative input paths are resolved
// against dir.
func ParseCube(b []byte, dir string) (*Cube, error) {
	c := Cube{}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	resolve(dir, &c.Input)
	for i := range c.Lookups {
		resolve(dir, &c.Lookups[i].Input)
	}
	for i := range c.CodeLists {
		resolve(dir, c.CodeLists[i].Source)
	}
	return &c, nil
}

// ReadCube reads the cube definition at filename.
func ReadCube(filename string) (*Cube, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error while reading the cube file %s: %w", filename, err)
	}
	c, err := ParseCube(b, filepath.Dir(filename))
	if err != nil {
		return nil, fmt.Errorf("error while parsing the cube file %s: %w", filename, err)
	}
	return c, nil
}
