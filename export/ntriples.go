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

// Package export serializes a dimensional model for publication.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/corovcam/cubectl/cube"
	"github.com/corovcam/cubectl/vocabulary"
)

type tripleWriter struct {
	w     *bufio.Writer
	err   error
	count int
	blank int
}

func term(s string) string {
	if strings.HasPrefix(s, "_:") {
		return s
	}
	return "<" + s + ">"
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

func (t *tripleWriter) emit(s, p, o string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "%s %s %s .\n", term(s), term(p), o)
	t.count++
}

func (t *tripleWriter) iri(s, p, o string) {
	t.emit(s, p, term(o))
}

func (t *tripleWriter) label(s, p string, l cube.Label) {
	o := `"` + literalEscaper.Replace(l.Value) + `"`
	if l.Lang != "" {
		o += "@" + l.Lang
	}
	t.emit(s, p, o)
}

func (t *tripleWriter) typed(s, p, value, datatype string) {
	t.emit(s, p, `"`+literalEscaper.Replace(value)+`"^^`+term(datatype))
}

func (t *tripleWriter) labels(s string, labels cube.Labels, predicates ...string) {
	for _, p := range predicates {
		for _, l := range labels {
			t.label(s, p, l)
		}
	}
}

func (t *tripleWriter) blankNode() string {
	t.blank++
	return fmt.Sprintf("_:c%d", t.blank)
}

func datatype(v cube.ValueType) string {
	switch v {
	case cube.Decimal:
		return vocabulary.Decimal
	case cube.String:
		return vocabulary.String
	}
	return vocabulary.Integer
}

// WriteNTriples writes the model as N-Triples and returns the number of
// triples written.
func WriteNTriples(w io.Writer, m *cube.Model, ns vocabulary.Namespace) (int, error) {
	t := &tripleWriter{w: bufio.NewWriter(w)}

	classLabels := make(map[cube.Category]cube.Labels)
	for _, dim := range m.Dimensions {
		if _, ok := classLabels[dim.Range]; !ok {
			classLabels[dim.Range] = dim.Labels
		}
	}

	for _, cl := range m.CodeLists {
		scheme := ns.Scheme(cl.Name)
		class := ns.Class(string(cl.Category))
		t.iri(scheme, vocabulary.PropType, vocabulary.ClassConceptScheme)
		t.labels(scheme, cl.Labels, vocabulary.PropLabel, vocabulary.PropPrefLabel)
		t.iri(scheme, vocabulary.PropSeeAlso, class)

		t.iri(class, vocabulary.PropType, vocabulary.ClassRDFSClass)
		t.iri(class, vocabulary.PropType, vocabulary.ClassOWLClass)
		t.labels(class, classLabels[cl.Category], vocabulary.PropLabel, vocabulary.PropPrefLabel)
		t.iri(class, vocabulary.PropSeeAlso, scheme)

		for _, r := range cl.Members() {
			concept := ns.Concept(cl.Name, r.ID)
			t.iri(concept, vocabulary.PropType, vocabulary.ClassConcept)
			t.iri(concept, vocabulary.PropType, class)
			t.labels(concept, r.Labels, vocabulary.PropLabel, vocabulary.PropPrefLabel)
			t.iri(concept, vocabulary.PropInScheme, scheme)
		}
	}

	for _, dim := range m.Dimensions {
		p := ns.Property(dim.Name)
		t.iri(p, vocabulary.PropType, vocabulary.ClassProperty)
		t.iri(p, vocabulary.PropType, vocabulary.ClassDimensionProperty)
		if dim.Coded {
			t.iri(p, vocabulary.PropType, vocabulary.ClassCodedProperty)
		}
		t.labels(p, dim.Labels, vocabulary.PropLabel)
		t.iri(p, vocabulary.PropRange, ns.Class(string(dim.Range)))
		if dim.CodeList != nil {
			t.iri(p, vocabulary.PropCodeList, ns.Scheme(dim.CodeList.Name))
		}
		if dim.Concept != "" {
			t.iri(p, vocabulary.PropConcept, vocabulary.SDMXConcept+dim.Concept)
		}
	}

	for _, measure := range m.Measures {
		p := ns.Property(measure.Name)
		t.iri(p, vocabulary.PropType, vocabulary.ClassProperty)
		t.iri(p, vocabulary.PropType, vocabulary.ClassMeasureProperty)
		t.labels(p, measure.Labels, vocabulary.PropLabel)
		t.iri(p, vocabulary.PropSubPropertyOf, vocabulary.ObsValue)
		t.iri(p, vocabulary.PropRange, datatype(measure.Type))
	}

	for _, s := range m.Structures {
		structure := ns.Structure(s.ID)
		t.iri(structure, vocabulary.PropType, vocabulary.ClassDataStructureDefinition)
		for _, c := range s.Components {
			node := t.blankNode()
			t.iri(structure, vocabulary.PropComponent, node)
			t.iri(node, vocabulary.PropType, vocabulary.ClassComponentSpecification)
			switch {
			case c.Dimension != nil:
				t.iri(node, vocabulary.PropDimension, ns.Property(c.Dimension.Name))
			case c.Measure != nil:
				t.iri(node, vocabulary.PropMeasure, ns.Property(c.Measure.Name))
			case c.Attribute != nil:
				t.iri(node, vocabulary.PropAttribute, ns.Property(c.Attribute.Name))
			}
			t.typed(node, vocabulary.PropComponentRequired, fmt.Sprint(c.Required), vocabulary.Boolean)
		}
	}

	for _, ds := range m.Datasets {
		dataset := ns.Resource(ds.ID)
		t.iri(dataset, vocabulary.PropType, vocabulary.ClassDataSet)
		t.labels(dataset, ds.Metadata.Labels, vocabulary.PropLabel, vocabulary.PropTitle)
		if ds.Metadata.Issued != "" {
			t.typed(dataset, vocabulary.PropIssued, ds.Metadata.Issued, vocabulary.Date)
		}
		if ds.Metadata.Modified != "" {
			t.typed(dataset, vocabulary.PropModified, ds.Metadata.Modified, vocabulary.Date)
		}
		if ds.Metadata.Publisher != "" {
			t.typed(dataset, vocabulary.PropPublisher, ds.Metadata.Publisher, vocabulary.AnyURI)
		}
		if ds.Metadata.License != "" {
			t.typed(dataset, vocabulary.PropLicense, ds.Metadata.License, vocabulary.AnyURI)
		}
		for _, s := range ds.Structures {
			t.iri(dataset, vocabulary.PropStructure, ns.Structure(s.ID))
		}
	}

	for _, obs := range m.Observations {
		o := ns.Resource(obs.ID)
		t.iri(o, vocabulary.PropType, vocabulary.ClassObservation)
		for _, ds := range obs.Datasets {
			t.iri(o, vocabulary.PropDataSet, ns.Resource(ds.ID))
		}
		for _, dim := range m.Dimensions {
			v, ok := obs.Dimensions[dim]
			if !ok {
				continue
			}
			if v.Code != nil && dim.CodeList != nil {
				t.iri(o, ns.Property(dim.Name), ns.Concept(dim.CodeList.Name, v.Code.ID))
			} else {
				t.typed(o, ns.Property(dim.Name), v.String(), vocabulary.String)
			}
		}
		for _, measure := range m.Measures {
			if v, ok := obs.Measures[measure]; ok {
				t.typed(o, ns.Property(measure.Name), measure.Type.Format(v), datatype(measure.Type))
			}
		}
	}

	if t.err != nil {
		return t.count, t.err
	}
	return t.count, t.w.Flush()
}
