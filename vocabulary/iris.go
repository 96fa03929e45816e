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

// Package vocabulary provides the IRIs used to publish a cube as RDF.
package vocabulary

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Standard namespaces.
const (
	RDF         = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS        = "http://www.w3.org/2000/01/rdf-schema#"
	OWL         = "http://www.w3.org/2002/07/owl#"
	XSD         = "http://www.w3.org/2001/XMLSchema#"
	SKOS        = "http://www.w3.org/2004/02/skos/core#"
	QB          = "http://purl.org/linked-data/cube#"
	DCTerms     = "http://purl.org/dc/terms/"
	SDMXConcept = "http://purl.org/linked-data/sdmx/2009/concept#"
	SDMXMeasure = "http://purl.org/linked-data/sdmx/2009/measure#"
	SDMXCode    = "http://purl.org/linked-data/sdmx/2009/code#"
)

// Class IRIs.
const (
	ClassDataSet                 = QB + "DataSet"
	ClassObservation             = QB + "Observation"
	ClassDataStructureDefinition = QB + "DataStructureDefinition"
	ClassComponentSpecification  = QB + "ComponentSpecification"
	ClassDimensionProperty       = QB + "DimensionProperty"
	ClassMeasureProperty         = QB + "MeasureProperty"
	ClassAttributeProperty       = QB + "AttributeProperty"
	ClassCodedProperty           = QB + "CodedProperty"
	ClassSliceKey                = QB + "SliceKey"
	ClassSlice                   = QB + "Slice"

	ClassConceptScheme = SKOS + "ConceptScheme"
	ClassConcept       = SKOS + "Concept"

	ClassRDFSClass = RDFS + "Class"
	ClassOWLClass  = OWL + "Class"
	ClassProperty  = RDF + "Property"

	// ClassArea marks territorial codes.
	ClassArea = SDMXCode + "Area"
	// SchemeArea is the SDMX code list of territorial codes.
	SchemeArea = SDMXCode + "area"
)

// Property IRIs.
const (
	PropType          = RDF + "type"
	PropLabel         = RDFS + "label"
	PropRange         = RDFS + "range"
	PropSeeAlso       = RDFS + "seeAlso"
	PropSubPropertyOf = RDFS + "subPropertyOf"

	PropPrefLabel = SKOS + "prefLabel"
	PropInScheme  = SKOS + "inScheme"

	PropDataSet           = QB + "dataSet"
	PropStructure         = QB + "structure"
	PropComponent         = QB + "component"
	PropDimension         = QB + "dimension"
	PropMeasure           = QB + "measure"
	PropAttribute         = QB + "attribute"
	PropComponentRequired = QB + "componentRequired"
	PropCodeList          = QB + "codeList"
	PropConcept           = QB + "concept"
	PropSliceKey          = QB + "sliceKey"
	PropSliceStructure    = QB + "sliceStructure"
	PropObservation       = QB + "observation"
	PropSlice             = QB + "slice"
	PropMeasureType       = QB + "measureType"

	PropIssued    = DCTerms + "issued"
	PropModified  = DCTerms + "modified"
	PropTitle     = DCTerms + "title"
	PropPublisher = DCTerms + "publisher"
	PropLicense   = DCTerms + "license"

	// ObsValue is the SDMX measure every published measure specializes.
	ObsValue = SDMXMeasure + "obsValue"
)

// Datatype IRIs.
const (
	Integer = XSD + "integer"
	Decimal = XSD + "decimal"
	String  = XSD + "string"
	Boolean = XSD + "boolean"
	Date    = XSD + "date"
	AnyURI  = XSD + "anyURI"
)

// Namespace holds the base IRIs of one publication: Ontology for properties and
// structures, Resources for code lists, concepts, datasets and observations.
type Namespace struct {
	Ontology  string `yaml:"ontology"`
	Resources string `yaml:"resources"`
}

func DefaultNamespace() Namespace {
	return Namespace{
		Ontology:  "https://ndbi046-martincorovcak.com/ontology#",
		Resources: "https://ndbi046-martincorovcak.com/resources/",
	}
}

// Property returns the IRI of a dimension, measure or attribute.
func (ns Namespace) Property(name string) string {
	return ns.Ontology + escape(name)
}

// Structure returns the IRI of a structure definition.
func (ns Namespace) Structure(id string) string {
	return ns.Ontology + escape(id)
}

// Resource returns the IRI of a resource below the resource namespace.
func (ns Namespace) Resource(path ...string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = escape(p)
	}
	return ns.Resources + strings.Join(parts, "/")
}

// Scheme returns the IRI of the concept scheme of a code list.
func (ns Namespace) Scheme(codeList string) string {
	return ns.Resource(lowerFirst(codeList))
}

// Class returns the IRI of the class of a category.
func (ns Namespace) Class(category string) string {
	return ns.Resource(category)
}

// Concept returns the IRI of a code within a code list.
func (ns Namespace) Concept(codeList, code string) string {
	return ns.Resource(lowerFirst(codeList), code)
}

func escape(s string) string {
	return url.PathEscape(s)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
