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

package export

import (
	"encoding/json"
	"io"

	"github.com/corovcam/cubectl/cube"
	"github.com/corovcam/cubectl/vocabulary"
	"github.com/google/uuid"
)

type Snapshot struct {
	UUID         string                `json:"uuid"`
	Dataset      DatasetSnapshot       `json:"dataset"`
	CodeLists    []CodeListSnapshot    `json:"codeLists"`
	Dimensions   []DimensionSnapshot   `json:"dimensions"`
	Measures     []MeasureSnapshot     `json:"measures"`
	Observations []ObservationSnapshot `json:"observations"`
}

type DatasetSnapshot struct {
	ID        string      `json:"id"`
	IRI       string      `json:"iri"`
	Structure string      `json:"structure"`
	Labels    cube.Labels `json:"labels,omitempty"`
	Issued    string      `json:"issued,omitempty"`
	Modified  string      `json:"modified,omitempty"`
	Publisher string      `json:"publisher,omitempty"`
	License   string      `json:"license,omitempty"`
}

type CodeListSnapshot struct {
	Name     string         `json:"name"`
	Category string         `json:"category"`
	Codes    []CodeSnapshot `json:"codes"`
}

type CodeSnapshot struct {
	ID     string      `json:"id"`
	Labels cube.Labels `json:"labels,omitempty"`
}

type DimensionSnapshot struct {
	Name     string `json:"name"`
	Range    string `json:"range"`
	CodeList string `json:"codeList,omitempty"`
}

type MeasureSnapshot struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type ObservationSnapshot struct {
	ID         string             `json:"id"`
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// DatasetUUID derives a stable identifier from the IRI of the dataset, so that
// repeated publications of the same dataset share it.
func DatasetUUID(ns vocabulary.Namespace, datasetID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(ns.Resource(datasetID)))
}

func NewSnapshot(m *cube.Model, ns vocabulary.Namespace) Snapshot {
	var snapshot Snapshot
	if ds := m.Dataset(); ds != nil {
		snapshot.UUID = DatasetUUID(ns, ds.ID).String()
		snapshot.Dataset = DatasetSnapshot{
			ID:        ds.ID,
			IRI:       ns.Resource(ds.ID),
			Labels:    ds.Metadata.Labels,
			Issued:    ds.Metadata.Issued,
			Modified:  ds.Metadata.Modified,
			Publisher: ds.Metadata.Publisher,
			License:   ds.Metadata.License,
		}
		if s := ds.Structure(); s != nil {
			snapshot.Dataset.Structure = s.ID
		}
	}
	for _, cl := range m.CodeLists {
		list := CodeListSnapshot{Name: cl.Name, Category: string(cl.Category), Codes: make([]CodeSnapshot, 0, cl.Len())}
		for _, r := range cl.Members() {
			list.Codes = append(list.Codes, CodeSnapshot{ID: r.ID, Labels: r.Labels})
		}
		snapshot.CodeLists = append(snapshot.CodeLists, list)
	}
	for _, dim := range m.Dimensions {
		d := DimensionSnapshot{Name: dim.Name, Range: string(dim.Range)}
		if dim.CodeList != nil {
			d.CodeList = dim.CodeList.Name
		}
		snapshot.Dimensions = append(snapshot.Dimensions, d)
	}
	for _, measure := range m.Measures {
		snapshot.Measures = append(snapshot.Measures, MeasureSnapshot{Name: measure.Name, Type: measure.Type.String()})
	}
	snapshot.Observations = make([]ObservationSnapshot, 0, len(m.Observations))
	for _, obs := range m.Observations {
		o := ObservationSnapshot{
			ID:         obs.ID,
			Dimensions: make(map[string]string, len(obs.Dimensions)),
			Measures:   make(map[string]float64, len(obs.Measures)),
		}
		for dim, v := range obs.Dimensions {
			o.Dimensions[dim.Name] = v.String()
		}
		for measure, v := range obs.Measures {
			o.Measures[measure.Name] = v
		}
		snapshot.Observations = append(snapshot.Observations, o)
	}
	return snapshot
}

// WriteJSON writes an indented JSON snapshot of the model.
func WriteJSON(w io.Writer, m *cube.Model, ns vocabulary.Namespace) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewSnapshot(m, ns))
}
