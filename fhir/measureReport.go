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

package fhir

import (
	"math"
	"strings"

	"github.com/corovcam/cubectl/cube"
	"github.com/corovcam/cubectl/export"
	"github.com/corovcam/cubectl/vocabulary"
	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// NewMeasureReport maps a model onto a summary MeasureReport. The report has
// one group per measure, each with one stratifier over all dimensions of the
// structure and one stratum per observation. Measure values are rounded to
// counts.
func NewMeasureReport(m *cube.Model, ns vocabulary.Namespace) fm.MeasureReport {
	report := fm.MeasureReport{
		Status: fm.MeasureReportStatusComplete,
		Type:   fm.MeasureReportTypeSummary,
	}
	ds := m.Dataset()
	if ds == nil {
		return report
	}
	id := export.DatasetUUID(ns, ds.ID).String()
	report.Id = &id
	report.Measure = ns.Resource(ds.ID)
	if ds.Metadata.Issued != "" {
		issued := ds.Metadata.Issued
		report.Date = &issued
		report.Period = fm.Period{Start: &issued, End: &issued}
	}

	var dims []*cube.Dimension
	if s := ds.Structure(); s != nil {
		dims = s.Dimensions()
	}
	for _, measure := range m.Measures {
		group := fm.MeasureReportGroup{
			Code: &fm.CodeableConcept{Text: label(measure.Labels, measure.Name)},
		}
		stratifier := fm.MeasureReportGroupStratifier{}
		for _, dim := range dims {
			stratifier.Code = append(stratifier.Code, fm.CodeableConcept{Text: label(dim.Labels, dim.Name)})
		}

		total := 0
		for _, obs := range m.Observations {
			v, ok := obs.Measures[measure]
			if !ok {
				continue
			}
			count := int(math.Round(v))
			total += count
			stratifier.Stratum = append(stratifier.Stratum, fm.MeasureReportGroupStratifierStratum{
				Value:      stratumValue(obs, dims, ns),
				Population: []fm.MeasureReportGroupStratifierStratumPopulation{{Count: &count}},
			})
		}
		group.Population = []fm.MeasureReportGroupPopulation{{Count: &total}}
		if len(dims) > 0 {
			group.Stratifier = []fm.MeasureReportGroupStratifier{stratifier}
		}
		report.Group = append(report.Group, group)
	}
	return report
}

func label(labels cube.Labels, fallback string) *string {
	text := labels.Get("en")
	if text == "" {
		text = fallback
	}
	return &text
}

// stratumValue codes the dimension values of an observation, one coding per
// coded dimension. The text joins all values in dimension order.
func stratumValue(obs *cube.Observation, dims []*cube.Dimension, ns vocabulary.Namespace) *fm.CodeableConcept {
	value := &fm.CodeableConcept{}
	texts := make([]string, 0, len(dims))
	for _, dim := range dims {
		v := obs.Dimensions[dim]
		texts = append(texts, v.String())
		if v.Code == nil || dim.CodeList == nil {
			continue
		}
		system := ns.Scheme(dim.CodeList.Name)
		code := v.Code.ID
		coding := fm.Coding{System: &system, Code: &code}
		if display := v.Code.Labels.Get("cs"); display != "" {
			coding.Display = &display
		}
		value.Coding = append(value.Coding, coding)
	}
	text := strings.Join(texts, " / ")
	value.Text = &text
	return value
}
