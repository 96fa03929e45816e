// Copyright © 2019 Alexander Kiel <alexander.kiel@life.uni-leipzig.de>
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
	"encoding/json"

	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// Bundle is documented here https://www.hl7.org/fhir/bundle.html
//
// Only transactions and their responses are used, so resources stay raw JSON.
type Bundle struct {
	Type  string
	Total *int
	Entry []BundleEntry
}

// MarshalJSON marshals the given bundle as JSON into a byte slice
func (b Bundle) MarshalJSON() ([]byte, error) {
	x := make(map[string]interface{})
	x["resourceType"] = "Bundle"
	x["type"] = b.Type
	if b.Total != nil {
		x["total"] = b.Total
	}
	if len(b.Entry) > 0 {
		x["entry"] = b.Entry
	}
	return json.Marshal(x)
}

// BundleEntry represents the Bundle.entry BackboneElement
type BundleEntry struct {
	Resource json.RawMessage      `json:"resource,omitempty"`
	Request  *BundleEntryRequest  `json:"request,omitempty"`
	Response *BundleEntryResponse `json:"response,omitempty"`
}

// BundleEntryRequest represents the Bundle.entry.request BackboneElement
type BundleEntryRequest struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

// BundleEntryResponse represents the Bundle.entry.response BackboneElement
type BundleEntryResponse struct {
	Status string `json:"status"`
}

// EntryStatuses returns the response status of every entry of a transaction
// response in entry order. Entries without response yield an empty status.
func (b Bundle) EntryStatuses() []string {
	statuses := make([]string, len(b.Entry))
	for i, e := range b.Entry {
		if e.Response != nil {
			statuses[i] = e.Response.Status
		}
	}
	return statuses
}

// NewTransactionBundle wraps the report into a transaction that creates or
// updates it under its id.
func NewTransactionBundle(report fm.MeasureReport) (Bundle, error) {
	resource, err := json.Marshal(report)
	if err != nil {
		return Bundle{}, err
	}
	url := "MeasureReport"
	method := "POST"
	if report.Id != nil {
		url += "/" + *report.Id
		method = "PUT"
	}
	return Bundle{
		Type: "transaction",
		Entry: []BundleEntry{
			{
				Resource: resource,
				Request:  &BundleEntryRequest{Method: method, URL: url},
			},
		},
	}, nil
}
