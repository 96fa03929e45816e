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

package util

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/corovcam/cubectl/cube"
	"github.com/corovcam/cubectl/validate"
	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// ErrorResponse represents an error returned from the FHIR server.
type ErrorResponse struct {
	StatusCode       int
	OperationOutcome *fm.OperationOutcome
	OtherError       string
}

// String returns the ErrorResponse in a default formatted way.
func (errRes *ErrorResponse) String() string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("StatusCode  : %d\n", errRes.StatusCode))
	if errRes.OperationOutcome != nil {
		builder.WriteString(FmtOperationOutcomes([]*fm.OperationOutcome{errRes.OperationOutcome}))
	}
	if len(errRes.OtherError) > 0 {
		builder.WriteString(fmt.Sprintf("Error       : %s\n", IndentExceptFirstLine(14, errRes.OtherError)))
	}
	return builder.String()
}

func (errRes *ErrorResponse) Error() string {
	return fmt.Sprintf("server responded with status %d", errRes.StatusCode)
}

var outcomeTemplate, _ = template.New("outcomes").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(`{{ define "issue" -}}
Severity    : {{ .Severity.Display }}
Code        : {{ .Code.Definition }}
{{ with .Details -}}
{{ with .Text -}}
Details     : {{ . }}
{{ end -}}
{{ range .Coding -}}
{{ with .Code -}}
Details     : {{ . }}
{{ end -}}
{{ end -}}
{{ end -}}
{{ with .Diagnostics -}}
Diagnostics : {{ . }}
{{ end -}}
{{ with .Expression -}}
Expression  : {{ join . ", " }}
{{ end -}}
{{ end -}}

{{ define "outcome" -}}
{{ range $index, $issue := .Issue -}}
{{ if $index }}---
{{ end -}}
{{ template "issue" $issue -}} 
{{ end -}}
{{ end -}}

{{ range $index, $outcome := . -}}
{{ if $index }}---
{{ end -}}
{{ template "outcome" $outcome -}} 
{{ end -}}
`)

func FmtOperationOutcomes(outcome []*fm.OperationOutcome) string {
	builder := strings.Builder{}

	err := outcomeTemplate.Execute(&builder, outcome)
	if err != nil {
		return err.Error()
	}

	return builder.String()
}

var resultTemplate, _ = template.New("results").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(`{{ range . -}}
{{ printf "%-5s" .Constraint.ID }} {{ if .OK }}ok  {{ else }}FAIL{{ end }}  {{ .Constraint.Description }}
{{ range .Violations }}      - {{ .Message }}{{ with .Entities }} [{{ join . ", " }}]{{ end }}
{{ end -}}
{{ end -}}
`)

// FmtResults formats the outcome of each constraint followed by its
// violations.
func FmtResults(results []validate.Result) string {
	builder := strings.Builder{}

	err := resultTemplate.Execute(&builder, results)
	if err != nil {
		return err.Error()
	}

	return builder.String()
}

var violationTemplate, _ = template.New("violations").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(`{{ range $index, $violation := . -}}
{{ if $index }}---
{{ end -}}
Constraint  : {{ .Constraint }}
Message     : {{ .Message }}
{{ with .Entities -}}
Entities    : {{ join . ", " }}
{{ end -}}
{{ end -}}
`)

// FmtViolations formats violations one block each.
func FmtViolations(violations []validate.Violation) string {
	builder := strings.Builder{}

	err := violationTemplate.Execute(&builder, violations)
	if err != nil {
		return err.Error()
	}

	return builder.String()
}

// FmtRowErrors formats row errors one per line.
func FmtRowErrors(errs []error) string {
	builder := strings.Builder{}
	for _, err := range errs {
		builder.WriteString(fmt.Sprintf("Row Error   : %s\n", IndentExceptFirstLine(14, err.Error())))
	}
	return builder.String()
}

// RowOf returns the zero based row index carried by a row error.
func RowOf(err error) (int, bool) {
	var unmapped *cube.UnmappedRowError
	var missing *cube.MissingColumnError
	var invalid *cube.InvalidValueError
	var duplicate *cube.DuplicateKeyError
	switch {
	case errors.As(err, &unmapped):
		return unmapped.Row, true
	case errors.As(err, &missing):
		return missing.Row, true
	case errors.As(err, &invalid):
		return invalid.Row, true
	case errors.As(err, &duplicate):
		return duplicate.Row, true
	}
	return 0, false
}

func Indent(spaces int, v string) string {
	pad := strings.Repeat(" ", spaces)
	return pad + IndentExceptFirstLine(spaces, v)
}

func IndentExceptFirstLine(spaces int, v string) string {
	pad := strings.Repeat(" ", spaces)
	return strings.ReplaceAll(v, "\n", "\n"+pad)
}
