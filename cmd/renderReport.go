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

package cmd

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"html/template"

	"github.com/corovcam/cubectl/fhir"
	"github.com/corovcam/cubectl/util"
	fm "github.com/samply/golang-fhir-models/fhir-models/fhir"
	"github.com/spf13/cobra"
)

//go:embed report-template.gohtml
var reportTemplate string

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"inc": func(i int) int {
		return i + 1
	},
	"ratio": func(n *int, d *int) float32 {
		if n == nil || d == nil || *d == 0 {
			return 0
		}
		return float32(*n*100) / float32(*d)
	},
	"isNullString": func(s *string) bool {
		return s == nil || *s == "null"
	},
	"groupTotal": func(g fm.MeasureReportGroup) *int {
		if len(g.Population) == 0 {
			return nil
		}
		return g.Population[0].Count
	},
}).Parse(reportTemplate))

func renderReport(wr io.Writer, report fm.MeasureReport) error {
	return reportTmpl.Execute(wr, report)
}

// readReport reads the MeasureReport to render. A dash reads a MeasureReport
// in JSON from r, anything else is a cube file to build.
func readReport(cmd *cobra.Command, arg string, r io.Reader) (fm.MeasureReport, error) {
	var report fm.MeasureReport
	if arg == "-" {
		data, err := io.ReadAll(r)
		if err != nil {
			return report, err
		}
		if err := json.Unmarshal(data, &report); err != nil {
			return report, fmt.Errorf("error while parsing the MeasureReport: %w", err)
		}
		return report, nil
	}

	progress := newProgress(cmd.ErrOrStderr())
	b, err := buildCube(cmd.Context(), arg, progress)
	if progress != nil {
		progress.Wait()
	}
	if err != nil {
		return report, err
	}
	if len(b.result.Violations) > 0 {
		logger.Warn().Str("dataset", b.cube.Dataset.ID).Int("violations", len(b.result.Violations)).Msg("rendering a cube that violates integrity constraints")
	}
	return fhir.NewMeasureReport(b.result.Model, b.cube.NamespaceOrDefault()), nil
}

var renderReportCmd = &cobra.Command{
	Use:   "render-report [cube-file | -]",
	Short: "Renders a cube as MeasureReport in HTML",
	Long: `Builds the cube of the given cube file and renders its MeasureReport as
HTML page. With a dash instead of a cube file, a MeasureReport in JSON is read
from standard input, as returned by a FHIR server.

Example:

  cubectl render-report care-providers.yml -o care-providers.html
  curl -s "http://localhost:8080/fhir/MeasureReport/<id>" | cubectl render-report -`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("requires exactly one cube file argument or a dash")
		}
		if args[0] == "-" {
			return nil
		}
		if _, err := os.Stat(args[0]); os.IsNotExist(err) {
			return fmt.Errorf("cube file `%s` doesn't exist", args[0])
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := readReport(cmd, args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if outputFile, _ := cmd.Flags().GetString("output-file"); outputFile != "" {
			file := util.CreateOutputFileOrDie(outputFile)
			defer file.Close()
			out = file
		}
		return renderReport(out, report)
	},
}

func init() {
	rootCmd.AddCommand(renderReportCmd)

	renderReportCmd.Flags().StringP("output-file", "o", "", "write to file instead of stdout")
}
