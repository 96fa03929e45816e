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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/corovcam/cubectl/util"
	"github.com/corovcam/cubectl/validate"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type constraintReport struct {
	Constraint  string               `json:"constraint" yaml:"constraint"`
	Description string               `json:"description" yaml:"description"`
	OK          bool                 `json:"ok" yaml:"ok"`
	Violations  []validate.Violation `json:"violations,omitempty" yaml:"violations,omitempty"`
}

type validationReport struct {
	Dataset     string             `json:"dataset" yaml:"dataset"`
	Constraints []constraintReport `json:"constraints" yaml:"constraints"`
}

func newValidationReport(dataset string, results []validate.Result) validationReport {
	report := validationReport{Dataset: dataset, Constraints: make([]constraintReport, 0, len(results))}
	for _, r := range results {
		report.Constraints = append(report.Constraints, constraintReport{
			Constraint:  r.Constraint.ID,
			Description: r.Constraint.Description,
			OK:          r.OK(),
			Violations:  r.Violations,
		})
	}
	return report
}

func writeValidationReport(w io.Writer, b *build, format string) error {
	switch format {
	case "text":
		_, err := fmt.Fprint(w, util.FmtResults(b.result.Results))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newValidationReport(b.cube.Dataset.ID, b.result.Results))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newValidationReport(b.cube.Dataset.ID, b.result.Results)); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format `%s`, use text, json or yaml", format)
}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [cube-file]",
	Short: "Check the integrity constraints of a cube",
	Long: `Builds the cube of the given cube file and checks all integrity constraints
of the data cube vocabulary (IC-1 to IC-21) against it.

The outcome of every constraint is written to standard output, violations
included. Rows that can't be mapped onto the cube are reported on standard
error. The command exits with code 2 if at least one constraint is violated.

Example:

  cubectl validate care-providers.yml
  cubectl validate care-providers.yml --format json`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("requires exactly one cube file argument")
		}
		if _, err := os.Stat(args[0]); os.IsNotExist(err) {
			return fmt.Errorf("cube file `%s` doesn't exist", args[0])
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format != "text" && format != "json" && format != "yaml" {
			return fmt.Errorf("unknown format `%s`, use text, json or yaml", format)
		}

		progress := newProgress(cmd.ErrOrStderr())
		b, err := buildCube(cmd.Context(), args[0], progress)
		if progress != nil {
			progress.Wait()
		}
		if err != nil {
			return err
		}

		if err := writeValidationReport(cmd.OutOrStdout(), b, format); err != nil {
			return err
		}
		if len(b.result.RowErrors) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Row Errors:\n%s", util.Indent(2, util.FmtRowErrors(b.result.RowErrors)))
		}
		logger.Info().Str("dataset", b.cube.Dataset.ID).Int("violations", len(b.result.Violations)).Msg("cube validated")

		if len(b.result.Violations) > 0 {
			return errViolations
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("format", "text", "report format (text, json, yaml)")
}
