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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/corovcam/cubectl/fhir"
	"github.com/corovcam/cubectl/util"
	"github.com/spf13/cobra"
)

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish [cube-file]",
	Short: "Publish a cube as MeasureReport to a FHIR server",
	Long: `Builds the cube of the given cube file and publishes it as summary
MeasureReport to a FHIR server.

The report is sent as a transaction bundle that creates or updates the
MeasureReport under an id derived from the dataset, so publishing the same
cube twice updates the report. Cubes violating integrity constraints are
never published, the command exits with code 2 instead.

Example:

  cubectl publish care-providers.yml --server "http://localhost:8080/fhir"
  CUBECTL_SERVER="http://localhost:8080/fhir" cubectl publish care-providers.yml`,
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
		client, err := createClient()
		if err != nil {
			return err
		}
		defer client.CloseIdleConnections()

		progress := newProgress(cmd.ErrOrStderr())
		b, err := buildCube(cmd.Context(), args[0], progress)
		if progress != nil {
			progress.Wait()
		}
		if err != nil {
			return err
		}

		stderr := cmd.ErrOrStderr()
		if len(b.result.Violations) > 0 {
			fmt.Fprintf(stderr, "Violations:\n%s", util.Indent(2, util.FmtViolations(b.result.Violations)))
			return errViolations
		}

		report := fhir.NewMeasureReport(b.result.Model, b.cube.NamespaceOrDefault())
		bundle, err := fhir.NewTransactionBundle(report)
		if err != nil {
			return err
		}

		info, err := client.Transact(cmd.Context(), bundle)
		if err != nil {
			var errRes *util.ErrorResponse
			if errors.As(err, &errRes) {
				fmt.Fprintf(stderr, "Failed to publish %s:\n%s", b.cube.Dataset.ID, util.Indent(2, errRes.String()))
			}
			return fmt.Errorf("error while publishing %s: %w", b.cube.Dataset.ID, err)
		}
		logger.Info().Str("dataset", b.cube.Dataset.ID).Int("status", info.StatusCode).Msg("report published")

		b.result.Stats.BytesOut = info.BytesOut
		fmt.Fprint(cmd.OutOrStdout(), b.result.Stats.String())
		fmt.Fprintf(cmd.OutOrStdout(), "MeasureReport	[id]			%s\n", *report.Id)
		fmt.Fprintf(cmd.OutOrStdout(), "Entries		[status]		%s\n", strings.Join(info.Response.EntryStatuses(), ", "))
		if len(b.result.RowErrors) > 0 {
			fmt.Fprintf(stderr, "\nRow Errors:\n%s", util.Indent(2, util.FmtRowErrors(b.result.RowErrors)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().String("server", "", "the base URL of the FHIR server to use")
	publishCmd.Flags().BoolP("insecure", "k", false, "allow insecure server connections when using SSL")
	publishCmd.Flags().String("user", "", "user information for basic authentication")
	publishCmd.Flags().String("password", "", "password information for basic authentication")
	_ = v.BindPFlag("server", publishCmd.Flags().Lookup("server"))
	_ = v.BindPFlag("insecure", publishCmd.Flags().Lookup("insecure"))
	_ = v.BindPFlag("user", publishCmd.Flags().Lookup("user"))
	_ = v.BindPFlag("password", publishCmd.Flags().Lookup("password"))
}
