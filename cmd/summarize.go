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
	"io"
	"os"
	"strings"

	"github.com/corovcam/cubectl/util"
	"github.com/spf13/cobra"
)

func fmtMeasureStatistics(stats []util.MeasureStatistics) string {
	builder := strings.Builder{}
	for _, s := range stats {
		builder.WriteString(fmt.Sprintf("Measure		[name]			%s\n", s.Measure))
		builder.WriteString(fmt.Sprintf("Values		[count, sum]		%d, %g\n", s.Count, s.Sum))
		builder.WriteString(fmt.Sprintf("Values		[min, mean, max]	%g, %.2f, %g\n", s.Min, s.Mean, s.Max))
		builder.WriteString(fmt.Sprintf("Values		[std, 50, 95]		%.2f, %g, %g\n", s.Std, s.Q50, s.Q95))
	}
	return builder.String()
}

func writeSummary(w io.Writer, b *build) {
	fmt.Fprint(w, b.result.Stats.String())
	for i, cl := range b.result.Model.CodeLists {
		if i == 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "Code List	[%s]	%d\n", cl.Name, cl.Len())
	}
	if stats := util.CalculateMeasureStatistics(b.result.Model); len(stats) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, fmtMeasureStatistics(stats))
	}
}

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize [cube-file]",
	Short: "Summarize the observations of a cube",
	Long: `Builds the cube of the given cube file and prints a summary of it.

The summary lists the build statistics, the size of every code list and
basic statistics over the values of each measure. Nothing is exported.

Example:

  cubectl summarize population-2021.yml`,
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
		progress := newProgress(cmd.ErrOrStderr())
		b, err := buildCube(cmd.Context(), args[0], progress)
		if progress != nil {
			progress.Wait()
		}
		if err != nil {
			return err
		}

		writeSummary(cmd.OutOrStdout(), b)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
