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
	"time"

	"github.com/corovcam/cubectl/export"
	"github.com/corovcam/cubectl/util"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func extension(format string) (string, error) {
	switch format {
	case "ntriples":
		return ".nt", nil
	case "json":
		return ".json", nil
	}
	return "", fmt.Errorf("unknown format `%s`, use ntriples or json", format)
}

func writeBuild(w io.Writer, b *build, format string) (int64, error) {
	cw := &countingWriter{w: w}
	ns := b.cube.NamespaceOrDefault()
	var err error
	if format == "json" {
		err = export.WriteJSON(cw, b.result.Model, ns)
	} else {
		_, err = export.WriteNTriples(cw, b.result.Model, ns)
	}
	return cw.n, err
}

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [cube-file]...",
	Short: "Build cubes and export them",
	Long: `Builds the cube of each given cube file and exports it.

Cubes are built in parallel according to the --concurrency flag, each one
independently of the others. A single cube is written to standard output
unless --output-dir is given. With --output-dir, which is required for more
than one cube, every cube is written to a file named after its dataset.
Existing files are never overwritten.

Rows that can't be mapped onto the cube are reported and skipped. If a cube
violates integrity constraints, its violations are reported and the command
exits with code 2.

Example:

  cubectl generate care-providers.yml population-2021.yml --output-dir out`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errors.New("requires at least one cube file argument")
		}
		for _, arg := range args {
			if _, err := os.Stat(arg); os.IsNotExist(err) {
				return fmt.Errorf("cube file `%s` doesn't exist", arg)
			}
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := v.GetString("format")
		ext, err := extension(format)
		if err != nil {
			return err
		}
		outputDir := v.GetString("output-dir")
		if outputDir == "" && len(args) > 1 {
			return errors.New("more than one cube requires --output-dir")
		}

		start := time.Now()
		progress := newProgress(cmd.ErrOrStderr())
		builds := make([]*build, len(args))
		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(max(v.GetInt("concurrency"), 1))
		for i, filename := range args {
			i, filename := i, filename
			g.Go(func() error {
				b, err := buildCube(ctx, filename, progress)
				if err != nil {
					return err
				}
				builds[i] = b
				return nil
			})
		}
		err = g.Wait()
		if progress != nil {
			progress.Wait()
		}
		if err != nil {
			return err
		}

		violated := false
		durations := make([]time.Duration, 0, len(builds))
		for _, b := range builds {
			var out io.Writer = cmd.OutOrStdout()
			if outputDir != "" {
				file := util.CreateOutputFileOrDie(util.OutputPath(outputDir, b.cube.Dataset.ID, ext))
				defer file.Close()
				out = file
			}
			n, err := writeBuild(out, b, format)
			if err != nil {
				return fmt.Errorf("error while writing %s: %w", b.cube.Dataset.ID, err)
			}
			b.result.Stats.BytesOut = n

			stderr := cmd.ErrOrStderr()
			fmt.Fprint(stderr, b.result.Stats.String())
			if len(b.result.RowErrors) > 0 {
				fmt.Fprintf(stderr, "\nRow Errors:\n%s", util.Indent(2, util.FmtRowErrors(b.result.RowErrors)))
			}
			if len(b.result.Violations) > 0 {
				violated = true
				fmt.Fprintf(stderr, "\nViolations:\n%s", util.Indent(2, util.FmtViolations(b.result.Violations)))
			}
			fmt.Fprintln(stderr)
			durations = append(durations, b.result.Stats.TotalDuration)
		}
		if len(durations) > 1 {
			fmt.Fprintf(cmd.ErrOrStderr(), "Cubes		[total]			%d\n", len(durations))
			fmt.Fprint(cmd.ErrOrStderr(), util.FmtBuildDurations(durations))
			fmt.Fprintf(cmd.ErrOrStderr(), "Duration	[total]			%s\n", util.FmtDurationHumanReadable(time.Since(start)))
		}

		if violated {
			return errViolations
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("format", "ntriples", "output format (ntriples, json)")
	generateCmd.Flags().String("output-dir", "", "directory to write one file per cube into")
	generateCmd.Flags().IntP("concurrency", "c", 2, "number of cubes built in parallel")
	_ = v.BindPFlag("format", generateCmd.Flags().Lookup("format"))
	_ = v.BindPFlag("output-dir", generateCmd.Flags().Lookup("output-dir"))
	_ = v.BindPFlag("concurrency", generateCmd.Flags().Lookup("concurrency"))
}
