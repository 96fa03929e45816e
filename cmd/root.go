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
	"net/url"
	"os"
	"strings"

	"github.com/corovcam/cubectl/fhir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errViolations is returned by commands that found integrity constraint
// violations. It exits with code 2.
var errViolations = errors.New("the cube violates integrity constraints")

var v = newViper()

var logger = zerolog.Nop()

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetEnvPrefix("CUBECTL")
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vp.AutomaticEnv()
	return vp
}

func createClient() (*fhir.Client, error) {
	server := v.GetString("server")
	if server == "" {
		return nil, errors.New("missing server base URL, use --server or CUBECTL_SERVER")
	}
	fhirServerBaseUrl, err := url.ParseRequestURI(server)
	if err != nil {
		return nil, fmt.Errorf("could not parse server's base URL: %v", err)
	}

	if v.GetBool("insecure") {
		return fhir.NewClientInsecure(*fhirServerBaseUrl, clientAuth()), nil
	}
	return fhir.NewClient(*fhirServerBaseUrl, clientAuth()), nil
}

func clientAuth() fhir.ClientAuth {
	return fhir.ClientAuth{
		BasicAuthUser:     v.GetString("user"),
		BasicAuthPassword: v.GetString("password"),
	}
}

func setupLogger(w io.Writer) error {
	level, err := zerolog.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(level).With().Timestamp().Logger()
	return nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cubectl",
	Short: "Build and publish statistical data cubes from the command line",
	Long: `cubectl is a command line tool to build statistical data cubes.

It reads tabular data as described by a cube definition file, derives coded
observations, checks the integrity constraints of the data cube vocabulary and
exports the cube as N-Triples, JSON or a FHIR® MeasureReport.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(cmd.ErrOrStderr())
	},
}

// exitCode maps an error returned by a command onto the process exit code.
func exitCode(err error) int {
	if errors.Is(err, errViolations) {
		return 2
	}
	return 1
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("no-progress", false, "don't show progress bars")
	rootCmd.PersistentFlags().String("where", "", "row filter in URL query form or @file, overrides the filters of the cube file")
	_ = v.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("no-progress", rootCmd.PersistentFlags().Lookup("no-progress"))
	_ = v.BindPFlag("where", rootCmd.PersistentFlags().Lookup("where"))
}
