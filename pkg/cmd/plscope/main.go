// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// plscope runs a scope script and prints the resulting frame layout of the
// routine. It is a debugging aid for the scope tree; see package
// scopescript for the script language.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/plscope/pkg/sql/plscope"
	"github.com/cockroachdb/plscope/pkg/sql/plscope/scopescript"
	"github.com/cockroachdb/plscope/pkg/util/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var layoutFlags = pflag.NewFlagSet(`layout`, pflag.ContinueOnError)
var configPath = layoutFlags.String("config", "", "yaml file configuring name comparison")
var verbosity = layoutFlags.Int32P("verbosity", "v", -1, "log verbosity; overrides the configuration")
var routine = layoutFlags.String("routine", "script", "routine name used in log messages")
var redactableLogs = layoutFlags.Bool("redactable-logs", false, "keep redaction markers in log messages")

var rootCmd = &cobra.Command{
	Use:           "plscope",
	Short:         "Inspect the scope tree of a stored routine",
	SilenceErrors: true,
}

var layoutCmd = &cobra.Command{
	Use:   "layout [file]",
	Short: "Run a scope script and print the frame layout",
	Long: `Run a scope script, read from the given file or from stdin, printing
the output of every command followed by the layout of the scope tree.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "opening script")
			}
			defer f.Close()
			in = f
		}
		defer log.SetRedactable(*redactableLogs)()
		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		if *verbosity >= 0 {
			cfg.Verbosity = *verbosity
		}
		return runLayout(context.Background(), *routine, cfg, in, cmd.OutOrStdout())
	},
}

func init() {
	layoutCmd.Flags().AddFlagSet(layoutFlags)
	rootCmd.AddCommand(layoutCmd)
}

func loadConfig(path string) (plscope.Config, error) {
	if path == "" {
		return plscope.DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return plscope.Config{}, errors.Wrap(err, "reading configuration")
	}
	return plscope.ParseConfig(data)
}

func runLayout(
	ctx context.Context, routine string, cfg plscope.Config, in io.Reader, out io.Writer,
) error {
	defer log.SetVerbosity(cfg.Verbosity)()
	r, err := scopescript.NewRunner(ctx, routine, cfg)
	if err != nil {
		return err
	}
	defer r.Builder().Tree().Release()
	res, err := r.Run(ctx, in)
	if err != nil {
		return err
	}
	if n := r.Failures(); n > 0 {
		log.Warningf(ctx, "%s: %d failed commands", routine, n)
	}
	f := r.Builder().Frame()
	log.Infof(ctx, "%s: %d variables, %d cursors, %d handlers",
		routine, f.Variables, f.Cursors, f.Handlers)
	_, err = fmt.Fprintf(out, "%s--\n%s\n", res, r.Builder().Tree())
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf(context.Background(), "%v", err)
		os.Exit(1)
	}
}
