// Package cmd implements the flocheck command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tonhe/flocheck/internal/config"
	"github.com/tonhe/flocheck/internal/probe"
	"github.com/tonhe/flocheck/internal/threshold"
)

// Version is set at build time.
var Version = "dev"

// app carries process-wide wiring shared by subcommands.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	stdin    *os.File
	cfg      *config.Config
	log      *logrus.Logger
	open     sessionOpener
	verbose  bool
	exitCode int
}

// Execute runs the command line and returns the process exit status.
func Execute(ctx context.Context, args []string) int {
	a := &app{stdout: os.Stdout, stderr: os.Stderr, stdin: os.Stdin, open: openSession}
	return a.execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		if cmd != nil && cmd.Name() == checkCmdName {
			fmt.Fprintln(a.stdout, probe.ErrorLine(err))
			return threshold.Unknown.ExitCode()
		}
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 1
	}
	return a.exitCode
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "flocheck",
		Short: "SNMP interface utilization check",
		Long: `flocheck inspects one interface on a network device over SNMP, checks its
operational and duplex state, samples its traffic counters and reports
utilization against warning and critical thresholds.

Output is a single monitoring-plugin line; the exit status is
0 OK, 1 WARNING, 2 CRITICAL, 3 UNKNOWN.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(
		a.newCheckCmd(),
		a.newIdentityCmd(),
		a.newConfigCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "flocheck %s\n", Version)
			},
		},
	)
	return root
}

// setup loads the config file and builds the logger.
func (a *app) setup() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if a.cfg, err = config.LoadConfig(path); err != nil {
		return err
	}
	a.log = newLogger(a.stderr, a.cfg.LogLevel, a.verbose)
	a.log.WithField("path", path).Debug("Loaded config")
	return nil
}

func newLogger(w io.Writer, level string, verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)
	return logger
}
