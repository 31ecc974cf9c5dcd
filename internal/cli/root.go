// Package cli implements the mproc command line interface.
package cli

import (
	"log/slog"
	"os"

	"github.com/scailfin/benchmark-multiproc-backend/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking MPROC_SERVER first.
func defaultServer() string {
	if s := os.Getenv("MPROC_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the mproc CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mproc",
		Short: "mproc is a multiprocess workflow template engine",
		Long:  "mproc validates, runs, and manages parameterized workflow templates.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.New(flagLogLevel, flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "Server URL (or MPROC_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newValidateCmd(),
		newParamsCmd(),
		newTemplatesCmd(),
		newRunsCmd(),
	)

	return root
}
