package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/seqops/stagehand/common"
	"github.com/seqops/stagehand/logger"
)

var (
	logLevel string
	logFile  string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   common.AppName,
	Short: "Run ordered deployment steps from a plan file",
	Long: `stagehand executes the steps of a deployment plan strictly in order,
stopping at the first failure unless a step is marked best-effort, and
produces a structured report of every step's outcome.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose && logLevel == "info" {
			logLevel = "debug"
		}
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logger.Log.Warnf("invalid log level '%s', defaulting to 'info'", logLevel)
			level = logrus.InfoLevel
		}
		return logger.InitGlobalLogger(logFile, verbose, level)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file in addition to the console")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command and returns its error, leaving exit
// code handling to the caller.
func Execute() error {
	return rootCmd.Execute()
}
