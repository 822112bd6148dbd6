package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seqops/stagehand/config"
	"github.com/seqops/stagehand/file"
	"github.com/seqops/stagehand/logger"
	"github.com/seqops/stagehand/runtime"
	"github.com/seqops/stagehand/sequencer"
)

var (
	runConfigPath string
	runReportPath string
	runWorkDir    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the steps of a plan in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewLoader(runConfigPath).Load()
		if err != nil {
			return err
		}

		rt, err := runtime.NewRuntime(runtime.Config{
			PlanName:   cfg.Metadata.Name,
			WorkDir:    runWorkDir,
			Verbose:    verbose,
			Parameters: cfg.Spec.Parameters,
			Hosts:      config.Hosts(cfg),
		})
		if err != nil {
			return err
		}
		defer rt.Close()

		seq, err := sequencer.FromPlan(cfg, rt)
		if err != nil {
			return err
		}

		rep := seq.Run(cmd.Context(), logger.Log.ForPlan(cfg.Metadata.Name))
		fmt.Println(rep.Summary())

		if runReportPath != "" {
			data, err := yaml.Marshal(rep)
			if err != nil {
				return errors.Wrap(err, "failed to marshal run report")
			}
			if err := file.WriteFile(runReportPath, data); err != nil {
				return err
			}
			logger.Log.Infof("run report written to %s", runReportPath)
		}

		if rep.Failed() {
			return fmt.Errorf("run of plan '%s' failed", cfg.Metadata.Name)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to the plan file (required)")
	runCmd.Flags().StringVarP(&runReportPath, "report", "r", "", "write the run report to this file as YAML")
	runCmd.Flags().StringVar(&runWorkDir, "work-dir", ".", "default working directory for steps")
	_ = runCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(runCmd)
}
