package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seqops/stagehand/config"
)

var validateConfigPath string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a plan file without executing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewLoader(validateConfigPath).Load()
		if err != nil {
			return err
		}
		ordered := config.OrderedSteps(cfg)
		fmt.Printf("plan '%s' is valid: %d steps\n", cfg.Metadata.Name, len(ordered))
		for i, s := range ordered {
			fmt.Printf("  %d. %s\n", i+1, s.ID)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateConfigPath, "config", "c", "", "path to the plan file (required)")
	_ = validateCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(validateCmd)
}
