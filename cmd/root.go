package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "autotest",
	Short: "Generate Playwright tests from tickets using your team's test knowledge",
	Long: `Auto Test indexes a knowledge base of selectors, workflows and code
patterns, retrieves what is relevant to a ticket and asks a language model
to write a Playwright test for it. In interactive mode each generated step
can be accepted, re-recorded in the browser or skipped before the script
is written.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".autotest.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
