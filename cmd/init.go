package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/auto-test/internal/config"
	"github.com/ziadkadry99/auto-test/internal/knowledge"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize autotest configuration with an interactive wizard",
	Long: `Runs an interactive wizard to configure autotest for your project, writes a
.autotest.yml file and seeds the knowledge base with starter documents
when it is empty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		res, err := knowledge.NewLoader(cfg.KnowledgeDir, cfg.Extensions, nil).Load()
		if err != nil {
			return fmt.Errorf("preparing knowledge base: %w", err)
		}
		if res.Seeded {
			fmt.Printf("Wrote %d starter documents to %s.\n", knowledge.SeedCount, cfg.KnowledgeDir)
		}
		fmt.Println("Run `autotest ingest` to index the knowledge base.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
