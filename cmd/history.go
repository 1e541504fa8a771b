package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/auto-test/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously generated tests",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().String("ticket", "", "only show generations for this ticket key")
	historyCmd.Flags().Int("limit", 20, "maximum number of records")
	historyCmd.Flags().Bool("json", false, "output records as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ticketKey, _ := cmd.Flags().GetString("ticket")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, closeStore, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	records, err := store.List(context.Background(), history.Filter{TicketKey: ticketKey, Limit: limit})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No tests generated yet.")
		return nil
	}
	for _, r := range records {
		mode := "auto"
		if r.Interactive {
			mode = fmt.Sprintf("interactive, %d re-recorded, %d skipped", r.StepsModified, r.StepsSkipped)
		}
		fmt.Printf("%s  %-12s  %.2f  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.TicketKey, r.Confidence, r.FilePath)
		fmt.Printf("    %s | %s/%s | %s | %d context item(s) | %s\n", r.Environment, r.Provider, r.Model, r.Strategy, r.ContextCount, mode)
	}
	return nil
}
