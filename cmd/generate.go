package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/auto-test/internal/config"
	"github.com/ziadkadry99/auto-test/internal/generator"
	"github.com/ziadkadry99/auto-test/internal/intervention"
	"github.com/ziadkadry99/auto-test/internal/logger"
	"github.com/ziadkadry99/auto-test/internal/retrieval"
	"github.com/ziadkadry99/auto-test/internal/ticket"
)

var generateCmd = &cobra.Command{
	Use:   "generate <ticket-file>",
	Short: "Generate a Playwright test for a ticket",
	Long: `Reads a ticket from a YAML or JSON file, retrieves matching knowledge,
asks the configured model for a Playwright test and writes it to the output
directory. With --interactive every step can be accepted, re-recorded in the
browser, skipped or debugged before the script is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringP("env", "e", config.EnvQA, "target environment: test, qa, staging, prod or local")
	generateCmd.Flags().StringP("output", "o", "", "output file (default: <output_dir>/<ticket>.spec.ts)")
	generateCmd.Flags().Bool("page-object", false, "ask for the page object pattern")
	generateCmd.Flags().Bool("overwrite", false, "replace an existing output file")
	generateCmd.Flags().Bool("dry-run", false, "print the prompt and a cost estimate without calling the model")
	generateCmd.Flags().BoolP("interactive", "i", false, "review each generated step")
	generateCmd.Flags().String("user", "", "role of the test account to log in with (from fixtures/users.yaml)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	env, _ := cmd.Flags().GetString("env")
	output, _ := cmd.Flags().GetString("output")
	pageObject, _ := cmd.Flags().GetBool("page-object")
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	interactive, _ := cmd.Flags().GetBool("interactive")
	userRole, _ := cmd.Flags().GetString("user")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	ctx := logger.ContextWithLogger(context.Background(), log)

	t, err := ticket.Load(args[0])
	if err != nil {
		return err
	}

	var deps generator.Deps

	if !dryRun {
		if deps.Provider, err = createLLMProviderFromConfig(cfg); err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}
	}

	// Retrieval problems degrade to generating without context.
	if embedder, err := createEmbedderFromConfig(cfg); err != nil {
		log.Warn("Retrieval disabled: no embedder", zap.Error(err))
	} else if deps.Retriever, err = createRetrieverFromConfig(cfg, embedder, log); err != nil {
		log.Warn("Retrieval disabled", zap.Error(err))
	}

	if interactive && !dryRun {
		recorder := &intervention.PlaywrightRecorder{
			Command: cfg.Recorder.Command,
			Args:    cfg.Recorder.Args,
			Timeout: cfg.Recorder.Timeout,
			Stdout:  os.Stdout,
			Stderr:  os.Stderr,
		}
		deps.Workflow = intervention.NewWorkflow(intervention.NewTerminalProvider(), recorder,
			intervention.WithKnowledgeLog(intervention.NewKnowledgeLog(cfg.KnowledgeDir, cfg.Intervention)),
			intervention.WithLogger(log),
			intervention.WithDedupPrefix(cfg.Intervention.DedupPrefix),
		)
	}

	if !dryRun {
		store, closeStore, err := openHistory(cfg)
		if err != nil {
			log.Warn("Generation history disabled", zap.Error(err))
		} else {
			defer closeStore()
			deps.History = store
		}
	}

	session := generator.NewSession(cfg, generator.Request{
		Ticket:      t,
		Environment: env,
		OutputPath:  output,
		PageObject:  pageObject,
		Overwrite:   overwrite,
		DryRun:      dryRun,
		Interactive: interactive,
		UserRole:    userRole,
	}, deps)

	result, err := session.Run(ctx)
	if err != nil {
		return err
	}

	if result.Preview != nil {
		printPreview(result.Preview)
		return nil
	}
	printGenerated(result.Test)
	return nil
}

func printPreview(p *generator.Preview) {
	fmt.Println(p.Prompt)
	fmt.Println()
	fmt.Println("Dry Run")
	fmt.Println("=======")
	fmt.Printf("  Output file:       %s\n", p.FilePath)
	fmt.Printf("  Context items:     %d\n", len(p.Contexts))
	fmt.Printf("  Model:             %s\n", p.Estimate.Model)
	fmt.Printf("  Input tokens:      ~%d\n", p.Estimate.InputTokens)
	fmt.Printf("  Max output tokens: %d\n", p.Estimate.OutputTokens)
	if p.Estimate.KnownPrice {
		fmt.Printf("  Estimated cost:    up to $%.4f\n", p.Estimate.Cost)
	} else {
		fmt.Println("  Estimated cost:    unknown model price")
	}
}

func printGenerated(g *generator.GeneratedTest) {
	fmt.Printf("Wrote %s\n", g.FilePath)
	fmt.Printf("  Test:        %s\n", g.TestName)
	fmt.Printf("  Environment: %s\n", g.Environment)
	fmt.Printf("  Context:     %d item(s)\n", len(g.Contexts))
	fmt.Printf("  Confidence:  %.2f (%s)\n", g.Confidence.Score, g.Level())

	if verbose {
		for _, f := range g.Confidence.Factors {
			fmt.Printf("    %+.2f  %s\n", f.Delta, f.Name)
		}
		fmt.Print(retrieval.Format(g.Contexts))
	}

	if o := g.Intervention; o != nil {
		fmt.Printf("  Steps:       %d reviewed, %d re-recorded, %d skipped\n", len(o.Steps), o.Modified, o.Skipped)
		if o.ManualCaptured {
			fmt.Println("  Manual recording appended")
		}
		for _, p := range o.LogsWritten {
			fmt.Printf("  Knowledge log updated: %s\n", p)
		}
	}
}
