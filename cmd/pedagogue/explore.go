package pedagogue

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/pedagogue/pkg/config"
	"github.com/soundprediction/pedagogue/pkg/explorer"
	"github.com/soundprediction/pedagogue/pkg/nlp"
)

var exploreCmd = &cobra.Command{
	Use:   "explore [concept]",
	Short: "Build and print a prerequisite knowledge tree without enrichment",
	Long: `Explore decomposes a concept into its prerequisite tree and prints it,
skipping the enrichment and composition stages. Useful for previewing the
shape and cost of a full generation run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplore,
}

func init() {
	rootCmd.AddCommand(exploreCmd)

	exploreCmd.Flags().Int("max-depth", 0, "Maximum prerequisite tree depth")
	exploreCmd.Flags().Int("max-nodes", 0, "Maximum tree node count (0 = unlimited)")
	exploreCmd.Flags().Int("concurrency", 0, "Concurrent oracle calls during exploration")
	exploreCmd.Flags().Int("wall-clock", 0, "Exploration time budget in seconds (0 = unlimited)")
	exploreCmd.Flags().String("oracle-provider", "", "Oracle provider")
	exploreCmd.Flags().String("oracle-model", "", "Oracle model")
	exploreCmd.Flags().String("oracle-api-key", "", "Oracle API key")
	exploreCmd.Flags().String("oracle-base-url", "", "Oracle base URL")
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrideConfigWithFlags(cmd, cfg)

	logger := buildLogger(cfg)

	mc := cfg.ModelFor("default")
	oracle, err := nlp.NewClient(nlp.Config{
		Provider:    nlp.ProviderID(mc.Provider),
		Model:       mc.Model,
		APIKey:      mc.APIKey,
		BaseURL:     mc.BaseURL,
		Temperature: &mc.Temperature,
		MaxTokens:   &mc.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to create oracle client: %w", err)
	}
	retryCfg := nlp.DefaultRetryConfig()
	if cfg.Oracle.MaxRetries > 0 {
		retryCfg.MaxRetries = cfg.Oracle.MaxRetries
	}
	client := nlp.NewRetryClient(oracle, retryCfg)
	defer client.Close()

	exp := explorer.New(
		explorer.NewClassifier(client, logger),
		explorer.NewMemoResolver(explorer.NewResolver(client, logger)),
		logger,
		explorer.Options{
			MaxDepth:    cfg.Explorer.MaxDepth,
			MaxNodes:    cfg.Explorer.MaxNodes,
			Concurrency: cfg.Explorer.Concurrency,
			WallClock:   time.Duration(cfg.Explorer.WallClockSeconds) * time.Second,
		},
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	concept := strings.Join(args, " ")
	tree, diags, err := exp.Explore(ctx, concept)
	if err != nil {
		return err
	}

	tree.PrintTree(os.Stdout)
	fmt.Printf("\nConcepts: %d  Max depth: %d  Leaves: %d\n",
		tree.Count(), tree.MaxDepth(), len(tree.Leaves()))
	if summary := diags.Summary(); summary != "" {
		fmt.Println(summary)
	}

	return nil
}
