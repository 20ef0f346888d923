package pedagogue

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/soundprediction/pedagogue"
	"github.com/soundprediction/pedagogue/pkg/config"
)

var generateCmd = &cobra.Command{
	Use:   "generate [request]",
	Short: "Generate a Manim animation specification from a learning request",
	Long: `Generate runs the full pipeline on a free-text learning request:

  pedagogue generate "explain the Fourier transform"

The request is analyzed into a target concept, decomposed into a prerequisite
knowledge tree, enriched with equations and visual designs, and composed into
a single narrative document. Three files are written to the output directory:
the narrative prompt, the knowledge tree as JSON, and the full run result.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	// Output flags
	generateCmd.Flags().String("output-dir", "", "Directory for generated files")

	// Explorer flags
	generateCmd.Flags().Int("max-depth", 0, "Maximum prerequisite tree depth")
	generateCmd.Flags().Int("max-nodes", 0, "Maximum tree node count (0 = unlimited)")
	generateCmd.Flags().Int("concurrency", 0, "Concurrent oracle calls during exploration")
	generateCmd.Flags().Int("wall-clock", 0, "Exploration time budget in seconds (0 = unlimited)")

	// Oracle flags
	generateCmd.Flags().String("oracle-provider", "", "Oracle provider (openai, anthropic, google, openai_compatible)")
	generateCmd.Flags().String("oracle-model", "", "Oracle model")
	generateCmd.Flags().String("oracle-api-key", "", "Oracle API key")
	generateCmd.Flags().String("oracle-base-url", "", "Oracle base URL")

	// Run flags
	generateCmd.Flags().Bool("checkpoint", false, "Enable run checkpointing")
	generateCmd.Flags().String("resume", "", "Resume the run with this ID from its checkpoint")

	// Telemetry flags
	generateCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for telemetry (errors and oracle usage)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrideConfigWithFlags(cmd, cfg)

	logger := buildLogger(cfg)

	client, err := pedagogue.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	request := strings.Join(args, " ")

	opts := pedagogue.GenerateOptions{}
	if runID, _ := cmd.Flags().GetString("resume"); runID != "" {
		opts.RunID = runID
		opts.Resume = true
	}

	result, err := client.GenerateWithOptions(ctx, request, opts)
	if err != nil {
		return err
	}

	files, err := result.Save(cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	logger.Info("result saved",
		"prompt", files.PromptPath,
		"tree", files.TreePath,
		"result", files.ResultPath)

	fmt.Printf("\nKnowledge tree (%d concepts):\n", result.Tree.Count())
	result.Tree.PrintTree(os.Stdout)

	fmt.Printf("\nScenes: %d  Duration: %ds  Diagnostics: %d\n",
		result.Narrative.SceneCount, result.Narrative.TotalDuration, len(result.Diagnostics))
	for _, d := range result.Diagnostics {
		fmt.Printf("  degraded: [%s] %s: %s\n", d.Stage, d.Concept, d.Err)
	}

	return nil
}

// overrideConfigWithFlags applies explicitly set command-line flags on top of
// the loaded configuration.
func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("output-dir") {
		cfg.Output.Dir, _ = cmd.Flags().GetString("output-dir")
	}

	if cmd.Flags().Changed("max-depth") {
		cfg.Explorer.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
	}
	if cmd.Flags().Changed("max-nodes") {
		cfg.Explorer.MaxNodes, _ = cmd.Flags().GetInt("max-nodes")
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Explorer.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}
	if cmd.Flags().Changed("wall-clock") {
		cfg.Explorer.WallClockSeconds, _ = cmd.Flags().GetInt("wall-clock")
	}

	if cfg.Oracle.Models == nil {
		cfg.Oracle.Models = make(map[string]config.OracleModelConfig)
	}
	defaultModel := cfg.Oracle.Models["default"]
	if cmd.Flags().Changed("oracle-provider") {
		defaultModel.Provider, _ = cmd.Flags().GetString("oracle-provider")
	}
	if cmd.Flags().Changed("oracle-model") {
		defaultModel.Model, _ = cmd.Flags().GetString("oracle-model")
	}
	if cmd.Flags().Changed("oracle-api-key") {
		defaultModel.APIKey, _ = cmd.Flags().GetString("oracle-api-key")
	}
	if cmd.Flags().Changed("oracle-base-url") {
		defaultModel.BaseURL, _ = cmd.Flags().GetString("oracle-base-url")
	}
	cfg.Oracle.Models["default"] = defaultModel

	if cmd.Flags().Changed("checkpoint") {
		cfg.Checkpoint.Enabled, _ = cmd.Flags().GetBool("checkpoint")
	}
	if runID, _ := cmd.Flags().GetString("resume"); runID != "" {
		// Resuming implies checkpointing.
		cfg.Checkpoint.Enabled = true
	}

	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}
