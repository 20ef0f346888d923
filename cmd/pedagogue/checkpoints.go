package pedagogue

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/pedagogue/pkg/checkpoint"
	"github.com/soundprediction/pedagogue/pkg/config"
)

var checkpointsCmd = &cobra.Command{
	Use:   "checkpoints",
	Short: "Inspect and maintain run checkpoints",
}

var checkpointsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved run checkpoints",
	RunE:  runCheckpointsList,
}

var checkpointsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove checkpoints older than the retention window",
	RunE:  runCheckpointsClean,
}

func init() {
	rootCmd.AddCommand(checkpointsCmd)
	checkpointsCmd.AddCommand(checkpointsListCmd)
	checkpointsCmd.AddCommand(checkpointsCleanCmd)

	checkpointsCleanCmd.Flags().Duration("max-age", 7*24*time.Hour, "Remove checkpoints last updated before this age")
}

func checkpointManager() (*checkpoint.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return checkpoint.NewManager(cfg.Checkpoint.Dir)
}

func runCheckpointsList(cmd *cobra.Command, args []string) error {
	manager, err := checkpointManager()
	if err != nil {
		return err
	}

	checkpoints, err := manager.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(checkpoints) == 0 {
		fmt.Println("No checkpoints found in", manager.GetCheckpointDir())
		return nil
	}

	for _, cp := range checkpoints {
		fmt.Println(cp.Summary())
	}
	return nil
}

func runCheckpointsClean(cmd *cobra.Command, args []string) error {
	manager, err := checkpointManager()
	if err != nil {
		return err
	}

	maxAge, _ := cmd.Flags().GetDuration("max-age")
	removed, err := manager.CleanOld(cmd.Context(), maxAge)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d checkpoint(s) older than %s\n", removed, maxAge)
	return nil
}
