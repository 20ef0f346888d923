package main

import (
	"log/slog"

	"github.com/soundprediction/pedagogue/pkg/logger"
)

func main() {
	// Create a colored logger
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("============================================")
	log.Info("    Pedagogue Colored Logger Demo")
	log.Info("============================================")
	log.Info("")

	log.Debug("Debug message - standard color")
	log.Info("Info message - standard color")
	log.Info("Exploration complete - green!")
	log.Info("Narrative composed successfully - also green!")
	log.Warn("Warning message - yellow!")
	log.Error("Error message - red!")

	log.Info("")
	log.Info("Pipeline milestones are highlighted in green:")
	log.Info("Enrichment complete", "nodes", 42, "failed", 0)
	log.Info("Visual design complete", "palette_colors", 12)
	log.Info("Result saved", "path", "./animations/fourier_transform_prompt.txt")

	log.Info("")
	log.Warn("Warnings appear in yellow for attention")
	log.Error("Errors appear in red for immediate visibility")

	log.Info("")
	log.Info("Demo complete!")
}
