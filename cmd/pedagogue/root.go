package pedagogue

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soundprediction/pedagogue/pkg/config"
	pedagogueLogger "github.com/soundprediction/pedagogue/pkg/logger"
	"github.com/soundprediction/pedagogue/pkg/telemetry"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "pedagogue",
		Short: "Pedagogue: Manim animation specification generator",
		Long: `Pedagogue turns a free-text learning request into a complete Manim
animation specification. It decomposes the target concept into a prerequisite
knowledge tree, enriches every concept with mathematical content and a visual
design, and composes a foundation-first narrative document ready for an
animation code generator.

Complete documentation is available at https://github.com/soundprediction/pedagogue`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize configuration
			initConfig()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pedagogue.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pedagogue" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pedagogue")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// buildLogger creates the process logger: colored console output, with error
// records mirrored to parquet and, when a DSN is configured, a SQL sink.
func buildLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler = pedagogueLogger.NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level: pedagogueLogger.ParseLevel(cfg.Log.Level),
	})

	if cfg.Telemetry.ParquetPath != "" {
		parquetHandler, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to initialize error tracking: %v\n", err)
		} else {
			handler = parquetHandler
		}
	}

	if cfg.Telemetry.SQLDSN != "" {
		db, err := sql.Open("mysql", cfg.Telemetry.SQLDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to open telemetry database: %v\n", err)
		} else if sqlHandler, err := telemetry.NewSQLHandler(handler, db); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to initialize SQL telemetry: %v\n", err)
		} else {
			handler = sqlHandler
		}
	}

	return slog.New(handler)
}
