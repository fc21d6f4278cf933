package main

import (
	"context"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"complaint-triage/internal/bootstrap"
	"complaint-triage/internal/common/config"
	"complaint-triage/internal/common/logger"
)

var rootCmd = &cobra.Command{
	Use:           "complaintctl",
	Short:         "Operate the complaint triage service",
	Long:          "complaintctl classifies complaints offline, inspects model artifacts and exports reviewer corrections for retraining.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: configs/config.yaml with environment overrides)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log at debug level")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(registryCmd)
}

// loadConfig honours --config, falling back to the standard search path.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return config.LoadFromFile(p)
	}
	return config.Load()
}

// newLogger writes to stderr so stdout stays machine readable.
func newLogger(cmd *cobra.Command) logger.Logger {
	level := "warn"
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = "debug"
	}
	return logger.NewWithOptions(logger.Options{Level: level, Format: "console", Output: "stderr"})
}

// connect builds the full dependency graph without touching the schema and
// fails fast when a backend is down.
func connect(cmd *cobra.Command) (*bootstrap.Dependencies, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return bootstrap.NewDependencies(ctx, cfg, newLogger(cmd), nil, bootstrap.Options{
		MaxRetries:     1,
		SkipMigrations: true,
	})
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// outputWriter opens path for writing, or returns stdout for "" and "-".
func outputWriter(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
