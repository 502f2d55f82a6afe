package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"infinite-experiment/skyboard/internal/config"
	"infinite-experiment/skyboard/internal/logging"
)

type rootOptions struct {
	apiURL string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "skyboard",
		Short:         "Flight dashboard presentation service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Flights API base URL (overrides API_BASE_URL)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newSnapshotCmd(opts))
	cmd.AddCommand(newFlightsCmd(opts))
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Error("Command failed", "error", err)
		_ = logging.Close()
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies flag overrides
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.apiURL != "" {
		cfg.APIBaseURL = o.apiURL
	}
	return cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
