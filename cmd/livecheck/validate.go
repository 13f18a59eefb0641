package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/livecheck/config"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [names-file]",
		Short: "Validate a config file and names file",
		Long: `Validate the configuration and names file without checking anything.

This command parses the YAML, expands environment variables, validates all
fields, and reads every name. It's useful before a scheduled run.

Exit codes:
  0 - Config and names are valid
  1 - Config or names are invalid (error details printed to stderr)
  2 - Config or names file not found

Example:
  livecheck validate
  livecheck validate -c livecheck.yaml my_list.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}

	cmd.Flags().StringP("config", "c", "", "path to config file")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = loaded
	}
	if len(args) == 1 {
		cfg.NamesFile = args[0]
	}

	names, err := config.ResolveNames(cfg)
	if err != nil {
		return fmt.Errorf("invalid names: %w", err)
	}

	unique := make(map[string]struct{}, len(names))
	for _, n := range names {
		unique[n] = struct{}{}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Names:          %d (%d unique)\n", len(names), len(unique))
	fmt.Fprintf(out, "  Workers:        %d\n", cfg.MaxWorkers)
	fmt.Fprintf(out, "  Requests/sec:   %d\n", cfg.MaxRequestsPerSecond)
	fmt.Fprintf(out, "  Retry limit:    %d\n", cfg.RetryLimit)
	fmt.Fprintf(out, "  Retry interval: %s\n", cfg.RetryInterval.Duration())
	fmt.Fprintf(out, "  Fetcher:        %s\n", cfg.Fetcher)
	fmt.Fprintf(out, "  Base URL:       %s\n", cfg.BaseURL)

	return nil
}
