package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cinelist/internal/config"
	"cinelist/internal/logging"
	"cinelist/internal/omdb"
	"cinelist/internal/recommend"
	"cinelist/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set omdb.api_key and llm.api_key (or export OMDB_API_KEY and OPENROUTER_API_KEY) before searching or generating suggestions.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var checkServices bool

	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Data directory: %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "OMDb API key: %s\n", setOrMissing(cfg.OMDb.APIKey != ""))
			fmt.Fprintf(out, "LLM API key: %s\n", setOrMissing(cfg.LLM.APIKey != ""))
			fmt.Fprintln(out, "Configuration valid")
			if !checkServices {
				return nil
			}
			return checkExternalServices(cmd.Context(), out, cfg)
		},
	}

	cmd.Flags().BoolVar(&checkServices, "check-services", false, "Contact OMDb and the LLM endpoint to confirm the keys work")
	return cmd
}

// checkExternalServices pings both providers and reports each outcome. It
// fails when either one is unreachable.
func checkExternalServices(ctx context.Context, out io.Writer, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.NewNop()
	failed := 0

	report := func(name string, err error) {
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s: unreachable (%v)\n", name, err)
			return
		}
		fmt.Fprintf(out, "%s: ok\n", name)
	}

	metadata, err := omdb.NewFromConfig(cfg, logger)
	if err == nil {
		err = metadata.Ping(ctx)
	}
	report("OMDb", err)

	source, err := recommend.NewFromConfig(cfg, logger)
	if err == nil {
		err = source.HealthCheck(ctx)
	}
	report("LLM", err)

	if failed > 0 {
		return services.Wrap(services.ErrUnavailable, "config", "check_services", fmt.Sprintf("%d service check(s) failed", failed), nil)
	}
	return nil
}

func setOrMissing(value bool) string {
	if value {
		return "set"
	}
	return "missing"
}
