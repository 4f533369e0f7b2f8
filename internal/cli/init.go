package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stopidhan/backend-buzjet-api/internal/paths"
)

func (a *app) newInitCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize buzjet storage",
		Long: "Create the configuration and data directories, then create the catalog schema.\n" +
			"With --seed (or seed_on_init in config.yaml) the demo catalog is loaded.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the demo catalog after creating the schema")
	return cmd
}

func (a *app) runInit(cmd *cobra.Command, seed bool) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fail(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fail(fmt.Errorf("create config directory: %w", err))
	}

	// An explicit --data-dir is remembered for later commands.
	cfg := defaultConfig()
	if a.flags.dataDir != "" {
		abs, err := filepath.Abs(a.flags.dataDir)
		if err != nil {
			return fail(fmt.Errorf("resolve data dir: %w", err))
		}
		cfg.DataDir = abs
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir), cfg); err != nil {
		return fail(fmt.Errorf("write config: %w", err))
	}

	s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if seed || s.cfg.GetBool(cfgKeySeedOnInit) {
		report, err := s.backend.Seed(cmd.Context())
		if err != nil {
			return fail(fmt.Errorf("seed catalog: %w", err))
		}
		if a.flags.jsonMode {
			return a.printJSON(cmd, report)
		}
		printSeedReport(cmd, report)
	}
	if !a.flags.jsonMode {
		fmt.Fprintln(cmd.OutOrStdout(), "buzjet initialized successfully")
	}
	return nil
}
