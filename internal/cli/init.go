package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bakery/internal/paths"
	"github.com/mesh-intelligence/bakery/pkg/bakery"
	"github.com/mesh-intelligence/bakery/pkg/types"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize bakery configuration and storage",
		Long:  "Create the configuration directory and config.yaml, then attach the store once to create its schema.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	cfg := defaultConfigFile()
	if a.flags.backend != "" {
		cfg.Backend = a.flags.backend
	}
	if a.flags.dataDir != "" {
		dataDir, err := paths.ResolveDataDir(a.flags.dataDir, "")
		if err != nil {
			return sysError(err)
		}
		cfg.DataDir = dataDir
	}
	configPath := paths.ConfigFile(a.configDir)
	wrote, err := writeConfigIfMissing(configPath, cfg)
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	storeCfg, err := a.storeConfig()
	if err != nil {
		return err
	}
	store, err := bakery.Open(cmd.Context(), storeCfg)
	if err != nil {
		return sysError(fmt.Errorf("initialize storage: %w", err))
	}
	if err := store.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Bakery initialized successfully")
	if wrote {
		fmt.Fprintln(out, "  config: ", configPath, "(created)")
	} else {
		fmt.Fprintln(out, "  config: ", configPath)
	}
	if storeCfg.Backend == types.BackendSQLite {
		fmt.Fprintln(out, "  data:   ", storeCfg.DataDir)
	} else {
		fmt.Fprintln(out, "  backend:", storeCfg.Backend)
	}
	return nil
}
