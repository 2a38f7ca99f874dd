package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/relink/internal/config"
	"github.com/mesh-intelligence/relink/internal/paths"
	"github.com/mesh-intelligence/relink/internal/sqlite"
	"github.com/mesh-intelligence/relink/pkg/types"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize relink configuration and storage",
		Long: "Create the configuration and data directories, write a default config.yaml,\n" +
			"write mapping.yaml from --old-dir and --new-dir when it does not exist, and\n" +
			"create the snapshot database.",
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return exitError(cmd, exitSysError, fmt.Sprintf("resolve config dir: %s", err))
	}

	// Creates configDir and config.yaml when missing.
	settings, err := config.LoadSettings(configDir)
	if err != nil {
		return exitError(cmd, exitSysError, fmt.Sprintf("write config: %s", err))
	}

	mappingPath := config.MappingPath(configDir)
	if _, err := os.Stat(mappingPath); errors.Is(err, os.ErrNotExist) {
		m := types.DirectoryMapping{}.WithDirectories(flags.oldDir, flags.newDir)
		if err := config.SaveMapping(mappingPath, m); err != nil {
			return exitError(cmd, exitSysError, fmt.Sprintf("write mapping: %s", err))
		}
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, settings.GetString(config.KeyDataDir))
	if err != nil {
		return exitError(cmd, exitSysError, fmt.Sprintf("resolve data dir: %s", err))
	}

	// Initialize the data directory via Attach then Detach.
	store := sqlite.NewStore()
	if err := store.Attach(types.StoreConfig{
		Backend: settings.GetString(config.KeyBackend),
		DataDir: dataDir,
	}); err != nil {
		return exitError(cmd, exitSysError, fmt.Sprintf("initialize storage: %s", err))
	}
	if err := store.Detach(); err != nil {
		return exitError(cmd, exitSysError, fmt.Sprintf("finalize storage: %s", err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "relink initialized successfully")
	fmt.Fprintf(out, "config: %s\ndata:   %s\n", configDir, store.Path())
	return nil
}
