package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <graph-file> <version>...",
		Short: "Restore several saved states in order",
		Long:  "Load each version in turn. Versions that no longer exist are skipped.",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runRestore,
	}
}

func runRestore(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}

	restored := s.engine.RestoreStates(cmd.Context(), args[1:])
	if flags.jsonMode {
		if restored == nil {
			restored = []string{}
		}
		return s.closeWith(printJSON(cmd, map[string]any{"restored": restored}))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %d of %d states.\n", len(restored), len(args)-1)
	if len(restored) == 0 {
		return s.closeWith(exitError(cmd, exitUserError, "no state restored"))
	}
	return s.closeWith(nil)
}
