package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type rerootFlags struct {
	from string
	to   string
}

func newRerootCmd() *cobra.Command {
	var rf rerootFlags
	cmd := &cobra.Command{
		Use:   "reroot <graph-file> [node-id...]",
		Short: "Move node paths from one root directory to another",
		Long: "Replace the --from prefix of the given nodes' paths (default: all nodes)\n" +
			"with --to, keeping the rest of the path. Paths outside --from are unchanged.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReroot(cmd, args, rf)
		},
	}
	cmd.Flags().StringVar(&rf.from, "from", "", "root directory to replace (required)")
	cmd.Flags().StringVar(&rf.to, "to", "", "new root directory (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func runReroot(cmd *cobra.Command, args []string, rf rerootFlags) error {
	s, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}

	ids := args[1:]
	if len(ids) == 0 {
		if ids, err = s.engine.ReferenceIDs(); err != nil {
			return s.closeWith(exitError(cmd, exitUserError, err.Error()))
		}
	}

	n := s.engine.Reroot(ids, rf.from, rf.to)
	if flags.jsonMode {
		return s.closeWith(printJSON(cmd, map[string]any{"rerooted": n}))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rerooted %d of %d references.\n", n, len(ids))
	return s.closeWith(nil)
}
