package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/relink/pkg/types"
)

func newReplaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replace <graph-file> [node-id...]",
		Short: "Apply the directory mapping to selected nodes",
		Long: "Rewrite the paths of the given nodes (default: all Read and Write nodes)\n" +
			"using the directory mapping. Nodes whose new parent directory does not\n" +
			"exist are skipped.",
		Args: cobra.MinimumNArgs(1),
		RunE: runReplace,
	}
}

func runReplace(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	return s.closeWith(replaceSelected(s, args[1:]))
}

func replaceSelected(s *session, ids []string) error {
	if len(ids) == 0 {
		all, err := s.engine.ReferenceIDs(types.KindRead, types.KindWrite)
		if err != nil {
			return exitError(s.cmd, exitUserError, err.Error())
		}
		ids = all
	}

	res, err := s.engine.ReplaceSelected(s.cmd.Context(), ids)
	if err != nil {
		return exitError(s.cmd, exitSysError, fmt.Sprintf("replace: %s", err))
	}
	if flags.jsonMode {
		return printJSON(s.cmd, map[string]any{"replaced": res.Replaced, "skipped": res.Skipped})
	}
	fmt.Fprintf(s.cmd.OutOrStdout(), "Replaced %d, skipped %d.\n", len(res.Replaced), len(res.Skipped))
	return nil
}
