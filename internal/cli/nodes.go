package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/relink/pkg/types"
)

func newNodesCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "nodes <graph-file>",
		Short: "List the nodes of a graph that carry a file path",
		Long:  "List Read and Write nodes with their paths. With --all, list every node with a path.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			return s.closeWith(listNodes(s, all))
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include nodes other than Read and Write")
	return cmd
}

func listNodes(s *session, all bool) error {
	var (
		refs []types.Reference
		err  error
	)
	if all {
		refs, err = s.engine.References()
	} else {
		refs, err = s.engine.ReadWriteReferences()
	}
	if err != nil {
		return exitError(s.cmd, exitUserError, err.Error())
	}
	if flags.jsonMode {
		if refs == nil {
			refs = []types.Reference{}
		}
		return printJSON(s.cmd, refs)
	}
	out := s.cmd.OutOrStdout()
	for _, r := range refs {
		fmt.Fprintf(out, "%-24s %-6s %s\n", r.ID, r.Kind, r.Path)
	}
	return nil
}
