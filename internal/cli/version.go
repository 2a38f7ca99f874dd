package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/relink/pkg/relink"
)

const modulePath = "github.com/mesh-intelligence/relink"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the relink version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "relink v%s\nmodule: %s\n", relink.Version, modulePath)
			return nil
		},
	}
}
