package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/relink/pkg/types"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recorded relink operations",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, "")
	if err != nil {
		return err
	}
	return s.closeWith(printHistory(s))
}

func printHistory(s *session) error {
	records, err := s.store.RelinkHistory(s.cmd.Context())
	if err != nil {
		return exitError(s.cmd, exitSysError, fmt.Sprintf("read history: %s", err))
	}
	if flags.jsonMode {
		if records == nil {
			records = []types.RelinkOperationRecord{}
		}
		return printJSON(s.cmd, records)
	}

	out := s.cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No relink operations recorded.")
		return nil
	}
	for _, r := range records {
		affected := "-"
		if r.AffectedCount != nil {
			affected = strconv.Itoa(*r.AffectedCount)
		}
		fmt.Fprintf(out, "%s  %s  %q -> %q  affected=%s\n",
			r.Timestamp.Format("2006-01-02 15:04:05"), r.OperationID, r.Pattern, r.Replacement, affected)
	}
	return nil
}
