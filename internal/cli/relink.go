package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/relink/pkg/types"
)

// rootAction is the single action selected by the root command's flags.
type rootAction int

const (
	actionNone rootAction = iota
	actionList
	actionSave
	actionLoad
	actionRelink
)

var versionKinds = []string{types.VersionTimestamp, types.VersionUserInput, types.VersionAutoIncrement}

// selectAction validates the action flags. Exactly one action must be
// given; --old-path and --new-path go together; --save-state and
// --version-type are alternatives for the same action.
func selectAction(cmd *cobra.Command) (rootAction, error) {
	f := cmd.Flags()
	var selected []rootAction
	if actions.listStates {
		selected = append(selected, actionList)
	}
	if f.Changed("save-state") && f.Changed("version-type") {
		return actionNone, errors.New("--save-state and --version-type cannot be used together")
	}
	if f.Changed("save-state") || f.Changed("version-type") {
		selected = append(selected, actionSave)
	}
	if f.Changed("load-state") {
		selected = append(selected, actionLoad)
	}
	if f.Changed("old-path") || f.Changed("new-path") {
		if !f.Changed("old-path") || !f.Changed("new-path") {
			return actionNone, errors.New("--old-path and --new-path must be given together")
		}
		selected = append(selected, actionRelink)
	}
	if f.Changed("nodes") && (len(selected) != 1 || selected[0] != actionSave) {
		return actionNone, errors.New("--nodes only applies to --save-state")
	}

	switch len(selected) {
	case 0:
		return actionNone, errors.New("no action given")
	case 1:
		return selected[0], nil
	default:
		return actionNone, errors.New("only one of --list-states, --save-state, --load-state or --old-path may be given")
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	action, err := selectAction(cmd)
	if err != nil {
		return usageError(cmd, "Invalid or insufficient arguments: "+err.Error())
	}

	var graphPath string
	if len(args) == 1 {
		graphPath = args[0]
	}
	if graphPath == "" && action != actionList {
		return usageError(cmd, "Invalid or insufficient arguments: a graph file is required")
	}
	if actions.versionType != "" && !validVersionKind(actions.versionType) {
		return usageError(cmd, fmt.Sprintf("Invalid --version-type %q: must be one of %s",
			actions.versionType, strings.Join(versionKinds, ", ")))
	}

	s, err := openSession(cmd, graphPath)
	if err != nil {
		return err
	}

	switch action {
	case actionList:
		err = listStates(s)
	case actionSave:
		err = saveState(s)
	case actionLoad:
		err = loadState(s)
	case actionRelink:
		err = performRelink(s)
	}
	return s.closeWith(err)
}

func validVersionKind(kind string) bool {
	for _, k := range versionKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func listStates(s *session) error {
	states, err := s.engine.SavedStates(s.cmd.Context())
	if err != nil {
		return exitError(s.cmd, exitSysError, fmt.Sprintf("list states: %s", err))
	}
	if flags.jsonMode {
		if states == nil {
			states = []types.SavedState{}
		}
		return printJSON(s.cmd, states)
	}

	out := s.cmd.OutOrStdout()
	fmt.Fprintln(out, "Saved states with dates:")
	for _, st := range states {
		fmt.Fprintf(out, "Version: %s, Date: %s\n", st.Version, st.CapturedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func saveState(s *session) error {
	ctx := s.cmd.Context()
	version := actions.saveState
	if actions.versionType != "" {
		v, err := s.engine.GenerateVersion(ctx, actions.versionType)
		if err != nil {
			return exitError(s.cmd, exitUserError, fmt.Sprintf("generate version: %s", err))
		}
		version = v
	}

	ids := actions.nodes
	if len(ids) == 0 {
		all, err := s.engine.ReferenceIDs()
		if err != nil {
			return exitError(s.cmd, exitUserError, err.Error())
		}
		ids = all
	}

	if !s.engine.SaveState(ctx, version, ids) {
		return exitError(s.cmd, exitUserError, fmt.Sprintf("could not save state %q (version exists or storage failed)", version))
	}

	if flags.jsonMode {
		return printJSON(s.cmd, map[string]any{"version": version, "references": len(ids)})
	}
	fmt.Fprintf(s.cmd.OutOrStdout(), "Saved state %s\n", version)
	return nil
}

func loadState(s *session) error {
	entries, ok := s.engine.LoadState(s.cmd.Context(), actions.loadState)
	if !ok {
		return exitError(s.cmd, exitUserError, fmt.Sprintf("No state found for version %s", actions.loadState))
	}

	if flags.jsonMode {
		return printJSON(s.cmd, map[string]any{"version": actions.loadState, "entries": entries})
	}
	fmt.Fprintf(s.cmd.OutOrStdout(), "Loaded state %s (%d references)\n", actions.loadState, len(entries))
	return nil
}

func performRelink(s *session) error {
	res, err := s.engine.PerformRelink(s.cmd.Context(), actions.oldPath, actions.newPath)
	if errors.Is(err, types.ErrInvalidPattern) {
		return exitError(s.cmd, exitUserError, err.Error())
	}
	if err != nil {
		return exitError(s.cmd, exitSysError, fmt.Sprintf("relink: %s", err))
	}

	if flags.jsonMode {
		out := map[string]any{
			"matched":  res.Matched,
			"affected": res.Affected,
			"skipped":  res.Skipped,
		}
		if res.Record != nil {
			out["operation_id"] = res.Record.OperationID
		}
		if err := printJSON(s.cmd, out); err != nil {
			return err
		}
	} else if res.Matched == 0 {
		fmt.Fprintln(s.cmd.OutOrStdout(), "No references with matching paths found.")
	} else {
		fmt.Fprintf(s.cmd.OutOrStdout(), "Relinked %d of %d matching references.\n", res.Affected, res.Matched)
	}

	if res.LogErr != nil {
		return exitError(s.cmd, exitSysError, fmt.Sprintf("relink applied but not logged: %s", res.LogErr))
	}
	return nil
}
