// Package cli implements the relink command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir   string
	dataDir     string
	oldDir      string
	newDir      string
	logLevel    string
	metricsFile string
	jsonMode    bool
}

// actionFlags holds the root command's mutually exclusive action flags.
type actionFlags struct {
	listStates  bool
	saveState   string
	loadState   string
	versionType string
	oldPath     string
	newPath     string
	nodes       []string
}

var (
	flags   rootFlags
	actions actionFlags
)

// NewRootCmd creates the top-level "relink" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}
	actions = actionFlags{}

	root := &cobra.Command{
		Use:   "relink [flags] <graph-file>",
		Short: "Relink file paths in a compositing graph",
		Long: "Relink rewrites the file paths held by Read and Write nodes of a compositing\n" +
			"graph, and saves and restores named snapshots of those paths.",
		Example: "  relink --old-path '^/mnt/old/' --new-path /mnt/new/ comp.yaml\n" +
			"  relink --save-state v1 comp.yaml\n" +
			"  relink --version-type timestamp comp.yaml\n" +
			"  relink --load-state v1 comp.yaml\n" +
			"  relink --list-states",
		Args: cobra.MaximumNArgs(1),
		RunE: runRoot,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "data directory holding relink.db (default: platform data dir)")
	pf.StringVar(&flags.oldDir, "old-dir", "", "old directory for substitution, overrides the mapping file")
	pf.StringVar(&flags.newDir, "new-dir", "", "new directory for substitution, overrides the mapping file")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default from config.yaml)")
	pf.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	pf.BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	f := root.Flags()
	f.BoolVar(&actions.listStates, "list-states", false, "list saved states with dates")
	f.StringVar(&actions.saveState, "save-state", "", "save the current paths under this version")
	f.StringVar(&actions.loadState, "load-state", "", "restore the paths saved under this version")
	f.StringVar(&actions.versionType, "version-type", "", "save with a generated version: timestamp, user_input or auto_increment")
	f.StringVar(&actions.oldPath, "old-path", "", "regular expression selecting the paths to relink")
	f.StringVar(&actions.newPath, "new-path", "", "replacement recorded with the relink")
	f.StringSliceVar(&actions.nodes, "nodes", nil, "node IDs to capture with --save-state (default: all)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newReplaceCmd())
	root.AddCommand(newRestoreCmd())
	root.AddCommand(newRerootCmd())
	root.AddCommand(newNodesCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code. An
// interrupt stops batch operations between reference writes.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	var ee *exitErr
	if !errors.As(err, &ee) || !ee.printed {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

// exitErr carries a process exit code through cobra's RunE.
type exitErr struct {
	code    int
	err     error
	printed bool
}

func (e *exitErr) Error() string { return e.err.Error() }

func (e *exitErr) Unwrap() error { return e.err }

// exitError prints msg to the command's stderr and returns an error that
// makes Execute exit with code.
func exitError(cmd *cobra.Command, code int, msg string) error {
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
	return &exitErr{code: code, err: errors.New(msg), printed: true}
}

// usageError prints msg followed by the usage text and returns a user error.
func usageError(cmd *cobra.Command, msg string) error {
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	return &exitErr{code: exitUserError, err: errors.New(msg), printed: true}
}

// exitCode maps an error returned by the command tree to a process exit code.
// Errors raised by cobra itself (unknown flags, bad arguments) are user
// errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitErr
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
