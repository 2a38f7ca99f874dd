package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/relink/internal/config"
	"github.com/mesh-intelligence/relink/internal/engine"
	"github.com/mesh-intelligence/relink/internal/logging"
	"github.com/mesh-intelligence/relink/internal/metrics"
	"github.com/mesh-intelligence/relink/internal/paths"
	"github.com/mesh-intelligence/relink/internal/scene"
	"github.com/mesh-intelligence/relink/internal/sqlite"
	"github.com/mesh-intelligence/relink/pkg/types"
)

// session is everything one command invocation works with: resolved
// directories, logger, attached store, loaded graph and the engine over them.
// The caller must defer close.
type session struct {
	cmd       *cobra.Command
	configDir string
	dataDir   string
	logger    *zap.Logger
	prom      *metrics.PrometheusCollector
	store     *sqlite.Store
	graph     *scene.Graph
	graphPath string
	engine    *engine.Engine
}

// openSession resolves directories and settings, attaches the store and
// loads graphPath. An empty graphPath gives an empty graph.
func openSession(cmd *cobra.Command, graphPath string) (*session, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, exitError(cmd, exitSysError, fmt.Sprintf("resolve config dir: %s", err))
	}
	settings, err := config.LoadSettings(configDir)
	if err != nil {
		return nil, exitError(cmd, exitSysError, fmt.Sprintf("load config: %s", err))
	}

	level := flags.logLevel
	if level == "" {
		level = settings.GetString(config.KeyLogLevel)
	}
	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: settings.GetString(config.KeyLogFormat),
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, exitError(cmd, exitUserError, fmt.Sprintf("configure logging: %s", err))
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, settings.GetString(config.KeyDataDir))
	if err != nil {
		return nil, exitError(cmd, exitSysError, fmt.Sprintf("resolve data dir: %s", err))
	}

	s := &session{
		cmd:       cmd,
		configDir: configDir,
		dataDir:   dataDir,
		logger:    logger,
		graphPath: graphPath,
	}

	s.store = sqlite.NewStore(sqlite.WithLogger(logger))
	if err := s.store.Attach(types.StoreConfig{
		Backend: settings.GetString(config.KeyBackend),
		DataDir: dataDir,
	}); err != nil {
		return nil, exitError(cmd, exitSysError, fmt.Sprintf("attach store: %s", err))
	}

	if graphPath != "" {
		s.graph, err = scene.Load(graphPath)
		if err != nil {
			s.store.Detach()
			return nil, exitError(cmd, exitUserError, fmt.Sprintf("load graph: %s", err))
		}
	} else {
		s.graph, _ = scene.New()
	}

	var collector metrics.Collector = metrics.NewNoopCollector()
	if flags.metricsFile != "" {
		s.prom = metrics.NewPrometheusCollector()
		collector = s.prom
	}

	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMetrics(collector),
		engine.WithMappingSaver(s.mappingSaver()),
	}
	if in := cmd.InOrStdin(); in != os.Stdin {
		opts = append(opts, engine.WithPrompt(in, cmd.ErrOrStderr()))
	}
	s.engine = engine.New(s.graph, s.store, s.mapping(), opts...)
	return s, nil
}

// mapping returns the mapping file contents with --old-dir and --new-dir
// applied on top.
func (s *session) mapping() types.DirectoryMapping {
	m := config.LoadMapping(config.MappingPath(s.configDir), s.logger)
	return m.WithDirectories(flags.oldDir, flags.newDir)
}

// mappingSaver persists only the last relink pair, so directory overrides
// given on the command line are not written back to the mapping file.
func (s *session) mappingSaver() engine.MappingSaver {
	path := config.MappingPath(s.configDir)
	return func(m types.DirectoryMapping) error {
		onDisk := config.LoadMapping(path, zap.NewNop())
		onDisk.LastPattern = m.LastPattern
		onDisk.LastReplacement = m.LastReplacement
		return config.SaveMapping(path, onDisk)
	}
}

// close saves the graph when it changed, detaches the store and writes the
// metrics file.
func (s *session) close() error {
	defer s.logger.Sync() //nolint:errcheck

	var failed error
	if s.graphPath != "" && s.graph.Dirty() {
		if err := s.graph.Save(s.graphPath); err != nil {
			failed = exitError(s.cmd, exitSysError, fmt.Sprintf("save graph: %s", err))
		}
	}
	if err := s.store.Detach(); err != nil && failed == nil {
		failed = exitError(s.cmd, exitSysError, fmt.Sprintf("detach store: %s", err))
	}
	if s.prom != nil {
		if err := s.prom.WriteTextfile(flags.metricsFile); err != nil && failed == nil {
			failed = exitError(s.cmd, exitSysError, fmt.Sprintf("write metrics: %s", err))
		}
	}
	return failed
}

// closeWith closes s and returns err, or the close error when err is nil.
func (s *session) closeWith(err error) error {
	if cerr := s.close(); err == nil {
		return cerr
	}
	return err
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return exitError(cmd, exitSysError, fmt.Sprintf("marshal output: %s", err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
