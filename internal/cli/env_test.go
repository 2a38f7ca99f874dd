package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleGraph = `nodes:
  - name: Read1
    class: Read
    file: /old/plates/a.exr
  - name: Group1
    class: Group
    nodes:
      - name: Read2
        class: Read
        file: /old/plates/b.exr
      - name: Write1
        class: Write
        file: /renders/out.exr
`

// testEnv provides an isolated environment with its own config directory,
// data directory and graph file.
type testEnv struct {
	t       *testing.T
	TempDir string
	Config  string
	DataDir string
	Graph   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tempDir := t.TempDir()
	env := &testEnv{
		t:       t,
		TempDir: tempDir,
		Config:  filepath.Join(tempDir, "config"),
		DataDir: filepath.Join(tempDir, "data"),
		Graph:   filepath.Join(tempDir, "comp.yaml"),
	}
	if err := os.WriteFile(env.Graph, []byte(sampleGraph), 0o644); err != nil {
		t.Fatalf("failed to write graph: %v", err)
	}
	return env
}

// cmdResult holds the result of one command execution.
type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// run executes the relink command tree in-process with the env's
// directories prepended to args.
func (e *testEnv) run(args ...string) cmdResult {
	e.t.Helper()
	return e.runWithInput("", args...)
}

func (e *testEnv) runWithInput(stdin string, args ...string) cmdResult {
	e.t.Helper()

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...))

	err := root.Execute()
	return cmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(err),
	}
}

// mustRun executes the command and fails the test on a non-zero exit code.
func (e *testEnv) mustRun(args ...string) cmdResult {
	e.t.Helper()
	result := e.run(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("relink %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// readGraph returns the current contents of the graph file.
func (e *testEnv) readGraph() string {
	e.t.Helper()
	data, err := os.ReadFile(e.Graph)
	if err != nil {
		e.t.Fatalf("failed to read graph: %v", err)
	}
	return string(data)
}

// writeMapping writes mapping.yaml into the config directory.
func (e *testEnv) writeMapping(content string) {
	e.t.Helper()
	if err := os.MkdirAll(e.Config, 0o755); err != nil {
		e.t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(e.Config, "mapping.yaml"), []byte(content), 0o644); err != nil {
		e.t.Fatalf("failed to write mapping: %v", err)
	}
}

// parseJSON parses JSON output into the target type.
func parseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}
