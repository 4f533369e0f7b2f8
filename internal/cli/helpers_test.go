package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv is an isolated config and data directory pair.
type testEnv struct {
	t       *testing.T
	Config  string
	DataDir string
}

// newTestEnv writes a config.yaml pointing at a fresh data directory.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		t:       t,
		Config:  filepath.Join(dir, "config"),
		DataDir: filepath.Join(dir, "data"),
	}
	require.NoError(t, os.MkdirAll(env.Config, 0o755))
	content := "backend: sqlite\nlog_mode: production\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.Config, "config.yaml"), []byte(content), 0o644))
	return env
}

// newSeededEnv is a testEnv whose catalog holds the demo data. Ids follow
// seed order: users admin=1 customer=2, destinations Kuta=1 Uluwatu=2
// Monas=3, hotels Grand Bali=1 Bali Beach=2 Jakarta City=3.
func newSeededEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	env.mustRun("init", "--seed")
	return env
}

type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// run executes the CLI in-process against the environment's directories.
func (e *testEnv) run(args ...string) cmdResult {
	e.t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...))

	err := root.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(&stderr, "Error:", err)
	}
	return cmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode(err)}
}

func (e *testEnv) mustRun(args ...string) cmdResult {
	e.t.Helper()
	res := e.run(args...)
	require.Equal(e.t, exitSuccess, res.ExitCode, "buzjet %v\nstdout: %s\nstderr: %s", args, res.Stdout, res.Stderr)
	return res
}

// envelope mirrors the JSON shape of types.Result.
type envelope[T any] struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Data    T                   `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal([]byte(s), &out), "output: %s", s)
	return out
}

type packageJSON struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	OwnerID      int64     `json:"owner_id"`
	Destinations []idJSON  `json:"destinations"`
	Hotels       []idJSON  `json:"hotels"`
	Owner        *userJSON `json:"user"`
}

type idJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type userJSON struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
}

func ids(items []idJSON) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

const baliExplorerJSON = `{
  "name": "Bali Explorer",
  "description": "Five days across the island.",
  "price": 1500000,
  "duration_days": 5,
  "nights": 4,
  "capacity": 20,
  "owner_id": 1,
  "destination_ids": [1, 2],
  "hotel_ids": [1]
}`
