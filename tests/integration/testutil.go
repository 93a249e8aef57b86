// Package integration runs the activities binary end to end against an
// in-memory activities API.
package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mesh-intelligence/activities/internal/agent/agenttest"
	"github.com/mesh-intelligence/activities/pkg/types"
)

var (
	// activitiesBin is the path to the built activities binary.
	activitiesBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// cleanEnv returns os.Environ() with all ACTIVITIES_* and XDG_* variables
// removed.
func cleanEnv() []string {
	var env []string
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, "ACTIVITIES_") || strings.HasPrefix(e, "XDG_") {
			continue
		}
		env = append(env, e)
	}
	return env
}

// TestEnv is an isolated config directory plus a fake API.
type TestEnv struct {
	t         *testing.T
	API       *agenttest.API
	APIURL    string
	ConfigDir string
	Env       []string
}

// NewTestEnv starts a fake API seeded with items and writes a config.yaml
// pointing at it.
func NewTestEnv(t *testing.T, items ...types.Activity) *TestEnv {
	t.Helper()
	requireBinary(t)

	api := agenttest.New(items...)
	apiURL := api.Start(t)

	configDir := filepath.Join(t.TempDir(), "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	content := "api_url: " + apiURL + "\nlog_level: error\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return &TestEnv{t: t, API: api, APIURL: apiURL, ConfigDir: configDir}
}

// requireBinary fails the test when TestMain could not build the binary.
func requireBinary(t *testing.T) {
	t.Helper()
	if buildErr != nil {
		t.Fatalf("failed to build activities: %v", buildErr)
	}
	if activitiesBin == "" {
		t.Fatal("activities binary not built (activitiesBin is empty)")
	}
}

// CmdResult holds the result of an activities command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes the binary with --config-dir and args.
func (e *TestEnv) Run(args ...string) CmdResult {
	e.t.Helper()
	return runBinary(e.t, e.Env, append([]string{"--config-dir", e.ConfigDir}, args...)...)
}

// MustRun executes the binary and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	r := e.Run(args...)
	if r.ExitCode != 0 {
		e.t.Fatalf("activities %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, r.ExitCode, r.Stdout, r.Stderr)
	}
	return r
}

// runBinary executes the binary with a clean environment plus env.
func runBinary(t *testing.T, env []string, args ...string) CmdResult {
	t.Helper()
	cmd := exec.Command(activitiesBin, args...)
	cmd.Env = append(cleanEnv(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			t.Fatalf("failed to run activities: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}
