package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/activities/internal/agent/agenttest"
	"github.com/mesh-intelligence/activities/internal/config"
	"github.com/mesh-intelligence/activities/pkg/types"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// testEnv runs commands in-process against a fake API with an isolated
// config directory.
type testEnv struct {
	t         *testing.T
	api       *agenttest.API
	apiURL    string
	configDir string
}

func newTestEnv(t *testing.T, items ...types.Activity) *testEnv {
	t.Helper()
	for _, k := range []string{"ACTIVITIES_API_URL", "ACTIVITIES_LOG_LEVEL", "ACTIVITIES_LOG_FORMAT", "ACTIVITIES_TIMEOUT", "ACTIVITIES_TOAST_TTL"} {
		t.Setenv(k, "")
	}
	api := agenttest.New(items...)
	return &testEnv{t: t, api: api, apiURL: api.Start(t), configDir: t.TempDir()}
}

func (e *testEnv) run(args ...string) result {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	all := append([]string{"--config-dir", e.configDir, "--api-url", e.apiURL, "--log-level", "error"}, args...)
	code := Run(context.Background(), all, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func (e *testEnv) mustRun(args ...string) result {
	e.t.Helper()
	r := e.run(args...)
	require.Equal(e.t, exitSuccess, r.code, "activities %v\nstdout: %s\nstderr: %s", args, r.stdout, r.stderr)
	return r
}

func concert() types.Activity {
	return types.Activity{
		ID: "c1", Title: "Concert", Description: "Live jazz", Category: types.CategoryMusic,
		Date: "2026-09-01T20:00:00", City: "London", Venue: "Ronnie Scott's",
	}
}

func museum() types.Activity {
	return types.Activity{
		ID: "m1", Title: "Museum", Category: types.CategoryCulture,
		Date: "2026-03-01T10:00:00.250", City: "Paris", Venue: "Louvre",
	}
}

func TestVersion(t *testing.T) {
	r := newTestEnv(t).mustRun("version")
	assert.Contains(t, r.stdout, "activities v"+Version)
	assert.Contains(t, r.stdout, modulePath)
}

func TestInit_WritesConfigOnce(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun("init")
	assert.Contains(t, r.stdout, "Wrote")
	data, err := os.ReadFile(filepath.Join(env.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "api_url: "+env.apiURL)

	r = env.mustRun("init")
	assert.Contains(t, r.stdout, "already exists")
}

func TestConfig_JSON(t *testing.T) {
	env := newTestEnv(t)
	r := env.mustRun("--json", "config")

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	assert.Equal(t, env.apiURL, got["api_url"])
	assert.Equal(t, "error", got["log_level"])
	assert.Equal(t, "10s", got["timeout"])
}

func TestConfig_InvalidLogLevel(t *testing.T) {
	env := newTestEnv(t)
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"--config-dir", env.configDir, "--log-level", "loud", "config"}, &stdout, &stderr)
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr.String(), types.ErrLogLevelUnknown.Error())
}

func TestList(t *testing.T) {
	env := newTestEnv(t, concert(), museum())

	r := env.mustRun("list")
	assert.Contains(t, r.stdout, "Concert")
	assert.Contains(t, r.stdout, "Museum")
	assert.Contains(t, r.stdout, "Reactivities")
	assert.Equal(t, []string{"GET /api/activities"}, env.api.Calls())
}

func TestList_JSONSortedAndNormalized(t *testing.T) {
	env := newTestEnv(t, concert(), museum())

	r := env.mustRun("--json", "list")
	var got []types.Activity
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "2026-03-01T10:00:00", got[0].Date)
	assert.Equal(t, "c1", got[1].ID)
}

func TestShow(t *testing.T) {
	env := newTestEnv(t, concert())

	r := env.mustRun("--json", "show", "c1")
	var got types.Activity
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	assert.Equal(t, concert(), got)

	r = env.mustRun("show", "c1")
	assert.Contains(t, r.stdout, "Ronnie Scott's")
}

func TestShow_MissingIsSystemError(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("show", "missing")
	assert.Equal(t, exitSysError, r.code)
	assert.Contains(t, r.stderr, "load activity missing failed")
}

func TestOpen_UnknownLocation(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("open", "/nowhere")
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, "Oops")
	assert.Empty(t, env.api.Calls())
}

func TestOpen_StateJSON(t *testing.T) {
	env := newTestEnv(t, concert())

	r := env.mustRun("--json", "open", "/activities/c1")
	var got struct {
		Activities []types.Activity `json:"activities"`
		Selected   *types.Activity  `json:"selected"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	require.NotNil(t, got.Selected)
	assert.Equal(t, "c1", got.Selected.ID)
	assert.Len(t, got.Activities, 1)
}

func TestCreate(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun("--json", "create", "--id", "new1",
		"--title", "Food market", "--category", "food", "--date", "2026-05-05T11:00:00",
		"--city", "Lisbon", "--venue", "Time Out Market")

	var got types.Activity
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	assert.Equal(t, "new1", got.ID)

	stored, ok := env.api.Item("new1")
	require.True(t, ok)
	assert.Equal(t, "Food market", stored.Title)
	assert.Equal(t, "Lisbon", stored.City)
}

func TestCreate_GeneratesID(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun("--json", "create",
		"--title", "Walk", "--category", "travel", "--date", "2026-05-05T11:00:00",
		"--city", "Rome", "--venue", "Appian Way")

	var got types.Activity
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	assert.Len(t, got.ID, 36)
	_, ok := env.api.Item(got.ID)
	assert.True(t, ok)
}

func TestCreate_ValidationIsUserError(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("create", "--title", "Incomplete")
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, types.ErrInvalidData.Error())
	assert.Empty(t, env.api.Calls())
}

func TestEdit(t *testing.T) {
	env := newTestEnv(t, concert())

	env.mustRun("edit", "c1", "--title", "Late concert", "--venue", "Barbican")

	stored, _ := env.api.Item("c1")
	assert.Equal(t, "Late concert", stored.Title)
	assert.Equal(t, "Barbican", stored.Venue)
	assert.Equal(t, concert().City, stored.City)
	assert.Equal(t, []string{"GET /api/activities/c1", "PUT /api/activities/c1"}, env.api.Calls())
}

func TestEdit_NothingToChange(t *testing.T) {
	env := newTestEnv(t, concert())

	r := env.run("edit", "c1")
	assert.Equal(t, exitUserError, r.code)
	assert.Contains(t, r.stderr, "nothing to change")
}

func TestEdit_MissingActivity(t *testing.T) {
	env := newTestEnv(t)

	r := env.run("edit", "ghost", "--title", "x")
	assert.Equal(t, exitSysError, r.code)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t, concert(), museum())

	r := env.mustRun("--json", "delete", "c1")
	assert.JSONEq(t, `{"deleted":"c1"}`, r.stdout)

	_, ok := env.api.Item("c1")
	assert.False(t, ok)
	_, ok = env.api.Item("m1")
	assert.True(t, ok)
}

func TestDelete_RefusedIsSystemError(t *testing.T) {
	locked := concert()
	locked.ID = agenttest.LockedID
	env := newTestEnv(t, locked)

	r := env.run("delete", agenttest.LockedID)
	assert.Equal(t, exitSysError, r.code)
	assert.Contains(t, r.stderr, "activity is locked")
}

func TestServerFailureIsSystemError(t *testing.T) {
	env := newTestEnv(t, concert())
	env.api.FailWith(http.StatusServiceUnavailable)

	r := env.run("list")
	assert.Equal(t, exitSysError, r.code)
	assert.Contains(t, r.stderr, "load activities failed")
}

func TestArgumentErrors(t *testing.T) {
	env := newTestEnv(t)

	for _, args := range [][]string{
		{"show"},
		{"open", "/a", "/b"},
		{"list", "extra"},
		{"create", "--no-such-flag"},
	} {
		r := env.run(args...)
		assert.Equal(t, exitUserError, r.code, "args %v", args)
	}
}

func TestDotIDsAreUserErrors(t *testing.T) {
	env := newTestEnv(t, concert())

	for _, args := range [][]string{
		{"show", ".."},
		{"show", "."},
		{"edit", "..", "--title", "x"},
		{"delete", ".."},
		{"create", "--id", "..", "--title", "x"},
	} {
		r := env.run(args...)
		assert.Equal(t, exitUserError, r.code, "args %v", args)
		assert.Contains(t, r.stderr, types.ErrInvalidID.Error(), "args %v", args)
	}
	assert.Empty(t, env.api.Calls())
}

func TestRootFlagsCoverBoundConfigKeys(t *testing.T) {
	root := NewRootCmd()
	names := config.BoundFlags()
	assert.Equal(t, []string{"api-url", "log-level"}, names)
	for _, name := range names {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "--%s is registered", name)
	}
}
