package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/terraincognita07/kpitracker/internal/api"
	"github.com/terraincognita07/kpitracker/internal/client"
	"github.com/terraincognita07/kpitracker/internal/db"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Advance(delta time.Duration) {
	clock.mu.Lock()
	clock.now = clock.now.Add(delta)
	clock.mu.Unlock()
}

type cliHarness struct {
	clock     *testClock
	server    *httptest.Server
	statePath string
	dir       string
}

func newCLIHarness(t *testing.T, now time.Time) *cliHarness {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	clock := &testClock{now: now}

	database, err := db.OpenSQLite(filepath.Join(dir, "kpi-cli.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	logger, _ := logtest.NewNullLogger()
	handler, err := api.NewHandler(database, api.HandlerConfig{
		Location: time.UTC,
		Now:      clock.Now,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	server := httptest.NewServer(adaptor.FiberApp(api.NewApp(handler, api.AppConfig{})))
	t.Cleanup(server.Close)

	return &cliHarness{
		clock:     clock,
		server:    server,
		statePath: filepath.Join(dir, "state.db"),
		dir:       dir,
	}
}

func (harness *cliHarness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return harness.runAgainst(t, harness.server.URL, harness.server.Client(), args...)
}

func (harness *cliHarness) runAgainst(t *testing.T, apiURL string, httpClient *http.Client, args ...string) (string, error) {
	t.Helper()

	opts := &options{now: harness.clock.Now, httpClient: httpClient}
	root := newRootCommand(opts)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{
		"--config", filepath.Join(harness.dir, "config.toml"),
		"--api-url", apiURL,
		"--state", harness.statePath,
		"--timezone", "UTC",
	}, args...))

	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func (harness *cliHarness) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := harness.run(t, args...)
	if err != nil {
		t.Fatalf("kpitracker %v: %v", args, err)
	}
	return out
}

func (harness *cliHarness) apiClient(t *testing.T) *client.Client {
	t.Helper()
	api, err := client.New(harness.server.URL, harness.server.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return api
}
