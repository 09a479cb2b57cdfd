package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	logtest "github.com/sirupsen/logrus/hooks/test"
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

type testApp struct {
	app     *fiber.App
	handler *Handler
	clock   *testClock
}

func newTestApp(t *testing.T, now string) *testApp {
	t.Helper()
	return newTestAppWithConfig(t, now, HandlerConfig{})
}

func newTestAppWithConfig(t *testing.T, now string, config HandlerConfig) *testApp {
	t.Helper()

	started, err := time.Parse(time.RFC3339, now)
	if err != nil {
		t.Fatalf("parse test time: %v", err)
	}
	clock := &testClock{now: started}

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "kpi-api-test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	logger, _ := logtest.NewNullLogger()
	config.Location = time.UTC
	config.Now = clock.Now
	config.Logger = logger
	handler, err := NewHandler(database, config)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	return &testApp{app: NewApp(handler, AppConfig{}), handler: handler, clock: clock}
}

func (testApp *testApp) do(t *testing.T, method string, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, ok := payload.(string)
		if !ok {
			encoded, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("encode payload: %v", err)
			}
			raw = string(encoded)
		}
		body = bytes.NewBufferString(raw)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := testApp.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func (testApp *testApp) expectJSON(t *testing.T, method string, path string, payload any, expectedStatus int, target any) {
	t.Helper()

	response := testApp.do(t, method, path, payload, nil)
	defer response.Body.Close()

	if response.StatusCode != expectedStatus {
		raw, _ := io.ReadAll(response.Body)
		t.Fatalf("%s %s expected status %d, got %d: %s", method, path, expectedStatus, response.StatusCode, raw)
	}
	if target == nil {
		return
	}
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("%s %s decode body: %v", method, path, err)
	}
}

func (testApp *testApp) expectError(t *testing.T, method string, path string, payload any, expectedStatus int) string {
	t.Helper()

	response := testApp.do(t, method, path, payload, nil)
	defer response.Body.Close()

	if response.StatusCode != expectedStatus {
		t.Fatalf("%s %s expected status %d, got %d", method, path, expectedStatus, response.StatusCode)
	}
	return readAPIError(t, response.Body)
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]string{}
	bytes, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(bytes, &payload); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return payload["error"]
}
