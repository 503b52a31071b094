package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seenimoa/ineqstat/internal/allocation"
	"github.com/seenimoa/ineqstat/internal/config"
	"github.com/seenimoa/ineqstat/internal/report"
	"github.com/seenimoa/ineqstat/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func testConfig() *config.Config {
	return &config.Config{
		Report:  config.ReportConfig{Format: "json", Precision: 2, Tolerance: 1e-6},
		API:     config.APIConfig{Host: "127.0.0.1", Port: 0},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func testServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	return NewServer(testConfig(), zap.NewNop(), opts...)
}

func do(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

// decodeData decodes the envelope and unmarshals its data field into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) APIResponse {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	if out != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return APIResponse{Success: raw.Success, Error: raw.Error}
}

func malformedInput() allocation.Input {
	in := report.StudyInput()
	in.WageTargets[models.ClassTop001] = 0.3
	return in
}

// ════════════════════════════════════════════════════════════════════
// Endpoints
// ════════════════════════════════════════════════════════════════════

func TestHealth(t *testing.T) {
	srv := testServer(t, WithVersion("1.2.3"))
	for _, path := range []string{"/health", "/api/v1/health"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, srv, path)
			require.Equal(t, http.StatusOK, rec.Code)

			var data map[string]interface{}
			resp := decodeData(t, rec, &data)
			assert.True(t, resp.Success)
			assert.Equal(t, "ok", data["status"])
			assert.Equal(t, "1.2.3", data["version"])
		})
	}
}

func TestReportJSON(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var rep models.InequalityReport
	resp := decodeData(t, rec, &rep)
	assert.True(t, resp.Success)
	assert.InDelta(t, 0.751330236011111, rep.Gini.Coefficient, 1e-12)
	assert.Len(t, rep.Classes, 6)
	assert.Empty(t, rep.Reference)
}

func TestReportWithReference(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/report?reference=true")
	require.Equal(t, http.StatusOK, rec.Code)

	var rep models.InequalityReport
	decodeData(t, rec, &rep)
	assert.Len(t, rep.Reference, 3)
}

func TestReportBadReferenceParam(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/report?reference=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeData(t, rec, nil)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestReportText(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/report?format=text")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Contains(t, rec.Body.String(), "GINI COEFFICIENT")
	assert.Contains(t, rec.Body.String(), "0.7513")
}

func TestReportStrictRejectsMalformed(t *testing.T) {
	cfg := testConfig()
	cfg.Report.Strict = true
	srv := NewServer(cfg, zap.NewNop(), WithInput(malformedInput))

	rec := do(t, srv, "/api/v1/report")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeData(t, rec, nil)
	assert.Contains(t, resp.Error, "malformed shares")

	rec = do(t, srv, "/api/v1/gini")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestReportIsCached(t *testing.T) {
	cfg := testConfig()
	cfg.API.CacheTTL = time.Minute
	calls := 0
	srv := NewServer(cfg, zap.NewNop(), WithInput(func() allocation.Input {
		calls++
		return report.StudyInput()
	}))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, do(t, srv, "/api/v1/report").Code)
	}
	require.Equal(t, http.StatusOK, do(t, srv, "/api/v1/gini").Code)
	assert.Equal(t, 1, calls, "report and gini share one cached build")

	require.Equal(t, http.StatusOK, do(t, srv, "/api/v1/report?reference=true").Code)
	assert.Equal(t, 2, calls, "reference variant is cached separately")
}

func TestReportNotCachedWhenDisabled(t *testing.T) {
	calls := 0
	srv := testServer(t, WithInput(func() allocation.Input {
		calls++
		return report.StudyInput()
	}))

	do(t, srv, "/api/v1/report")
	do(t, srv, "/api/v1/report")
	assert.Equal(t, 2, calls)
}

func TestAllocation(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/allocation")
	require.Equal(t, http.StatusOK, rec.Code)

	var a models.Allocation
	decodeData(t, rec, &a)
	require.Len(t, a.Classes, 6)
	assert.Equal(t, models.ClassTop001, a.Classes[0].Class)
	assert.InDelta(t, 295285.75, a.Classes[0].Profits, 1e-6)
	assert.True(t, a.Verification.OK())
}

func TestGini(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/gini")
	require.Equal(t, http.StatusOK, rec.Code)

	var g models.GiniResult
	decodeData(t, rec, &g)
	assert.InDelta(t, 0.751330236011111, g.Coefficient, 1e-12)
	assert.Len(t, g.Lorenz, 7)
	assert.False(t, g.Degenerate)
}

func TestValidateClean(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/validate")
	require.Equal(t, http.StatusOK, rec.Code)

	var v ValidateResponse
	decodeData(t, rec, &v)
	assert.True(t, v.Valid)
	assert.Empty(t, v.Violations)
}

func TestValidateMalformed(t *testing.T) {
	cfg := testConfig()
	cfg.Report.Strict = true // validate reports findings regardless of strict mode
	srv := NewServer(cfg, zap.NewNop(), WithInput(malformedInput))

	rec := do(t, srv, "/api/v1/validate")
	require.Equal(t, http.StatusOK, rec.Code)

	var v ValidateResponse
	decodeData(t, rec, &v)
	assert.False(t, v.Valid)
	require.Len(t, v.Violations, 1)
	assert.Equal(t, models.ViolationSumNotOne, v.Violations[0].Kind)
	assert.Equal(t, allocation.VectorWageTargets, v.Violations[0].Vector)
}

func TestReference(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/reference")
	require.Equal(t, http.StatusOK, rec.Code)

	var ref []models.ReferenceClass
	decodeData(t, rec, &ref)
	require.Len(t, ref, 3)
	assert.Equal(t, "Bottom 50% (D1-D5)", ref[2].Label)
}

func TestGetConfig(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/config")
	require.Equal(t, http.StatusOK, rec.Code)

	var c ConfigResponse
	decodeData(t, rec, &c)
	assert.Equal(t, "json", c.Report.Format)
	assert.Equal(t, 2, c.Report.Precision)
	assert.Equal(t, "127.0.0.1", c.API.Host)
}

func TestGetConfigMissing(t *testing.T) {
	srv := NewServer(nil, nil)
	rec := do(t, srv, "/api/v1/config")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNotFound(t *testing.T) {
	rec := do(t, testServer(t), "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/report", nil)
	rec := httptest.NewRecorder()
	testServer(t).Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/report", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	testServer(t).Router().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

// ════════════════════════════════════════════════════════════════════
// Lifecycle
// ════════════════════════════════════════════════════════════════════

func TestListenAndServeShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	srv := testServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
