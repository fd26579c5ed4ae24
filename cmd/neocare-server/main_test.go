package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neocare/neocare/internal/config"
	"github.com/neocare/neocare/internal/platform/auth"
	"github.com/neocare/neocare/internal/platform/cache"
	"github.com/neocare/neocare/internal/platform/exposition"
	"github.com/neocare/neocare/internal/rules"
	"github.com/neocare/neocare/internal/store/memory"
)

const (
	sampleDataset = "../../internal/store/memory/testdata/sample.json"
	kenyatta      = "aaaaaaaa-0000-4000-8000-000000000001"
	signingKey    = "0123456789abcdef0123456789abcdef"
)

func testConfig(mode string) *config.Config {
	return &config.Config{
		Port:           "0",
		Env:            "test",
		StoreDriver:    config.DriverMemory,
		StoreURL:       sampleDataset,
		CacheTTL:       15 * time.Second,
		AuthMode:       mode,
		AuthSigningKey: signingKey,
		CORSOrigins:    []string{"http://localhost:3000"},
		RateLimitRPS:   100,
		RateLimitBurst: 200,
		RequestTimeout: 5 * time.Second,
	}
}

func testServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	d, err := memory.LoadFile(sampleDataset)
	require.NoError(t, err)

	st := memory.New(d)
	holder := rules.NewHolder(rules.Default())
	logger := zerolog.Nop()

	return newServer(cfg, deps{
		store:     st,
		cache:     cache.NewMemory(),
		rules:     holder,
		collector: exposition.NewCollector(st, holder, logger),
	}, logger)
}

func do(h http.Handler, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	h := testServer(t, testConfig(config.AuthDevelopment))

	rec := do(h, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(h, "/health/db", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"driver":"memory"`)
}

func TestServer_BedsCachedOnSecondRead(t *testing.T) {
	h := testServer(t, testConfig(config.AuthDevelopment))

	first := do(h, "/api/resources/beds", "")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.NotEmpty(t, first.Header().Get("ETag"))
	assert.NotEmpty(t, first.Header().Get("X-Request-ID"))

	var body struct {
		TotalBeds          int `json:"totalBeds"`
		OccupiedBeds       int `json:"occupiedBeds"`
		OverallUtilization int `json:"overallUtilization"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &body))
	assert.Equal(t, 6, body.TotalBeds)
	assert.Equal(t, 3, body.OccupiedBeds)
	assert.Equal(t, 50, body.OverallUtilization)

	second := do(h, "/api/resources/beds", "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestServer_InvalidHospitalID(t *testing.T) {
	h := testServer(t, testConfig(config.AuthDevelopment))

	rec := do(h, "/api/resources/beds?hospital_id=not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_IndexAndOpenAPI(t *testing.T) {
	h := testServer(t, testConfig(config.AuthHMAC))

	// Both are public even with auth enabled.
	assert.Equal(t, http.StatusOK, do(h, "/api", "").Code)

	rec := do(h, "/api/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/resources/beds")
}

func TestServer_MetricsExposition(t *testing.T) {
	h := testServer(t, testConfig(config.AuthDevelopment))

	require.Equal(t, http.StatusOK, do(h, "/api/resources/beds", "").Code)

	rec := do(h, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Contains(t, out, "neocare_beds_total")
	assert.Contains(t, out, "neocare_http_requests_total")
	assert.Contains(t, out, "neocare_kpi")
}

func signToken(t *testing.T, roles ...string) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: roles,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	require.NoError(t, err)
	return token
}

func TestServer_HMACAuth(t *testing.T) {
	h := testServer(t, testConfig(config.AuthHMAC))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "not.a.jwt", http.StatusUnauthorized},
		{"role without dashboard access", signToken(t, "billing"), http.StatusForbidden},
		{"analyst", signToken(t, "analyst"), http.StatusOK},
		{"admin", signToken(t, "admin"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, "/api/alerts/critical?hospital_id="+kenyatta, tt.token)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	// Health stays public.
	assert.Equal(t, http.StatusOK, do(h, "/health", "").Code)
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn")
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")

	assert.Equal(t, zerolog.InfoLevel, newLogger(&buf, "production", "nonsense").GetLevel())
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestReport_Occupancy(t *testing.T) {
	out, err := runRoot(t, "report", "occupancy", "--input", sampleDataset, "--at", "2024-05-01T08:00:00Z")
	require.NoError(t, err)

	var body struct {
		TotalBeds          int       `json:"totalBeds"`
		OverallUtilization int       `json:"overallUtilization"`
		Timestamp          time.Time `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, 6, body.TotalBeds)
	assert.Equal(t, 50, body.OverallUtilization)
	assert.True(t, body.Timestamp.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))
}

func TestReport_OccupancySingleHospital(t *testing.T) {
	out, err := runRoot(t, "report", "occupancy", "--input", sampleDataset, "--hospital-id", kenyatta)
	require.NoError(t, err)

	var body struct {
		TotalBeds int `json:"totalBeds"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, 4, body.TotalBeds)
}

func TestReport_Alerts(t *testing.T) {
	out, err := runRoot(t, "report", "alerts", "--input", sampleDataset, "--at", "2024-05-01T08:00:00Z")
	require.NoError(t, err)

	var body struct {
		Critical struct {
			CriticalAlerts []json.RawMessage `json:"criticalAlerts"`
		} `json:"critical"`
		Clinical struct {
			TotalAlerts int `json:"totalAlerts"`
		} `json:"clinical"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.NotNil(t, body.Critical.CriticalAlerts)
	assert.Positive(t, body.Clinical.TotalAlerts)
}

func TestReport_DepartmentsWritesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "departments.xlsx")
	out, err := runRoot(t, "report", "departments", "--input", sampleDataset,
		"--at", "2024-05-01T08:00:00Z", "--days", "7", "--xlsx", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"days": 7`)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// XLSX is a zip archive.
	assert.True(t, strings.HasPrefix(string(data), "PK"))
}

func TestReport_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"report", "occupancy"}},
		{"unreadable input", []string{"report", "occupancy", "--input", "does-not-exist.json"}},
		{"bad hospital id", []string{"report", "occupancy", "--input", sampleDataset, "--hospital-id", "x"}},
		{"bad time", []string{"report", "alerts", "--input", sampleDataset, "--at", "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRoot(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
