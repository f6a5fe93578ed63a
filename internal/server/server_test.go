package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numplan/numplan/internal/config"
	"github.com/numplan/numplan/metadata"
	"github.com/numplan/numplan/metadata/plans"
	"github.com/numplan/numplan/phonenumber"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := phonenumber.New(metadata.NewCachedRepository(plans.Source()))
	return New(cfg, logger, engine)
}

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestRegionsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/regions", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	regions, ok := body["regions"].([]any)
	require.True(t, ok)
	assert.Equal(t, float64(len(regions)), body["count"])
	assert.Contains(t, regions, "US")
	assert.Contains(t, regions, "NZ")
}

func TestParseEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := postJSON(t, s, "/api/parse", map[string]any{"number": "+64 3 331 6005"})
	require.Equal(t, http.StatusOK, rec.Code)

	number := decodeBody(t, rec)["number"].(map[string]any)
	assert.Equal(t, float64(64), number["country_code"])
	assert.Equal(t, float64(33316005), number["national_number"])
	assert.Equal(t, "+6433316005", number["e164"])
	assert.Equal(t, "+64 3-331 6005", number["international"])
	assert.Equal(t, "03-331 6005", number["national"])
	assert.Equal(t, "NZ", number["region"])
	assert.Equal(t, "FIXED_LINE", number["type"])
	assert.Equal(t, true, number["valid"])
	assert.Equal(t, true, number["possible"])
}

func TestParseEndpointDefaultRegion(t *testing.T) {
	s := newTestServer(t, nil)

	// No region in the request; the configured default (US) applies.
	rec := postJSON(t, s, "/api/parse", map[string]any{"number": "650 253 0000"})
	require.Equal(t, http.StatusOK, rec.Code)

	number := decodeBody(t, rec)["number"].(map[string]any)
	assert.Equal(t, float64(1), number["country_code"])
	assert.Equal(t, float64(6502530000), number["national_number"])

	// A lower-case region is accepted.
	rec = postJSON(t, s, "/api/parse", map[string]any{"number": "03 331 6005", "region": "nz"})
	require.Equal(t, http.StatusOK, rec.Code)
	number = decodeBody(t, rec)["number"].(map[string]any)
	assert.Equal(t, float64(64), number["country_code"])
}

func TestParseEndpointKeepRawInput(t *testing.T) {
	s := newTestServer(t, nil)

	rec := postJSON(t, s, "/api/parse", map[string]any{
		"number":         "+64 3 331 6005",
		"keep_raw_input": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "+64 3 331 6005", body["raw_input"])
	assert.Equal(t, "FROM_NUMBER_WITH_PLUS_SIGN", body["country_code_source"])
}

func TestParseEndpointErrors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := postJSON(t, s, "/api/parse", map[string]any{"number": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	tests := []struct {
		name   string
		number string
		code   string
	}{
		{"invalid country code", "+01 2345", "INVALID_COUNTRY_CODE"},
		{"too short after idd", "011", "TOO_SHORT_AFTER_IDD"},
		{"too short nsn", "+643", "TOO_SHORT_NSN"},
		{"too long", "+64" + strings.Repeat("3", 18), "TOO_LONG"},
		{"not a number", "This is not a phone number", "NOT_A_NUMBER"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, s, "/api/parse", map[string]any{"number": tc.number})
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			body := decodeBody(t, rec)
			assert.Equal(t, float64(http.StatusUnprocessableEntity), body["code"])
			field := body["data"].(map[string]any)["number"].(map[string]any)
			assert.Equal(t, tc.code, field["code"])
		})
	}
}

func TestParseEndpointRejectsBadRequests(t *testing.T) {
	s := newTestServer(t, nil)

	// Wrong content type never reaches the handler.
	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader("number=650"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	// Malformed JSON body.
	req = httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := postJSON(t, s, "/api/validate", map[string]any{"number": "+64 3 331 6005"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["valid"])
	assert.Equal(t, true, body["possible"])
	assert.Equal(t, "IS_POSSIBLE", body["possibility"])
	assert.Equal(t, "FIXED_LINE", body["type"])
	assert.Equal(t, "NZ", body["region"])

	// Possible but not valid.
	rec = postJSON(t, s, "/api/validate", map[string]any{"number": "253 0000", "region": "US"})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, "IS_POSSIBLE_LOCAL_ONLY", body["possibility"])
}

func TestFormatEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		format    string
		formatted string
	}{
		{"", "+16502530000"},
		{"E164", "+16502530000"},
		{"international", "+1 650 253 0000"},
		{"NATIONAL", "650 253 0000"},
		{"RFC3966", "tel:+1-650-253-0000"},
	}
	for _, tc := range tests {
		rec := postJSON(t, s, "/api/format", map[string]any{
			"number": "650 253 0000",
			"format": tc.format,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tc.formatted, decodeBody(t, rec)["formatted"])
	}

	rec := postJSON(t, s, "/api/format", map[string]any{
		"number": "650 253 0000",
		"format": "BANANA",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	field := decodeBody(t, rec)["data"].(map[string]any)["format"].(map[string]any)
	assert.Equal(t, "UNKNOWN_FORMAT", field["code"])
}

func TestFormatEndpointWithCarrierCode(t *testing.T) {
	s := newTestServer(t, nil)

	rec := postJSON(t, s, "/api/format", map[string]any{
		"number":       "+55 12 3456 7890",
		"carrier_code": "12",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0 12 (12) 3456-7890", decodeBody(t, rec)["formatted"])
}

func TestFindEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	text := "Call me at 650-253-0000 or 415-555-0198 soon."
	rec := postJSON(t, s, "/api/find", map[string]any{"text": text})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])
	matches := body["matches"].([]any)
	require.Len(t, matches, 2)

	first := matches[0].(map[string]any)
	assert.Equal(t, "650-253-0000", first["raw"])
	assert.Equal(t, float64(11), first["start"])
	assert.Equal(t, float64(23), first["end"])
	number := first["number"].(map[string]any)
	assert.Equal(t, "+16502530000", number["e164"])
}

func TestFindEndpointLeniency(t *testing.T) {
	s := newTestServer(t, nil)

	// A seven-digit local number only surfaces under the possible leniency.
	rec := postJSON(t, s, "/api/find", map[string]any{"text": "Call 253-0000 now"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["count"])

	rec = postJSON(t, s, "/api/find", map[string]any{
		"text":     "Call 253-0000 now",
		"leniency": "possible",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])

	rec = postJSON(t, s, "/api/find", map[string]any{
		"text":     "Call 253-0000 now",
		"leniency": "pedantic",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	field := decodeBody(t, rec)["data"].(map[string]any)["leniency"].(map[string]any)
	assert.Equal(t, "UNKNOWN_LENIENCY", field["code"])

	rec = postJSON(t, s, "/api/find", map[string]any{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := postJSON(t, s, "/api/match", map[string]any{
		"first":  "+64 3 331 6005",
		"second": "03 331 6005",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EXACT_MATCH", decodeBody(t, rec)["match"])

	rec = postJSON(t, s, "/api/match", map[string]any{
		"first":  "+64 3 331 6005",
		"second": "+1 650 253 0000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "NO_MATCH", decodeBody(t, rec)["match"])

	rec = postJSON(t, s, "/api/match", map[string]any{"first": "+64 3 331 6005"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSWildcard(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// Preflight short-circuits before the handler.
	req = httptest.NewRequest(http.MethodOptions, "/api/parse", nil)
	req.Header.Set("Origin", "https://example.com")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSAllowList(t *testing.T) {
	cfg := config.Default()
	cfg.Server.CORSAllowedOrigins = []string{"https://app.example.com"}
	s := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
