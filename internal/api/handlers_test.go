// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pulseboard/internal/config"
	"github.com/tomtom215/pulseboard/internal/dashboard"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/registry"
	"github.com/tomtom215/pulseboard/internal/websocket"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

const testDefinitions = `{
  "kpis": [
    {"id": "n", "name": "Records", "calculation": "count", "trend": "up"},
    {"id": "rev", "name": "Revenue", "calculation": "sum", "field": "revenue", "format": "currency"}
  ],
  "charts": [
    {"id": "by_region", "type": "bar", "x_field": "region", "y_field": "revenue"}
  ],
  "filters": [
    {"id": "region", "name": "Region", "field": "region", "type": "multiselect"},
    {"id": "revenue", "name": "Revenue", "field": "revenue", "type": "numberrange", "options": {"min": 0, "max": 500}}
  ]
}`

const salesPayload = `[
  {"region": "North", "revenue": 100},
  {"region": "South", "revenue": 250},
  {"region": "North", "revenue": 400}
]`

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

type testEnv struct {
	cfg     *config.Config
	svc     *dashboard.Service
	handler *Handler
	router  http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		Data: config.DataConfig{
			MaxRecords:        10,
			SampleRecords:     20,
			SimulationSeed:    42,
			UploadMaxBytes:    1 << 20,
			AllowedExtensions: []string{"json", "csv", "xlsx"},
		},
		WebSocket: config.WebSocketConfig{SendBuffer: 16, CBOREnabled: true},
		Security:  config.SecurityConfig{CORSOrigins: []string{"*"}, RateLimitDisabled: true},
	}
}

func newTestEnv(t *testing.T, cfg *config.Config, hub *websocket.Hub) *testEnv {
	t.Helper()
	reg, err := registry.Load([]byte(testDefinitions))
	if err != nil {
		t.Fatalf("registry.Load() error = %v", err)
	}
	svc := dashboard.New(reg, cfg.Data.MaxRecords)
	h := NewHandler(svc, hub, cfg)
	return &testEnv{cfg: cfg, svc: svc, handler: h, router: NewRouter(h, cfg).Setup()}
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: invalid envelope: %v\n%s", method, target, err, rec.Body.String())
		}
	}
	return rec, env
}

func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	rec, _ := e.do(t, http.MethodPost, "/api/v1/records", strings.NewReader(salesPayload), "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed status = %d: %s", rec.Code, rec.Body.String())
	}
}

type kpiValues map[string]*float64

func dashboardKPIs(t *testing.T, env envelope) kpiValues {
	t.Helper()
	var res struct {
		KPIs []struct {
			ID    string   `json:"id"`
			Value *float64 `json:"value"`
		} `json:"kpis"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	out := make(kpiValues)
	for _, k := range res.KPIs {
		out[k.ID] = k.Value
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	e := newTestEnv(t, testConfig(), nil)

	rec, env := e.do(t, http.MethodGet, "/api/v1/health/live", nil, "")
	if rec.Code != http.StatusOK || !env.Success {
		t.Errorf("live = %d %+v", rec.Code, env)
	}

	rec, env = e.do(t, http.MethodGet, "/api/v1/health/ready", nil, "")
	if rec.Code != http.StatusServiceUnavailable || env.Error == nil || env.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("ready before MarkReady = %d %+v", rec.Code, env.Error)
	}

	e.handler.MarkReady(true)
	rec, env = e.do(t, http.MethodGet, "/api/v1/health/ready", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ready = %d", rec.Code)
	}
	var hs HealthStatus
	_ = json.Unmarshal(env.Data, &hs)
	if hs.Status != "ready" || hs.Capacity != 10 {
		t.Errorf("health = %+v", hs)
	}
}

func TestDashboardWithFilters(t *testing.T) {
	e := newTestEnv(t, testConfig(), nil)
	e.seed(t)

	tests := []struct {
		name    string
		target  string
		wantN   float64
		wantRev float64
	}{
		{name: "unfiltered", target: "/api/v1/dashboard", wantN: 3, wantRev: 750},
		{name: "multiselect", target: "/api/v1/dashboard?filter.region=North", wantN: 2, wantRev: 500},
		{name: "repeated params", target: "/api/v1/dashboard?filter.region=North&filter.region=South", wantN: 3, wantRev: 750},
		{name: "range min", target: "/api/v1/dashboard?filter.revenue.min=200", wantN: 2, wantRev: 650},
		{name: "range and multiselect", target: "/api/v1/dashboard?filter.region=North&filter.revenue.max=150", wantN: 1, wantRev: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := e.do(t, http.MethodGet, tt.target, nil, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			kpis := dashboardKPIs(t, env)
			if kpis["n"] == nil || *kpis["n"] != tt.wantN {
				t.Errorf("n = %v, want %v", kpis["n"], tt.wantN)
			}
			if kpis["rev"] == nil || *kpis["rev"] != tt.wantRev {
				t.Errorf("rev = %v, want %v", kpis["rev"], tt.wantRev)
			}
		})
	}
}

func TestDashboardQueryBody(t *testing.T) {
	e := newTestEnv(t, testConfig(), nil)
	e.seed(t)

	body := `{"filters": {"region": {"values": ["South"]}}}`
	rec, env := e.do(t, http.MethodPost, "/api/v1/dashboard", strings.NewReader(body), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if kpis := dashboardKPIs(t, env); *kpis["rev"] != 250 {
		t.Errorf("rev = %v, want 250", *kpis["rev"])
	}

	rec, env = e.do(t, http.MethodPost, "/api/v1/dashboard", strings.NewReader(`{"filters":`), "application/json")
	if rec.Code != http.StatusBadRequest || env.Error.Code != ErrCodeBadRequest {
		t.Errorf("malformed body = %d %+v", rec.Code, env.Error)
	}
}

func TestSingleDefinitions(t *testing.T) {
	e := newTestEnv(t, testConfig(), nil)
	e.seed(t)

	rec, env := e.do(t, http.MethodGet, "/api/v1/kpis/rev", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("kpi status = %d", rec.Code)
	}
	var kpi KPIResponse
	if err := json.Unmarshal(env.Data, &kpi); err != nil {
		t.Fatalf("decode kpi: %v", err)
	}
	if kpi.Formatted != "$750.00" || kpi.ID != "rev" {
		t.Errorf("kpi = %+v", kpi)
	}

	rec, env = e.do(t, http.MethodGet, "/api/v1/charts/by_region?filter.region=North", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("chart status = %d", rec.Code)
	}
	var chart struct {
		Categories []struct {
			Value float64 `json:"value"`
		} `json:"categories"`
	}
	_ = json.Unmarshal(env.Data, &chart)
	if len(chart.Categories) != 1 || chart.Categories[0].Value != 500 {
		t.Errorf("chart categories = %+v", chart.Categories)
	}

	for _, target := range []string{"/api/v1/kpis/missing", "/api/v1/charts/missing"} {
		rec, env = e.do(t, http.MethodGet, target, nil, "")
		if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != ErrCodeNotFound {
			t.Errorf("%s = %d %+v", target, rec.Code, env.Error)
			continue
		}
		if env.Error.RequestID == "" || env.Error.RequestID != rec.Header().Get("X-Request-ID") {
			t.Errorf("%s: error request_id %q, header %q", target, env.Error.RequestID, rec.Header().Get("X-Request-ID"))
		}
	}
}

func TestRecordsEndpoints(t *testing.T) {
	e := newTestEnv(t, testConfig(), nil)

	var batch []string
	for i := 0; i < 12; i++ {
		batch = append(batch, `{"i": `+string(rune('0'+i%10))+`}`)
	}
	rec, env := e.do(t, http.MethodPost, "/api/v1/records", strings.NewReader("["+strings.Join(batch, ",")+"]"), "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("append status = %d: %s", rec.Code, rec.Body.String())
	}
	var wr WriteResult
	_ = json.Unmarshal(env.Data, &wr)
	if wr.Added != 12 || wr.Evicted != 2 || wr.TotalRecords != 10 {
		t.Errorf("write result = %+v", wr)
	}

	rec, env = e.do(t, http.MethodGet, "/api/v1/records?limit=5", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("records status = %d", rec.Code)
	}
	p := env.Meta.Pagination
	if p == nil || p.Count != 5 || p.Total != 10 || !p.HasMore {
		t.Errorf("pagination = %+v", p)
	}

	_, env = e.do(t, http.MethodGet, "/api/v1/records?limit=500", nil, "")
	if env.Meta.Pagination.Limit != 10 {
		t.Errorf("limit not clamped to capacity: %+v", env.Meta.Pagination)
	}

	rec, env = e.do(t, http.MethodGet, "/api/v1/records?limit=0", nil, "")
	if rec.Code != http.StatusBadRequest || env.Error.Code != ErrCodeValidationFailed {
		t.Errorf("limit=0 = %d %+v", rec.Code, env.Error)
	}
	rec, _ = e.do(t, http.MethodGet, "/api/v1/records?limit=ten", nil, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit=ten = %d", rec.Code)
	}

	rec, env = e.do(t, http.MethodGet, "/api/v1/records/summary", nil, "")
	if rec.Code != http.StatusOK || !bytes.Contains(env.Data, []byte(`"total_records":10`)) {
		t.Errorf("summary = %d %s", rec.Code, env.Data)
	}

	rec, env = e.do(t, http.MethodDelete, "/api/v1/records", nil, "")
	_ = json.Unmarshal(env.Data, &wr)
	if rec.Code != http.StatusOK || wr.TotalRecords != 0 || wr.Operation != dashboard.OpClear {
		t.Errorf("clear = %d %+v", rec.Code, wr)
	}
}

func TestAppendRecordsRejectsBadPayloads(t *testing.T) {
	cfg := testConfig()
	cfg.Data.UploadMaxBytes = 64
	e := newTestEnv(t, cfg, nil)

	tests := []struct {
		name string
		body string
		code int
		want string
	}{
		{name: "not json", body: "{oops", code: http.StatusBadRequest, want: ErrCodeBadRequest},
		{name: "scalar", body: "42", code: http.StatusBadRequest, want: ErrCodeBadRequest},
		{name: "empty array", body: "[]", code: http.StatusBadRequest, want: ErrCodeBadRequest},
		{name: "empty body", body: "", code: http.StatusBadRequest, want: ErrCodeBadRequest},
		{name: "too large", body: `[{"v": "` + strings.Repeat("x", 100) + `"}]`, code: http.StatusRequestEntityTooLarge, want: ErrCodePayloadTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := e.do(t, http.MethodPost, "/api/v1/records", strings.NewReader(tt.body), "application/json")
			if rec.Code != tt.code || env.Error == nil || env.Error.Code != tt.want {
				t.Errorf("got %d %+v, want %d %s", rec.Code, env.Error, tt.code, tt.want)
			}
		})
	}
	if e.svc.Stats().Size != 0 {
		t.Errorf("rejected payloads changed the store: %+v", e.svc.Stats())
	}
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = io.WriteString(fw, content)
	} else {
		_ = mw.WriteField("note", "no file")
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUpload(t *testing.T) {
	e := newTestEnv(t, testConfig(), nil)
	e.seed(t)

	body, ct := multipartBody(t, "file", "sales.csv", "Region,Revenue\nEast,10\nWest,20\n")
	rec, env := e.do(t, http.MethodPost, "/api/v1/upload", body, ct)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body.String())
	}
	var res UploadResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if res.Filename != "sales.csv" || res.TotalRecords != 2 || res.Operation != dashboard.OpReplace {
		t.Errorf("upload result = %+v", res)
	}
	if res.Report.Format != "csv" || res.Report.Records != 2 {
		t.Errorf("report = %+v", res.Report)
	}

	_, env = e.do(t, http.MethodGet, "/api/v1/dashboard", nil, "")
	if kpis := dashboardKPIs(t, env); *kpis["rev"] != 30 {
		t.Errorf("rev after upload = %v, want 30", *kpis["rev"])
	}
}

func TestUploadKeepsColumnOrder(t *testing.T) {
	e := newTestEnv(t, testConfig(), nil)

	body, ct := multipartBody(t, "file", "zones.csv", "Zone,Amount\nA,1\nB,2\n")
	if rec, _ := e.do(t, http.MethodPost, "/api/v1/upload", body, ct); rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body.String())
	}

	_, env := e.do(t, http.MethodGet, "/api/v1/records?limit=1", nil, "")
	raw := string(env.Data)
	zone, amount, id := strings.Index(raw, `"zone"`), strings.Index(raw, `"amount"`), strings.Index(raw, `"_record_id"`)
	if zone < 0 || !(zone < amount && amount < id) {
		t.Errorf("record fields not in header order: %s", raw)
	}
}

func TestUploadRejects(t *testing.T) {
	cfg := testConfig()
	cfg.Data.AllowedExtensions = []string{"csv"}
	e := newTestEnv(t, cfg, nil)

	tests := []struct {
		name     string
		field    string
		filename string
		want     string
	}{
		{name: "missing file", want: ErrCodeBadRequest},
		{name: "disallowed extension", field: "file", filename: "data.json", want: ErrCodeUnsupportedFormat},
		{name: "unknown extension", field: "file", filename: "data.txt", want: ErrCodeUnsupportedFormat},
		{name: "header only csv", field: "file", filename: "data.csv", want: ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.field, tt.filename, "a,b\n")
			rec, env := e.do(t, http.MethodPost, "/api/v1/upload", body, ct)
			if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != tt.want {
				t.Errorf("got %d %+v, want 400 %s", rec.Code, env.Error, tt.want)
			}
		})
	}
}

func TestSample(t *testing.T) {
	e := newTestEnv(t, testConfig(), nil)

	rec, env := e.do(t, http.MethodPost, "/api/v1/sample?records=5", nil, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("sample status = %d: %s", rec.Code, rec.Body.String())
	}
	var wr WriteResult
	_ = json.Unmarshal(env.Data, &wr)
	if wr.TotalRecords != 5 || wr.Source != dashboard.SourceSample {
		t.Errorf("sample result = %+v", wr)
	}

	// Default size is 20, capped by the 10-record window.
	_, env = e.do(t, http.MethodPost, "/api/v1/sample", nil, "")
	_ = json.Unmarshal(env.Data, &wr)
	if wr.TotalRecords != 10 {
		t.Errorf("default sample total = %d, want 10", wr.TotalRecords)
	}

	for _, target := range []string{"/api/v1/sample?records=0", "/api/v1/sample?records=999999", "/api/v1/sample?seed=-1", "/api/v1/sample?records=x"} {
		rec, _ = e.do(t, http.MethodPost, target, nil, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", target, rec.Code)
		}
	}
}

func TestConfigEndpoint(t *testing.T) {
	e := newTestEnv(t, testConfig(), nil)

	rec, env := e.do(t, http.MethodGet, "/api/v1/config", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cfg ConfigResponse
	if err := json.Unmarshal(env.Data, &cfg); err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if len(cfg.KPIs) != 2 || len(cfg.Charts) != 1 || len(cfg.Filters) != 2 {
		t.Errorf("document counts = %d/%d/%d", len(cfg.KPIs), len(cfg.Charts), len(cfg.Filters))
	}
	if cfg.WebSocket.Path != "/api/v1/ws" || cfg.WebSocket.Subprotocols[0] != websocket.CBORSubprotocol {
		t.Errorf("websocket info = %+v", cfg.WebSocket)
	}
	if cfg.Data.MaxRecords != 10 {
		t.Errorf("max_records = %d", cfg.Data.MaxRecords)
	}
	if cfg.KPIs[0].Display["trend"] != "up" {
		t.Errorf("display keys lost: %s", env.Data)
	}
	if strings.Contains(string(env.Data), `"format":"number"`) {
		t.Errorf("config document gained a default format: %s", env.Data)
	}
}

func TestStatsEndpoint(t *testing.T) {
	e := newTestEnv(t, testConfig(), nil)
	e.seed(t)
	e.do(t, http.MethodGet, "/api/v1/dashboard", nil, "")

	_, env := e.do(t, http.MethodGet, "/api/v1/stats", nil, "")
	var stats StatsResponse
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Store.Size != 3 {
		t.Errorf("store size = %d", stats.Store.Size)
	}
	found := false
	for _, ep := range stats.Endpoints {
		if ep.Endpoint == "GET /api/v1/dashboard" {
			found = true
		}
	}
	if !found {
		t.Errorf("endpoint stats missing dashboard: %+v", stats.Endpoints)
	}
}
