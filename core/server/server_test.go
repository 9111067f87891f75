package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/R0SEWT/smartParkSystem/internal/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

type fakeRawStore struct {
	appended  []domain.RawEvent
	appendErr error
	recentErr error
	pingErr   error
}

func (f *fakeRawStore) Append(ctx context.Context, ev domain.RawEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, ev)
	return nil
}

func (f *fakeRawStore) RecentEvents(ctx context.Context, limit int) ([]domain.RawEvent, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	out := make([]domain.RawEvent, 0, limit)
	for i := len(f.appended) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.appended[i])
	}
	return out, nil
}

func (f *fakeRawStore) Ping(ctx context.Context) error { return f.pingErr }

type fakeRecordStore struct {
	records    []domain.Record
	projectErr error
	listErr    error
	pingErr    error
}

func (f *fakeRecordStore) Project(ctx context.Context, in domain.Ingested) error {
	return f.projectErr
}

func (f *fakeRecordStore) List(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeRecordStore) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	return f.List(ctx, domain.Filter{Limit: limit})
}

func (f *fakeRecordStore) RecentPoints(ctx context.Context, limit int) ([]domain.OccupancyPoint, error) {
	return nil, nil
}

func (f *fakeRecordStore) Ping(ctx context.Context) error { return f.pingErr }

func newTestServer(t *testing.T, raw *fakeRawStore, rel *fakeRecordStore) *Server {
	t.Helper()
	srv, err := NewServer(WithStores(raw, rel))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv
}

func doRequest(srv *Server, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

const validEvent = `{"sensor_id":1001,"estacionamiento_id":"EST-001","estado":"ocupado","ts":"2024-01-01T00:00:00Z"}`

func TestSensorEventAccepted(t *testing.T) {
	raw := &fakeRawStore{}
	srv := newTestServer(t, raw, &fakeRecordStore{})

	w := doRequest(srv, http.MethodPost, "/sensor_event", validEvent)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["ok"] != true || body["estado"] != "ocupado" {
		t.Errorf("Unexpected response: %v", body)
	}
	ts, err := time.Parse(time.RFC3339, body["ts"].(string))
	if err != nil || !ts.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected the canonical ts echoed back, got %v", body["ts"])
	}
	if len(raw.appended) != 1 {
		t.Errorf("Expected 1 raw write, got %d", len(raw.appended))
	}
}

func TestSensorEventInvalidPayload(t *testing.T) {
	srv := newTestServer(t, &fakeRawStore{}, &fakeRecordStore{})

	w := doRequest(srv, http.MethodPost, "/sensor_event", `{"estado":"lleno"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["ok"] != false || !strings.Contains(body["error"].(string), "invalid payload") {
		t.Errorf("Unexpected response: %v", body)
	}
}

func TestSensorEventRawStoreFailure(t *testing.T) {
	srv := newTestServer(t, &fakeRawStore{appendErr: errors.New("server selection timeout")}, &fakeRecordStore{})

	w := doRequest(srv, http.MethodPost, "/sensor_event", validEvent)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if !strings.Contains(body["error"].(string), "mongo insert") {
		t.Errorf("Expected a mongo insert error, got %v", body["error"])
	}
}

func TestSensorEventRelationalFailureIsDistinct(t *testing.T) {
	raw := &fakeRawStore{}
	srv := newTestServer(t, raw, &fakeRecordStore{projectErr: errors.New("relation does not exist")})

	w := doRequest(srv, http.MethodPost, "/sensor_event", validEvent)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if !strings.Contains(body["error"].(string), "pg insert") {
		t.Errorf("Expected a pg insert error, got %v", body["error"])
	}
	// The raw write already happened and stays
	if len(raw.appended) != 1 {
		t.Errorf("Expected the raw record to remain, got %d", len(raw.appended))
	}
}

func TestRegistroDataRejectsBadLimit(t *testing.T) {
	srv := newTestServer(t, &fakeRawStore{}, &fakeRecordStore{})

	w := doRequest(srv, http.MethodGet, "/registro_data?limit=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", w.Code)
	}
}

func TestRegistroDataList(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rel := &fakeRecordStore{records: []domain.Record{
		{SensorID: "1001", SiteID: "EST-001", Estado: domain.StateOccupied, HoraOcupado: &ts, CreatedAt: ts},
	}}
	srv := newTestServer(t, &fakeRawStore{}, rel)

	w := doRequest(srv, http.MethodGet, "/registro_data?estacionamiento_id=EST-001", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["ok"] != true || body["count"] != float64(1) {
		t.Errorf("Unexpected response: %v", body)
	}
	items := body["items"].([]any)
	item := items[0].(map[string]any)
	if item["hora_libre"] != nil {
		t.Errorf("Expected hora_libre null, got %v", item["hora_libre"])
	}
	if item["hora_ocupado"] == nil {
		t.Error("Expected hora_ocupado set")
	}
}

func TestRegistroDataQueryFailure(t *testing.T) {
	srv := newTestServer(t, &fakeRawStore{}, &fakeRecordStore{listErr: errors.New("pg down")})

	w := doRequest(srv, http.MethodGet, "/registro_data", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", w.Code)
	}
}

func TestStatusOverviewNeverFails(t *testing.T) {
	srv := newTestServer(t, &fakeRawStore{recentErr: errors.New("mongo down")}, &fakeRecordStore{})

	w := doRequest(srv, http.MethodGet, "/status_overview", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 despite a store outage, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["last_events"] == nil || body["registro_data"] == nil {
		t.Errorf("Expected both arrays present (possibly empty), got %v", body)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeRawStore{}, &fakeRecordStore{})

	w := doRequest(srv, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if decodeBody(t, w)["ok"] != true {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func TestHealthzDBSingleStoreDown(t *testing.T) {
	srv := newTestServer(t, &fakeRawStore{}, &fakeRecordStore{pingErr: errors.New("connection refused")})

	w := doRequest(srv, http.MethodGet, "/healthzdb", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["ok"] != false || body["postgres"] != false || body["mongo"] != true {
		t.Errorf("Unexpected report: %v", body)
	}
	errs := body["errors"].(map[string]any)
	if len(errs) != 1 {
		t.Errorf("Expected only the failing store keyed, got %v", errs)
	}
	if _, ok := errs["postgres"]; !ok {
		t.Errorf("Expected a postgres error entry, got %v", errs)
	}
}

func TestHealthzDBHealthy(t *testing.T) {
	srv := newTestServer(t, &fakeRawStore{}, &fakeRecordStore{})

	w := doRequest(srv, http.MethodGet, "/healthzdb", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "errors") {
		t.Errorf("Expected no errors key on success, got %s", w.Body.String())
	}
}

func TestOpenAPIDocument(t *testing.T) {
	srv := newTestServer(t, &fakeRawStore{}, &fakeRecordStore{})

	w := doRequest(srv, http.MethodGet, "/openapi.json", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["openapi"] != "3.1.0" {
		t.Errorf("Unexpected document: %v", body["openapi"])
	}
}
