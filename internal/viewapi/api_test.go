package viewapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/wardview/internal/alert"
	"github.com/linnemanlabs/wardview/internal/backend"
	"github.com/linnemanlabs/wardview/internal/resident"
	"github.com/linnemanlabs/wardview/internal/session"
	"github.com/linnemanlabs/wardview/internal/vitals"
)

// mockService implements SessionService for testing.
type mockService struct {
	mu         sync.Mutex
	residents  []resident.Resident
	alerts     []alert.Alert
	history    []vitals.VitalReading
	refreshErr error
	ackErr     error
	resolveErr error
	acks       []string
	resolves   [][3]string
	historyReq [2]any
}

func (m *mockService) Residents() []resident.Resident { return m.residents }
func (m *mockService) Alerts() []alert.Alert          { return m.alerts }

func (m *mockService) Refresh(_ context.Context) error { return m.refreshErr }

func (m *mockService) Acknowledge(_ context.Context, alertID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ackErr != nil {
		return m.ackErr
	}
	m.acks = append(m.acks, alertID)
	return nil
}

func (m *mockService) Resolve(_ context.Context, alertID, outcome, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resolveErr != nil {
		return m.resolveErr
	}
	m.resolves = append(m.resolves, [3]string{alertID, outcome, notes})
	return nil
}

func (m *mockService) VitalsHistory(_ context.Context, residentID string, hours int) ([]vitals.VitalReading, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyReq = [2]any{residentID, hours}
	return m.history, nil
}

func newTestRouter(t *testing.T, svc *mockService) chi.Router {
	t.Helper()
	api := New(log.Nop(), svc, func() bool { return true })
	r := chi.NewRouter()
	api.RegisterRoutes(r)
	return r
}

func TestNew_NilService_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("New(nil, nil, nil) did not panic; expected panic for nil service")
		}
	}()
	New(nil, nil, nil)
}

func TestHandleResidents(t *testing.T) {
	t.Parallel()

	svc := &mockService{residents: []resident.Resident{
		{ID: "r-1", Name: "Ada", Room: "101", CurrentStatus: vitals.StatusNormal},
	}}
	r := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/residents", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Residents []resident.Resident `json:"residents"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Residents) != 1 || resp.Residents[0].ID != "r-1" {
		t.Errorf("residents = %+v", resp.Residents)
	}
}

func TestHandleAlerts(t *testing.T) {
	t.Parallel()

	svc := &mockService{alerts: []alert.Alert{
		{ID: "a-2", Status: alert.StatusPending},
		{ID: "a-1", Status: alert.StatusAcknowledged},
	}}
	r := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp struct {
		Alerts []alert.Alert `json:"alerts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Alerts) != 2 || resp.Alerts[0].ID != "a-2" {
		t.Errorf("alerts = %+v, want newest first passthrough", resp.Alerts)
	}
}

func TestHandleConnection(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &mockService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/connection", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp["connected"] {
		t.Error("connected = false, want true from state func")
	}
}

func TestHandleVitalsHistory(t *testing.T) {
	t.Parallel()

	svc := &mockService{history: []vitals.VitalReading{{}}}
	r := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/residents/r-5/vitals/history?hours=6", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.historyReq[0] != "r-5" || svc.historyReq[1] != 6 {
		t.Errorf("history request = %v, want [r-5 6]", svc.historyReq)
	}
}

func TestHandleVitalsHistory_DefaultsAndValidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantHours  int
	}{
		{"default hours", "", http.StatusOK, 24},
		{"explicit hours", "?hours=48", http.StatusOK, 48},
		{"non-numeric", "?hours=abc", http.StatusBadRequest, 0},
		{"zero", "?hours=0", http.StatusBadRequest, 0},
		{"negative", "?hours=-4", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockService{}
			r := newTestRouter(t, svc)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/residents/r-1/vitals/history"+tt.query, http.NoBody)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && svc.historyReq[1] != tt.wantHours {
				t.Errorf("hours = %v, want %d", svc.historyReq[1], tt.wantHours)
			}
		})
	}
}

func TestHandleAcknowledge(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	r := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/a-3/acknowledge", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(svc.acks) != 1 || svc.acks[0] != "a-3" {
		t.Errorf("acks = %v, want [a-3]", svc.acks)
	}
}

func TestHandleAcknowledge_UnknownAlert(t *testing.T) {
	t.Parallel()

	svc := &mockService{ackErr: session.ErrAlertNotFound}
	r := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/a-ghost/acknowledge", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleAcknowledge_TimeoutMapsTo504(t *testing.T) {
	t.Parallel()

	svc := &mockService{ackErr: &backend.APIError{Code: backend.CodeTimeout, Message: "request exceeded deadline"}}
	r := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/a-1/acknowledge", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rec.Code)
	}
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != backend.CodeTimeout {
		t.Errorf("code = %q, want %q", resp.Error.Code, backend.CodeTimeout)
	}
}

func TestHandleResolve(t *testing.T) {
	t.Parallel()

	svc := &mockService{}
	r := newTestRouter(t, svc)

	body := `{"outcome":"assisted","notes":"back in bed"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/a-4/resolve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	want := [3]string{"a-4", "assisted", "back in bed"}
	if len(svc.resolves) != 1 || svc.resolves[0] != want {
		t.Errorf("resolves = %v, want %v", svc.resolves, want)
	}
}

func TestHandleResolve_RequiresOutcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"missing outcome", `{"notes":"n"}`},
		{"empty outcome", `{"outcome":""}`},
		{"invalid json", `{bad`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockService{}
			r := newTestRouter(t, svc)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/a-1/resolve", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(svc.resolves) != 0 {
				t.Error("resolve must not reach the service on invalid input")
			}
		})
	}
}

func TestHandleRefresh_ErrorPassthrough(t *testing.T) {
	t.Parallel()

	svc := &mockService{refreshErr: &backend.APIError{Code: "FACILITY_SUSPENDED", Message: "revoked"}}
	r := newTestRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", http.NoBody)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "FACILITY_SUSPENDED" {
		t.Errorf("code = %q, want backend code surfaced verbatim", resp.Error.Code)
	}
}

func TestRoutes_MethodsEnforced(t *testing.T) {
	t.Parallel()

	r := newTestRouter(t, &mockService{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/residents"},
		{http.MethodDelete, "/api/v1/alerts"},
		{http.MethodGet, "/api/v1/alerts/a-1/acknowledge"},
		{http.MethodPut, "/api/v1/alerts/a-1/resolve"},
		{http.MethodGet, "/api/v1/refresh"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s = %d, want 405", tt.method, tt.path, rec.Code)
		}
	}
}

func FuzzResolveBody(f *testing.F) {
	svc := &mockService{}
	api := New(nil, svc, nil)
	r := chi.NewRouter()
	api.RegisterRoutes(r)

	seeds := []string{
		``,
		`{}`,
		`{"outcome":"ok"}`,
		`{"outcome":"ok","notes":"n"}`,
		`{bad`,
		`[]`,
		`"string"`,
		"\x00\x01\xff",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, body string) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/a-1/resolve", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		// must not panic
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK && rec.Code != http.StatusBadRequest {
			t.Errorf("resolve with body len=%d = %d, want 200 or 400", len(body), rec.Code)
		}
	})
}
