package infra

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mandalnilabja/streamrelay/internal/storage"
)

func seedLogs(t *testing.T, store storage.Storage) {
	t.Helper()
	for _, l := range []*storage.RequestLog{
		{RequestID: "r1", Model: "a", Provider: "p", StatusCode: 200, CreatedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)},
		{RequestID: "r2", Model: "b", Provider: "p", StatusCode: 502, CreatedAt: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)},
		{RequestID: "r3", Model: "a", Provider: "p", StatusCode: 200, CreatedAt: time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)},
	} {
		if err := store.LogRequest(l); err != nil {
			t.Fatalf("LogRequest failed: %v", err)
		}
	}
}

func TestGetRequestLogs(t *testing.T) {
	store := newTestStorage(t)
	seedLogs(t, store)
	h := New(store, "p", "m", time.Now())

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantIDs    []string
		wantLimit  int
	}{
		{name: "all newest first", query: "", wantStatus: http.StatusOK, wantIDs: []string{"r3", "r2", "r1"}, wantLimit: DefaultLogLimit},
		{name: "by model", query: "?model=a", wantStatus: http.StatusOK, wantIDs: []string{"r3", "r1"}, wantLimit: DefaultLogLimit},
		{name: "by status", query: "?status_code=502", wantStatus: http.StatusOK, wantIDs: []string{"r2"}, wantLimit: DefaultLogLimit},
		{name: "page", query: "?limit=1&offset=1", wantStatus: http.StatusOK, wantIDs: []string{"r2"}, wantLimit: 1},
		{name: "end date inclusive", query: "?end_date=2025-06-02", wantStatus: http.StatusOK, wantIDs: []string{"r2", "r1"}, wantLimit: DefaultLogLimit},
		{name: "date range", query: "?start_date=2025-06-02&end_date=2025-06-02", wantStatus: http.StatusOK, wantIDs: []string{"r2"}, wantLimit: DefaultLogLimit},
		{name: "no match", query: "?model=zzz", wantStatus: http.StatusOK, wantIDs: []string{}, wantLimit: DefaultLogLimit},
		{name: "bad limit", query: "?limit=0", wantStatus: http.StatusBadRequest},
		{name: "limit too large", query: "?limit=5000", wantStatus: http.StatusBadRequest},
		{name: "bad offset", query: "?offset=-1", wantStatus: http.StatusBadRequest},
		{name: "bad status code", query: "?status_code=ok", wantStatus: http.StatusBadRequest},
		{name: "bad date", query: "?start_date=06/01/2025", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.GetRequestLogs(rec, httptest.NewRequest(http.MethodGet, "/api/logs"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var body struct {
				Logs  []*storage.RequestLog `json:"logs"`
				Limit int                   `json:"limit"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Logs == nil {
				t.Fatal("expected logs to be an array, got null")
			}
			if body.Limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, body.Limit)
			}
			if len(body.Logs) != len(tt.wantIDs) {
				t.Fatalf("expected %d logs, got %d", len(tt.wantIDs), len(body.Logs))
			}
			for i, id := range tt.wantIDs {
				if body.Logs[i].RequestID != id {
					t.Errorf("log %d: expected %s, got %s", i, id, body.Logs[i].RequestID)
				}
			}
		})
	}
}

func TestDeleteRequestLogs(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantDeleted int64
	}{
		{name: "deletes before date", query: "?older_than=2025-06-03", wantStatus: http.StatusOK, wantDeleted: 2},
		{name: "nothing older", query: "?older_than=2025-01-01", wantStatus: http.StatusOK, wantDeleted: 0},
		{name: "missing date", query: "", wantStatus: http.StatusBadRequest},
		{name: "invalid date", query: "?older_than=last-week", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStorage(t)
			seedLogs(t, store)
			h := New(store, "p", "m", time.Now())

			rec := httptest.NewRecorder()
			h.DeleteRequestLogs(rec, httptest.NewRequest(http.MethodDelete, "/api/logs"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var body struct {
				DeletedCount int64 `json:"deleted_count"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.DeletedCount != tt.wantDeleted {
				t.Errorf("expected %d deleted, got %d", tt.wantDeleted, body.DeletedCount)
			}
		})
	}
}

func TestRequestLogs_StorageClosed(t *testing.T) {
	store := newTestStorage(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	h := New(store, "p", "m", time.Now())

	rec := httptest.NewRecorder()
	h.GetRequestLogs(rec, httptest.NewRequest(http.MethodGet, "/api/logs", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET: expected status 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.DeleteRequestLogs(rec, httptest.NewRequest(http.MethodDelete, "/api/logs?older_than=2025-06-01", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("DELETE: expected status 503, got %d", rec.Code)
	}
}

func TestRequestLogs_Disabled(t *testing.T) {
	h := New(nil, "p", "m", time.Now())

	for _, tt := range []struct {
		method  string
		handler http.HandlerFunc
	}{
		{http.MethodGet, h.GetRequestLogs},
		{http.MethodDelete, h.DeleteRequestLogs},
	} {
		rec := httptest.NewRecorder()
		tt.handler(rec, httptest.NewRequest(tt.method, "/api/logs?older_than=2025-06-01", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status 404, got %d", tt.method, rec.Code)
		}
	}
}
