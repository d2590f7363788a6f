package infra

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mandalnilabja/streamrelay/internal/storage"
	"github.com/mandalnilabja/streamrelay/internal/transport/http/handler/shared"
)

// Page bounds for GET /api/logs.
const (
	DefaultLogLimit = 50
	MaxLogLimit     = 1000
)

// GetRequestLogs handles GET /api/logs.
// Supported filters: limit, offset, model, provider, status_code,
// start_date and end_date (YYYY-MM-DD, both inclusive).
func (h *Handlers) GetRequestLogs(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil {
		shared.WriteJSONError(w, "Usage log is disabled", http.StatusNotFound)
		return
	}

	filter, err := parseLogFilter(r)
	if err != nil {
		shared.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logs, err := h.Storage.GetRequestLogs(filter)
	if err != nil {
		shared.WriteJSONError(w, "Failed to get request logs: "+err.Error(), storageStatus(err))
		return
	}
	if logs == nil {
		logs = []*storage.RequestLog{}
	}

	shared.WriteJSON(w, map[string]any{
		"logs":   logs,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	}, http.StatusOK)
}

// DeleteRequestLogs handles DELETE /api/logs?older_than=YYYY-MM-DD.
func (h *Handlers) DeleteRequestLogs(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil {
		shared.WriteJSONError(w, "Usage log is disabled", http.StatusNotFound)
		return
	}

	olderThan := r.URL.Query().Get("older_than")
	if olderThan == "" {
		shared.WriteJSONError(w, "older_than query parameter is required (format: YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	deleted, err := h.Storage.DeleteRequestLogs(olderThan)
	if err != nil {
		shared.WriteJSONError(w, "Failed to delete logs: "+err.Error(), storageStatus(err))
		return
	}

	shared.WriteJSON(w, map[string]any{
		"deleted_count": deleted,
		"older_than":    olderThan,
	}, http.StatusOK)
}

// parseLogFilter creates a LogFilter from query parameters.
func parseLogFilter(r *http.Request) (storage.LogFilter, error) {
	q := r.URL.Query()
	filter := storage.LogFilter{
		Limit:    DefaultLogLimit,
		Model:    q.Get("model"),
		Provider: q.Get("provider"),
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > MaxLogLimit {
			return filter, errors.New("limit must be an integer between 1 and 1000")
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, errors.New("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}
	if v := q.Get("status_code"); v != "" {
		code, err := strconv.Atoi(v)
		if err != nil {
			return filter, errors.New("status_code must be an integer")
		}
		filter.StatusCode = &code
	}
	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errors.New("start_date must be YYYY-MM-DD")
		}
		filter.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filter, errors.New("end_date must be YYYY-MM-DD")
		}
		// through the end of that day
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.EndDate = &end
	}

	return filter, nil
}

func storageStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrStorageClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
