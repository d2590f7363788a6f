package infra

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mandalnilabja/streamrelay/internal/storage"
	"github.com/mandalnilabja/streamrelay/internal/transport/http/handler/shared"
)

// Usage window bounds for GET /api/usage.
const (
	DefaultUsageDays = 7
	MaxUsageDays     = 366
)

// GetUsage handles GET /api/usage?days=N.
// It returns daily aggregates and totals for the last N days, today included.
func (h *Handlers) GetUsage(w http.ResponseWriter, r *http.Request) {
	if h.Storage == nil {
		shared.WriteJSONError(w, "Usage log is disabled", http.StatusNotFound)
		return
	}

	days := DefaultUsageDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > MaxUsageDays {
			shared.WriteJSONError(w, "days must be an integer between 1 and 366", http.StatusBadRequest)
			return
		}
		days = n
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -(days - 1))
	startDate := start.Format("2006-01-02")
	endDate := end.Format("2006-01-02")

	daily, err := h.Storage.GetDailyUsage(startDate, endDate)
	if err != nil {
		shared.WriteJSONError(w, "Failed to get daily usage: "+err.Error(), http.StatusInternalServerError)
		return
	}

	stats, err := h.Storage.GetUsageStats(storageFilter(start, end))
	if err != nil {
		shared.WriteJSONError(w, "Failed to get usage stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	shared.WriteJSON(w, map[string]any{
		"daily_usage": daily,
		"totals":      stats,
		"start_date":  startDate,
		"end_date":    endDate,
	}, http.StatusOK)
}

func storageFilter(start, end time.Time) storage.StatsFilter {
	return storage.StatsFilter{StartDate: &start, EndDate: &end}
}
