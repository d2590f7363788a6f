package chat

import (
	"time"

	"github.com/mandalnilabja/streamrelay/internal/storage"
	"github.com/mandalnilabja/streamrelay/internal/types"
)

// usageRecord is what a finished relay request leaves in the usage log.
type usageRecord struct {
	requestID string
	request   *types.CompletionRequest
	model     string
	reply     string
	usage     *types.Usage
	streaming bool
	cacheHit  bool
	status    int
	err       error
	start     time.Time
}

// recordUsage writes rec to storage in the background.
func (h *Handlers) recordUsage(rec usageRecord) {
	if h.storage == nil {
		return
	}
	// Measured before UTC() drops the monotonic reading.
	duration := time.Since(rec.start)
	rec.start = rec.start.UTC()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		h.logger.Debug("usage log closed, dropping record", "request_id", rec.requestID)
		return
	}
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		h.writeUsage(rec, duration)
	}()
}

func (h *Handlers) writeUsage(rec usageRecord, duration time.Duration) {
	model := rec.model
	if model == "" {
		model = rec.request.Model
	}

	prompt, completion, total := h.countTokens(rec)

	errMsg := ""
	if rec.err != nil {
		errMsg = rec.err.Error()
	}

	log := &storage.RequestLog{
		RequestID:        rec.requestID,
		Model:            model,
		Provider:         h.provider.Name(),
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      total,
		IsStreaming:      rec.streaming,
		CacheHit:         rec.cacheHit,
		StatusCode:       rec.status,
		ErrorMessage:     errMsg,
		DurationMs:       duration.Milliseconds(),
		CreatedAt:        rec.start,
	}
	if err := h.storage.LogRequest(log); err != nil {
		h.logger.Warn("failed to write request log", "request_id", rec.requestID, "error", err)
	}

	errorCount := 0
	if rec.err != nil || rec.status >= 400 {
		errorCount = 1
	}
	usage := &storage.DailyUsage{
		Date:             rec.start.Format("2006-01-02"),
		Model:            model,
		RequestCount:     1,
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      total,
		ErrorCount:       errorCount,
	}
	if err := h.storage.UpdateDailyUsage(usage); err != nil {
		h.logger.Warn("failed to update daily usage", "request_id", rec.requestID, "error", err)
	}
}

// countTokens prefers upstream-reported usage and falls back to local
// counting. Cache hits never reach upstream and are counted locally.
func (h *Handlers) countTokens(rec usageRecord) (prompt, completion, total int) {
	if rec.usage != nil && !rec.cacheHit {
		prompt = rec.usage.PromptTokens
		completion = rec.usage.CompletionTokens
		total = rec.usage.TotalTokens
	}

	if h.tokenizer != nil {
		if prompt == 0 {
			if n, err := h.tokenizer.CountRequest(rec.request); err == nil {
				prompt = n
			}
		}
		if completion == 0 && rec.reply != "" {
			if n, err := h.tokenizer.CountTokens(rec.reply, rec.request.Model); err == nil {
				completion = n
			}
		}
	}

	if total == 0 {
		total = prompt + completion
	}
	return prompt, completion, total
}
