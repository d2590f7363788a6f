package chat

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/mandalnilabja/streamrelay/internal/cache"
	"github.com/mandalnilabja/streamrelay/internal/types"
)

// Chat handles POST /chat.
// The upstream reply is relayed as text/plain, one write and flush per
// non-empty delta, in arrival order. Once the first byte is sent the status
// can no longer change, so later failures only end the response.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := requestID(r.Context())

	in, err := h.decodeBody(w, r)
	if err != nil {
		h.writeError(w, reqID, err)
		return
	}
	req := types.NewRelayRequest(h.model, h.reasoningEffort, in.Message)

	rec := usageRecord{
		requestID: reqID,
		request:   req,
		streaming: true,
		start:     start,
	}

	cacheKey := ""
	if h.cache != nil {
		cacheKey = cache.Key(req.Model, req.ReasoningEffort, in.Message)
		if reply, ok := h.cache.Get(cacheKey); ok {
			w.Header().Set("Content-Type", "text/plain")
			w.Header().Set(CacheHeader, "HIT")
			w.WriteHeader(http.StatusOK)
			if reply != "" {
				_, _ = io.WriteString(w, reply)
			}
			rec.cacheHit = true
			rec.status = http.StatusOK
			rec.reply = reply
			h.recordUsage(rec)
			return
		}
	}

	// The upstream call is bound to this request; returning cancels it.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	chunks, err := h.provider.Stream(ctx, req)
	if err != nil {
		status := h.writeError(w, reqID, err)
		rec.status = status
		rec.err = err
		h.recordUsage(rec)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	if h.cache != nil {
		w.Header().Set(CacheHeader, "MISS")
	}
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	res := consume(ctx, chunks, func(delta string) error {
		if _, err := io.WriteString(w, delta); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})

	rec.status = http.StatusOK
	rec.model = res.model
	rec.reply = res.text
	rec.usage = res.usage

	switch {
	case res.upstreamErr != nil:
		h.logger.Error("upstream stream failed",
			"request_id", reqID,
			"provider", h.provider.Name(),
			"error", res.upstreamErr,
		)
		rec.err = res.upstreamErr
	case res.writeErr != nil:
		h.logger.Debug("client write failed", "request_id", reqID, "error", res.writeErr)
		rec.err = res.writeErr
	case res.canceled:
		h.logger.Debug("client disconnected", "request_id", reqID)
		rec.err = context.Canceled
	default:
		if h.cache != nil {
			h.cache.Set(cacheKey, res.text)
		}
	}

	h.recordUsage(rec)
}

// writeError classifies err, logs upstream failures and writes the JSON
// error body. It returns the status written.
func (h *Handlers) writeError(w http.ResponseWriter, reqID string, err error) int {
	status, apiErr := types.ClassifyError(err)
	if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
		h.logger.Error("upstream request failed",
			"request_id", reqID,
			"provider", h.provider.Name(),
			"status", status,
			"error", err,
		)
	}
	types.WriteError(w, status, apiErr)
	return status
}
