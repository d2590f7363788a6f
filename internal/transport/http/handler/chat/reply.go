package chat

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mandalnilabja/streamrelay/internal/cache"
	"github.com/mandalnilabja/streamrelay/internal/transport/http/handler/shared"
	"github.com/mandalnilabja/streamrelay/internal/types"
)

// Reply handles POST /chat/reply.
// It consumes the same upstream stream as Chat and answers with the full
// reply once the stream completes. Any upstream failure yields a 500 with
// the fixed error reply.
func (h *Handlers) Reply(w http.ResponseWriter, r *http.Request) {
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
		start:     start,
	}

	cacheKey := ""
	if h.cache != nil {
		cacheKey = cache.Key(req.Model, req.ReasoningEffort, in.Message)
		if reply, ok := h.cache.Get(cacheKey); ok {
			w.Header().Set(CacheHeader, "HIT")
			shared.WriteJSON(w, types.ReplyResponse{Reply: strings.TrimSpace(reply)}, http.StatusOK)
			rec.cacheHit = true
			rec.status = http.StatusOK
			rec.reply = reply
			h.recordUsage(rec)
			return
		}
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	chunks, err := h.provider.Stream(ctx, req)
	if err != nil {
		h.writeReplyError(w, reqID, err)
		rec.status = http.StatusInternalServerError
		rec.err = err
		h.recordUsage(rec)
		return
	}

	res := consume(ctx, chunks, nil)
	rec.model = res.model
	rec.reply = res.text
	rec.usage = res.usage

	switch {
	case res.upstreamErr != nil:
		h.writeReplyError(w, reqID, res.upstreamErr)
		rec.status = http.StatusInternalServerError
		rec.err = res.upstreamErr
	case res.canceled:
		h.logger.Debug("client disconnected", "request_id", reqID)
		rec.status = http.StatusOK
		rec.err = context.Canceled
	default:
		if h.cache != nil {
			w.Header().Set(CacheHeader, "MISS")
			h.cache.Set(cacheKey, res.text)
		}
		shared.WriteJSON(w, types.ReplyResponse{Reply: strings.TrimSpace(res.text)}, http.StatusOK)
		rec.status = http.StatusOK
	}

	h.recordUsage(rec)
}

func (h *Handlers) writeReplyError(w http.ResponseWriter, reqID string, err error) {
	h.logger.Error("upstream request failed",
		"request_id", reqID,
		"provider", h.provider.Name(),
		"error", err,
	)
	shared.WriteJSON(w, types.ReplyResponse{Reply: types.ReplyErrorMessage}, http.StatusInternalServerError)
}
