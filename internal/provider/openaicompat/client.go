// Package openaicompat implements a provider for OpenAI-compatible
// chat completion APIs (OpenAI, Gemini's OpenAI endpoint, OpenRouter, ...).
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mandalnilabja/streamrelay/internal/provider"
	"github.com/mandalnilabja/streamrelay/internal/types"
)

const (
	providerName        = "openai-compatible"
	chatCompletionsPath = "/chat/completions"

	// maxErrorBody caps how much of an upstream error response is read.
	maxErrorBody = 64 * 1024
)

var tracer = otel.Tracer("github.com/mandalnilabja/streamrelay/internal/provider/openaicompat")

// Config configures the provider. It is read once at start-up.
// BaseURL is the API root, e.g. "https://api.openai.com/v1".
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Provider implements provider.Provider for OpenAI-compatible APIs.
// It holds no per-request state and is safe for concurrent use.
type Provider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ provider.Provider = (*Provider)(nil)

// New creates a new provider instance.
func New(cfg Config) *Provider {
	client := cfg.HTTPClient
	if client == nil {
		// DisableCompression required for streaming
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DisableCompression = true
		client = &http.Client{Transport: transport, Timeout: cfg.Timeout}
	}

	return &Provider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return providerName
}

// BaseURL returns the chat completions endpoint
func (p *Provider) BaseURL() string {
	return p.baseURL + chatCompletionsPath
}

// Stream opens a streaming chat completion and relays its chunks.
func (p *Provider) Stream(ctx context.Context, req *types.CompletionRequest) (<-chan types.StreamChunk, error) {
	ctx, span := tracer.Start(ctx, "upstream.chat_completions",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.provider", p.Name()),
			attribute.String("llm.model", req.Model),
		),
	)

	if p.apiKey == "" {
		return nil, p.fail(span, &types.UpstreamError{Provider: p.Name(), Err: provider.ErrNoAPIKey})
	}

	upstreamReq, err := p.buildRequest(ctx, req)
	if err != nil {
		return nil, p.fail(span, &types.UpstreamError{Provider: p.Name(), Err: err})
	}

	resp, err := p.client.Do(upstreamReq)
	if err != nil {
		return nil, p.fail(span, &types.UpstreamError{Provider: p.Name(), Err: err})
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, p.fail(span, p.errorFromResponse(resp))
	}

	out := make(chan types.StreamChunk)
	go func() {
		defer close(out)
		defer resp.Body.Close()
		defer span.End()

		err := readStream(ctx, resp.Body, out)
		if err == nil || ctx.Err() != nil {
			return
		}

		upstreamErr := &types.UpstreamError{Provider: p.Name(), Err: err}
		span.RecordError(upstreamErr)
		span.SetStatus(codes.Error, upstreamErr.Error())
		select {
		case out <- types.StreamChunk{Err: upstreamErr}:
		case <-ctx.Done():
		}
	}()

	return out, nil
}

// buildRequest creates the upstream HTTP request for a completion.
func (p *Provider) buildRequest(ctx context.Context, req *types.CompletionRequest) (*http.Request, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:           req.Model,
		Messages:        req.Messages,
		Stream:          req.Stream,
		ReasoningEffort: req.ReasoningEffort,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	return httpReq, nil
}

// errorFromResponse builds an UpstreamError from a non-200 response.
func (p *Provider) errorFromResponse(resp *http.Response) *types.UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	message := parseErrorMessage(body)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &types.UpstreamError{
		Provider:   p.Name(),
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

// fail records err on the span, ends it and returns err.
func (p *Provider) fail(span trace.Span, err *types.UpstreamError) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
	return err
}
