// Package mlsvc is the HTTP client for the spoken-code classifier service.
// Every call degrades instead of failing: a dead or slow classifier must
// never take transcript ingestion down with it
package mlsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	perr "codespeak/internal/platform/errors"
	"codespeak/internal/platform/logger"
)

const (
	defaultTimeout = 5 * time.Second
	maxBatchSize   = 100
)

// Options configures the Client
type Options struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the transport, for tests
	HTTPClient *http.Client
}

// Client talks to the classifier over REST
type Client struct {
	http *http.Client
	base string
	log  logger.Logger
	now  func() time.Time
}

// New creates a Client with sane defaults
func New(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &Client{
		http: hc,
		base: o.BaseURL,
		log:  *logger.Named("mlsvc"),
		now:  time.Now,
	}
}

// DetectCode classifies one transcript chunk
// it never returns an error: any failure yields the fallback detection
// with the original text passed through untouched
func (c *Client) DetectCode(ctx context.Context, text string) Detection {
	if text == "" {
		return Fallback(text, perr.InvalidArgf("empty text"))
	}

	start := c.now()
	var out detectResponse
	if err := c.post(ctx, "/detect-code", detectRequest{Text: text}, &out); err != nil {
		c.log.Warn().Err(err).Dur("elapsed", c.now().Sub(start)).Msg("detect-code failed, using fallback")
		return Fallback(text, err)
	}

	return coerce(out, text)
}

// coerce maps a loosely shaped classifier response onto the typed
// contract, defaulting anything missing or out of range
func coerce(in detectResponse, text string) Detection {
	d := Detection{
		IsCode:        false,
		Language:      "other",
		CorrectedText: text,
		Confidence:    0,
	}
	if in.IsCode != nil {
		d.IsCode = *in.IsCode
	}
	if in.Language != nil && *in.Language != "" {
		d.Language = *in.Language
	}
	if in.CorrectedText != nil && *in.CorrectedText != "" {
		d.CorrectedText = *in.CorrectedText
	}
	if in.Confidence != nil {
		switch {
		case *in.Confidence < 0:
			d.Confidence = 0
		case *in.Confidence > 1:
			d.Confidence = 1
		default:
			d.Confidence = *in.Confidence
		}
	}
	return d
}

// BatchCorrect re-runs correction over up to 100 snippets
// oversized batches are rejected locally; service failures return an
// empty result with the error marker set
func (c *Client) BatchCorrect(ctx context.Context, snippets []string) BatchResult {
	if len(snippets) == 0 {
		return BatchResult{}
	}
	if len(snippets) > maxBatchSize {
		return BatchResult{Err: perr.InvalidArgf("batch of %d exceeds maximum %d", len(snippets), maxBatchSize)}
	}

	// batches take longer than single chunks
	ctx, cancel := context.WithTimeout(ctx, 2*c.timeout())
	defer cancel()

	var out batchResponse
	if err := c.post(ctx, "/batch-correct", batchRequest{Snippets: snippets}, &out); err != nil {
		c.log.Warn().Err(err).Int("snippets", len(snippets)).Msg("batch-correct failed")
		return BatchResult{Err: err}
	}
	return BatchResult{Corrections: out.Corrections}
}

// ModelStats fetches classifier model metadata, nil when unreachable
func (c *Client) ModelStats(ctx context.Context) map[string]any {
	var out map[string]any
	if err := c.get(ctx, "/model-stats", &out); err != nil {
		c.log.Warn().Err(err).Msg("model-stats failed")
		return nil
	}
	return out
}

// CheckHealth probes the classifier health endpoint
// an unreachable service reports unhealthy rather than erroring
func (c *Client) CheckHealth(ctx context.Context) map[string]any {
	var out map[string]any
	if err := c.get(ctx, "/health", &out); err != nil {
		return map[string]any{"status": "unhealthy", "error": err.Error()}
	}
	if out == nil {
		out = map[string]any{}
	}
	if _, ok := out["status"]; !ok {
		out["status"] = "healthy"
	}
	return out
}

func (c *Client) timeout() time.Duration {
	if c.http.Timeout > 0 {
		return c.http.Timeout
	}
	return defaultTimeout
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "mlsvc marshal failed")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "mlsvc new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "mlsvc new request failed")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "mlsvc request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little for the error message, then discard
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		_, _ = io.Copy(io.Discard, resp.Body)
		return perr.Unavailablef("mlsvc %s %s: status %d %s",
			req.Method, req.URL.Path, resp.StatusCode, fmt.Sprintf("%.100s", snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "mlsvc decode failed")
	}
	return nil
}
