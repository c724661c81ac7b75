// Package chat implements the chat-completion call: connectivity probe,
// request construction, transport retries with exponential backoff, HTTP
// status classification, and response decoding. Every call resolves to an
// Outcome value; no error escapes the package boundary.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// DefaultProbeURL is the known-reachable host checked before the main
// request. Any failure to reach it counts as "offline".
const DefaultProbeURL = "https://www.google.com"

const probeTimeout = 5 * time.Second

// Client performs chat-completion calls. Use NewClient; the zero value has
// no HTTP clients attached.
type Client struct {
	// HTTPClient issues the completion POST. The per-attempt timeout comes
	// from Config.Timeout, not from this client.
	HTTPClient *http.Client
	// ProbeClient issues the connectivity probe with its own short timeout.
	ProbeClient *http.Client
	// ProbeURL overrides DefaultProbeURL.
	ProbeURL string
	// Logger receives attempt-level debug logs.
	Logger zerolog.Logger

	sleep func(context.Context, time.Duration) error
}

// NewClient returns a Client ready for Complete calls.
func NewClient(logger zerolog.Logger) *Client {
	return &Client{
		HTTPClient:  &http.Client{},
		ProbeClient: &http.Client{Timeout: probeTimeout},
		ProbeURL:    DefaultProbeURL,
		Logger:      logger,
		sleep:       sleepContext,
	}
}

type requestMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string           `json:"model"`
	Messages    []requestMessage `json:"messages"`
	Temperature float64          `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete runs one completion call end to end: probe, validate, send with
// retries, classify the status, decode the body. Transport failures are
// retried with 2^attempt seconds of backoff; HTTP status failures and the
// probe never are.
func (c *Client) Complete(ctx context.Context, prompt string, cfg Config) Outcome {
	cfg = cfg.withDefaults()

	if !c.probe(ctx) {
		return Outcome{Kind: OutcomeNetworkUnavailable}
	}

	if cfg.APIKey == "" {
		return Outcome{Kind: OutcomeConfigMissing}
	}
	if !validEndpoint(cfg.Endpoint) {
		return Outcome{Kind: OutcomeConfigInvalid}
	}

	body, err := json.Marshal(completionRequest{
		Model: cfg.Model,
		Messages: []requestMessage{
			{Role: "system", Content: cfg.SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return Outcome{Kind: OutcomeInternalError, Err: err}
	}

	res, err := c.send(ctx, cfg, body)
	if err != nil {
		return Outcome{Kind: OutcomeTransportFailure, Err: err}
	}

	switch {
	case res.status >= 200 && res.status <= 299:
	case res.status == http.StatusUnauthorized:
		return Outcome{Kind: OutcomeAuthFailed, Status: res.status}
	case res.status == http.StatusTooManyRequests:
		return Outcome{Kind: OutcomeRateLimited, Status: res.status}
	case res.status >= 500 && res.status <= 599:
		return Outcome{Kind: OutcomeServerError, Status: res.status}
	default:
		return Outcome{Kind: OutcomeUnexpectedStatus, Status: res.status}
	}

	var decoded completionResponse
	if err := json.Unmarshal(res.body, &decoded); err != nil {
		return Outcome{Kind: OutcomeDecodeError, Err: err}
	}
	if len(decoded.Choices) == 0 {
		return Outcome{Kind: OutcomeEmptyContent}
	}
	return Outcome{Kind: OutcomeSuccess, Text: decoded.Choices[0].Message.Content}
}

// probe reports whether the network looks reachable. Any non-200 response or
// transport failure counts as offline.
func (c *Client) probe(ctx context.Context) bool {
	probeURL := c.ProbeURL
	if probeURL == "" {
		probeURL = DefaultProbeURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.ProbeClient.Do(req)
	if err != nil {
		c.Logger.Debug().Err(err).Str("url", probeURL).Msg("connectivity probe failed")
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.Logger.Debug().Int("status", resp.StatusCode).Str("url", probeURL).Msg("connectivity probe rejected")
		return false
	}
	return true
}

type attemptResult struct {
	status int
	body   []byte
}

// send issues the POST, retrying transport-level failures. An HTTP response
// of any status ends the loop and is handed back for classification.
func (c *Client) send(ctx context.Context, cfg Config, body []byte) (attemptResult, error) {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<attempt) * time.Second
			c.Logger.Debug().Int("attempt", attempt).Dur("backoff", delay).Msg("retrying after transport failure")
			if err := c.wait(ctx, delay); err != nil {
				return attemptResult{}, err
			}
		}

		res, err := c.attempt(ctx, cfg, body)
		if err == nil {
			return res, nil
		}
		lastErr = err
		c.Logger.Debug().Err(err).Int("attempt", attempt+1).Msg("transport failure")
	}
	return attemptResult{}, lastErr
}

func (c *Client) attempt(ctx context.Context, cfg Config, body []byte) (attemptResult, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return attemptResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return attemptResult{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return attemptResult{}, err
	}

	c.Logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("model", cfg.Model).
		Msg("completion response")

	return attemptResult{status: resp.StatusCode, body: data}, nil
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if c.sleep != nil {
		return c.sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func validEndpoint(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
