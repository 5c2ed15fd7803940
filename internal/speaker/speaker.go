// Package speaker is an HTTP client for the Yunshu speaker service, the
// small TTS sidecar that turns feedback text into an audio file. The
// sidecar answers POST /speak with the generated file path and GET /health
// with a liveness probe.
package speaker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"yunshu/internal/config"
	"yunshu/internal/logging"
)

// DefaultVoice matches the sidecar's own default.
const DefaultVoice = "zh-CN-XiaoxiaoNeural"

// maxResponseBytes bounds how much of a reply we are willing to read.
const maxResponseBytes = 1 << 20

// Request is one utterance for the speaker service.
type Request struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	Rate  string `json:"rate"`
	Pitch string `json:"pitch"`
}

// speakResponse mirrors the service's success and error envelopes.
type speakResponse struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	Detail string `json:"detail"`
}

// Client talks to a running speaker service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logging.AppLogger
}

// New creates a Client pointed at the configured sidecar address.
func New(cfg *config.Config, logger *logging.AppLogger) *Client {
	return &Client{
		baseURL: cfg.SpeakerURL(),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Health reports whether the speaker service answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to build health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("speaker service unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("speaker service unhealthy: %s", resp.Status)
	}
	return nil
}

// Speak submits text for synthesis and returns the path of the generated
// audio file on the sidecar's filesystem. Empty fields fall back to the
// sidecar's own defaults so a bare text request keeps working.
func (c *Client) Speak(ctx context.Context, r Request) (string, error) {
	if r.Text == "" {
		return "", fmt.Errorf("nothing to speak: text is empty")
	}
	if r.Voice == "" {
		r.Voice = DefaultVoice
	}
	if r.Rate == "" {
		r.Rate = "+0%"
	}
	if r.Pitch == "" {
		r.Pitch = "+0Hz"
	}

	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to encode speak request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/speak", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build speak request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Submitting speech request",
		"voice", r.Voice, "rate", r.Rate, "pitch", r.Pitch, "chars", len(r.Text))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("speaker service unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read speaker response: %w", err)
	}

	var parsed speakResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("speaker service returned malformed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		detail := parsed.Detail
		if detail == "" {
			detail = resp.Status
		}
		return "", fmt.Errorf("speaker service error: %s", detail)
	}
	if parsed.Path == "" {
		return "", fmt.Errorf("speaker service reported %q without an audio path", parsed.Status)
	}

	c.logger.Debug("Speech generated", "path", parsed.Path)
	return parsed.Path, nil
}
