// Package diarizer is the HTTP client for the optional speaker diarization
// service. Diarization feeds the audio extractor's speaker-flip change
// signal; when the service is disabled or failing the pipeline simply runs
// without that channel.
package diarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"podsweep/internal/audiosig"
)

const defaultHTTPTimeout = 15 * time.Minute

// Config captures the runtime settings for the diarization service.
type Config struct {
	URL            string
	TimeoutSeconds int
}

// Client uploads audio files for speaker diarization.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a diarizer client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			URL:            strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type diarizePayload struct {
	Turns []struct {
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Speaker int     `json:"speaker"`
	} `json:"turns"`
}

// Diarize uploads the audio file and returns the ordered speaker turns.
func (c *Client) Diarize(ctx context.Context, audioPath string) ([]audiosig.Turn, error) {
	if c.cfg.URL == "" {
		return nil, errors.New("diarize: service url required")
	}
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("diarize: open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("diarize: build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("diarize: read audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("diarize: finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/diarize", &body)
	if err != nil {
		return nil, fmt.Errorf("diarize: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("diarize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("diarize: http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload diarizePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("diarize: decode response: %w", err)
	}
	turns := make([]audiosig.Turn, 0, len(payload.Turns))
	for _, turn := range payload.Turns {
		if turn.End <= turn.Start {
			continue
		}
		turns = append(turns, audiosig.Turn{Start: turn.Start, End: turn.End, Speaker: turn.Speaker})
	}
	return turns, nil
}

// Health verifies the service is reachable.
func (c *Client) Health(ctx context.Context) error {
	if c.cfg.URL == "" {
		return errors.New("diarizer health: service url required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"/health", nil)
	if err != nil {
		return fmt.Errorf("diarizer health: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("diarizer health: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("diarizer health: http %d", resp.StatusCode)
	}
	return nil
}
