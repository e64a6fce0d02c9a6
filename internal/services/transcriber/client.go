// Package transcriber is the HTTP client for the external speech-to-text
// service. The engine treats word-level timing as already resolved by the
// service; the client only uploads audio and decodes the timed segment
// list.
package transcriber

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"podsweep/internal/transcript"
)

const defaultHTTPTimeout = 30 * time.Minute

// Config captures the runtime settings for the transcription service.
type Config struct {
	URL            string
	Language       string
	TimeoutSeconds int
}

// Client uploads audio files for transcription.
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

// NewClient constructs a transcriber client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			URL:            strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
			Language:       strings.TrimSpace(cfg.Language),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Transcribe uploads the audio file and returns the timed transcript.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (*transcript.Transcript, error) {
	if c.cfg.URL == "" {
		return nil, errors.New("transcribe: service url required")
	}
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("transcribe: build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("transcribe: read audio: %w", err)
	}
	if c.cfg.Language != "" {
		if err := writer.WriteField("language", c.cfg.Language); err != nil {
			return nil, fmt.Errorf("transcribe: build form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("transcribe: finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/transcribe", &body)
	if err != nil {
		return nil, fmt.Errorf("transcribe: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("transcribe: http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transcribe: read response: %w", err)
	}
	result, err := transcript.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	return result, nil
}

// Health verifies the service is reachable.
func (c *Client) Health(ctx context.Context) error {
	if c.cfg.URL == "" {
		return errors.New("transcriber health: service url required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"/health", nil)
	if err != nil {
		return fmt.Errorf("transcriber health: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transcriber health: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transcriber health: http %d", resp.StatusCode)
	}
	return nil
}
