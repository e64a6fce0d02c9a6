// Package embedder produces sentence embeddings for the semantic detection
// channels. Two backends exist: "http" calls an external embedding service,
// "lexical" hashes token statistics into fixed-dimension vectors locally.
// The lexical vectors are far coarser than model embeddings but keep the
// similarity-based features alive when no service is running.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode"
)

// Backend names accepted by New.
const (
	BackendHTTP    = "http"
	BackendLexical = "lexical"
)

const defaultHTTPTimeout = 2 * time.Minute

// Client produces one embedding vector per input text.
type Client interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	Name() string
}

// Config captures the runtime settings for the embedding backend.
type Config struct {
	Backend        string
	URL            string
	TimeoutSeconds int
}

// New selects a backend by name. An empty backend defaults to lexical so
// the semantic channels work out of the box.
func New(cfg Config) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendHTTP:
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, errors.New("embedder: http backend requires a url")
		}
		return newHTTPClient(cfg), nil
	case BackendLexical, "":
		return Lexical{}, nil
	default:
		return nil, fmt.Errorf("embedder: unknown backend %q", cfg.Backend)
	}
}

type httpClient struct {
	url        string
	httpClient *http.Client
}

func newHTTPClient(cfg Config) *httpClient {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &httpClient{
		url:        strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) Name() string { return BackendHTTP }

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// Embed posts all texts in one batch and expects one vector per text.
func (c *httpClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(embedRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("embed: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embed: http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	var payload embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("embed: decode response: %w", err)
	}
	if len(payload.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d texts", len(payload.Embeddings), len(texts))
	}
	return payload.Embeddings, nil
}

// lexicalDimensions is the hashed vector width. Wide enough that common
// podcast vocabulary rarely collides, small enough to stay cheap.
const lexicalDimensions = 256

// Lexical embeds text by hashing lowercased word tokens into a fixed-width
// log-scaled term-frequency vector. Deterministic and dependency-free; two
// texts sharing vocabulary land near each other, which is all the topic
// discontinuity features need.
type Lexical struct{}

func (Lexical) Name() string { return BackendLexical }

// Embed never fails; empty texts produce zero vectors.
func (Lexical) Embed(_ context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = lexicalVector(text)
	}
	return vectors, nil
}

func lexicalVector(text string) []float64 {
	vector := make([]float64, lexicalDimensions)
	counts := make(map[uint32]int)
	for _, token := range tokenize(text) {
		hasher := fnv.New32a()
		hasher.Write([]byte(token)) //nolint:errcheck
		counts[hasher.Sum32()%lexicalDimensions]++
	}
	var norm float64
	for bucket, count := range counts {
		weight := 1 + math.Log(float64(count))
		vector[bucket] = weight
		norm += weight * weight
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vector {
			vector[i] /= norm
		}
	}
	return vector
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
