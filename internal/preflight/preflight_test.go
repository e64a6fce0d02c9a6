package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"podsweep/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckTranscriber_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Transcriber.URL = srv.URL
	result := CheckTranscriber(context.Background(), &cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckTranscriber_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Transcriber.URL = srv.URL
	result := CheckTranscriber(context.Background(), &cfg)
	if result.Passed {
		t.Fatal("expected failure for 500 response")
	}
}

func TestCheckTranscriber_MissingURL(t *testing.T) {
	cfg := config.Default()
	cfg.Transcriber.URL = ""
	result := CheckTranscriber(context.Background(), &cfg)
	if result.Passed {
		t.Fatal("expected failure when url is missing")
	}
	if result.Detail != "missing url" {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckOllama_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.LLM.BaseURL = srv.URL
	result := CheckOllama(context.Background(), &cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckEmbedder_LexicalBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Embedder.Backend = "lexical"
	result := CheckEmbedder(context.Background(), &cfg)
	if !result.Passed {
		t.Fatalf("expected lexical backend to pass, got: %s", result.Detail)
	}
}

func TestCheckEmbedder_HTTPBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"embeddings":[[0.1,0.2]]}`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Embedder.Backend = "http"
	cfg.Embedder.URL = srv.URL
	result := CheckEmbedder(context.Background(), &cfg)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestRunAllSkipsDisabledServices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = dir
	cfg.Paths.LibraryDir = ""
	cfg.Paths.ReviewDir = ""
	cfg.Transcriber.URL = srv.URL
	cfg.Diarizer.Enabled = false
	cfg.Embedder.Enabled = false
	cfg.LLM.Enabled = false

	results := RunAll(context.Background(), &cfg)
	for _, r := range results {
		switch r.Name {
		case "Diarizer", "Embedder", "Ollama":
			t.Fatalf("disabled service %s should not be checked", r.Name)
		}
	}

	var sawStaging, sawTranscriber bool
	for _, r := range results {
		if r.Name == "Staging directory" {
			sawStaging = true
			if !r.Passed {
				t.Fatalf("staging check failed: %s", r.Detail)
			}
		}
		if r.Name == "Transcriber" {
			sawTranscriber = true
		}
	}
	if !sawStaging || !sawTranscriber {
		t.Fatalf("missing expected checks in results: %+v", results)
	}
}
