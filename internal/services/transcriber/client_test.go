package transcriber

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestTranscribeUploadsAndDecodes(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "episode.mp3")
	if err := os.WriteFile(audioPath, []byte("fake audio bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("path = %q, want /transcribe", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		file.Close()
		if header.Filename != "episode.mp3" {
			t.Errorf("filename = %q", header.Filename)
		}
		if lang := r.FormValue("language"); lang != "en" {
			t.Errorf("language field = %q, want en", lang)
		}
		w.Write([]byte(`{"language":"en","segments":[{"start":0,"end":4.5,"text":"hello world"}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL, Language: "en"})
	result, err := client.Transcribe(context.Background(), audioPath)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Language != "en" || len(result.Segments) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if result.Segments[0].Text != "hello world" || result.Segments[0].End != 4.5 {
		t.Errorf("segment = %+v", result.Segments[0])
	}
}

func TestTranscribeServerError(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "episode.mp3")
	os.WriteFile(audioPath, []byte("x"), 0o644)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gpu busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{URL: server.URL})
	if _, err := client.Transcribe(context.Background(), audioPath); err == nil {
		t.Fatal("expected error for http 503")
	}
}

func TestTranscribeMissingURL(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.Transcribe(context.Background(), "/nope.mp3"); err == nil {
		t.Fatal("expected error for missing service url")
	}
}
