package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"podsweep/internal/config"
	"podsweep/internal/deps"
	"podsweep/internal/services/diarizer"
	"podsweep/internal/services/embedder"
	"podsweep/internal/services/ollama"
	"podsweep/internal/services/transcriber"
)

const serviceCheckTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckService runs a client health probe with a bounded timeout.
func CheckService(ctx context.Context, name string, probe func(context.Context) error) Result {
	checkCtx, cancel := context.WithTimeout(ctx, serviceCheckTimeout)
	defer cancel()

	if err := probe(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeServiceError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckTranscriber verifies the transcription service is reachable.
func CheckTranscriber(ctx context.Context, cfg *config.Config) Result {
	const name = "Transcriber"
	if cfg.Transcriber.URL == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	client := transcriber.NewClient(transcriber.Config{
		URL:            cfg.Transcriber.URL,
		TimeoutSeconds: cfg.Transcriber.RequestTimeout,
	})
	return CheckService(ctx, name, client.Health)
}

// CheckDiarizer verifies the speaker diarization service is reachable.
func CheckDiarizer(ctx context.Context, cfg *config.Config) Result {
	const name = "Diarizer"
	if cfg.Diarizer.URL == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	client := diarizer.NewClient(diarizer.Config{
		URL:            cfg.Diarizer.URL,
		TimeoutSeconds: cfg.Diarizer.RequestTimeout,
	})
	return CheckService(ctx, name, client.Health)
}

// CheckOllama verifies the Ollama instance used for segment verification.
func CheckOllama(ctx context.Context, cfg *config.Config) Result {
	const name = "Ollama"
	client := ollama.NewClient(ollama.Config{
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	return CheckService(ctx, name, client.Health)
}

// CheckEmbedder verifies the HTTP embedding backend responds to a probe
// request. The lexical backend needs no service and always passes.
func CheckEmbedder(ctx context.Context, cfg *config.Config) Result {
	const name = "Embedder"
	if cfg.Embedder.Backend != embedder.BackendHTTP {
		return Result{Name: name, Passed: true, Detail: "lexical backend (no service)"}
	}
	if cfg.Embedder.URL == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	client, err := embedder.New(embedder.Config{
		Backend:        cfg.Embedder.Backend,
		URL:            cfg.Embedder.URL,
		TimeoutSeconds: cfg.Embedder.RequestTimeout,
	})
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return CheckService(ctx, name, func(probeCtx context.Context) error {
		_, err := client.Embed(probeCtx, []string{"ping"})
		return err
	})
}

// CheckMediaTools reports availability of the ffmpeg and ffprobe binaries.
func CheckMediaTools(cfg *config.Config) []Result {
	statuses := deps.CheckBinaries(deps.MediaToolRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		detail := status.Detail
		if status.Available {
			detail = status.Command
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: detail})
	}
	return results
}

// summarizeServiceError produces a human-readable summary for probe failures.
func summarizeServiceError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (service unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (service unreachable)"
	}
	return err.Error()
}
