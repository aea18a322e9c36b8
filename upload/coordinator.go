// Package upload coordinates document upload batches.
//
// Information Hiding:
// - Selection validation rules (extension gate, empty batch)
// - Single in-flight enforcement
// - File handle lifecycle for one batch
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/obiajulu/comply/api"
)

// Accepted document extensions. This is a client-side gate only; the
// backend does its own processing and may still reject a file.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

// Validation and coordination errors.
var (
	ErrNoFiles  = errors.New("no files selected")
	ErrInFlight = errors.New("an upload is already in progress")
)

// Embedder is the backend operation the coordinator drives. *api.Client
// satisfies it.
type Embedder interface {
	Embed(ctx context.Context, files []api.EmbedFile) (api.EmbedResult, error)
}

// Coordinator submits document batches to the backend. At most one batch is
// in flight at a time; a second Run while one is pending fails with
// ErrInFlight. A failed batch leaves the selection untouched so the user
// can re-submit.
type Coordinator struct {
	embedder Embedder
	log      zerolog.Logger
	inflight atomic.Bool
}

// NewCoordinator creates a coordinator over the given embedder.
func NewCoordinator(embedder Embedder, log zerolog.Logger) *Coordinator {
	return &Coordinator{embedder: embedder, log: log}
}

// ValidateSelection checks a selection before any request is made: the
// batch must be non-empty and every file must carry an accepted extension.
func ValidateSelection(paths []string) error {
	if len(paths) == 0 {
		return ErrNoFiles
	}
	for _, path := range paths {
		ext := strings.ToLower(filepath.Ext(path))
		if !allowedExtensions[ext] {
			return fmt.Errorf("unsupported file type %q: only PDF and DOCX are accepted", filepath.Base(path))
		}
	}
	return nil
}

// Pending reports whether a batch is currently in flight.
func (c *Coordinator) Pending() bool {
	return c.inflight.Load()
}

// Run validates the selection, opens every file, and submits the whole
// batch as one atomic request.
func (c *Coordinator) Run(ctx context.Context, paths []string) (api.EmbedResult, error) {
	if err := ValidateSelection(paths); err != nil {
		return api.EmbedResult{}, err
	}
	if !c.inflight.CompareAndSwap(false, true) {
		return api.EmbedResult{}, ErrInFlight
	}
	defer c.inflight.Store(false)

	files := make([]api.EmbedFile, 0, len(paths))
	var handles []*os.File
	defer func() {
		for _, h := range handles {
			h.Close()
		}
	}()

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return api.EmbedResult{}, fmt.Errorf("failed to open %s: %w", path, err)
		}
		handles = append(handles, f)
		files = append(files, api.EmbedFile{Name: filepath.Base(path), Reader: f})
	}

	c.log.Info().Int("files", len(files)).Msg("submitting upload batch")

	result, err := c.embedder.Embed(ctx, files)
	if err != nil {
		return api.EmbedResult{}, err
	}
	return result, nil
}

// Summary renders a one-line result banner for display.
func Summary(result api.EmbedResult) string {
	switch result.Status {
	case api.StatusSuccess:
		return fmt.Sprintf("✓ %s", result.Message)
	case api.StatusPartialSuccess:
		return fmt.Sprintf("⚠ %s (%d file errors)", result.Message, len(result.Errors))
	default:
		if result.Message != "" {
			return fmt.Sprintf("✗ %s", result.Message)
		}
		return "✗ upload failed"
	}
}
