package watch

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

// DefaultInterval is the polling period when none is configured.
const DefaultInterval = 500 * time.Millisecond

// Source yields the current clipboard text.
type Source interface {
	Read(ctx context.Context) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (string, error)

func (f SourceFunc) Read(ctx context.Context) (string, error) { return f(ctx) }

// FileSource reads a text file, standing in for the OS clipboard. A missing
// file reads as empty.
type FileSource struct {
	Path string
}

func (f FileSource) Read(context.Context) (string, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", f.Path, err)
	}
	return string(b), nil
}

// Handler receives each new clipboard text with its fingerprint.
type Handler func(ctx context.Context, text, fingerprint string)

// Fingerprint identifies a clipboard text: the hex blake2b-256 digest.
func Fingerprint(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Watcher polls a Source and calls its handler once per distinct text.
// Blank texts and texts equal to the previous one are skipped.
type Watcher struct {
	src      Source
	handle   Handler
	interval time.Duration
	log      *zap.Logger

	last string
}

// New creates a watcher. interval <= 0 uses DefaultInterval.
func New(src Source, interval time.Duration, handle Handler, log *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{src: src, handle: handle, interval: interval, log: log}
}

// Poll reads the source once and dispatches the text when it is new.
// It reports whether the handler was called.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	text, err := w.src.Read(ctx)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(text) == "" {
		return false, nil
	}
	fp := Fingerprint(text)
	if fp == w.last {
		return false, nil
	}
	w.last = fp
	w.handle(ctx, text, fp)
	return true, nil
}

// Run polls until ctx is done. Read errors are logged and polling goes on.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("watching clipboard source", zap.Duration("interval", w.interval))
	for {
		if _, err := w.Poll(ctx); err != nil {
			w.log.Warn("clipboard read failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
