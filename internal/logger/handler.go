package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
)

const tagKey = "tag"

// filteringHandler drops records rejected by the config's tag, package and
// file filters before they reach the wrapped handler.
type filteringHandler struct {
	next slog.Handler
	cfg  *Config
}

func newFilteringHandler(next slog.Handler, cfg *Config) *filteringHandler {
	return &filteringHandler{next: next, cfg: cfg}
}

func (h *filteringHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *filteringHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg != nil {
		if reason := h.cfg.reject(r); reason != "" {
			if debugFilter {
				fmt.Fprintf(os.Stderr, "[FILTER] dropped %q: %s\n", r.Message, reason)
			}
			return nil
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *filteringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newFilteringHandler(h.next.WithAttrs(attrs), h.cfg)
}

func (h *filteringHandler) WithGroup(name string) slog.Handler {
	return newFilteringHandler(h.next.WithGroup(name), h.cfg)
}

// reject returns why r is filtered out, or "" to keep it. Package and file
// filters only apply when the record carries a caller.
func (c *Config) reject(r slog.Record) string {
	if pkg, file, ok := callerOf(r.PC); ok {
		if !c.packages.permits(pkg) {
			return "package " + pkg
		}
		if !c.files.permits(file) {
			return "file " + file
		}
	}
	if tag := tagOf(r); !c.tags.permits(tag) {
		if tag == "" {
			return "untagged while tags are enabled"
		}
		return "tag " + tag
	}
	return ""
}

// callerOf maps a program counter to its package directory and file name.
func callerOf(pc uintptr) (pkg, file string, ok bool) {
	if pc == 0 {
		return "", "", false
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return "", "", false
	}
	return filepath.Base(filepath.Dir(frame.File)), filepath.Base(frame.File), true
}

func tagOf(r slog.Record) string {
	var tag string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == tagKey {
			tag = a.Value.String()
			return false
		}
		return true
	})
	return tag
}
