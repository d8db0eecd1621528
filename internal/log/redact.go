package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// sensitiveKeys contains attribute keys that are always masked.
var sensitiveKeys = map[string]bool{
	"password":   true,
	"passwd":     true,
	"secret":     true,
	"token":      true,
	"credential": true,
	"auth":       true,
}

// MaskValue is the string used to replace redacted values.
const MaskValue = "***REDACTED***"

// RedactHandler wraps an slog.Handler to keep node credentials out of
// log output. It masks attributes whose key names a credential, and
// scrubs registered secret values out of string attributes and record
// messages.
//
// Design decision: we use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Session-layer code can log raw node traffic without knowing which
//     substrings are secret
type RedactHandler struct {
	// handler is the underlying slog handler that receives redacted records.
	handler slog.Handler

	// secrets are literal values scrubbed from messages and string
	// attributes, regardless of key.
	secrets []string
}

// Option configures a RedactHandler.
type Option func(*RedactHandler)

// WithSecret registers a literal value to scrub from all log output.
// Empty values are ignored.
func WithSecret(value string) Option {
	return func(h *RedactHandler) {
		if value != "" {
			h.secrets = append(h.secrets, value)
		}
	}
}

// NewRedactHandler creates a RedactHandler wrapping the given handler.
// If handler is nil, the returned RedactHandler wraps slog.Default().Handler().
func NewRedactHandler(handler slog.Handler, opts ...Option) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &RedactHandler{handler: handler}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle redacts the record's message and attributes and passes the
// result to the underlying handler.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, h.scrub(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(h.redactAttr(a))
		return true
	})

	return h.handler.Handle(ctx, redacted)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are redacted before being added.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redactedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redactedAttrs[i] = h.redactAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(redactedAttrs), secrets: h.secrets}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name), secrets: h.secrets}
}

// redactAttr redacts a single attribute, recursively handling groups.
func (h *RedactHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		redactedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			redactedAttrs[i] = h.redactAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redactedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, h.scrub(a.Value.String()))
	}
	return a
}

// scrub replaces every registered secret value occurring in s.
func (h *RedactHandler) scrub(s string) string {
	for _, secret := range h.secrets {
		s = strings.ReplaceAll(s, secret, MaskValue)
	}
	return s
}

// containsSensitiveKeyword reports whether a lowercased key embeds one
// of the credential keywords ("node_password", "login-token").
func containsSensitiveKeyword(key string) bool {
	for keyword := range sensitiveKeys {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// NewLogger creates a *slog.Logger writing human-readable text output
// with credential redaction.
//
// If verbose is true the level is Debug, which includes the raw node
// command/response traffic; otherwise Info.
func NewLogger(w io.Writer, verbose bool, opts ...Option) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	textHandler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactHandler(textHandler, opts...))
}

// NewJSONLogger creates a *slog.Logger with JSON output and credential
// redaction. Useful when the crawl log feeds structured aggregation.
func NewJSONLogger(w io.Writer, verbose bool, opts ...Option) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactHandler(jsonHandler, opts...))
}
