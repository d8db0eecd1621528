package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactHandlerMasksSensitiveKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		key      string
		value    string
		wantMask bool
	}{
		{
			name:     "password key is masked",
			key:      "password",
			value:    "hunter2",
			wantMask: true,
		},
		{
			name:     "Password key (uppercase) is masked",
			key:      "Password",
			value:    "hunter2",
			wantMask: true,
		},
		{
			name:     "embedded keyword is masked",
			key:      "node_password",
			value:    "hunter2",
			wantMask: true,
		},
		{
			name:     "token key is masked",
			key:      "token",
			value:    "abc123",
			wantMask: true,
		},
		{
			name:     "callsign key passes through",
			key:      "call",
			value:    "KE4OTZ-3",
			wantMask: false,
		},
		{
			name:     "port key passes through",
			key:      "port",
			value:    "1",
			wantMask: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(NewRedactHandler(slog.NewTextHandler(&buf, nil)))
			logger.Info("test", tt.key, tt.value)

			out := buf.String()
			if tt.wantMask {
				if strings.Contains(out, tt.value) {
					t.Errorf("output contains raw value %q: %s", tt.value, out)
				}
				if !strings.Contains(out, MaskValue) {
					t.Errorf("output missing mask: %s", out)
				}
			} else if !strings.Contains(out, tt.value) {
				t.Errorf("output missing value %q: %s", tt.value, out)
			}
		})
	}
}

func TestRedactHandlerScrubsRegisteredSecrets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewRedactHandler(
		slog.NewTextHandler(&buf, nil),
		WithSecret("hunter2"),
	))

	// Echoed login traffic carries the password inside an ordinary
	// string attribute and the message itself.
	logger.Debug("sent line hunter2", "line", "password: hunter2\r")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("output contains secret: %s", out)
	}
	if strings.Count(out, MaskValue) < 2 {
		t.Errorf("expected mask in message and attribute: %s", out)
	}
}

func TestRedactHandlerScrubsGroupedAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewRedactHandler(slog.NewTextHandler(&buf, nil)))

	logger.Info("connect", slog.Group("login",
		slog.String("user", "kd9lsv"),
		slog.String("password", "hunter2"),
	))

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("grouped password not masked: %s", out)
	}
	if !strings.Contains(out, "kd9lsv") {
		t.Errorf("grouped user lost: %s", out)
	}
}

func TestRedactHandlerWithAttrsRedactsEarly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewRedactHandler(slog.NewTextHandler(&buf, nil)))
	logger = logger.With("password", "hunter2")

	logger.Info("attempting target")

	if out := buf.String(); strings.Contains(out, "hunter2") {
		t.Errorf("With-attached password not masked: %s", out)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	quiet := NewLogger(&buf, false)
	quiet.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug output at default level: %s", buf.String())
	}

	buf.Reset()
	verbose := NewLogger(&buf, true)
	verbose.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("verbose logger dropped debug output: %s", buf.String())
	}
}

func TestNewJSONLoggerRedacts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true, WithSecret("hunter2"))
	logger.Info("login", "line", "password hunter2 accepted")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("JSON output contains secret: %s", out)
	}
	if !strings.Contains(out, `"msg":"login"`) {
		t.Errorf("unexpected JSON shape: %s", out)
	}
}
