package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

// ============================================================================
// Error Tests
// ============================================================================

func TestConfigError(t *testing.T) {
	inner := errors.New("places.timeout: must be positive")
	err := NewConfigError("config.yaml", inner)

	if got := err.Error(); got != "config error in config.yaml: places.timeout: must be positive" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Error("Expected ConfigError to unwrap to inner error")
	}

	noPath := NewConfigError("", inner)
	if !strings.HasPrefix(noPath.Error(), "config error: ") {
		t.Errorf("Error() = %q, want prefix %q", noPath.Error(), "config error: ")
	}
}

func TestCommandError(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewCommandError("usage", inner)

	if got := err.Error(); got != "command usage failed: connection refused" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, inner) {
		t.Error("Expected CommandError to unwrap to inner error")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"config", NewConfigError("", errors.New("bad")), ExitConfigError},
		{"wrapped config", NewCommandError("run", NewConfigError("x", errors.New("bad"))), ExitConfigError},
		{"command", NewCommandError("run", errors.New("boom")), ExitFailure},
		{"plain", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

// ============================================================================
// Output Tests
// ============================================================================

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" json ", FormatJSON, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type report struct {
	Calls int `json:"calls"`
}

func (r report) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Calls: %d\n", r.Calls)
	return err
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"plain value", "test message", "test message\n"},
		{"text renderer", report{Calls: 3}, "Calls: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := (&TextFormatter{}).FormatTo(buf, tt.data); err != nil {
				t.Fatalf("FormatTo() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("FormatTo() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	for _, indent := range []bool{false, true} {
		buf := &bytes.Buffer{}
		f := &JSONFormatter{Indent: indent}
		if err := f.FormatTo(buf, report{Calls: 7}); err != nil {
			t.Fatalf("FormatTo() error = %v", err)
		}

		var got report
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("Output is not valid JSON: %v", err)
		}
		if got.Calls != 7 {
			t.Errorf("Calls = %d, want 7", got.Calls)
		}
		if indent != strings.Contains(buf.String(), "\n  ") {
			t.Errorf("indent=%v but output was %q", indent, buf.String())
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("NewFormatter(json) should return *JSONFormatter")
	}
	if _, ok := NewFormatter(FormatText).(*TextFormatter); !ok {
		t.Error("NewFormatter(text) should return *TextFormatter")
	}
}

// ============================================================================
// Signal Tests
// ============================================================================

func TestSetupSignalHandler_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SetupSignalHandler(parent)
	defer stop()

	cancel()
	<-ctx.Done()
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Errorf("ctx.Err() = %v, want context.Canceled", ctx.Err())
	}
}

func TestSetupSignalHandler_Stop(t *testing.T) {
	ctx, stop := SetupSignalHandler(context.Background())
	stop()

	select {
	case <-ctx.Done():
	default:
		t.Error("Expected context to be done after stop")
	}
}
