package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentLedger, Output: &buf})

	logger.Info("refreshed", FieldRows, 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != ComponentLedger {
		t.Errorf("component = %v, want %s", entry[FieldComponent], ComponentLedger)
	}
	if entry[FieldRows] != float64(3) {
		t.Errorf("rows = %v, want 3", entry[FieldRows])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: ParseLevel("warn"), Output: &buf, Component: ComponentApp})

	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info message should be filtered: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn message missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogErrorFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "text", Output: &buf, Component: ComponentStorage})

	logger.LogError(context.Background(), "query failed", errors.New("disk I/O error"), ErrorTypeDatabase, OpRefresh, nil)

	out := buf.String()
	for _, want := range []string{"disk I/O error", ErrorTypeDatabase, OpRefresh, ComponentStorage} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	logger := Discard().WithComponent(ComponentCLI)
	ctx := WithContext(context.Background(), logger)

	if got := FromContext(ctx); got != logger {
		t.Fatalf("expected stored logger back")
	}
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got component %q", got.Component())
	}
}

func TestFieldsBuilder(t *testing.T) {
	fields := NewFields().
		WithTransaction(7, "50.00", "Expense", 4, 1).
		WithRefresh(2, "default", "March, 2024 - Summary", 5)

	if fields[FieldTransactionID] != int64(7) || fields[FieldAmount] != "50.00" {
		t.Fatalf("unexpected transaction fields: %v", fields)
	}
	if len(fields.ToSlice()) != 2*len(fields) {
		t.Fatalf("ToSlice length mismatch")
	}
}
