package logger

import (
	"context"
	"log/slog"
	"testing"
)

func TestInit(t *testing.T) {
	logger := Init("test-service", slog.LevelInfo)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestScanID_RoundTrip(t *testing.T) {
	ctx := context.Background()

	if id := ScanID(ctx); id != "" {
		t.Errorf("expected empty scan id, got %q", id)
	}

	ctx = WithScanID(ctx, "scan-123")
	if id := ScanID(ctx); id != "scan-123" {
		t.Errorf("expected 'scan-123', got %q", id)
	}
}

func TestNewScanID_Unique(t *testing.T) {
	a, b := NewScanID(), NewScanID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}

func TestWithScan(t *testing.T) {
	if attrs := WithScan(context.Background()); attrs != nil {
		t.Errorf("expected nil attrs without scan id, got %v", attrs)
	}

	ctx := WithScanID(context.Background(), "scan-xyz")
	attrs := WithScan(ctx)
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attr, got %d", len(attrs))
	}
	attr, ok := attrs[0].(slog.Attr)
	if !ok || attr.Key != "scan_id" || attr.Value.String() != "scan-xyz" {
		t.Errorf("attr = %v", attrs[0])
	}
}
