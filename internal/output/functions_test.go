package output

import (
	"strings"
	"testing"
)

func TestPrintProgressBarBounds(t *testing.T) {
	tests := []struct {
		current, total int64
		contains       string
	}{
		{0, 100, "0.0%"},
		{50, 100, "50.0%"},
		{100, 100, "100.0%"},
		{150, 100, "100.0%"}, // clamped
		{-5, 100, "0.0%"},    // clamped
	}
	for _, tt := range tests {
		bar := PrintProgressBar(tt.current, tt.total, 30)
		if !strings.Contains(bar, tt.contains) {
			t.Errorf("PrintProgressBar(%d, %d) = %q, want to contain %q", tt.current, tt.total, bar, tt.contains)
		}
	}
}

func TestTerminalHeightIsUsable(t *testing.T) {
	// Stdout is not a terminal under go test, so this exercises the
	// fallback; on a real terminal it must report rows, not columns, so a
	// sane display still fits.
	if height := getTerminalHeight(); height < 10 {
		t.Errorf("getTerminalHeight() = %d, want a usable height", height)
	}
}

func TestFormatETA(t *testing.T) {
	if eta := FormatETA(1000, 0); eta != "ETA=?" {
		t.Errorf("zero speed should give unknown ETA, got %q", eta)
	}
	if eta := FormatETA(0, 100); eta != "ETA=?" {
		t.Errorf("nothing remaining should give unknown ETA, got %q", eta)
	}
	if eta := FormatETA(1000, 100); eta != "ETA=10s" {
		t.Errorf("FormatETA(1000, 100) = %q, want ETA=10s", eta)
	}
}
