package logger

import (
	"strings"
	"testing"

	"github.com/op/go-logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  logging.Level
	}{
		{"debug", logging.DEBUG},
		{"warn", logging.WARNING},
		{"warning", logging.WARNING},
		{"error", logging.ERROR},
		{"", logging.INFO},
		{"verbose", logging.INFO},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestGetLogsFiltersByLevel(t *testing.T) {
	if err := InitLogger(logging.ERROR, ""); err != nil {
		t.Fatalf("InitLogger failed: %v", err)
	}
	Debugf("debug %d", 1)
	Errorf("boom %d", 2)

	got := GetLogs(10, "error")
	if len(got) == 0 || !strings.Contains(got[0], "boom 2") {
		t.Fatalf("GetLogs(error) = %v, want newest error first", got)
	}
	for _, line := range got {
		if strings.Contains(line, "debug 1") {
			t.Errorf("debug entry leaked into error filter: %q", line)
		}
	}

	all := GetLogs(10, "debug")
	found := false
	for _, line := range all {
		if strings.Contains(line, "debug 1") {
			found = true
		}
	}
	if !found {
		t.Errorf("GetLogs(debug) = %v, want debug entry", all)
	}
}
