package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want LogLevel
		ok   bool
	}{
		{"trace", LevelTrace, true},
		{"DEBUG", LevelDebug, true},
		{"warn", LevelWarn, true},
		{"verbose", LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLevel(tt.name)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseLevel(%q) = %v, %t", tt.name, got, ok)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	defer Configure(Current())
	var buf bytes.Buffer
	Configure(Options{Level: LevelDebug, Format: FormatJSON, Output: &buf})

	Trace("dropped")
	Warn("scanned %s", "8809591517872")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d:\n%s", len(lines), buf.String())
	}
	var rec struct {
		Level  string `json:"level"`
		Msg    string `json:"msg"`
		Source struct {
			File string `json:"file"`
		} `json:"source"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec.Level != "WARN" || rec.Msg != "scanned 8809591517872" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Source.File != "pkg/log/log_test.go" {
		t.Errorf("source = %q", rec.Source.File)
	}
}

func TestConfigureKeepsUnsetFields(t *testing.T) {
	defer Configure(Current())
	var buf bytes.Buffer
	Configure(Options{Level: LevelInfo, Format: FormatJSON, Output: &buf})
	SetLevel(LevelError)

	if Enabled(LevelWarn) || !Enabled(LevelError) {
		t.Error("level change not applied")
	}
	o := Current()
	if o.Format != FormatJSON || o.Output != &buf {
		t.Errorf("format or output lost: %+v", o)
	}

	SetFormat(FormatText)
	Error("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Errorf("expected text record, got %q", buf.String())
	}
}
