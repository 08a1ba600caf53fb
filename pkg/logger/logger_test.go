package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInfoCF_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})
	defer Init(Config{})

	InfoCF("menufetch", "main page fetched", map[string]interface{}{
		"url":   "https://example.com",
		"items": 3,
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}

	if entry["component"] != "menufetch" {
		t.Errorf("Expected component 'menufetch', got %v", entry["component"])
	}
	if entry["message"] != "main page fetched" {
		t.Errorf("Expected message, got %v", entry["message"])
	}
	if entry["level"] != "info" {
		t.Errorf("Expected level 'info', got %v", entry["level"])
	}
	if entry["items"] != float64(3) {
		t.Errorf("Expected items=3, got %v", entry["items"])
	}
}

func TestInit_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	defer Init(Config{})

	InfoC("test", "should be dropped")
	DebugCF("test", "should be dropped", nil)
	WarnC("test", "kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info/debug lines should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn line should be written: %s", out)
	}
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "verbose", Output: &buf})
	defer Init(Config{})

	DebugCF("test", "debug", nil)
	ErrorCF("test", "error", map[string]interface{}{"err": "boom"})

	out := buf.String()
	if strings.Contains(out, `"message":"debug"`) {
		t.Error("debug should be filtered with the info fallback")
	}
	if !strings.Contains(out, `"message":"error"`) {
		t.Errorf("error line should be written: %s", out)
	}
}

func TestInit_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Format: "console", Output: &buf})
	defer Init(Config{})

	InfoC("cli", "hello")

	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("console format should not be JSON: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("console output should contain message: %s", buf.String())
	}
}
