package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boxcam.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadFromTOML(t *testing.T) {
	path := writeTemp(t, `
source = "IMG_3829.MOV"

[detection]
min_contour_area = 5000
trigger_fraction = 0.5
detect_shadows = false

[sharpen]
amount = 1.5

[video]
codecs = ["MJPG"]

[logging]
level = "debug"
`)

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Source != "IMG_3829.MOV" {
		t.Errorf("Expected source IMG_3829.MOV, got %s", cfg.Source)
	}
	if cfg.Detection.MinContourArea != 5000 || cfg.Detection.TriggerFraction != 0.5 || cfg.Detection.DetectShadows {
		t.Errorf("Unexpected detection config %+v", cfg.Detection)
	}
	if cfg.Detection.History != 500 {
		t.Errorf("Expected default history to survive, got %d", cfg.Detection.History)
	}
	if cfg.Sharpen.Amount != 1.5 || cfg.Sharpen.Radius != 2 {
		t.Errorf("Unexpected sharpen config %+v", cfg.Sharpen)
	}
	if !reflect.DeepEqual(cfg.Video.Codecs, []string{"MJPG"}) {
		t.Errorf("Expected codecs [MJPG], got %v", cfg.Video.Codecs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug logging, got %s", cfg.Logging.Level)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeTemp(t, "[detection]\nmin_area = 5\n")

	_, err := Load(path, true)
	if err == nil || !strings.Contains(err.Error(), "unknown keys") {
		t.Errorf("Expected unknown keys error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := Load(missing, false)
	if err != nil {
		t.Fatalf("Expected optional missing file to be ignored, got %v", err)
	}
	if cfg.Source != Default().Source {
		t.Errorf("Expected defaults, got source %s", cfg.Source)
	}

	if _, err := Load(missing, true); err == nil {
		t.Error("Expected error for required missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BOXCAM_SOURCE":   "rtsp://cam/stream1",
		"BOXCAM_MIN_AREA": "2500",
		"BOXCAM_CODECS":   "mp4v, XVID",
		"BOXCAM_TRIGGER":  "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := ApplyEnv(&cfg, lookup); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Source != "rtsp://cam/stream1" || cfg.Detection.MinContourArea != 2500 {
		t.Errorf("Unexpected config after env %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Video.Codecs, []string{"mp4v", "XVID"}) {
		t.Errorf("Expected codecs from env, got %v", cfg.Video.Codecs)
	}
	if cfg.Detection.TriggerFraction != 0.9 {
		t.Errorf("Expected empty env value to be ignored, got %v", cfg.Detection.TriggerFraction)
	}

	env["BOXCAM_TRIGGER"] = "abc"
	if err := ApplyEnv(&cfg, lookup); err == nil {
		t.Error("Expected parse error for bad trigger value")
	}
}

func TestApplyFlagsOnlyChanged(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("source", "0", "")
	fs.Float64("trigger", 0.9, "")
	fs.Bool("log-json", false, "")
	if err := fs.Parse([]string{"--trigger=0.4", "--log-json"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg := Default()
	cfg.Source = "from-file.mp4"
	if err := ApplyFlags(&cfg, fs); err != nil {
		t.Fatalf("ApplyFlags failed: %v", err)
	}

	if cfg.Source != "from-file.mp4" {
		t.Errorf("Expected unset flag to keep file value, got %s", cfg.Source)
	}
	if cfg.Detection.TriggerFraction != 0.4 {
		t.Errorf("Expected trigger 0.4, got %v", cfg.Detection.TriggerFraction)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected json log format, got %s", cfg.Logging.Format)
	}
}

func TestApplyFlagsLogJSONFalseOverridesFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Bool("log-json", false, "")
	if err := fs.Parse([]string{"--log-json=false"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg := Default()
	cfg.Logging.Format = "json"
	if err := ApplyFlags(&cfg, fs); err != nil {
		t.Fatalf("ApplyFlags failed: %v", err)
	}

	if cfg.Logging.Format != "text" {
		t.Errorf("Expected text log format, got %s", cfg.Logging.Format)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"trigger zero", func(c *Config) { c.Detection.TriggerFraction = 0 }},
		{"trigger one", func(c *Config) { c.Detection.TriggerFraction = 1 }},
		{"trigger rounds to edge", func(c *Config) { c.Frame.Width = 10; c.Detection.TriggerFraction = 0.05 }},
		{"no codecs", func(c *Config) { c.Video.Codecs = nil }},
		{"negative area", func(c *Config) { c.Detection.MinContourArea = -1 }},
		{"blunt amount", func(c *Config) { c.Sharpen.Amount = 0.5 }},
		{"empty source", func(c *Config) { c.Source = " " }},
		{"zero frame", func(c *Config) { c.Frame.Height = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
