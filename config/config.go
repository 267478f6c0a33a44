package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	"boxcam/types"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "BOXCAM_"

// Config is the static configuration loaded at startup
type Config struct {
	Source    string                `toml:"source"`
	Frame     types.FrameConfig     `toml:"frame"`
	Detection types.DetectionConfig `toml:"detection"`
	Sharpen   types.SharpenConfig   `toml:"sharpen"`
	Video     types.VideoConfig     `toml:"video"`
	Output    types.OutputConfig    `toml:"output"`
	UI        types.UIConfig        `toml:"ui"`
	Logging   types.LoggingConfig   `toml:"logging"`
	Metrics   types.MetricsConfig   `toml:"metrics"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Source:    "0",
		Frame:     types.DefaultFrameConfig(),
		Detection: types.DefaultDetectionConfig(),
		Sharpen:   types.DefaultSharpenConfig(),
		Video:     types.DefaultVideoConfig(),
		Output:    types.DefaultOutputConfig(),
		UI:        types.DefaultUIConfig(),
		Logging:   types.DefaultLoggingConfig(),
	}
}

// Load reads a TOML file over the defaults.
// A missing file is only an error when required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("unknown keys in %s:\n%s", path, strict.String())
		}
		return cfg, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
	}

	return cfg, nil
}

// envBindings maps environment suffixes to setters
var envBindings = map[string]func(cfg *Config, value string) error{
	"SOURCE":         func(cfg *Config, v string) error { cfg.Source = v; return nil },
	"MIN_AREA":       func(cfg *Config, v string) error { return parseFloat(v, &cfg.Detection.MinContourArea) },
	"TRIGGER":        func(cfg *Config, v string) error { return parseFloat(v, &cfg.Detection.TriggerFraction) },
	"SHARPEN_AMOUNT": func(cfg *Config, v string) error { return parseFloat(v, &cfg.Sharpen.Amount) },
	"SNAPSHOT_DIR":   func(cfg *Config, v string) error { cfg.Output.SnapshotDir = v; return nil },
	"RECORDING_DIR":  func(cfg *Config, v string) error { cfg.Output.RecordingDir = v; return nil },
	"LOG_LEVEL":      func(cfg *Config, v string) error { cfg.Logging.Level = v; return nil },
	"LOG_FORMAT":     func(cfg *Config, v string) error { cfg.Logging.Format = v; return nil },
	"METRICS_LISTEN": func(cfg *Config, v string) error { cfg.Metrics.Listen = v; return nil },
	"CODECS": func(cfg *Config, v string) error {
		var codecs []string
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				codecs = append(codecs, c)
			}
		}
		cfg.Video.Codecs = codecs
		return nil
	},
}

// ApplyEnv applies BOXCAM_* overrides using lookup (normally os.LookupEnv)
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for suffix, set := range envBindings {
		value, ok := lookup(EnvPrefix + suffix)
		if !ok || value == "" {
			continue
		}
		if err := set(cfg, value); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, suffix, err)
		}
	}
	return nil
}

// ApplyFlags copies flags that were explicitly set on the command line.
// Flags override both the file and the environment.
func ApplyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		value := f.Value.String()
		switch f.Name {
		case "source":
			cfg.Source = value
		case "min-area":
			err = parseFloat(value, &cfg.Detection.MinContourArea)
		case "trigger":
			err = parseFloat(value, &cfg.Detection.TriggerFraction)
		case "snapshot-dir":
			cfg.Output.SnapshotDir = value
		case "recording-dir":
			cfg.Output.RecordingDir = value
		case "log-level":
			cfg.Logging.Level = value
		case "log-json":
			cfg.Logging.Format = "text"
			if value == "true" {
				cfg.Logging.Format = "json"
			}
		case "metrics-listen":
			cfg.Metrics.Listen = value
		}
		if err != nil {
			err = fmt.Errorf("--%s: %w", f.Name, err)
		}
	})
	return err
}

// Validate checks the settings the detection loop relies on
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Source) == "" {
		errs = append(errs, errors.New("source must not be empty"))
	}
	if c.Frame.Width <= 0 || c.Frame.Height <= 0 {
		errs = append(errs, fmt.Errorf("frame size %dx%d must be positive", c.Frame.Width, c.Frame.Height))
	}
	if c.Detection.TriggerFraction <= 0 || c.Detection.TriggerFraction >= 1 {
		errs = append(errs, fmt.Errorf("trigger_fraction %.3f must be between 0 and 1", c.Detection.TriggerFraction))
	}
	if c.Frame.Width > 0 {
		if x := int(float64(c.Frame.Width) * c.Detection.TriggerFraction); x <= 0 || x >= c.Frame.Width {
			errs = append(errs, fmt.Errorf("trigger line %d falls outside frame width %d", x, c.Frame.Width))
		}
	}
	if c.Detection.MinContourArea < 0 {
		errs = append(errs, errors.New("min_contour_area must not be negative"))
	}
	if c.Detection.History <= 0 {
		errs = append(errs, errors.New("history must be positive"))
	}
	if c.Detection.MorphKernel <= 0 || c.Detection.MorphIterations < 0 {
		errs = append(errs, errors.New("morph_kernel must be positive and morph_iterations non-negative"))
	}
	if c.Sharpen.Amount < 1 {
		errs = append(errs, fmt.Errorf("sharpen amount %.2f must be at least 1", c.Sharpen.Amount))
	}
	if c.Sharpen.Radius < 0 || c.Sharpen.Threshold < 0 {
		errs = append(errs, errors.New("sharpen radius and threshold must not be negative"))
	}
	if c.Video.FPS <= 0 {
		errs = append(errs, errors.New("video fps must be positive"))
	}
	if len(c.Video.Codecs) == 0 {
		errs = append(errs, errors.New("at least one video codec is required"))
	}
	if c.Output.SnapshotDir == "" || c.Output.RecordingDir == "" {
		errs = append(errs, errors.New("output directories must be set"))
	}

	return errors.Join(errs...)
}

func parseFloat(value string, dst *float64) error {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}
