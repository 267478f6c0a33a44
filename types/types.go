package types

// FrameConfig holds the size every frame is resized to before detection
type FrameConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// DefaultFrameConfig returns the default frame configuration
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{
		Width:  640,
		Height: 480,
	}
}

// DetectionConfig holds background subtraction and trigger constants
type DetectionConfig struct {
	MinContourArea  float64 `toml:"min_contour_area"`
	TriggerFraction float64 `toml:"trigger_fraction"`
	History         int     `toml:"history"`
	VarThreshold    float64 `toml:"var_threshold"`
	DetectShadows   bool    `toml:"detect_shadows"`
	ShadowCutoff    float32 `toml:"shadow_cutoff"`
	MorphKernel     int     `toml:"morph_kernel"`
	MorphIterations int     `toml:"morph_iterations"`
	ShowMask        bool    `toml:"show_mask"`
}

// DefaultDetectionConfig returns the default detection configuration
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		MinContourArea:  100000,
		TriggerFraction: 0.9,
		History:         500,
		VarThreshold:    50,
		DetectShadows:   true,
		ShadowCutoff:    254,
		MorphKernel:     5,
		MorphIterations: 2,
		ShowMask:        true,
	}
}

// SharpenConfig holds unsharp mask parameters applied to snapshots
type SharpenConfig struct {
	Radius    int     `toml:"radius"`
	Sigma     float64 `toml:"sigma"`
	Amount    float64 `toml:"amount"`
	Threshold float64 `toml:"threshold"`
}

// DefaultSharpenConfig returns the default sharpening configuration
func DefaultSharpenConfig() SharpenConfig {
	return SharpenConfig{
		Radius:    2,
		Sigma:     1.0,
		Amount:    2.0,
		Threshold: 0,
	}
}

// VideoConfig holds video recording configuration
type VideoConfig struct {
	FPS           float64  `toml:"fps"`
	Codecs        []string `toml:"codecs"`
	Extension     string   `toml:"extension"`
	CaptureWidth  int      `toml:"capture_width"`
	CaptureHeight int      `toml:"capture_height"`
}

// DefaultVideoConfig returns the default video configuration.
// FPS is only used when the source reports none.
func DefaultVideoConfig() VideoConfig {
	return VideoConfig{
		FPS:           25.0,
		Codecs:        []string{"XVID", "MJPG", "mp4v"},
		Extension:     "avi",
		CaptureWidth:  1920,
		CaptureHeight: 1080,
	}
}

// OutputConfig holds where snapshots and recordings are written
type OutputConfig struct {
	SnapshotDir  string `toml:"snapshot_dir"`
	RecordingDir string `toml:"recording_dir"`
	ImageExt     string `toml:"image_ext"`
}

// DefaultOutputConfig returns the default output configuration
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		SnapshotDir:  "box_snapshots",
		RecordingDir: "video_recordings",
		ImageExt:     "png",
	}
}

// UIConfig holds UI configuration constants
type UIConfig struct {
	StatusFontSize float64 `toml:"status_font_size"`
	HelpFontSize   float64 `toml:"help_font_size"`
	HelpBarHeight  int     `toml:"help_bar_height"`
	HelpBarAlpha   float64 `toml:"help_bar_alpha"`
	MaxDebugLogs   int     `toml:"max_debug_logs"`
	DebugFontSize  float64 `toml:"debug_font_size"`
}

// DefaultUIConfig returns the default UI configuration
func DefaultUIConfig() UIConfig {
	return UIConfig{
		StatusFontSize: 0.8,
		HelpFontSize:   0.7,
		HelpBarHeight:  60,
		HelpBarAlpha:   0.6,
		MaxDebugLogs:   10,
		DebugFontSize:  0.5,
	}
}

// LoggingConfig holds log level and format
type LoggingConfig struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

// DefaultLoggingConfig returns the default logging configuration
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:  "info",
		Format: "text",
	}
}

// MetricsConfig holds the optional Prometheus listener address.
// An empty Listen disables the HTTP endpoint.
type MetricsConfig struct {
	Listen string `toml:"listen"`
}
