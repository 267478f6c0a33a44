package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"boxcam/app"
	"boxcam/config"
	"boxcam/events"
	"boxcam/logging"
	"boxcam/metrics"
	"boxcam/recording"
	"boxcam/vision"
)

// session holds what every command sets up before opening the source
type session struct {
	cfg     config.Config
	runID   string
	logger  *slog.Logger
	bus     *events.Bus
	metrics *metrics.Metrics
	ctx     context.Context
	cancel  context.CancelFunc
	unsubs  []func()
}

// loadConfig layers the TOML file, BOXCAM_* variables and explicit flags
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags().Changed("config"))
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := config.ApplyFlags(&cfg, cmd.Flags()); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// outputs selects which output directories a command writes into
type outputs struct {
	snapshots  bool
	recordings bool
}

func (o outputs) dirs(cfg config.Config) []string {
	var dirs []string
	if o.snapshots {
		dirs = append(dirs, cfg.Output.SnapshotDir)
	}
	if o.recordings {
		dirs = append(dirs, cfg.Output.RecordingDir)
	}
	return dirs
}

func startSession(cmd *cobra.Command, out outputs) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logging.Initialize(cfg.Logging)

	s := &session{
		cfg:     cfg,
		runID:   uuid.NewString(),
		bus:     events.New(),
		metrics: metrics.New(),
	}
	s.logger = logging.GetLogger("app").With("run_id", s.runID)
	s.ctx, s.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	for _, dir := range out.dirs(cfg) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.close()
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}

	s.unsubs = append(s.unsubs, s.metrics.Subscribe(s.bus))
	s.unsubs = append(s.unsubs, s.bus.Subscribe(func(e events.RecordingStoppedEvent) {
		s.logger.Info("Recording saved", "path", e.Path, "frames", e.Frames, "duration", recording.FormatElapsed(e.Duration))
	}))

	if cfg.Metrics.Listen != "" {
		s.metrics.Serve(s.ctx, cfg.Metrics.Listen, logging.GetLogger("metrics"))
	}

	s.logger.Info("Starting boxcam", "command", cmd.Name(), "source", cfg.Source)
	return s, nil
}

// runLoop drives the frame loop until the stream ends, quit is pressed or a signal arrives
func (s *session) runLoop(deps app.Deps[vision.MatFrame]) error {
	deps.Bus = s.bus
	deps.Metrics = s.metrics
	deps.Logger = s.logger
	deps.RunID = s.runID
	deps.SnapshotDir = s.cfg.Output.SnapshotDir
	deps.ImageExt = s.cfg.Output.ImageExt
	deps.Writer = vision.ImageFileWriter{}

	summary, err := app.New(deps).Run(s.ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Program finished: %d frames, %d snapshots (%s)\n", summary.Frames, summary.Snapshots, summary.Reason)
	return nil
}

func (s *session) close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	if err := s.bus.Close(); err != nil {
		s.logger.Debug("Event bus close failed", "error", err)
	}
	s.cancel()
}
