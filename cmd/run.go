package cmd

import (
	"image"

	"github.com/spf13/cobra"

	"boxcam/app"
	"boxcam/detection"
	"boxcam/logging"
	"boxcam/recording"
	"boxcam/sharpen"
	"boxcam/ui"
	"boxcam/vision"
)

// RunCmd detects boxes and saves snapshots; recording can be toggled with 's'
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Detect boxes crossing the trigger line and save snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := startSession(cmd, outputs{snapshots: true, recordings: true})
		if err != nil {
			return err
		}
		defer s.close()
		cfg := s.cfg

		source, err := vision.OpenSource(cfg.Source, vision.SourceOptions{
			Resize: image.Pt(cfg.Frame.Width, cfg.Frame.Height),
		}, logging.GetLogger("vision"))
		if err != nil {
			return err
		}
		defer source.Close()

		segmenter := vision.NewMOG2Segmenter(cfg.Detection)
		defer segmenter.Close()
		finder := vision.NewContourFinder(cfg.Detection)
		defer finder.Close()

		pipeline, err := detection.NewPipeline(segmenter, finder,
			detection.NewDebouncer(sharpen.OptionsFromConfig(cfg.Sharpen)),
			detection.PipelineConfig{
				MinArea:         cfg.Detection.MinContourArea,
				TriggerFraction: cfg.Detection.TriggerFraction,
			}, logging.GetLogger("detection"))
		if err != nil {
			return err
		}

		recorder := recording.NewController[vision.MatFrame](vision.VideoSinkOpener{}, cfg.Output.RecordingDir, cfg.Video, logging.GetLogger("recording"))

		opts := ui.DisplayOptions{Title: "Original Frame"}
		if cfg.Detection.ShowMask {
			opts.Mask = finder
		}
		display := ui.NewDisplay(cfg.UI, opts)
		defer display.Close()

		ui.PrintStartupInstructions(true, true)

		return s.runLoop(app.Deps[vision.MatFrame]{
			Source:   source,
			Pipeline: pipeline,
			Recorder: recorder,
			Display:  display,
		})
	},
}

func init() {
	RunCmd.Flags().Float64("min-area", 0, "Minimum contour area in pixels for a box")
	RunCmd.Flags().Float64("trigger", 0, "Trigger line position as a fraction of frame width")
}
