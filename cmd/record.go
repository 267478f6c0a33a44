package cmd

import (
	"image"

	"github.com/spf13/cobra"

	"boxcam/app"
	"boxcam/logging"
	"boxcam/recording"
	"boxcam/ui"
	"boxcam/vision"
)

// recordDisplaySize bounds the preview window while recording at full resolution
var recordDisplaySize = image.Pt(1280, 720)

// RecordCmd records the raw stream at the highest resolution the camera offers
var RecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record the raw camera stream to video files",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := startSession(cmd, outputs{recordings: true})
		if err != nil {
			return err
		}
		defer s.close()
		cfg := s.cfg

		source, err := vision.OpenSource(cfg.Source, vision.SourceOptions{
			Capture: image.Pt(cfg.Video.CaptureWidth, cfg.Video.CaptureHeight),
		}, logging.GetLogger("vision"))
		if err != nil {
			return err
		}
		defer source.Close()

		recorder := recording.NewController[vision.MatFrame](vision.VideoSinkOpener{}, cfg.Output.RecordingDir, cfg.Video, logging.GetLogger("recording"))

		display := ui.NewDisplay(cfg.UI, ui.DisplayOptions{
			Title:   "Live Video",
			MaxSize: recordDisplaySize,
		})
		defer display.Close()

		ui.PrintStartupInstructions(false, true)

		return s.runLoop(app.Deps[vision.MatFrame]{
			Source:   source,
			Recorder: recorder,
			Display:  display,
		})
	},
}
