package cmd

import (
	"github.com/spf13/cobra"

	"boxcam/app"
	"boxcam/logging"
	"boxcam/ui"
	"boxcam/vision"
)

// PreviewCmd shows the source without detection or recording
var PreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the camera stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := startSession(cmd, outputs{})
		if err != nil {
			return err
		}
		defer s.close()

		source, err := vision.OpenSource(s.cfg.Source, vision.SourceOptions{}, logging.GetLogger("vision"))
		if err != nil {
			return err
		}
		defer source.Close()

		display := ui.NewDisplay(s.cfg.UI, ui.DisplayOptions{
			Title:   "CCTV Stream",
			MaxSize: recordDisplaySize,
		})
		defer display.Close()

		ui.PrintStartupInstructions(false, false)

		return s.runLoop(app.Deps[vision.MatFrame]{
			Source:  source,
			Display: display,
		})
	},
}
