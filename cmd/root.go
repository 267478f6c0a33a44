package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd is the boxcam entry point
var RootCmd = &cobra.Command{
	Use:   "boxcam",
	Short: "Capture one sharpened snapshot of every box crossing a trigger line",
	Long: `boxcam watches a camera or video, detects large moving objects with background
subtraction and saves one sharpened still of each object as it crosses a vertical
trigger line. The raw stream can be recorded to a video file at the press of a key.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringP("config", "c", "boxcam.toml", "Path to configuration file")
	pf.StringP("source", "s", "", "Camera index, video file or stream URL")
	pf.String("snapshot-dir", "", "Directory for box snapshots")
	pf.String("recording-dir", "", "Directory for video recordings")
	pf.String("log-level", "", "Logging level (debug, info, warn, error)")
	pf.Bool("log-json", false, "Log in JSON format")
	pf.String("metrics-listen", "", "Address for the Prometheus /metrics endpoint, e.g. :9090")

	RootCmd.AddCommand(RunCmd, RecordCmd, PreviewCmd)
}
