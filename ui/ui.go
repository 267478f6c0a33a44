package ui

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"gocv.io/x/gocv"

	"boxcam/app"
	"boxcam/detection"
	"boxcam/logging"
	"boxcam/recording"
	"boxcam/types"
)

var (
	Red    = color.RGBA{R: 255}
	Green  = color.RGBA{G: 255}
	Yellow = color.RGBA{R: 255, G: 255}
	Cyan   = color.RGBA{G: 255, B: 255}
	White  = color.RGBA{R: 255, G: 255, B: 255}
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 120}
)

func logger() *slog.Logger {
	return logging.GetLogger("ui")
}

// DrawTriggerLine draws the vertical trigger line and its label
func DrawTriggerLine(frame *gocv.Mat, x int, config types.UIConfig) {
	_ = gocv.Line(frame, image.Pt(x, 0), image.Pt(x, frame.Rows()), Red, 2)
	if err := gocv.PutText(frame, "Trigger Line", image.Pt(x+5, 30), gocv.FontHersheySimplex, config.StatusFontSize, Red, 2); err != nil {
		logger().Debug("Error adding trigger label", "error", err)
	}
}

// DrawCandidates outlines every box that passed the area filter
func DrawCandidates(frame *gocv.Mat, candidates []detection.Candidate) {
	for _, c := range candidates {
		_ = gocv.Rectangle(frame, c.Rect, Green, 2)
	}
}

// StatusText returns the capture state line
func StatusText(state detection.CaptureState) string {
	if state == detection.StateWaiting {
		return "Status: WAITING FOR NEXT BOX"
	}
	return "Status: READY"
}

// DrawStatusMessage draws the capture state above the help bar
func DrawStatusMessage(frame *gocv.Mat, result *detection.Result, snapshots int, config types.UIConfig) {
	y := frame.Rows() - config.HelpBarHeight - 15

	if err := gocv.PutText(frame, StatusText(result.State), image.Pt(10, y), gocv.FontHersheySimplex, config.StatusFontSize, Cyan, 2); err != nil {
		logger().Debug("Error adding status text", "error", err)
	}

	count := fmt.Sprintf("Snapshots: %d", snapshots)
	if err := gocv.PutText(frame, count, image.Pt(10, y-30), gocv.FontHersheySimplex, config.HelpFontSize, White, 1); err != nil {
		logger().Debug("Error adding snapshot count", "error", err)
	}
}

// DrawRecordingStatus draws the REC dot and elapsed time
func DrawRecordingStatus(frame *gocv.Mat, view app.View, config types.UIConfig) {
	if !view.Recording {
		return
	}

	_ = gocv.Circle(frame, image.Pt(30, 30), 10, Red, -1)
	if err := gocv.PutText(frame, "REC", image.Pt(50, 37), gocv.FontHersheySimplex, config.HelpFontSize, Red, 2); err != nil {
		logger().Debug("Error adding recording text", "error", err)
	}
	if err := gocv.PutText(frame, recording.FormatElapsed(view.Elapsed), image.Pt(110, 37), gocv.FontHersheySimplex, config.HelpFontSize, Red, 2); err != nil {
		logger().Debug("Error adding recording timer", "error", err)
	}
}

// DrawHelpBar blends a dark bar across the bottom and writes the control hints on it
func DrawHelpBar(frame *gocv.Mat, lines []string, config types.UIConfig) {
	if len(lines) == 0 {
		return
	}

	width, height := frame.Cols(), frame.Rows()
	top := height - config.HelpBarHeight
	if top < 0 {
		top = 0
	}

	overlay := frame.Clone()
	defer overlay.Close()

	_ = gocv.Rectangle(&overlay, image.Rect(0, top, width, height), Black, -1)
	if err := gocv.AddWeighted(overlay, config.HelpBarAlpha, *frame, 1-config.HelpBarAlpha, 0, frame); err != nil {
		logger().Debug("Error blending help bar", "error", err)
	}

	// Lines are laid out upwards from the bottom edge.
	for i := range lines {
		y := height - 10 - (len(lines)-1-i)*25
		if err := gocv.PutText(frame, lines[i], image.Pt(10, y), gocv.FontHersheySimplex, config.HelpFontSize, White, 2); err != nil {
			logger().Debug("Error adding help text", "error", err)
		}
	}
}

// DrawDebugLogs draws the most recent log lines on the right side of the frame
func DrawDebugLogs(frame *gocv.Mat, config types.UIConfig) {
	buffer := logging.GetBuffer()
	if buffer == nil {
		return
	}

	entries := buffer.Last(config.MaxDebugLogs)
	if len(entries) == 0 {
		return
	}

	frameWidth := frame.Cols()
	startY := 70
	lineHeight := 20
	maxWidth := 400
	padding := 10

	if maxWidth > frameWidth-2*padding {
		maxWidth = frameWidth - 2*padding
	}

	debugHeight := len(entries)*lineHeight + padding*2
	debugRect := image.Rect(frameWidth-maxWidth-padding, startY-padding, frameWidth-padding, startY+debugHeight-padding)
	_ = gocv.Rectangle(frame, debugRect, Black, -1)

	headerText := fmt.Sprintf("Debug Logs (%d):", len(entries))
	if err := gocv.PutText(frame, headerText, image.Pt(frameWidth-maxWidth, startY), gocv.FontHersheyPlain, config.DebugFontSize*2, Yellow, 1); err != nil {
		logger().Debug("Error adding debug header", "error", err)
	}

	maxChars := maxWidth / 8
	for i, entry := range entries {
		y := startY + (i+1)*lineHeight

		msg := entry.String()
		if len(msg) > maxChars && maxChars > 3 {
			msg = msg[:maxChars-3] + "..."
		}

		_ = gocv.PutText(frame, msg, image.Pt(frameWidth-maxWidth, y), gocv.FontHersheyPlain, config.DebugFontSize*2, levelColor(entry.Level), 1)
	}
}

func levelColor(level slog.Level) color.RGBA {
	switch {
	case level >= slog.LevelError:
		return Red
	case level >= slog.LevelWarn:
		return Yellow
	default:
		return White
	}
}

// RenderFrame draws every overlay for view onto frame
func RenderFrame(frame *gocv.Mat, view app.View, config types.UIConfig) {
	if view.Detection != nil {
		if view.Detection.TriggerX > 0 {
			DrawTriggerLine(frame, view.Detection.TriggerX, config)
		}
		DrawCandidates(frame, view.Detection.Candidates)
		DrawStatusMessage(frame, view.Detection, view.Snapshots, config)
	}

	DrawRecordingStatus(frame, view, config)
	DrawHelpBar(frame, view.Help, config)

	if view.Debug {
		DrawDebugLogs(frame, config)
	}
}

// PrintStartupInstructions prints the controls for the selected mode
func PrintStartupInstructions(detecting, recordingEnabled bool) {
	fmt.Println("Controls:")
	if detecting {
		fmt.Println("- Boxes crossing the red trigger line are captured once each")
	}
	if recordingEnabled {
		fmt.Println("- Press 's' to start/stop recording the raw stream")
	}
	fmt.Println("- Press 'd' to toggle the on-screen debug log")
	fmt.Println("- Press 'q' or ESC to quit")
}
