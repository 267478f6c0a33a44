package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"boxcam/recording"
)

// WriteImage encodes img to path; the format follows the file extension
func WriteImage(path string, img image.Image) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("convert image for %s: %w", path, err)
	}
	defer mat.Close()

	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("could not write image %s", path)
	}
	return nil
}

// ImageFileWriter writes snapshots with WriteImage
type ImageFileWriter struct{}

// WriteImage implements app.ImageWriter
func (ImageFileWriter) WriteImage(path string, img image.Image) error {
	return WriteImage(path, img)
}

// VideoSink appends frames to a video file
type VideoSink struct {
	writer *gocv.VideoWriter
}

// OpenVideoSink creates a color video file with codec as its fourcc
func OpenVideoSink(path, codec string, fps float64, size image.Point) (*VideoSink, error) {
	vw, err := gocv.VideoWriterFile(path, codec, fps, size.X, size.Y, true)
	if err != nil {
		return nil, err
	}
	if !vw.IsOpened() {
		_ = vw.Close()
		return nil, fmt.Errorf("video writer for %s with codec %s did not open", path, codec)
	}
	return &VideoSink{writer: vw}, nil
}

// Append writes one frame
func (s *VideoSink) Append(frame MatFrame) error {
	return s.writer.Write(frame.Mat)
}

// Close flushes and releases the file
func (s *VideoSink) Close() error {
	return s.writer.Close()
}

// VideoSinkOpener opens VideoSinks for the recording controller
type VideoSinkOpener struct{}

// OpenSink implements recording.SinkOpener
func (VideoSinkOpener) OpenSink(path, codec string, fps float64, size image.Point) (recording.Sink[MatFrame], error) {
	sink, err := OpenVideoSink(path, codec, fps, size)
	if err != nil {
		return nil, err
	}
	return sink, nil
}
