package inference

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// DecodeFrame decodes JPEG, PNG, GIF, BMP, TIFF or WebP bytes into a Frame,
// applying the EXIF orientation.
func DecodeFrame(data []byte) (Frame, error) {
	if len(data) == 0 {
		return Frame{}, ErrEmptyFrame
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Frame{}, fmt.Errorf("inference: decode frame: %w", err)
	}

	frame := NewFrame(img)
	if frame.Empty() {
		return Frame{}, ErrEmptyFrame
	}

	return frame, nil
}
