package inference

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	pigo "github.com/esimov/pigo/core"
)

const pigoMinWindow = 20

func init() {
	RegisterDetector("pigo", newPigoDetector)
}

// pigoDetector runs a pigo pixel-intensity cascade. The unpacked cascade is
// read-only after load, so Detect is safe for concurrent use.
type pigoDetector struct {
	classifier *pigo.Pigo
	params     DetectorParams
}

func newPigoDetector(cascadePath string, params DetectorParams) (FaceDetector, error) {
	cascadeFile, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("error reading the cascade file: %w", err)
	}

	return newPigoDetectorFromBytes(cascadeFile, params)
}

var errCorruptCascade = errors.New("corrupt pigo cascade")

// checkCascade verifies the header against the file length. Unpack indexes
// the packet without bounds checks and panics on truncated input.
func checkCascade(data []byte) error {
	if len(data) < 16 {
		return fmt.Errorf("%w: %d bytes", errCorruptCascade, len(data))
	}
	depth := uint64(binary.LittleEndian.Uint32(data[8:]))
	trees := uint64(binary.LittleEndian.Uint32(data[12:]))
	if depth == 0 || depth > 16 {
		return fmt.Errorf("%w: tree depth %d", errCorruptCascade, depth)
	}

	// Each tree holds 4*2^d-4 code bytes, 2^d float32 leaves and a threshold.
	need := 16 + trees*8*(uint64(1)<<depth)
	if uint64(len(data)) < need {
		return fmt.Errorf("%w: %d trees need %d bytes, got %d", errCorruptCascade, trees, need, len(data))
	}
	return nil
}

func newPigoDetectorFromBytes(cascadeFile []byte, params DetectorParams) (FaceDetector, error) {
	if err := checkCascade(cascadeFile); err != nil {
		return nil, fmt.Errorf("error unpacking the cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascadeFile)
	if err != nil {
		return nil, fmt.Errorf("error unpacking the cascade file: %w", err)
	}

	return &pigoDetector{classifier: classifier, params: params}, nil
}

func (d *pigoDetector) Name() string {
	return "pigo"
}

func (d *pigoDetector) Detect(frame Frame) []FaceBox {
	if frame.Empty() {
		return nil
	}

	src := frame.Image()
	cols, rows := frame.Width(), frame.Height()

	minSize := d.params.MinSize
	if minSize < pigoMinWindow {
		minSize = pigoMinWindow
	}
	maxSize := d.params.MaxSize
	if maxSize == 0 {
		maxSize = max(cols, rows)
	}
	if minSize > maxSize {
		return nil
	}

	cParams := pigo.CascadeParams{
		MinSize:     minSize,
		MaxSize:     maxSize,
		ShiftFactor: d.params.ShiftFactor,
		ScaleFactor: d.params.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(src),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	// Detections are (row, col, scale, score) quadruplets centered on the face.
	dets := d.classifier.RunCascade(cParams, 0.0)
	dets = d.classifier.ClusterDetections(dets, d.params.IoUThreshold)

	threshold := d.params.scoreThreshold()
	boxes := make([]FaceBox, 0, len(dets))
	for _, det := range dets {
		if float64(det.Q) < threshold {
			continue
		}
		if det.Scale < d.params.MinSize {
			continue
		}
		boxes = append(boxes, FaceBox{
			X: det.Col - det.Scale/2,
			Y: det.Row - det.Scale/2,
			W: det.Scale,
			H: det.Scale,
		})
	}

	return boxes
}
