//go:build gocv
// +build gocv

package inference

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

func init() {
	RegisterDetector("haar", newHaarDetector)
}

// haarDetector wraps an OpenCV Haar cascade. CascadeClassifier is not safe
// for concurrent use, so Detect holds a lock.
type haarDetector struct {
	mu      sync.Mutex
	cascade gocv.CascadeClassifier
	params  DetectorParams
}

func newHaarDetector(cascadePath string, params DetectorParams) (FaceDetector, error) {
	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(cascadePath) {
		cascade.Close()
		return nil, fmt.Errorf("error reading cascade file: %s", cascadePath)
	}

	return &haarDetector{cascade: cascade, params: params}, nil
}

func (d *haarDetector) Name() string {
	return "haar"
}

func (d *haarDetector) Detect(frame Frame) []FaceBox {
	if frame.Empty() {
		return nil
	}

	img, err := gocv.ImageToMatRGB(frame.Image())
	if err != nil || img.Empty() {
		return nil
	}
	defer img.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	minSize := image.Point{X: d.params.MinSize, Y: d.params.MinSize}
	maxSize := image.Point{X: d.params.MaxSize, Y: d.params.MaxSize}

	d.mu.Lock()
	rects := d.cascade.DetectMultiScaleWithParams(
		gray,
		d.params.ScaleFactor,
		d.params.MinNeighbors,
		0,
		minSize,
		maxSize,
	)
	d.mu.Unlock()

	boxes := make([]FaceBox, 0, len(rects))
	for _, r := range rects {
		boxes = append(boxes, FaceBox{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()})
	}

	return boxes
}
