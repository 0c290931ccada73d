package inference

import (
	"fmt"
	"sort"
	"sync"
)

// FaceDetector finds candidate face rectangles. Detection is best effort:
// an empty or faceless frame yields an empty slice, never an error.
type FaceDetector interface {
	Detect(frame Frame) []FaceBox
	Name() string
}

// DetectorParams configures the cascade search.
type DetectorParams struct {
	// ScaleFactor is the pyramid step between window sizes.
	ScaleFactor float64
	// MinNeighbors is the number of overlapping hits a Haar detection needs.
	// The pigo backend reads it as a cluster score unless ScoreThreshold is set.
	MinNeighbors int
	// MinSize rejects detections smaller than this many pixels. 0 disables it.
	MinSize int
	// MaxSize caps the window size. 0 means the frame size.
	MaxSize int
	// ShiftFactor, IoUThreshold and ScoreThreshold only apply to the pigo backend.
	ShiftFactor  float64
	IoUThreshold float64
	// ScoreThreshold is the minimum clustered pigo score. 0 uses MinNeighbors.
	ScoreThreshold float64
}

func DefaultDetectorParams() DetectorParams {
	return DetectorParams{
		ScaleFactor:  1.1,
		MinNeighbors: 5,
		ShiftFactor:  0.1,
		IoUThreshold: 0.2,
	}
}

// scoreThreshold is the pigo cut-off: ScoreThreshold when set, otherwise
// MinNeighbors read as a cluster score.
func (p DetectorParams) scoreThreshold() float64 {
	if p.ScoreThreshold > 0 {
		return p.ScoreThreshold
	}
	return float64(p.MinNeighbors)
}

func (p DetectorParams) Validate() error {
	if p.ScaleFactor <= 1 {
		return fmt.Errorf("inference: detector scale factor must be greater than 1, got %.2f", p.ScaleFactor)
	}
	if p.MinNeighbors < 0 || p.MinSize < 0 || p.MaxSize < 0 || p.ScoreThreshold < 0 {
		return fmt.Errorf("inference: detector sizes and neighbors must not be negative")
	}
	if p.MaxSize > 0 && p.MinSize > p.MaxSize {
		return fmt.Errorf("inference: detector min size %d exceeds max size %d", p.MinSize, p.MaxSize)
	}
	return nil
}

// DetectorFactory builds a detector backend from a cascade file.
type DetectorFactory func(cascadePath string, params DetectorParams) (FaceDetector, error)

var (
	detectorMu       sync.RWMutex
	detectorBackends = map[string]DetectorFactory{}
)

// RegisterDetector makes a detector backend available by name.
func RegisterDetector(name string, factory DetectorFactory) {
	detectorMu.Lock()
	defer detectorMu.Unlock()
	detectorBackends[name] = factory
}

// DetectorBackends lists the registered backend names.
func DetectorBackends() []string {
	detectorMu.RLock()
	defer detectorMu.RUnlock()
	names := make([]string, 0, len(detectorBackends))
	for name := range detectorBackends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDetector loads the named detector backend.
func NewDetector(backend, cascadePath string, params DetectorParams) (FaceDetector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	detectorMu.RLock()
	factory, ok := detectorBackends[backend]
	detectorMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownDetector, backend, DetectorBackends())
	}

	return factory(cascadePath, params)
}
