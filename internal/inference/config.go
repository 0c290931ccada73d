package inference

import (
	"fmt"
	"strings"
)

// ChannelMode selects the channel layout of the classifier input.
type ChannelMode string

const (
	Grayscale ChannelMode = "grayscale"
	RGB       ChannelMode = "rgb"
)

func (c ChannelMode) Channels() int {
	if c == RGB {
		return 3
	}
	return 1
}

// SelectionMode is the result policy of a deployment.
type SelectionMode string

const (
	AllFaces SelectionMode = "all_faces"
	BestFace SelectionMode = "best_face"
)

func ParseSelectionMode(s string) (SelectionMode, error) {
	switch SelectionMode(strings.ToLower(strings.TrimSpace(s))) {
	case AllFaces, "":
		return AllFaces, nil
	case BestFace:
		return BestFace, nil
	default:
		return "", fmt.Errorf("inference: unknown selection mode %q", s)
	}
}

// Padding grows a face box by X pixels left and right and Y pixels above and below.
type Padding struct {
	X int
	Y int
}

// Resolution is the square-or-not model input size.
type Resolution struct {
	Width  int
	Height int
}

// PipelineConfig gathers every knob that drifted between historical variants.
type PipelineConfig struct {
	Padding          Padding
	MinFaceSize      int
	MinConfidence    float64
	InputResolution  Resolution
	ChannelMode      ChannelMode
	Normalize        bool
	SelectionMode    SelectionMode
	IncludeAllScores bool
	Detector         DetectorParams
}

const (
	ProfileService = "service"
	ProfileDemo    = "demo"
)

// ServiceProfile matches the 48x48 grayscale model served over HTTP.
func ServiceProfile() PipelineConfig {
	return PipelineConfig{
		Padding:          Padding{X: 10, Y: 10},
		MinFaceSize:      60,
		MinConfidence:    0.3,
		InputResolution:  Resolution{Width: 48, Height: 48},
		ChannelMode:      Grayscale,
		Normalize:        true,
		SelectionMode:    AllFaces,
		IncludeAllScores: true,
		Detector:         DefaultDetectorParams(),
	}
}

// DemoProfile matches the 224x224 RGB model of the standalone demo.
func DemoProfile() PipelineConfig {
	params := DefaultDetectorParams()
	params.MinSize = 30
	return PipelineConfig{
		Padding:          Padding{X: 20, Y: 40},
		MinFaceSize:      0,
		MinConfidence:    0,
		InputResolution:  Resolution{Width: 224, Height: 224},
		ChannelMode:      RGB,
		Normalize:        false,
		SelectionMode:    AllFaces,
		IncludeAllScores: true,
		Detector:         params,
	}
}

// Profile returns a named profile.
func Profile(name string) (PipelineConfig, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProfileService, "":
		return ServiceProfile(), nil
	case ProfileDemo:
		return DemoProfile(), nil
	default:
		return PipelineConfig{}, fmt.Errorf("inference: unknown profile %q", name)
	}
}

func (c PipelineConfig) Validate() error {
	if c.InputResolution.Width <= 0 || c.InputResolution.Height <= 0 {
		return fmt.Errorf("inference: input resolution must be positive, got %dx%d",
			c.InputResolution.Width, c.InputResolution.Height)
	}
	if c.ChannelMode != Grayscale && c.ChannelMode != RGB {
		return fmt.Errorf("inference: unknown channel mode %q", c.ChannelMode)
	}
	if c.SelectionMode != AllFaces && c.SelectionMode != BestFace {
		return fmt.Errorf("inference: unknown selection mode %q", c.SelectionMode)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("inference: min confidence %.2f outside [0,1]", c.MinConfidence)
	}
	if c.Padding.X < 0 || c.Padding.Y < 0 || c.MinFaceSize < 0 {
		return fmt.Errorf("inference: padding and min face size must not be negative")
	}
	return c.Detector.Validate()
}
