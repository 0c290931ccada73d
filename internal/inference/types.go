package inference

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

// Frame is a single decoded image. It carries no identity across requests.
type Frame struct {
	img *image.NRGBA
}

// NewFrame converts any image into a Frame.
func NewFrame(img image.Image) Frame {
	if img == nil {
		return Frame{}
	}
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return Frame{img: n}
	}
	return Frame{img: imaging.Clone(img)}
}

func (f Frame) Image() *image.NRGBA { return f.img }

func (f Frame) Width() int {
	if f.img == nil {
		return 0
	}
	return f.img.Rect.Dx()
}

func (f Frame) Height() int {
	if f.img == nil {
		return 0
	}
	return f.img.Rect.Dy()
}

// Empty is true for zero-sized or undecoded frames.
func (f Frame) Empty() bool {
	return f.Width() == 0 || f.Height() == 0
}

// FaceBox is a detected face rectangle in frame coordinates.
type FaceBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

func (b FaceBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// NormalizedFace is the classifier input for one face, shaped [1, H, W, C].
type NormalizedFace struct {
	t *tensor.Dense
}

func newNormalizedFace(data []float32, height, width, channels int) NormalizedFace {
	return NormalizedFace{
		t: tensor.New(
			tensor.WithShape(1, height, width, channels),
			tensor.WithBacking(data),
		),
	}
}

// Shape returns the tensor shape including the batch dimension.
func (n NormalizedFace) Shape() []int {
	if n.t == nil {
		return nil
	}
	return []int(n.t.Shape().Clone())
}

// Data returns the flat row-major float32 backing slice.
func (n NormalizedFace) Data() []float32 {
	if n.t == nil {
		return nil
	}
	return n.t.Data().([]float32)
}

func (n NormalizedFace) Empty() bool {
	return n.t == nil
}

// PredictionVector is one model output, index-aligned with Labels.
type PredictionVector [NumClasses]float32

// NewPredictionVector validates the length and range of a model output.
func NewPredictionVector(values []float32) (PredictionVector, error) {
	var p PredictionVector
	if len(values) != NumClasses {
		return p, &ClassCountError{Got: len(values)}
	}
	for i, v := range values {
		if math.IsNaN(float64(v)) || v < 0 || v > 1 {
			return p, fmt.Errorf("inference: score %d out of range: %v", i, v)
		}
		p[i] = v
	}
	return p, nil
}

func (p PredictionVector) float64s() []float64 {
	out := make([]float64, NumClasses)
	for i, v := range p {
		out[i] = float64(v)
	}
	return out
}

// Top returns the label with the highest score and that score.
func (p PredictionVector) Top() (Label, float64) {
	values := p.float64s()
	idx := floats.MaxIdx(values)
	return Labels[idx], values[idx]
}

// Sum is the total probability mass, ~1 for a softmax output.
func (p PredictionVector) Sum() float64 {
	return floats.Sum(p.float64s())
}

// Scores maps each label to its probability.
func (p PredictionVector) Scores() map[Label]float64 {
	out := make(map[Label]float64, NumClasses)
	for i, v := range p {
		out[Labels[i]] = float64(v)
	}
	return out
}

// EmotionResult is the externally visible outcome for one face. Box is nil
// only for the best-face fallback.
type EmotionResult struct {
	Box        *FaceBox          `json:"box"`
	Label      Label             `json:"emotion"`
	Confidence float64           `json:"confidence"`
	AllScores  map[Label]float64 `json:"all_predictions,omitempty"`
}
