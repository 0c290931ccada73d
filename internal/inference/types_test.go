package inference

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelsOrder(t *testing.T) {
	want := []string{"Angry", "Disgust", "Fear", "Happy", "Sad", "Surprise", "Neutral"}
	for i, l := range Labels {
		assert.Equal(t, want[i], l.String())
		assert.True(t, l.IsValid())
	}
	assert.False(t, Label("Bored").IsValid())
}

func TestPredictionVector(t *testing.T) {
	p, err := NewPredictionVector(happy)
	require.NoError(t, err)

	label, conf := p.Top()
	assert.Equal(t, Happy, label)
	assert.InDelta(t, 0.7, conf, 1e-6)
	assert.InDelta(t, 1.0, p.Sum(), 1e-3)
	assert.Len(t, p.Scores(), NumClasses)

	_, err = NewPredictionVector([]float32{1})
	var countErr *ClassCountError
	assert.ErrorAs(t, err, &countErr)

	_, err = NewPredictionVector([]float32{0, 0, 0, 1.5, 0, 0, 0})
	assert.Error(t, err)

	_, err = NewPredictionVector([]float32{0, 0, 0, float32(math.NaN()), 0, 0, 0})
	assert.Error(t, err)
}

func TestProfiles(t *testing.T) {
	for _, name := range []string{"service", "demo", ""} {
		cfg, err := Profile(name)
		require.NoError(t, err)
		assert.NoError(t, cfg.Validate())
	}

	_, err := Profile("mystery")
	assert.Error(t, err)

	cfg := ServiceProfile()
	cfg.InputResolution = Resolution{}
	assert.Error(t, cfg.Validate())

	cfg = ServiceProfile()
	cfg.Detector.ScaleFactor = 1.0
	assert.Error(t, cfg.Validate())
}

func TestParseSelectionMode(t *testing.T) {
	m, err := ParseSelectionMode("BEST_FACE")
	require.NoError(t, err)
	assert.Equal(t, BestFace, m)

	m, err = ParseSelectionMode("")
	require.NoError(t, err)
	assert.Equal(t, AllFaces, m)

	_, err = ParseSelectionMode("some_faces")
	assert.Error(t, err)
}

func TestNewFrameRebasesToOrigin(t *testing.T) {
	assert.True(t, NewFrame(nil).Empty())

	gray := image.NewGray(image.Rect(0, 0, 40, 30))
	gray.SetGray(15, 12, color.Gray{Y: 200})
	sub := gray.SubImage(image.Rect(10, 10, 30, 25))

	f := NewFrame(sub)
	assert.Equal(t, 20, f.Width())
	assert.Equal(t, 15, f.Height())
	assert.Equal(t, image.Point{}, f.Image().Rect.Min)
	assert.Equal(t, color.NRGBA{R: 200, G: 200, B: 200, A: 255}, f.Image().NRGBAAt(5, 2))
}
