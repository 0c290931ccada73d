package inference

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionClampsPaddedBox(t *testing.T) {
	cfg := ServiceProfile()
	cfg.Padding = Padding{X: 10, Y: 10}
	p := NewPreprocessor(cfg)
	frame := grayFrame(200, 200)
	bounds := image.Rect(0, 0, 200, 200)

	region := p.Region(frame, FaceBox{X: 50, Y: 50, W: 100, H: 100})
	assert.Equal(t, image.Rect(40, 40, 160, 160), region)

	boxes := []FaceBox{
		{X: 0, Y: 0, W: 100, H: 100},
		{X: 100, Y: 100, W: 100, H: 100},
		{X: -20, Y: 150, W: 100, H: 100},
		{X: 195, Y: -5, W: 100, H: 100},
		{X: -50, Y: -50, W: 400, H: 400},
	}
	for _, box := range boxes {
		region := p.Region(frame, box)
		assert.True(t, region.In(bounds), "region %v escapes frame for box %+v", region, box)
		assert.False(t, region.Empty())

		face, ok := p.Normalize(frame, box)
		require.True(t, ok)
		assert.Equal(t, []int{1, 48, 48, 1}, face.Shape())
	}
}

func TestRegionAsymmetricPadding(t *testing.T) {
	cfg := DemoProfile()
	p := NewPreprocessor(cfg)

	region := p.Region(grayFrame(300, 300), FaceBox{X: 100, Y: 100, W: 50, H: 50})
	assert.Equal(t, image.Rect(80, 60, 170, 190), region)
}

func TestNormalizeEmptyRegion(t *testing.T) {
	p := NewPreprocessor(ServiceProfile())

	_, ok := p.Normalize(grayFrame(200, 200), FaceBox{X: 500, Y: 500, W: 50, H: 50})
	assert.False(t, ok)

	_, ok = p.Normalize(Frame{}, FaceBox{X: 0, Y: 0, W: 50, H: 50})
	assert.False(t, ok)
}

func TestNormalizeGrayscaleRange(t *testing.T) {
	p := NewPreprocessor(ServiceProfile())

	face, ok := p.Normalize(grayFrame(200, 200), FaceBox{X: 10, Y: 10, W: 120, H: 120})
	require.True(t, ok)

	data := face.Data()
	require.Len(t, data, 48*48)
	for _, v := range data {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestNormalizeRGBReplicatesChannels(t *testing.T) {
	p := NewPreprocessor(DemoProfile())

	face, ok := p.Normalize(grayFrame(300, 300), FaceBox{X: 60, Y: 60, W: 150, H: 150})
	require.True(t, ok)
	assert.Equal(t, []int{1, 224, 224, 3}, face.Shape())

	data := face.Data()
	require.Len(t, data, 224*224*3)

	var above1 bool
	for i := 0; i < len(data); i += 3 {
		assert.Equal(t, data[i], data[i+1])
		assert.Equal(t, data[i], data[i+2])
		if data[i] > 1 {
			above1 = true
		}
	}
	assert.True(t, above1, "demo profile feeds raw 0-255 pixels")
}
