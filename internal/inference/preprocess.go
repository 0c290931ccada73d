package inference

import (
	"image"

	"github.com/disintegration/imaging"
)

// Preprocessor turns a face box into the classifier's input tensor.
type Preprocessor struct {
	padding    Padding
	resolution Resolution
	channels   int
	normalize  bool
}

func NewPreprocessor(cfg PipelineConfig) *Preprocessor {
	return &Preprocessor{
		padding:    cfg.Padding,
		resolution: cfg.InputResolution,
		channels:   cfg.ChannelMode.Channels(),
		normalize:  cfg.Normalize,
	}
}

// Region returns the padded box clamped to the frame. The result is empty
// when nothing of the box lies inside the frame.
func (p *Preprocessor) Region(frame Frame, box FaceBox) image.Rectangle {
	if frame.Empty() {
		return image.Rectangle{}
	}

	padded := image.Rect(
		box.X-p.padding.X,
		box.Y-p.padding.Y,
		box.X+box.W+p.padding.X,
		box.Y+box.H+p.padding.Y,
	)

	return padded.Intersect(frame.Image().Rect)
}

// Normalize crops, resizes and converts one face. The boolean is false when
// the clamped crop has no area; no inference should run for that face.
func (p *Preprocessor) Normalize(frame Frame, box FaceBox) (NormalizedFace, bool) {
	region := p.Region(frame, box)
	if region.Empty() {
		return NormalizedFace{}, false
	}

	w, h := p.resolution.Width, p.resolution.Height

	crop := imaging.Crop(frame.Image(), region)
	resized := imaging.Resize(crop, w, h, imaging.Linear)
	gray := imaging.Grayscale(resized)

	scale := float32(1)
	if p.normalize {
		scale = 1.0 / 255.0
	}

	c := p.channels
	data := make([]float32, h*w*c)
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < w; x++ {
			v := float32(row[x*4]) * scale
			base := (y*w + x) * c
			for ch := 0; ch < c; ch++ {
				data[base+ch] = v
			}
		}
	}

	return newNormalizedFace(data, h, w, c), true
}
