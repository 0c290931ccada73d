package inference

// Selector applies the size and confidence filters and the selection mode.
type Selector struct {
	mode          SelectionMode
	minFaceSize   int
	minConfidence float64
}

func NewSelector(cfg PipelineConfig) *Selector {
	return &Selector{
		mode:          cfg.SelectionMode,
		minFaceSize:   cfg.MinFaceSize,
		minConfidence: cfg.MinConfidence,
	}
}

// AcceptBox drops faces smaller than the minimum size before inference.
func (s *Selector) AcceptBox(box FaceBox) bool {
	return box.W >= s.minFaceSize && box.H >= s.minFaceSize
}

// Keep drops results at or below the confidence floor.
func (s *Selector) Keep(r EmotionResult) bool {
	return r.Confidence > s.minConfidence
}

// Select reduces the accepted results according to the selection mode.
func (s *Selector) Select(results []EmotionResult) []EmotionResult {
	if s.mode != BestFace {
		if results == nil {
			return []EmotionResult{}
		}
		return results
	}

	if len(results) == 0 {
		return []EmotionResult{FallbackResult()}
	}

	best := 0
	for i := 1; i < len(results); i++ {
		if results[i].Confidence > results[best].Confidence {
			best = i
		}
	}

	return []EmotionResult{results[best]}
}

// FallbackResult is reported in best-face mode when no face survived.
func FallbackResult() EmotionResult {
	return EmotionResult{
		Box:        nil,
		Label:      Neutral,
		Confidence: 1.0,
	}
}
