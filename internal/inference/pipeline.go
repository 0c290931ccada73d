package inference

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// InferenceContext owns the loaded detector and classifier. It is built once
// at startup and never mutated, so one value may serve concurrent requests.
type InferenceContext struct {
	cfg        PipelineConfig
	detector   FaceDetector
	classifier EmotionClassifier
	pre        *Preprocessor
	sel        *Selector
	log        *logrus.Logger
	loadErr    error
}

type Option func(*InferenceContext)

func WithDetector(d FaceDetector) Option {
	return func(ic *InferenceContext) {
		ic.detector = d
	}
}

func WithClassifier(c EmotionClassifier) Option {
	return func(ic *InferenceContext) {
		ic.classifier = c
	}
}

func WithLogger(log *logrus.Logger) Option {
	return func(ic *InferenceContext) {
		ic.log = log
	}
}

// NewInferenceContext assembles a context from already loaded components.
// A missing component or an invalid config leaves it permanently not ready.
func NewInferenceContext(cfg PipelineConfig, opts ...Option) *InferenceContext {
	ic := &InferenceContext{
		cfg: cfg,
		pre: NewPreprocessor(cfg),
		sel: NewSelector(cfg),
	}
	for _, opt := range opts {
		opt(ic)
	}
	if ic.log == nil {
		ic.log = logrus.StandardLogger()
	}

	var errs []error
	if err := cfg.Validate(); err != nil {
		errs = append(errs, &LoadError{Component: "config", Err: err})
	}
	if ic.detector == nil {
		errs = append(errs, &LoadError{Component: "detector", Err: errors.New("not loaded")})
	}
	if ic.classifier == nil {
		errs = append(errs, &LoadError{Component: "classifier", Err: errors.New("not loaded")})
	}
	ic.loadErr = errors.Join(errs...)

	return ic
}

// LoadOptions names the backends to load at startup.
type LoadOptions struct {
	DetectorBackend   string
	CascadePath       string
	ClassifierBackend string
	Classifier        ClassifierOptions
}

// Load builds the detector and classifier. Failures are logged and recorded;
// the returned context then reports not ready instead of failing the process.
func Load(cfg PipelineConfig, opts LoadOptions, log *logrus.Logger) *InferenceContext {
	var loaded []Option
	loaded = append(loaded, WithLogger(log))

	detector, err := NewDetector(opts.DetectorBackend, opts.CascadePath, cfg.Detector)
	if err != nil {
		log.WithFields(logrus.Fields{
			"backend": opts.DetectorBackend,
			"cascade": opts.CascadePath,
			"error":   err.Error(),
		}).Error("Failed to load face detector")
	} else {
		loaded = append(loaded, WithDetector(detector))
		log.WithField("backend", detector.Name()).Info("Face detector loaded")
	}

	classifierOpts := opts.Classifier
	classifierOpts.InputShape = inputShape(cfg)
	if classifierOpts.Logger == nil {
		classifierOpts.Logger = log
	}

	classifier, err := NewClassifier(opts.ClassifierBackend, classifierOpts)
	if err != nil {
		log.WithFields(logrus.Fields{
			"backend": opts.ClassifierBackend,
			"model":   classifierOpts.ModelPath,
			"url":     classifierOpts.URL,
			"error":   err.Error(),
		}).Error("Failed to load emotion classifier")
	} else {
		loaded = append(loaded, WithClassifier(classifier))
		log.WithFields(logrus.Fields{
			"backend":     classifier.Name(),
			"input_shape": classifierOpts.InputShape,
		}).Info("Emotion classifier loaded")
	}

	return NewInferenceContext(cfg, loaded...)
}

func (ic *InferenceContext) Config() PipelineConfig {
	return ic.cfg
}

// Readiness reports which components loaded.
func (ic *InferenceContext) Readiness() (modelLoaded, detectorLoaded bool) {
	return ic.classifier != nil, ic.detector != nil
}

func (ic *InferenceContext) Ready() bool {
	return ic.loadErr == nil
}

// Err explains why the context is not ready.
func (ic *InferenceContext) Err() error {
	return ic.loadErr
}

// Run executes the pipeline on one frame. Faces whose crop is empty or
// whose inference fails are skipped; zero faces is a successful outcome.
func (ic *InferenceContext) Run(ctx context.Context, frame Frame) ([]EmotionResult, error) {
	if !ic.Ready() {
		return nil, ErrNotReady
	}
	if frame.Empty() {
		return ic.sel.Select(nil), nil
	}

	boxes := ic.detector.Detect(frame)
	ic.log.WithField("faces", len(boxes)).Debug("Faces detected")

	results := make([]EmotionResult, 0, len(boxes))
	for _, box := range boxes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !ic.sel.AcceptBox(box) {
			ic.log.WithField("box", box).Debug("Face below minimum size, skipping")
			continue
		}

		face, ok := ic.pre.Normalize(frame, box)
		if !ok {
			ic.log.WithField("box", box).Debug("Empty face region, skipping")
			continue
		}

		pred, err := ic.classifier.Predict(ctx, face)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			ic.log.WithFields(logrus.Fields{
				"box":   box,
				"error": err.Error(),
			}).Warn("Emotion inference failed, skipping face")
			continue
		}

		label, confidence := pred.Top()
		b := box
		result := EmotionResult{
			Box:        &b,
			Label:      label,
			Confidence: confidence,
		}
		if ic.cfg.IncludeAllScores {
			result.AllScores = pred.Scores()
		}

		if !ic.sel.Keep(result) {
			continue
		}
		results = append(results, result)
	}

	return ic.sel.Select(results), nil
}

// RunBytes decodes raw image bytes and runs the pipeline.
func (ic *InferenceContext) RunBytes(ctx context.Context, data []byte) ([]EmotionResult, error) {
	if !ic.Ready() {
		return nil, ErrNotReady
	}

	frame, err := DecodeFrame(data)
	if err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}

	return ic.Run(ctx, frame)
}

// Close releases the classifier.
func (ic *InferenceContext) Close() error {
	if ic.classifier == nil {
		return nil
	}
	return ic.classifier.Close()
}
