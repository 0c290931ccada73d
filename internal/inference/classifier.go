package inference

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// EmotionClassifier is a pretrained model treated as a pure function after load.
type EmotionClassifier interface {
	Predict(ctx context.Context, face NormalizedFace) (PredictionVector, error)
	Name() string
	Close() error
}

// ClassifierOptions carries everything a backend may need to load.
type ClassifierOptions struct {
	// ModelPath is a local model file for in-process runtimes.
	ModelPath string
	// URL is the address of a remote model server.
	URL string
	// InputShape is the expected [1, H, W, C] input.
	InputShape []int
	Threads    int
	Logger     *logrus.Logger
}

type ClassifierFactory func(opts ClassifierOptions) (EmotionClassifier, error)

var (
	classifierMu       sync.RWMutex
	classifierBackends = map[string]ClassifierFactory{}
)

func RegisterClassifier(name string, factory ClassifierFactory) {
	classifierMu.Lock()
	defer classifierMu.Unlock()
	classifierBackends[name] = factory
}

func ClassifierBackends() []string {
	classifierMu.RLock()
	defer classifierMu.RUnlock()
	names := make([]string, 0, len(classifierBackends))
	for name := range classifierBackends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewClassifier loads the named classifier backend.
func NewClassifier(backend string, opts ClassifierOptions) (EmotionClassifier, error) {
	classifierMu.RLock()
	factory, ok := classifierBackends[backend]
	classifierMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownClassifier, backend, ClassifierBackends())
	}

	return factory(opts)
}

func inputShape(cfg PipelineConfig) []int {
	return []int{1, cfg.InputResolution.Height, cfg.InputResolution.Width, cfg.ChannelMode.Channels()}
}
