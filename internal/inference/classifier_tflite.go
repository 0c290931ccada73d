//go:build tflite
// +build tflite

package inference

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/mattn/go-tflite"
)

func init() {
	RegisterClassifier("tflite", newTFLiteClassifier)
}

// tfliteClassifier runs the model in-process. The interpreter owns mutable
// tensors, so Predict is serialized.
type tfliteClassifier struct {
	mu          sync.Mutex
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
}

func newTFLiteClassifier(opts ClassifierOptions) (EmotionClassifier, error) {
	model := tflite.NewModelFromFile(opts.ModelPath)
	if model == nil {
		return nil, fmt.Errorf("failed to load model %s", opts.ModelPath)
	}

	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(threads)
	options.SetErrorReporter(func(msg string, _ interface{}) {
		if opts.Logger != nil {
			opts.Logger.Warnf("tflite: %s", msg)
		}
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		options.Delete()
		model.Delete()
		return nil, errors.New("failed to create interpreter")
	}

	t := &tfliteClassifier{model: model, options: options, interpreter: interpreter}

	if status := interpreter.AllocateTensors(); status != tflite.OK {
		t.Close()
		return nil, errors.New("failed to allocate tensors")
	}

	input := interpreter.GetInputTensor(0)
	if input.Type() != tflite.Float32 {
		t.Close()
		return nil, fmt.Errorf("model input type %s, want float32", input.Type())
	}
	shape := make([]int, input.NumDims())
	for i := range shape {
		shape[i] = input.Dim(i)
	}
	if !sameShape(shape, opts.InputShape) {
		t.Close()
		return nil, fmt.Errorf("model input shape %v does not match pipeline shape %v", shape, opts.InputShape)
	}

	output := interpreter.GetOutputTensor(0)
	if n := output.Dim(output.NumDims() - 1); n != NumClasses {
		t.Close()
		return nil, &ClassCountError{Got: n}
	}

	return t, nil
}

func (t *tfliteClassifier) Name() string {
	return "tflite"
}

func (t *tfliteClassifier) Predict(ctx context.Context, face NormalizedFace) (PredictionVector, error) {
	if err := ctx.Err(); err != nil {
		return PredictionVector{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	input := t.interpreter.GetInputTensor(0)
	if status := input.CopyFromBuffer(face.Data()); status != tflite.OK {
		return PredictionVector{}, errors.New("copying to buffer failed")
	}

	if status := t.interpreter.Invoke(); status != tflite.OK {
		return PredictionVector{}, errors.New("invoke failed")
	}

	output := t.interpreter.GetOutputTensor(0)

	var scores []float32
	switch output.Type() {
	case tflite.Float32:
		scores = append(scores, output.Float32s()...)
	case tflite.UInt8:
		for _, b := range output.UInt8s() {
			scores = append(scores, float32(b)/255.0)
		}
	default:
		return PredictionVector{}, fmt.Errorf("unsupported output type %s", output.Type())
	}

	return NewPredictionVector(scores)
}

func (t *tfliteClassifier) Close() error {
	if t.interpreter != nil {
		t.interpreter.Delete()
	}
	if t.options != nil {
		t.options.Delete()
	}
	if t.model != nil {
		t.model.Delete()
	}
	return nil
}
