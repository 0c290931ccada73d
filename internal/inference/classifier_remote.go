package inference

import (
	"context"
	"fmt"
	"time"

	websocketPkg "EmotionLens/pkg/websocket"
)

func init() {
	RegisterClassifier("remote", newRemoteClassifier)
}

// remoteClassifier forwards each normalized face to a model server.
type remoteClassifier struct {
	client websocketPkg.IModelClient
	shape  []int
}

func newRemoteClassifier(opts ClassifierOptions) (EmotionClassifier, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("remote classifier needs a logger")
	}

	url := opts.URL
	if url == "" {
		url = websocketPkg.GetModelURL()
	}

	client := websocketPkg.NewModelClient(url, opts.Logger)
	return newRemoteClassifierFromClient(client, opts.InputShape)
}

func newRemoteClassifierFromClient(client websocketPkg.IModelClient, shape []int) (EmotionClassifier, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	md, err := client.Metadata(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}

	if len(md.Classes) > 0 && len(md.Classes) != NumClasses {
		client.Close()
		return nil, &ClassCountError{Got: len(md.Classes)}
	}
	for i, name := range md.Classes {
		if Label(name) != Labels[i] {
			client.Close()
			return nil, fmt.Errorf("model class %d is %q, want %q", i, name, Labels[i])
		}
	}
	if len(md.InputShape) > 0 && !sameShape(md.InputShape, shape) {
		client.Close()
		return nil, fmt.Errorf("model input shape %v does not match pipeline shape %v", md.InputShape, shape)
	}

	return &remoteClassifier{client: client, shape: shape}, nil
}

func (r *remoteClassifier) Name() string {
	return "remote"
}

func (r *remoteClassifier) Predict(ctx context.Context, face NormalizedFace) (PredictionVector, error) {
	values, err := r.client.Predict(ctx, face.Shape(), face.Data())
	if err != nil {
		return PredictionVector{}, err
	}

	return NewPredictionVector(values)
}

func (r *remoteClassifier) Close() error {
	r.client.Close()
	return nil
}

// sameShape compares shapes, treating a leading -1 or 0 batch size as any.
func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if i == 0 && (a[i] <= 0 || b[i] <= 0) {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
