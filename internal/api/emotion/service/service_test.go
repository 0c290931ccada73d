package emotionService

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"EmotionLens/internal/api/emotion"
	emotionRepository "EmotionLens/internal/api/emotion/repository"
	"EmotionLens/internal/entity"
	"EmotionLens/internal/inference"
	"EmotionLens/pkg/redis"
	"EmotionLens/pkg/utils"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	cfg     inference.PipelineConfig
	ready   bool
	results []inference.EmotionResult
	err     error
	calls   int
}

func (p *fakePipeline) RunBytes(ctx context.Context, data []byte) ([]inference.EmotionResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.results, nil
}

func (p *fakePipeline) Readiness() (bool, bool) { return p.ready, true }
func (p *fakePipeline) Ready() bool             { return p.ready }
func (p *fakePipeline) Config() inference.PipelineConfig {
	return p.cfg
}
func (p *fakePipeline) Err() error {
	if p.ready {
		return nil
	}
	return errors.New("classifier: not loaded")
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) SetResult(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) GetResult(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, redis.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) DeleteResult(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Close() error { return nil }

type fakeDetections struct {
	records []entity.Detection
}

func (d *fakeDetections) CreateDetection(_ context.Context, detection entity.Detection) error {
	d.records = append([]entity.Detection{detection}, d.records...)
	return nil
}

func (d *fakeDetections) GetDetections(_ context.Context, limit, offset int) ([]entity.Detection, int, error) {
	if offset >= len(d.records) {
		return nil, len(d.records), nil
	}
	end := offset + limit
	if end > len(d.records) {
		end = len(d.records)
	}
	return d.records[offset:end], len(d.records), nil
}

type fakeUploads struct {
	uploads []entity.Upload
}

func (u *fakeUploads) CreateUpload(_ context.Context, upload entity.Upload) error {
	u.uploads = append(u.uploads, upload)
	return nil
}

type fakeRepo struct {
	detections *fakeDetections
	uploads    *fakeUploads
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{detections: &fakeDetections{}, uploads: &fakeUploads{}}
}

func (r *fakeRepo) NewClient(bool) (emotionRepository.Client, error) {
	return emotionRepository.Client{
		Detections: r.detections,
		Uploads:    r.uploads,
		Commit:     func() error { return nil },
		Rollback:   func() error { return nil },
	}, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func happyFace() inference.EmotionResult {
	return inference.EmotionResult{
		Box:        &inference.FaceBox{X: 10, Y: 20, W: 100, H: 100},
		Label:      inference.Happy,
		Confidence: 0.7,
	}
}

func TestDetectEmotion(t *testing.T) {
	pipeline := &fakePipeline{cfg: inference.ServiceProfile(), ready: true, results: []inference.EmotionResult{happyFace()}}
	cache := newFakeCache()
	repo := newFakeRepo()
	svc := NewEmotionService(quietLogger(), pipeline, utils.New(), WithCache(cache, time.Minute), WithRepository(repo))

	in := emotion.DetectInput{Image: []byte("frame-bytes"), Source: emotion.SourceHTTP, Persist: true}

	resp, err := svc.DetectEmotion(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Equal(t, "all_faces", resp.SelectionMode)
	require.Len(t, resp.Faces, 1)
	assert.Equal(t, inference.Happy, resp.Faces[0].Label)

	require.Len(t, repo.detections.records, 1)
	record := repo.detections.records[0]
	assert.Equal(t, "Happy", record.TopEmotion)
	assert.Equal(t, 1, record.FaceCount)
	assert.Equal(t, emotion.SourceHTTP, record.Source)

	resp, err = svc.DetectEmotion(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, resp.Cached)
	assert.Equal(t, 1, pipeline.calls)
	require.Len(t, resp.Faces, 1)
	assert.Equal(t, inference.FaceBox{X: 10, Y: 20, W: 100, H: 100}, *resp.Faces[0].Box)
}

func TestDetectEmotionCacheIsScopedToConfig(t *testing.T) {
	cache := newFakeCache()
	in := emotion.DetectInput{Image: []byte("same-frame"), Source: emotion.SourceHTTP}

	lenient := &fakePipeline{cfg: inference.ServiceProfile(), ready: true, results: []inference.EmotionResult{happyFace()}}
	svcA := NewEmotionService(quietLogger(), lenient, utils.New(), WithCache(cache, time.Minute))
	resp, err := svcA.DetectEmotion(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, resp.Faces, 1)

	strictCfg := inference.ServiceProfile()
	strictCfg.MinConfidence = 0.9
	strict := &fakePipeline{cfg: strictCfg, ready: true, results: []inference.EmotionResult{}}
	svcB := NewEmotionService(quietLogger(), strict, utils.New(), WithCache(cache, time.Minute))
	resp, err = svcB.DetectEmotion(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Empty(t, resp.Faces)
	assert.Equal(t, 1, strict.calls)
	assert.Len(t, cache.data, 2)

	resp, err = svcA.DetectEmotion(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, resp.Cached)
	assert.Equal(t, 1, lenient.calls)
}

func TestDetectEmotionDropsUnreadableCacheEntry(t *testing.T) {
	cache := newFakeCache()
	pipeline := &fakePipeline{cfg: inference.ServiceProfile(), ready: true, results: []inference.EmotionResult{happyFace()}}
	svc := NewEmotionService(quietLogger(), pipeline, utils.New(), WithCache(cache, time.Minute))
	in := emotion.DetectInput{Image: []byte("frame")}

	_, err := svc.DetectEmotion(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, cache.data, 1)
	for key := range cache.data {
		cache.data[key] = []byte("{not json")
	}

	resp, err := svc.DetectEmotion(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Equal(t, 2, pipeline.calls)
	require.Len(t, cache.data, 1)
	for _, v := range cache.data {
		assert.NotEqual(t, "{not json", string(v))
	}
}

func TestDetectEmotionErrors(t *testing.T) {
	t.Run("not ready", func(t *testing.T) {
		svc := NewEmotionService(quietLogger(), &fakePipeline{cfg: inference.ServiceProfile()}, utils.New())
		_, err := svc.DetectEmotion(context.Background(), emotion.DetectInput{Image: []byte("x")})
		assert.ErrorIs(t, err, emotion.ErrModelNotReady)
	})

	t.Run("empty image", func(t *testing.T) {
		svc := NewEmotionService(quietLogger(), &fakePipeline{cfg: inference.ServiceProfile(), ready: true}, utils.New())
		_, err := svc.DetectEmotion(context.Background(), emotion.DetectInput{})
		assert.ErrorIs(t, err, emotion.ErrNoImage)
	})

	t.Run("undecodable", func(t *testing.T) {
		pipeline := &fakePipeline{cfg: inference.ServiceProfile(), ready: true, err: inference.ErrEmptyFrame}
		svc := NewEmotionService(quietLogger(), pipeline, utils.New())
		_, err := svc.DetectEmotion(context.Background(), emotion.DetectInput{Image: []byte("x")})
		assert.ErrorIs(t, err, emotion.ErrInvalidImage)
	})

	t.Run("deadline", func(t *testing.T) {
		pipeline := &fakePipeline{cfg: inference.ServiceProfile(), ready: true, err: context.DeadlineExceeded}
		svc := NewEmotionService(quietLogger(), pipeline, utils.New())
		_, err := svc.DetectEmotion(context.Background(), emotion.DetectInput{Image: []byte("x")})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestDetectEmotionWithoutPersist(t *testing.T) {
	repo := newFakeRepo()
	pipeline := &fakePipeline{cfg: inference.ServiceProfile(), ready: true, results: []inference.EmotionResult{}}
	svc := NewEmotionService(quietLogger(), pipeline, utils.New(), WithRepository(repo))

	resp, err := svc.DetectEmotion(context.Background(), emotion.DetectInput{Image: []byte("x"), Source: emotion.SourceWebSocket})
	require.NoError(t, err)
	assert.NotNil(t, resp.Faces)
	assert.Empty(t, repo.detections.records)
}

func TestReadiness(t *testing.T) {
	svc := NewEmotionService(quietLogger(), &fakePipeline{cfg: inference.DemoProfile()}, utils.New(), WithProfileName("demo"))

	r := svc.Readiness()
	assert.Equal(t, "not_ready", r.Status)
	assert.False(t, r.ModelLoaded)
	assert.True(t, r.DetectorLoaded)
	assert.Equal(t, "demo", r.Profile)
	assert.NotEmpty(t, r.Error)
}

func TestGetHistory(t *testing.T) {
	pipeline := &fakePipeline{cfg: inference.ServiceProfile(), ready: true, results: []inference.EmotionResult{happyFace()}}

	_, err := NewEmotionService(quietLogger(), pipeline, utils.New()).GetHistory(context.Background(), emotion.HistoryQuery{})
	assert.ErrorIs(t, err, emotion.ErrHistoryUnavailable)

	repo := newFakeRepo()
	svc := NewEmotionService(quietLogger(), pipeline, utils.New(), WithRepository(repo))
	for _, img := range []string{"a", "b", "c"} {
		_, err := svc.DetectEmotion(context.Background(), emotion.DetectInput{Image: []byte(img), Persist: true})
		require.NoError(t, err)
	}

	history, err := svc.GetHistory(context.Background(), emotion.HistoryQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, history.Total)
	require.Len(t, history.Items, 2)
	require.Len(t, history.Items[0].Faces, 1)
	assert.Equal(t, inference.Happy, history.Items[0].Faces[0].Label)

	history, err = svc.GetHistory(context.Background(), emotion.HistoryQuery{})
	require.NoError(t, err)
	assert.Equal(t, defaultHistoryLimit, history.Limit)
	assert.Len(t, history.Items, 3)

	_, err = svc.GetHistory(context.Background(), emotion.HistoryQuery{Limit: 500})
	assert.ErrorIs(t, err, emotion.ErrInvalidPagination)
}

func TestTopFace(t *testing.T) {
	_, ok := topFace(nil)
	assert.False(t, ok)

	top, ok := topFace([]inference.EmotionResult{
		{Label: inference.Sad, Confidence: 0.4},
		{Label: inference.Angry, Confidence: 0.8},
	})
	require.True(t, ok)
	assert.Equal(t, inference.Angry, top.Label)
}
