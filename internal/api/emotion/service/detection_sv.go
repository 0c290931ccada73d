package emotionService

import (
	"context"
	"errors"
	"fmt"

	"EmotionLens/internal/api/emotion"
	"EmotionLens/internal/entity"
	"EmotionLens/internal/inference"
	contextPkg "EmotionLens/pkg/context"
	"EmotionLens/pkg/redis"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

func (s *emotionService) DetectEmotion(ctx context.Context, in emotion.DetectInput) (*emotion.DetectEmotionResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if !s.pipeline.Ready() {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      fmt.Sprint(s.pipeline.Err()),
		}).Warn("Detection requested while pipeline is not ready")
		return nil, emotion.ErrModelNotReady
	}
	if len(in.Image) == 0 {
		return nil, emotion.ErrNoImage
	}

	cfg := s.pipeline.Config()
	mode := string(cfg.SelectionMode)
	hash := s.utils.HashBytes(in.Image)
	cacheKey := redis.ResultKey(s.profile, s.configDigest(cfg), hash)

	if faces, ok := s.cachedFaces(ctx, cacheKey); ok {
		return &emotion.DetectEmotionResponse{
			Faces:         faces,
			SelectionMode: mode,
			RequestID:     requestID,
			Cached:        true,
		}, nil
	}

	faces, err := s.pipeline.RunBytes(ctx, in.Image)
	if err != nil {
		switch {
		case errors.Is(err, inference.ErrNotReady):
			return nil, emotion.ErrModelNotReady
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return nil, err
		default:
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"source":     in.Source,
				"error":      err.Error(),
			}).Warn("Failed to decode frame")
			return nil, emotion.ErrInvalidImage
		}
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"source":     in.Source,
		"faces":      len(faces),
	}).Debug("Frame processed")

	payload, err := jsoniter.Marshal(faces)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to encode detection result")
		return nil, emotion.ErrInternalServerError
	}

	if s.cache != nil {
		if err := s.cache.SetResult(ctx, cacheKey, payload, s.cacheTTL); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to cache detection result")
		}
	}

	if in.Persist {
		s.saveDetection(ctx, in.Source, hash, mode, faces, payload)
	}

	return &emotion.DetectEmotionResponse{
		Faces:         faces,
		SelectionMode: mode,
		RequestID:     requestID,
	}, nil
}

func (s *emotionService) cachedFaces(ctx context.Context, key string) ([]inference.EmotionResult, bool) {
	if s.cache == nil {
		return nil, false
	}

	payload, err := s.cache.GetResult(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"error":      err.Error(),
			}).Warn("Result cache unavailable")
		}
		return nil, false
	}

	var faces []inference.EmotionResult
	if err := jsoniter.Unmarshal(payload, &faces); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"key":        key,
			"error":      err.Error(),
		}).Warn("Dropping unreadable cached result")
		if err := s.cache.DeleteResult(ctx, key); err != nil {
			s.log.WithError(err).Warn("Failed to delete cached result")
		}
		return nil, false
	}
	if faces == nil {
		faces = []inference.EmotionResult{}
	}

	return faces, true
}

// configDigest changes whenever any setting that shapes a result changes.
func (s *emotionService) configDigest(cfg inference.PipelineConfig) string {
	raw, err := jsoniter.Marshal(cfg)
	if err != nil {
		return "nocfg"
	}
	return s.utils.HashBytes(raw)
}

// saveDetection stores the run for the history endpoint. Failures are logged
// and never fail the detection itself.
func (s *emotionService) saveDetection(ctx context.Context, source, hash, mode string, faces []inference.EmotionResult, payload []byte) {
	if s.repo == nil {
		return
	}
	requestID := contextPkg.GetRequestID(ctx)

	id, err := s.utils.NewULIDFromTimestamp(s.now())
	if err != nil {
		s.log.WithError(err).Error("Failed to generate detection id")
		return
	}

	record := entity.Detection{
		ID:            id,
		RequestID:     requestID,
		Source:        source,
		ImageHash:     hash,
		Profile:       s.profile,
		SelectionMode: mode,
		FaceCount:     len(faces),
		Faces:         payload,
		CreatedAt:     s.now(),
	}
	if top, ok := topFace(faces); ok {
		record.TopEmotion = top.Label.String()
		record.TopConfidence = top.Confidence
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return
	}

	if err := repo.Detections.CreateDetection(ctx, record); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to store detection history")
	}
}

func topFace(faces []inference.EmotionResult) (inference.EmotionResult, bool) {
	if len(faces) == 0 {
		return inference.EmotionResult{}, false
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.Confidence > best.Confidence {
			best = f
		}
	}
	return best, true
}

func (s *emotionService) Readiness() emotion.ReadinessResponse {
	cfg := s.pipeline.Config()
	modelLoaded, detectorLoaded := s.pipeline.Readiness()

	resp := emotion.ReadinessResponse{
		Status:         "ready",
		ModelLoaded:    modelLoaded,
		DetectorLoaded: detectorLoaded,
		Profile:        s.profile,
		SelectionMode:  string(cfg.SelectionMode),
	}
	if !s.pipeline.Ready() {
		resp.Status = "not_ready"
		if err := s.pipeline.Err(); err != nil {
			resp.Error = err.Error()
		}
	}

	return resp
}
