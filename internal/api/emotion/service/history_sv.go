package emotionService

import (
	"context"

	"EmotionLens/internal/api/emotion"
	"EmotionLens/internal/inference"
	contextPkg "EmotionLens/pkg/context"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const defaultHistoryLimit = 20

func (s *emotionService) GetHistory(ctx context.Context, q emotion.HistoryQuery) (*emotion.HistoryResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.repo == nil {
		return nil, emotion.ErrHistoryUnavailable
	}
	if q.Limit < 0 || q.Offset < 0 || q.Limit > 100 {
		return nil, emotion.ErrInvalidPagination
	}
	if q.Limit == 0 {
		q.Limit = defaultHistoryLimit
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, emotion.ErrInternalServerError
	}

	records, total, err := repo.Detections.GetDetections(ctx, q.Limit, q.Offset)
	if err != nil {
		return nil, emotion.ErrInternalServerError
	}

	items := make([]emotion.HistoryItem, 0, len(records))
	for _, r := range records {
		faces := []inference.EmotionResult{}
		if len(r.Faces) > 0 {
			if err := jsoniter.Unmarshal(r.Faces, &faces); err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id":   requestID,
					"detection_id": r.ID,
					"error":        err.Error(),
				}).Warn("Corrupt faces payload in history")
			}
		}

		items = append(items, emotion.HistoryItem{
			ID:            r.ID,
			RequestID:     r.RequestID,
			Source:        r.Source,
			Profile:       r.Profile,
			SelectionMode: r.SelectionMode,
			FaceCount:     r.FaceCount,
			TopEmotion:    r.TopEmotion,
			TopConfidence: r.TopConfidence,
			Faces:         faces,
			CreatedAt:     r.CreatedAt,
		})
	}

	return &emotion.HistoryResponse{
		Items:  items,
		Total:  total,
		Limit:  q.Limit,
		Offset: q.Offset,
	}, nil
}
