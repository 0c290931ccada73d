package emotionRepository

import (
	"context"
	"database/sql"
	"time"

	"EmotionLens/internal/entity"
	contextPkg "EmotionLens/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type DetectionDB struct {
	ID            sql.NullString  `db:"id"`
	RequestID     sql.NullString  `db:"request_id"`
	Source        sql.NullString  `db:"source"`
	ImageHash     sql.NullString  `db:"image_hash"`
	Profile       sql.NullString  `db:"profile"`
	SelectionMode sql.NullString  `db:"selection_mode"`
	FaceCount     sql.NullInt64   `db:"face_count"`
	TopEmotion    sql.NullString  `db:"top_emotion"`
	TopConfidence sql.NullFloat64 `db:"top_confidence"`
	Faces         []byte          `db:"faces"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (d DetectionDB) toEntity() entity.Detection {
	return entity.Detection{
		ID:            d.ID.String,
		RequestID:     d.RequestID.String,
		Source:        d.Source.String,
		ImageHash:     d.ImageHash.String,
		Profile:       d.Profile.String,
		SelectionMode: d.SelectionMode.String,
		FaceCount:     int(d.FaceCount.Int64),
		TopEmotion:    d.TopEmotion.String,
		TopConfidence: d.TopConfidence.Float64,
		Faces:         d.Faces,
		CreatedAt:     d.CreatedAt,
	}
}

func detectionArgs(detection entity.Detection) map[string]interface{} {
	faces := string(detection.Faces)
	if faces == "" {
		faces = "[]"
	}

	return map[string]interface{}{
		"id":             detection.ID,
		"request_id":     detection.RequestID,
		"source":         detection.Source,
		"image_hash":     detection.ImageHash,
		"profile":        detection.Profile,
		"selection_mode": detection.SelectionMode,
		"face_count":     detection.FaceCount,
		"top_emotion":    sql.NullString{String: detection.TopEmotion, Valid: detection.TopEmotion != ""},
		"top_confidence": sql.NullFloat64{Float64: detection.TopConfidence, Valid: detection.TopEmotion != ""},
		"faces":          faces,
		"created_at":     detection.CreatedAt,
	}
}

func (r *detectionsRepository) CreateDetection(ctx context.Context, detection entity.Detection) error {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryCreateDetection, detectionArgs(detection))
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateDetection")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating detection")
		return err
	}

	return nil
}

func (r *detectionsRepository) GetDetections(ctx context.Context, limit, offset int) ([]entity.Detection, int, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	}

	query, args, err := sqlx.Named(queryGetDetections, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetDetections named query preparation err")
		return nil, 0, err
	}
	query = r.q.Rebind(query)

	var rows []DetectionDB
	if err := r.q.SelectContext(ctx, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when listing detections")
		return nil, 0, err
	}

	var total int
	if err := r.q.QueryRowxContext(ctx, queryCountDetections).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when counting detections")
		return nil, 0, err
	}

	detections := make([]entity.Detection, 0, len(rows))
	for _, row := range rows {
		detections = append(detections, row.toEntity())
	}

	return detections, total, nil
}
