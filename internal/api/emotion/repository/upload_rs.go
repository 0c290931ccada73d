package emotionRepository

import (
	"context"

	"EmotionLens/internal/entity"
	contextPkg "EmotionLens/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *uploadsRepository) CreateUpload(ctx context.Context, upload entity.Upload) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":           upload.ID,
		"kind":         upload.Kind,
		"file_name":    upload.FileName,
		"object_key":   upload.ObjectKey,
		"location":     upload.Location,
		"content_type": upload.ContentType,
		"size":         upload.Size,
		"created_at":   upload.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateUpload, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateUpload")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating upload")
		return err
	}

	return nil
}
