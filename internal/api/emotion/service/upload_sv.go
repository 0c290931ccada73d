package emotionService

import (
	"context"
	"errors"
	"mime/multipart"

	"EmotionLens/internal/api/emotion"
	"EmotionLens/internal/entity"
	contextPkg "EmotionLens/pkg/context"
	"EmotionLens/pkg/s3"
	"EmotionLens/pkg/utils"

	"github.com/sirupsen/logrus"
)

const (
	UploadImage = "image"
	UploadVideo = "video"
)

func (s *emotionService) Upload(ctx context.Context, kind string, file *multipart.FileHeader) (*emotion.UploadResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.s3Client == nil {
		return nil, emotion.ErrUploadUnavailable
	}

	var err error
	switch kind {
	case UploadVideo:
		err = s.utils.ValidateVideoFile(file)
	default:
		kind = UploadImage
		err = s.utils.ValidateImageFile(file)
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"kind":       kind,
			"error":      err.Error(),
		}).Warn("Invalid upload")
		return nil, mapFileError(err)
	}

	data, err := s.utils.ReadFile(file)
	if err != nil {
		return nil, emotion.ErrFailedToUpload
	}

	id, err := s.utils.NewULIDFromTimestamp(s.now())
	if err != nil {
		return nil, emotion.ErrInternalServerError
	}

	key := s3.ObjectKey("uploads/"+kind+"s", id, file.Filename)
	contentType := file.Header.Get("Content-Type")

	location, err := s.s3Client.Upload(key, contentType, data)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"key":        key,
			"error":      err.Error(),
		}).Error("Failed to upload file")
		return nil, emotion.ErrFailedToUpload
	}

	if s.repo != nil {
		if repo, err := s.repo.NewClient(false); err == nil {
			err = repo.Uploads.CreateUpload(ctx, entity.Upload{
				ID:          id,
				Kind:        kind,
				FileName:    file.Filename,
				ObjectKey:   key,
				Location:    location,
				ContentType: contentType,
				Size:        file.Size,
				CreatedAt:   s.now(),
			})
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      err.Error(),
				}).Warn("Failed to record upload")
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"key":        key,
		"size":       file.Size,
	}).Info("File uploaded")

	message := "Image uploaded successfully"
	if kind == UploadVideo {
		message = "Video uploaded successfully"
	}

	return &emotion.UploadResponse{
		Filename: key,
		Location: location,
		Message:  message,
	}, nil
}

func mapFileError(err error) error {
	switch {
	case errors.Is(err, utils.ErrNoFile):
		return emotion.ErrNoImage
	case errors.Is(err, utils.ErrFileTooLarge):
		return emotion.ErrFileTooLarge
	case errors.Is(err, utils.ErrNotAVideo):
		return emotion.ErrNotAVideo
	default:
		return emotion.ErrNotAnImage
	}
}
