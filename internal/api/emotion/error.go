package emotion

import "EmotionLens/pkg/response"

var (
	ErrModelNotReady       = response.NewError(503, "emotion model not loaded")
	ErrNoImage             = response.NewError(400, "no image provided")
	ErrNotAnImage          = response.NewError(400, "uploaded file is not an image")
	ErrNotAVideo           = response.NewError(400, "uploaded file is not a video")
	ErrInvalidImage        = response.NewError(400, "image could not be decoded")
	ErrFileTooLarge        = response.NewError(413, "file too large")
	ErrInvalidPagination   = response.NewError(400, "invalid pagination parameters")
	ErrHistoryUnavailable  = response.NewError(503, "detection history is not configured")
	ErrUploadUnavailable   = response.NewError(503, "object storage is not configured")
	ErrFailedToUpload      = response.NewError(500, "failed to upload file")
	ErrInternalServerError = response.NewError(500, "internal server error")
)
