package emotionHandler

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"EmotionLens/internal/api/emotion"
	contextPkg "EmotionLens/pkg/context"
	"EmotionLens/pkg/log"
	"EmotionLens/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

const detectTimeout = 10 * time.Second

func (h *EmotionHandler) Ready(ctx *fiber.Ctx) error {
	resp := h.emotionService.Readiness()
	if resp.Status != "ready" {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return ctx.Status(fiber.StatusOK).JSON(resp)
}

func (h *EmotionHandler) DetectEmotion(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), detectTimeout)
	defer cancel()

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing emotion detection request")

	image, ok, err := h.readImage(ctx, requestID)
	if !ok {
		return err
	}

	result, err := h.emotionService.DetectEmotion(c, emotion.DetectInput{
		Image:   image,
		Source:  emotion.SourceHTTP,
		Persist: true,
	})
	if err != nil {
		return h.errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect_emotion")
	}

	select {
	case <-c.Done():
		return h.errHandler.HandleRequestTimeout(ctx)
	default:
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"faces":      len(result.Faces),
			"cached":     result.Cached,
		}).Info("Emotion detection successful")
		return h.errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
	}
}

// readImage accepts a multipart "file" or "image" field, or a JSON body with
// image_base64. When ok is false the error response has already been written
// and err is what the handler should return.
func (h *EmotionHandler) readImage(ctx *fiber.Ctx, requestID string) (image []byte, ok bool, err error) {
	file := formFile(ctx, "file", "image")
	if file != nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"file_name":  file.Filename,
			"file_size":  file.Size,
		}).Debug("Processing file upload")

		if err := h.utils.ValidateImageFile(file); err != nil {
			return nil, false, h.errHandler.Handle(ctx, requestID, mapUtilsError(err), ctx.Path(), "validate_image_file")
		}

		image, err = h.utils.ReadFile(file)
		if err != nil {
			return nil, false, h.errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_file")
		}
		return image, true, nil
	}

	var req emotion.DetectEmotionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, false, h.errHandler.Handle(ctx, requestID, emotion.ErrNoImage, ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, false, h.errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	image, err = h.utils.DecodeBase64Image(req.ImageBase64)
	if err != nil {
		return nil, false, h.errHandler.Handle(ctx, requestID, emotion.ErrInvalidImage, ctx.Path(), "decode_base64")
	}

	return image, true, nil
}

func formFile(ctx *fiber.Ctx, fields ...string) *multipart.FileHeader {
	for _, field := range fields {
		if file, err := ctx.FormFile(field); err == nil {
			return file
		}
	}
	return nil
}

func mapUtilsError(err error) error {
	switch {
	case errors.Is(err, utils.ErrFileTooLarge):
		return emotion.ErrFileTooLarge
	case errors.Is(err, utils.ErrNoFile):
		return emotion.ErrNoImage
	case errors.Is(err, utils.ErrNotAVideo):
		return emotion.ErrNotAVideo
	default:
		return emotion.ErrNotAnImage
	}
}
