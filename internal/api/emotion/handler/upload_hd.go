package emotionHandler

import (
	"EmotionLens/internal/api/emotion"
	emotionService "EmotionLens/internal/api/emotion/service"
	contextPkg "EmotionLens/pkg/context"

	"github.com/gofiber/fiber/v2"
)

func (h *EmotionHandler) UploadImage(ctx *fiber.Ctx) error {
	return h.upload(ctx, emotionService.UploadImage)
}

func (h *EmotionHandler) UploadVideo(ctx *fiber.Ctx) error {
	return h.upload(ctx, emotionService.UploadVideo)
}

func (h *EmotionHandler) upload(ctx *fiber.Ctx, kind string) error {
	requestID := h.middleware.GetRequestID(ctx)

	file := formFile(ctx, "file", kind)
	if file == nil {
		return h.errHandler.Handle(ctx, requestID, emotion.ErrNoImage, ctx.Path(), "upload_"+kind)
	}

	resp, err := h.emotionService.Upload(contextPkg.FromFiberCtx(ctx), kind, file)
	if err != nil {
		return h.errHandler.Handle(ctx, requestID, err, ctx.Path(), "upload_"+kind)
	}

	return h.errHandler.HandleSuccess(ctx, fiber.StatusCreated, resp)
}
