package emotionHandler

import (
	"EmotionLens/internal/api/emotion"
	contextPkg "EmotionLens/pkg/context"
	"EmotionLens/pkg/log"
	jwtPkg "EmotionLens/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

func (h *EmotionHandler) GetHistory(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)

	subject, err := jwtPkg.GetSubject(ctx)
	if err != nil {
		return h.errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_subject")
	}

	var q emotion.HistoryQuery
	if err := ctx.QueryParser(&q); err != nil {
		return h.errHandler.Handle(ctx, requestID, emotion.ErrInvalidPagination, ctx.Path(), "parse_query")
	}

	if err := h.validator.Struct(q); err != nil {
		return h.errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.emotionService.GetHistory(contextPkg.FromFiberCtx(ctx), q)
	if err != nil {
		return h.errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_history")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"sub":        subject.ID,
		"items":      len(resp.Items),
	}).Debug("History listed")

	return h.errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}
