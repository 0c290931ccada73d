package emotionHandler

import (
	emotionService "EmotionLens/internal/api/emotion/service"
	"EmotionLens/internal/middleware"
	"EmotionLens/pkg/handlerUtil"
	"EmotionLens/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type EmotionHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	emotionService emotionService.IEmotionService
	utils          utils.IUtils
	errHandler     *handlerUtil.ErrorHandler
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	es emotionService.IEmotionService,
	utils utils.IUtils,
) *EmotionHandler {
	return &EmotionHandler{
		emotionService: es,
		log:            log,
		validator:      validator,
		middleware:     middleware,
		utils:          utils,
		errHandler:     handlerUtil.New(log),
	}
}

func (h *EmotionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Get("/ready", h.Ready)
	srv.Post("/detect_emotion", h.middleware.NewRateLimiter, h.DetectEmotion)

	ws := srv.Group("/ws")
	ws.Use("/capture", wsMiddleware)
	ws.Get("/capture", websocket.New(h.handleCaptureWebSocket))

	upload := srv.Group("/upload", h.middleware.NewRateLimiter)
	upload.Post("/image", h.UploadImage)
	upload.Post("/video", h.UploadVideo)

	srv.Get("/history", h.middleware.NewTokenMiddleware, h.GetHistory)
}
