package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"EmotionLens/database/postgres"
	emotionHandler "EmotionLens/internal/api/emotion/handler"
	emotionRepository "EmotionLens/internal/api/emotion/repository"
	emotionService "EmotionLens/internal/api/emotion/service"
	"EmotionLens/internal/inference"
	"EmotionLens/internal/middleware"
	"EmotionLens/pkg/redis"
	"EmotionLens/pkg/s3"
	"EmotionLens/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	redisServer redis.IRedis
	s3Client    s3.ItfS3
	inference   *inference.InferenceContext
	inferCfg    InferenceConfig
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.inference == nil {
		return nil, fmt.Errorf("inference context is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithInference attaches the pipeline built at startup. A context that is
// not ready is accepted; the service then answers 503.
func WithInference(ic *inference.InferenceContext, cfg InferenceConfig) ServerOption {
	return func(s *Server) error {
		s.inference = ic
		s.inferCfg = cfg
		return nil
	}
}

// WithDatabase connects to postgres for detection history. Without DB_HOST
// the server runs with history disabled.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if errors.Is(err, postgres.ErrNotConfigured) {
			s.warn("Database not configured, detection history disabled")
			return nil
		}
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

// WithRedisServer enables the result cache. Without REDIS_ADDRESS, or when
// Redis is unreachable, the server runs uncached.
func WithRedisServer() ServerOption {
	return func(s *Server) error {
		client, err := redis.New()
		if err != nil {
			s.warn(fmt.Sprintf("Result cache disabled: %v", err))
			return nil
		}
		s.redisServer = client
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

// WithS3Client enables the upload endpoints. Without AWS_BUCKET_NAME they
// answer 503.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if errors.Is(err, s3.ErrNotConfigured) {
			s.warn("Object storage not configured, uploads disabled")
			return nil
		}
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) warn(msg string) {
	if s.log != nil {
		s.log.Warn(msg)
	}
}

func (s *Server) RegisterHandler() {
	opts := []emotionService.Option{
		emotionService.WithProfileName(s.inferCfg.ProfileName),
	}
	if s.db != nil {
		opts = append(opts, emotionService.WithRepository(emotionRepository.New(s.db, s.log)))
	}
	if s.redisServer != nil {
		opts = append(opts, emotionService.WithCache(s.redisServer, s.inferCfg.CacheTTL))
	}
	if s.s3Client != nil {
		opts = append(opts, emotionService.WithS3Client(s.s3Client))
	}

	emotionServices := emotionService.NewEmotionService(s.log, s.inference, s.utils, opts...)
	emotionHandlers := emotionHandler.New(s.log, s.validator, s.middleware, emotionServices, s.utils)

	s.handlers = append(s.handlers, emotionHandlers)
}

// App exposes the engine, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.engine
}

// Mount installs the global middleware and every registered handler.
func (s *Server) Mount() {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	s.setupHealthCheck()

	router := s.engine.Group("/api/v1")
	for _, h := range s.handlers {
		h.Start(router)
	}
}

func (s *Server) Run() error {
	s.Mount()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests and releases every backend.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.engine.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.inference != nil {
		if err := s.inference.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.redisServer != nil {
		if err := s.redisServer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
