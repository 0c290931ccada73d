package emotionService

import (
	"context"
	"mime/multipart"
	"time"

	"EmotionLens/internal/api/emotion"
	emotionRepository "EmotionLens/internal/api/emotion/repository"
	"EmotionLens/internal/inference"
	"EmotionLens/pkg/redis"
	"EmotionLens/pkg/s3"
	"EmotionLens/pkg/utils"

	"github.com/sirupsen/logrus"
)

// Pipeline is the part of *inference.InferenceContext the service needs.
type Pipeline interface {
	RunBytes(ctx context.Context, data []byte) ([]inference.EmotionResult, error)
	Readiness() (modelLoaded, detectorLoaded bool)
	Ready() bool
	Err() error
	Config() inference.PipelineConfig
}

type IEmotionService interface {
	DetectEmotion(ctx context.Context, in emotion.DetectInput) (*emotion.DetectEmotionResponse, error)
	Readiness() emotion.ReadinessResponse
	Upload(ctx context.Context, kind string, file *multipart.FileHeader) (*emotion.UploadResponse, error)
	GetHistory(ctx context.Context, q emotion.HistoryQuery) (*emotion.HistoryResponse, error)
}

type emotionService struct {
	log      *logrus.Logger
	pipeline Pipeline
	repo     emotionRepository.Repository
	cache    redis.IRedis
	s3Client s3.ItfS3
	utils    utils.IUtils
	profile  string
	cacheTTL time.Duration
	now      func() time.Time
}

type Option func(*emotionService)

// WithRepository enables detection history and upload bookkeeping.
func WithRepository(repo emotionRepository.Repository) Option {
	return func(s *emotionService) {
		s.repo = repo
	}
}

// WithCache enables the per-image result cache.
func WithCache(cache redis.IRedis, ttl time.Duration) Option {
	return func(s *emotionService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithS3Client(client s3.ItfS3) Option {
	return func(s *emotionService) {
		s.s3Client = client
	}
}

// WithProfileName records the profile the pipeline was built from.
func WithProfileName(name string) Option {
	return func(s *emotionService) {
		s.profile = name
	}
}

func NewEmotionService(
	log *logrus.Logger,
	pipeline Pipeline,
	utils utils.IUtils,
	opts ...Option,
) IEmotionService {
	s := &emotionService{
		log:      log,
		pipeline: pipeline,
		utils:    utils,
		profile:  inference.ProfileService,
		cacheTTL: 10 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}
