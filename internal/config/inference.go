package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"EmotionLens/internal/inference"
)

// InferenceConfig is everything needed to build the pipeline at startup.
type InferenceConfig struct {
	ProfileName string
	Pipeline    inference.PipelineConfig
	Load        inference.LoadOptions
	CacheTTL    time.Duration
}

// LoadInferenceConfig starts from the EMOTION_PROFILE profile and applies the
// individual overrides found in the environment.
func LoadInferenceConfig() (InferenceConfig, error) {
	profile := strings.ToLower(getEnv("EMOTION_PROFILE", inference.ProfileService))
	cfg, err := inference.Profile(profile)
	if err != nil {
		return InferenceConfig{}, err
	}

	if v := getEnv("EMOTION_SELECTION_MODE", ""); v != "" {
		mode, err := inference.ParseSelectionMode(v)
		if err != nil {
			return InferenceConfig{}, err
		}
		cfg.SelectionMode = mode
	}

	var errs []error
	cfg.Padding.X = envInt("EMOTION_PADDING_X", cfg.Padding.X, &errs)
	cfg.Padding.Y = envInt("EMOTION_PADDING_Y", cfg.Padding.Y, &errs)
	cfg.MinFaceSize = envInt("EMOTION_MIN_FACE_SIZE", cfg.MinFaceSize, &errs)
	cfg.MinConfidence = envFloat("EMOTION_MIN_CONFIDENCE", cfg.MinConfidence, &errs)
	cfg.IncludeAllScores = envBool("EMOTION_INCLUDE_ALL_SCORES", cfg.IncludeAllScores, &errs)
	cfg.Detector.ScaleFactor = envFloat("DETECTOR_SCALE_FACTOR", cfg.Detector.ScaleFactor, &errs)
	cfg.Detector.MinNeighbors = envInt("DETECTOR_MIN_NEIGHBORS", cfg.Detector.MinNeighbors, &errs)
	cfg.Detector.MinSize = envInt("DETECTOR_MIN_SIZE", cfg.Detector.MinSize, &errs)
	cacheTTL := envDuration("RESULT_CACHE_TTL", 10*time.Minute, &errs)
	threads := envInt("CLASSIFIER_THREADS", 0, &errs)
	if len(errs) > 0 {
		return InferenceConfig{}, errs[0]
	}

	if err := cfg.Validate(); err != nil {
		return InferenceConfig{}, err
	}

	return InferenceConfig{
		ProfileName: profile,
		Pipeline:    cfg,
		Load: inference.LoadOptions{
			DetectorBackend:   getEnv("DETECTOR_BACKEND", "pigo"),
			CascadePath:       getEnv("DETECTOR_CASCADE_PATH", "./models/facefinder"),
			ClassifierBackend: getEnv("CLASSIFIER_BACKEND", "remote"),
			Classifier: inference.ClassifierOptions{
				ModelPath: os.Getenv("CLASSIFIER_MODEL_PATH"),
				URL:       os.Getenv("AI_EMOTION_MODEL_URL"),
				Threads:   threads,
			},
		},
		CacheTTL: cacheTTL,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64, errs *[]error) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}

func envBool(key string, fallback bool, errs *[]error) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}
