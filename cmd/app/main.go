package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"EmotionLens/internal/config"
	"EmotionLens/internal/inference"
	"EmotionLens/pkg/log"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.NewLogger().Warnf("No .env file loaded: %v", err)
	}
	logger := log.NewLogger()

	inferCfg, err := config.LoadInferenceConfig()
	if err != nil {
		logger.Fatalf("Invalid inference configuration: %v", err)
	}

	ic := inference.Load(inferCfg.Pipeline, inferCfg.Load, logger)
	if !ic.Ready() {
		logger.Errorf("Inference pipeline not ready, serving 503: %v", ic.Err())
	}

	fiberApp := config.NewFiber(logger)
	validator := config.NewValidator()

	server, err := config.NewServer(
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithInference(ic, inferCfg),
		config.WithDatabase(),
		config.WithRedisServer(),
		config.WithS3Client(),
		config.WithMiddleware(),
		config.WithUtils(),
	)
	if err != nil {
		logger.Fatal(err)
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	logger.WithField("profile", inferCfg.ProfileName).Info("Server started successfully")

	<-sigChan
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error during shutdown: %v", err)
	}
}
