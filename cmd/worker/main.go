package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/reelmaker/reelmaker-backend/internal/config"
	"github.com/reelmaker/reelmaker-backend/internal/llm"
	"github.com/reelmaker/reelmaker-backend/internal/media"
	"github.com/reelmaker/reelmaker-backend/internal/pipeline"
	queueRepository "github.com/reelmaker/reelmaker-backend/internal/queue/repository"
	"github.com/reelmaker/reelmaker-backend/internal/stt"
	"github.com/reelmaker/reelmaker-backend/internal/tts"
	"github.com/reelmaker/reelmaker-backend/pkg/db/aws"
	"github.com/reelmaker/reelmaker-backend/pkg/db/postgres"
	"github.com/reelmaker/reelmaker-backend/pkg/db/redis"
	"github.com/reelmaker/reelmaker-backend/pkg/execx"
	"github.com/reelmaker/reelmaker-backend/pkg/logger"
)

func main() {
	configFile := "config.yml"
	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %s", err)
	}
	appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
	defer psqlDB.Close()

	redisClient, err := redis.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	appLogger.Infof("redis connected")
	defer redisClient.Close()

	var store pipeline.ObjectStore
	if cfg.S3.Enabled {
		s3Client, _, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			appLogger.Fatalf("could not connect to s3: %s", err)
		}
		appLogger.Infof("s3 connected")
		store = queueRepository.NewObjectStore(s3Client)
	}

	cmdRunner := execx.NewRunner(time.Duration(cfg.Worker.CommandTimeout) * time.Second)
	toolbox := media.NewToolbox(cfg.Media, cmdRunner)
	transcriber := stt.NewWhisper(cfg.Whisper, cmdRunner)
	ttsEngine, err := tts.NewEngine(cfg.TTS, cmdRunner)
	if err != nil {
		appLogger.Fatalf("could not init tts engine: %s", err)
	}

	queueRepo := queueRepository.NewQueueRepo(psqlDB, cfg.Worker.ClaimBatchSize)
	queueRedisRepo := queueRepository.NewQueueRedisRepo(redisClient, cfg.Redis.EventChannel, cfg.Redis.ProgressKey)

	oracle := pipeline.NewLLMOracle(llm.NewClient(cfg.LLM))
	selector := pipeline.NewSelector(oracle, queueRepo, appLogger)
	narrator := pipeline.NewNarrator(oracle, ttsEngine, toolbox, appLogger)
	renderer := pipeline.NewRenderer(toolbox, cfg.Media, appLogger)

	runner := pipeline.NewRunner(cfg, queueRepo, queueRedisRepo, toolbox, transcriber, selector, narrator, renderer, store, appLogger)
	scheduler := pipeline.NewScheduler(cfg, queueRepo, queueRedisRepo, runner, appLogger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	appLogger.Infof("worker started, concurrency: %d", cfg.Worker.Concurrency)
	scheduler.Run(ctx)
	appLogger.Infof("worker stopped")
}
