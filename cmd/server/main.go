package main

import (
	"log"

	"github.com/reelmaker/reelmaker-backend/internal/config"
	"github.com/reelmaker/reelmaker-backend/internal/server"
	"github.com/reelmaker/reelmaker-backend/pkg/db/aws"
	"github.com/reelmaker/reelmaker-backend/pkg/db/postgres"
	"github.com/reelmaker/reelmaker-backend/pkg/db/redis"
	"github.com/reelmaker/reelmaker-backend/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func main() {
	log.Println("Starting server")
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

	var s3Client *s3.Client
	var presignClient *s3.PresignClient
	if cfg.S3.Enabled {
		s3Client, presignClient, err = aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			appLogger.Fatalf("could not connect to s3: %s", err)
		}
		appLogger.Infof("s3 connected")
	}

	s := server.NewServer(cfg, psqlDB, redisClient, s3Client, presignClient, appLogger)
	if err = s.Run(); err != nil {
		appLogger.Fatalf("could not start server: %s", err)
	}
}
