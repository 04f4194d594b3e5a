package app

import (
	"time"

	"github.com/vodworks/catalog-backend/internal/logger"
	"github.com/vodworks/catalog-backend/internal/utils"
)

type Config struct {
	ListenAddr   string
	TaskTTL      time.Duration
	AllowOrigins []string
}

func LoadConfig(log *logger.Logger) Config {
	listenAddr := utils.GetEnv("LISTEN_ADDR", ":8080", log)
	taskTTLSeconds := utils.GetEnvAsInt("TASK_TTL_SECONDS", 3600, log)
	allowOrigins := utils.GetEnvAsSlice("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}, log)
	return Config{
		ListenAddr:   listenAddr,
		TaskTTL:      time.Duration(taskTTLSeconds) * time.Second,
		AllowOrigins: allowOrigins,
	}
}
