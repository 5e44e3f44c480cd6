package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Dosada05/bracket-engine/storage"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int
	LogLevel     slog.Level

	// Параметры подсчёта очков
	DefaultBestOf int
	MaxGamePoints int

	CORSAllowedOrigins []string

	// R2 хранит итоговые сетки; пустой конфиг отключает архив.
	R2 storage.R2Config
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Ошибку отсутствия .env не считаем фатальной.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	dbURL := getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intFromEnv(getenv, "SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	var level slog.Level
	if raw := getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
		}
	}

	bestOf, err := intFromEnv(getenv, "DEFAULT_BEST_OF", 3)
	if err != nil {
		return nil, err
	}
	if bestOf < 1 || bestOf%2 == 0 {
		return nil, fmt.Errorf("DEFAULT_BEST_OF must be a positive odd number, got %d", bestOf)
	}

	maxPoints, err := intFromEnv(getenv, "MAX_GAME_POINTS", 30)
	if err != nil {
		return nil, err
	}
	if maxPoints < 11 {
		return nil, fmt.Errorf("MAX_GAME_POINTS must be at least 11, got %d", maxPoints)
	}

	origins := []string{"*"}
	if raw := getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	r2 := storage.R2Config{
		AccountID:       getenv("R2_ACCOUNT_ID"),
		AccessKeyID:     getenv("R2_ACCESS_KEY_ID"),
		SecretAccessKey: getenv("R2_SECRET_ACCESS_KEY"),
		BucketName:      getenv("R2_BUCKET_NAME"),
		PublicBaseURL:   getenv("R2_PUBLIC_BASE_URL"),
	}
	if r2.Enabled() {
		if err := r2.Validate(); err != nil {
			return nil, err
		}
	}

	return &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		LogLevel:           level,
		DefaultBestOf:      bestOf,
		MaxGamePoints:      maxPoints,
		CORSAllowedOrigins: origins,
		R2:                 r2,
	}, nil
}

func intFromEnv(getenv func(string) string, key string, def int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}
