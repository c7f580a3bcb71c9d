package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	BackendSQLite = "sqlite"
	BackendNDJSON = "ndjson"
)

type Config struct {
	Port            int    `envconfig:"PORT" default:"7890" validate:"min=1,max=65535"`
	DataDir         string `envconfig:"DATA_DIR" default:"/data" validate:"required"`
	MaxUploadSizeMB int    `envconfig:"MAX_UPLOAD_SIZE_MB" default:"500" validate:"min=1"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	JobLogBackend   string `envconfig:"JOBLOG_BACKEND" default:"sqlite" validate:"oneof=sqlite ndjson"`
	Workers         int    `envconfig:"WORKERS" default:"2" validate:"min=1,max=32"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" validate:"dive,url"`

	FFmpegBin  string `envconfig:"FFMPEG_BIN" default:"ffmpeg" validate:"required"`
	FFprobeBin string `envconfig:"FFPROBE_BIN" default:"ffprobe" validate:"required"`

	WhisperBin         string `envconfig:"WHISPER_BIN" default:"whisper-cli" validate:"required"`
	WhisperModel       string `envconfig:"WHISPER_MODEL" default:"/models/ggml-base.bin" validate:"required"`
	TranscribeLanguage string `envconfig:"TRANSCRIBE_LANGUAGE" default:"auto"`

	DetectorURL     string        `envconfig:"DETECTOR_URL" validate:"omitempty,url"`
	DetectorAPIKey  string        `envconfig:"DETECTOR_API_KEY"`
	DetectorTimeout time.Duration `envconfig:"DETECTOR_TIMEOUT" default:"5m" validate:"min=1s"`
}

// Load reads an optional .env file, then the process environment. Variables
// already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
