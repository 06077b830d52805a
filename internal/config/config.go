package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	App    AppConfig
	Geo    GeoConfig
	S3     S3Config
}

type ServerConfig struct {
	Host string
	Port string
}

type AppConfig struct {
	UploadDir      string
	DatePattern    string
	DBPath         string
	StorageBackend string
	MaxUploadSize  int64
	AllowedFormats []string
}

type GeoConfig struct {
	BaseURL  string
	Language string
	Timeout  time.Duration
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
}

func Load() (*Config, error) {
	viper.SetDefault("SERVER_HOST", "localhost")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("APP_UPLOAD_DIR", "./uploads/photos")
	viper.SetDefault("APP_DATE_PATTERN", "2006-01-02")
	viper.SetDefault("APP_DB_PATH", "./data/photkey.db")
	viper.SetDefault("APP_STORAGE_BACKEND", "fs")
	viper.SetDefault("APP_MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	viper.SetDefault("APP_ALLOWED_FORMATS", []string{".jpg", ".jpeg", ".png", ".tiff"})
	viper.SetDefault("GEO_BASE_URL", "https://nominatim.openstreetmap.org/reverse")
	viper.SetDefault("GEO_ACCEPT_LANGUAGE", "en")
	viper.SetDefault("GEO_TIMEOUT", "10s")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_ACCESS_KEY_ID", "")
	viper.SetDefault("S3_SECRET_ACCESS_KEY", "")
	viper.SetDefault("S3_USE_SSL", false)
	viper.SetDefault("S3_BUCKET_NAME", "photos")
	viper.SetDefault("S3_REGION", "us-east-1")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVER_HOST"),
			Port: viper.GetString("SERVER_PORT"),
		},
		App: AppConfig{
			UploadDir:      viper.GetString("APP_UPLOAD_DIR"),
			DatePattern:    viper.GetString("APP_DATE_PATTERN"),
			DBPath:         viper.GetString("APP_DB_PATH"),
			StorageBackend: viper.GetString("APP_STORAGE_BACKEND"),
			MaxUploadSize:  viper.GetInt64("APP_MAX_UPLOAD_SIZE"),
			AllowedFormats: viper.GetStringSlice("APP_ALLOWED_FORMATS"),
		},
		Geo: GeoConfig{
			BaseURL:  viper.GetString("GEO_BASE_URL"),
			Language: viper.GetString("GEO_ACCEPT_LANGUAGE"),
			Timeout:  viper.GetDuration("GEO_TIMEOUT"),
		},
		S3: S3Config{
			Endpoint:        viper.GetString("S3_ENDPOINT"),
			AccessKeyID:     viper.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("S3_SECRET_ACCESS_KEY"),
			UseSSL:          viper.GetBool("S3_USE_SSL"),
			BucketName:      viper.GetString("S3_BUCKET_NAME"),
			Region:          viper.GetString("S3_REGION"),
		},
	}

	if cfg.App.StorageBackend != "fs" && cfg.App.StorageBackend != "s3" {
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.App.StorageBackend)
	}

	if err := createDirs(cfg); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return cfg, nil
}

func createDirs(cfg *Config) error {
	dirs := []string{
		cfg.App.UploadDir,
		filepath.Dir(cfg.App.DBPath),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
