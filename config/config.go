package config

import (
	"os"
	"time"
)

type Config struct {
	HttpPort string
	AppEnv   string

	// S3/MinIO
	BucketEndpoint  string
	BucketAccessID  string
	BucketAccessKey string
	BucketName      string
	BucketRegion    string
	UseSSL          bool   // MinIO: false, S3: true
	StorageType     string // "minio" or "s3"

	// Redis
	RedisURL      string
	RedisPassword string

	// Postgres
	Host     string
	User     string
	Password string
	DBName   string
	Port     string

	// content extraction API
	ExtractAPIBase string
	ExtractAPIKey  string
	ExtractTimeout time.Duration

	// pipeline tuning
	MaxFileSize     int64
	MaxChunkLength  int
	SyncBatchSize   int
	FlushInterval   time.Duration
	SyncMaxRetries  int
	SchedulerPeriod time.Duration
	EmbeddingDim    int
}

func LoadConfig() *Config {
	return &Config{
		HttpPort:        os.Getenv("PORT"),
		AppEnv:          os.Getenv("APP_ENV"),
		BucketEndpoint:  os.Getenv("BUCKET_ENDPOINT"),
		BucketAccessID:  os.Getenv("BUCKET_ACCESS_ID"),
		BucketAccessKey: os.Getenv("BUCKET_ACCESS_KEY"),
		BucketName:      os.Getenv("BUCKET_NAME"),
		BucketRegion:    os.Getenv("BUCKET_REGION"),
		UseSSL:          os.Getenv("BUCKET_USE_SSL") == "true",
		StorageType:     os.Getenv("STORAGE_TYPE"),
		RedisURL:        os.Getenv("REDIS_URL"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		Host:            os.Getenv("PG_HOST"),
		User:            os.Getenv("PG_USER"),
		Password:        os.Getenv("PG_PASSWORD"),
		DBName:          os.Getenv("PG_DB"),
		Port:            os.Getenv("PG_PORT"),
		ExtractAPIBase:  os.Getenv("EXTRACT_API_BASE"),
		ExtractAPIKey:   os.Getenv("EXTRACT_API_KEY"),
		ExtractTimeout:  30 * time.Second,
		MaxFileSize:     50 * 1024 * 1024,
		MaxChunkLength:  500,
		SyncBatchSize:   20,
		FlushInterval:   5 * time.Second,
		SyncMaxRetries:  3,
		SchedulerPeriod: 5 * time.Minute,
		EmbeddingDim:    64,
	}
}
