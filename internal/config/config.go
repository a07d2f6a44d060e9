// Package config loads runtime configuration from the environment. A local
// .env file is honored in development; real deployments set variables
// directly.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is the complete runtime configuration, populated from HAMFAST_*
// environment variables.
type Config struct {
	App  App
	DB   DB
	Sync Sync
	Push Push
}

type App struct {
	Port      int    `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

type DB struct {
	Path string `envconfig:"DB_PATH" default:"hamfast.db"`
}

// Sync configures the encrypted snapshot side-channel and photo blob storage.
// Snapshots stay disabled until the S3 settings and passphrase are all set.
type Sync struct {
	S3Endpoint string `envconfig:"S3_ENDPOINT"`
	S3Bucket   string `envconfig:"S3_BUCKET"`
	S3Region   string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Access   string `envconfig:"S3_ACCESS_KEY"`
	S3Secret   string `envconfig:"S3_SECRET_KEY"`
	Passphrase string `envconfig:"SYNC_PASSPHRASE"`
}

// Push configures web push. Generate a key pair once and keep it stable, or
// existing subscriptions stop working.
type Push struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("HAMFAST", &cfg); err != nil {
		return nil, fmt.Errorf("process config: %w", err)
	}
	return &cfg, nil
}
