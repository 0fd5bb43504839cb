package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Face provider
	FaceProvider string `envconfig:"FACE_PROVIDER" default:"deepface"`
	DeepFaceURL  string `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Network location resolvers. The MaxMind database is optional; when the
	// path is empty only the HTTP resolvers are used.
	MaxMindDBPath  string `envconfig:"MAXMIND_DB_PATH"`
	IPAPIBaseURL   string `envconfig:"IP_API_BASE_URL" default:"http://ip-api.com"`
	IPWhoisBaseURL string `envconfig:"IPWHOIS_BASE_URL" default:"https://ipwho.is"`

	// Security
	AdminAPIKey string `envconfig:"ADMIN_API_KEY" required:"true"`

	// Maximum attendance attempts per actor per minute. Zero disables the
	// shared counter, leaving only the per-IP limiter.
	AttemptRateLimit int `envconfig:"ATTEMPT_RATE_LIMIT" default:"10"`

	// Fraud event webhook. Empty URL disables delivery.
	WebhookURL    string `envconfig:"WEBHOOK_URL"`
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
