// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles settings for both binaries and their environment parsing.

It leverages 'caarlos0/env' to map environment variables into strongly typed
structs, loads an optional `.env` file first through 'joho/godotenv', and runs
'go-playground/validator' over the result so a misconfigured process never
starts serving.

Usage:

	cfg, err := config.LoadAPI()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Default admin credentials. Startup logs a warning while they are in use.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// # Configuration Schema

// Common holds settings shared by both services.
type Common struct {
	Environment string   `env:"ENVIRONMENT"  envDefault:"development" validate:"oneof=development staging production test"`
	Debug       bool     `env:"DEBUG"        envDefault:"false"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// TrustedProxyHops is the number of reverse proxies whose X-Forwarded-For
	// entries are believed. 0 means the socket address is the client.
	TrustedProxyHops int `env:"TRUSTED_PROXY_HOPS" envDefault:"1" validate:"gte=0,lte=10"`

	// AdminJWTSecret signs admin panel tokens. Both services must share it.
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET,required" validate:"required,min=16"`
}

// API holds runtime configuration for the catalog API server.
type API struct {
	Common

	ServerPort   string `env:"SERVER_PORT"   envDefault:"3001" validate:"required,numeric"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/comics.db" validate:"required"`

	// Reader accounts
	UserJWTSecret string `env:"USER_JWT_SECRET,required" validate:"required,min=16,nefield=AdminJWTSecret"`

	// Config-backed admin login
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin" validate:"required"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123" validate:"required"`

	// Cross-service collaborators
	ImageServerURL     string `env:"IMAGE_SERVER_URL"      envDefault:"http://localhost:3002" validate:"required,url"`
	TikTokImageBaseURL string `env:"TIKTOK_IMAGE_BASE_URL" envDefault:"https://p16-oec-sg.ibyteimg.com/obj/tos-alisg-avt-0068" validate:"required,url"`
	HuggingFaceBaseURL string `env:"HUGGINGFACE_BASE_URL"  envDefault:"https://huggingface.co" validate:"required,url"`

	// Query cache
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m" validate:"gt=0"`
	RedisURL string        `env:"REDIS_URL" validate:"omitempty,url"`

	// Abuse protection
	ViewCooldown time.Duration `env:"VIEW_COOLDOWN" envDefault:"1h" validate:"gt=0"`
	BlockBots    bool          `env:"BLOCK_BOTS"    envDefault:"true"`
}

// ImageServer holds runtime configuration for the asset store service.
type ImageServer struct {
	Common

	ServerPort    string `env:"SERVER_PORT"     envDefault:"3002" validate:"required,numeric"`
	UploadDir     string `env:"UPLOAD_DIR"      envDefault:"./uploads" validate:"required"`
	MaxFileSize   int64  `env:"MAX_FILE_SIZE"   envDefault:"10485760" validate:"gt=0"`
	MaxWidth      int    `env:"MAX_WIDTH"       envDefault:"1200" validate:"gt=0"`
	ConvertToWebP bool   `env:"CONVERT_TO_WEBP" envDefault:"false"`
	WebPQuality   int    `env:"WEBP_QUALITY"    envDefault:"85" validate:"min=1,max=100"`
	MaxFiles      int    `env:"MAX_FILES"       envDefault:"500" validate:"min=1"`
}

// # Configuration Loading

// LoadAPI parses the environment into an [API] config.
func LoadAPI() (*API, error) {
	cfg := &API{}
	if err := load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadImageServer parses the environment into an [ImageServer] config.
func LoadImageServer() (*ImageServer, error) {
	cfg := &ImageServer{}
	if err := load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(target any) error {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: failed to read .env: %w", err)
	}

	if err := env.Parse(target); err != nil {
		return fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return Validate(target)
}

// Validate runs struct-tag validation over a parsed config.
func Validate(target any) error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(target); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Common) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Common) IsProduction() bool {
	return c.Environment == "production"
}

// UsesDefaultAdminCredentials reports whether the built-in admin login is unchanged.
func (c *API) UsesDefaultAdminCredentials() bool {
	return c.AdminUsername == DefaultAdminUsername || c.AdminPassword == DefaultAdminPassword
}
