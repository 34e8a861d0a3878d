package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/aligner/pkg/formatting"
	"github.com/JaimeStill/aligner/pkg/middleware"
	"github.com/JaimeStill/aligner/pkg/openapi"
	"github.com/JaimeStill/aligner/pkg/pagination"
)

const defaultMaxUploadSize = 50 * 1024 * 1024

var corsEnv = &middleware.CORSEnv{
	Enabled:          "ALIGNER_CORS_ENABLED",
	Origins:          "ALIGNER_CORS_ORIGINS",
	AllowedMethods:   "ALIGNER_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "ALIGNER_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "ALIGNER_CORS_EXPOSED_HEADERS",
	AllowCredentials: "ALIGNER_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "ALIGNER_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "ALIGNER_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "ALIGNER_PAGINATION_MAX_PAGE_SIZE",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled:  "ALIGNER_RATE_LIMIT_ENABLED",
	Requests: "ALIGNER_RATE_LIMIT_REQUESTS",
	Window:   "ALIGNER_RATE_LIMIT_WINDOW",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:        "ALIGNER_OPENAPI_TITLE",
	Description:  "ALIGNER_OPENAPI_DESCRIPTION",
	ContactEmail: "ALIGNER_OPENAPI_CONTACT_EMAIL",
	PublicURL:    "ALIGNER_OPENAPI_PUBLIC_URL",
}

// APIConfig holds API routing, upload, CORS, pagination, rate limit, and OpenAPI settings.
type APIConfig struct {
	BasePath      string                     `toml:"base_path"`
	MaxUploadSize string                     `toml:"max_upload_size"`
	CORS          middleware.CORSConfig      `toml:"cors"`
	Pagination    pagination.Config          `toml:"pagination"`
	RateLimit     middleware.RateLimitConfig `toml:"rate_limit"`
	OpenAPI       openapi.Config             `toml:"openapi"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return defaultMaxUploadSize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("ALIGNER_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("ALIGNER_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}
