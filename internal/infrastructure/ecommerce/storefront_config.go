package ecommerce

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/catalogsync/backend/internal/infrastructure/config"
)

// StorefrontConfig holds the storefront push API settings
type StorefrontConfig struct {
	// BaseURL is the push API root, e.g. https://store.example.com/api
	BaseURL string
	// Token is sent as a bearer token
	Token   string
	Timeout time.Duration
	// RateLimit is the sustained requests per second; Burst the bucket size
	RateLimit float64
	Burst     int
}

// Errors for storefront configuration
var (
	ErrStorefrontMissingBaseURL = errors.New("storefront: base url is required")
	ErrStorefrontInvalidBaseURL = errors.New("storefront: base url must be an absolute http(s) url")
	ErrStorefrontMissingToken   = errors.New("storefront: token is required")
)

// NewStorefrontConfig maps the application config section
func NewStorefrontConfig(cfg config.StorefrontConfig) *StorefrontConfig {
	return &StorefrontConfig{
		BaseURL:   cfg.BaseURL,
		Token:     cfg.Token,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
	}
}

// Validate checks required fields and fills defaults
func (c *StorefrontConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrStorefrontMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrStorefrontInvalidBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Token == "" {
		return ErrStorefrontMissingToken
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 2
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	return nil
}
