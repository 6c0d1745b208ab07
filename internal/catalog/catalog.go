// Package catalog is the HTTP client for the skills catalog API that
// serves candidate sessions, job postings and training offerings.
package catalog

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultAPIURL = "http://localhost:8000/api"
	userAgent     = "spigell/skillmatch"

	// Used when a posting or training has no coordinates.
	DefaultLat      = 14.5547
	DefaultLng      = 121.0244
	DefaultLocation = "Taguig/BGC"
	DefaultCity     = "Taguig"
)

// Config holds the catalog client settings.
type Config struct {
	APIURL            string        `mapstructure:"api-url" validate:"required,url"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gte=0"`
	RequestsPerSecond float64       `mapstructure:"requests-per-second" validate:"gte=0"`
	Burst             int           `mapstructure:"burst" validate:"gte=0"`
	MaxRetries        int           `mapstructure:"max-retries" validate:"gte=0"`
}

// Validate checks the config for obviously broken values.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}

type Client struct {
	logger     *zap.Logger
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		logger:     logger,
		limiter:    rate.NewLimiter(limit, burst),
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Second,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		UserAgent: userAgent,
		APIURL:    cfg.APIURL,
	}
}
