package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/conf/v3"
)

// Prefix is prepended to every environment variable, e.g. PORTAL_IXC_BASE_URL.
const Prefix = "PORTAL"

// ErrHelpWanted is returned by Load when --help or --version was requested.
var ErrHelpWanted = conf.ErrHelpWanted

// Config holds all application configuration.
// Values come from PORTAL_* environment variables or command-line flags.
type Config struct {
	conf.Version
	Env string `conf:"default:dev"`

	Web struct {
		Port            int           `conf:"default:8080"`
		LogLevel        string        `conf:"default:info"`
		ReadTimeout     time.Duration `conf:"default:10s"`
		WriteTimeout    time.Duration `conf:"default:30s"`
		IdleTimeout     time.Duration `conf:"default:60s"`
		ShutdownTimeout time.Duration `conf:"default:15s"`
		CompanyName     string
		TrustProxy      bool `conf:"default:false"`
	}

	IXC struct {
		BaseURL         string        `conf:"required"`
		Token           string        `conf:"required,mask"`
		Timeout         time.Duration `conf:"default:15s"`
		PageSize        int           `conf:"default:50"`
		TicketSubjectID string        `conf:"default:1"`
	}

	Auth struct {
		JWTSecret string        `conf:"required,mask"`
		Issuer    string        `conf:"default:isp-portal"`
		TokenTTL  time.Duration `conf:"default:24h"`
	}

	Resilience struct {
		MaxRetries     int           `conf:"default:2"`
		InitialBackoff time.Duration `conf:"default:200ms"`
		MaxConcurrency int           `conf:"default:50"`
		UnlockTimeout  time.Duration `conf:"default:30s"`
	}

	Status struct {
		FeedURL  string
		CacheTTL time.Duration `conf:"default:15m"`
	}

	Tracing struct {
		Endpoint       string
		ServiceName    string  `conf:"default:isp-portal-bff"`
		SampleFraction float64 `conf:"default:1"`
	}

	CORS struct {
		AllowedOrigins []string `conf:"default:*"`
	}

	RateLimit struct {
		LookupPerMinute int `conf:"default:20"`
		LoginPerMinute  int `conf:"default:10"`
	}
}

// Load parses configuration from the environment and command line.
// When help is requested it returns the usage text and ErrHelpWanted.
func Load(build string) (*Config, string, error) {
	cfg := Config{
		Version: conf.Version{
			Build: build,
			Desc:  "ISP subscriber portal backend",
		},
	}

	help, err := conf.Parse(Prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil, help, err
		}
		return nil, "", fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, "", nil
}

// String renders the configuration with secrets masked.
func (c *Config) String() string {
	out, err := conf.String(c)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return out
}

// Validate reports every required setting that is missing or blank. Load
// already rejects unset ones; this also catches whitespace-only values and
// configs built in code.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.IXC.BaseURL) == "" {
		missing = append(missing, Prefix+"_IXC_BASE_URL")
	}
	if strings.TrimSpace(c.IXC.Token) == "" {
		missing = append(missing, Prefix+"_IXC_TOKEN")
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		missing = append(missing, Prefix+"_AUTH_JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
