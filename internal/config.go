package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/receitas/internal/collection"
)

// DefaultAPIBaseURL is the hosted recipe API.
const DefaultAPIBaseURL = "https://receitasapi-b-2025.vercel.app"

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	API     APIConfig         `yaml:"api"`
	Console ConsoleConfig     `yaml:"console"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	return c.Console.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// APIConfig points the client at the remote recipe resource.
//
// CreateStrategy decides how a successful create reaches the local collection:
//   - "append" (default): the record returned by the server is appended.
//   - "refetch": the whole collection is reloaded.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	CreateStrategy string        `yaml:"create_strategy"`
}

// Validate validates the API configuration.
func (c *APIConfig) Validate() error {
	if c.CreateStrategy == "" {
		c.CreateStrategy = string(collection.StrategyAppend)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.CreateStrategy, validation.In(
			string(collection.StrategyAppend), string(collection.StrategyRefetch),
		)),
	)
}

func absoluteURL(v any) error {
	s, _ := v.(string)
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}

// Strategy returns the configured create strategy.
func (c *APIConfig) Strategy() collection.Strategy {
	return collection.Strategy(c.CreateStrategy)
}

// ConsoleConfig holds settings for the browser-facing console.
type ConsoleConfig struct {
	// AllowedOrigins lists CORS origins; empty allows any.
	AllowedOrigins []string      `yaml:"allowed_origins"`
	EventThrottle  time.Duration `yaml:"event_throttle"`
}

// Validate validates the console configuration.
func (c *ConsoleConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.EventThrottle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		API: APIConfig{
			BaseURL:        DefaultAPIBaseURL,
			Timeout:        10 * time.Second,
			CreateStrategy: string(collection.StrategyAppend),
		},
		Console: ConsoleConfig{
			EventThrottle: time.Second,
		},
	}
}
