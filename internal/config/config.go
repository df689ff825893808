package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"flight-position-gateway/internal/model"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	OpenSky  OpenSkyConfig  `yaml:"opensky"`
	Boundary BoundaryConfig `yaml:"boundary"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port               int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout        time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout       time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout        time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins" validate:"dive,required"`
}

type OpenSkyConfig struct {
	BaseURL        string        `yaml:"base_url" validate:"required,url"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`
}

// BoundaryConfig mirrors the boundary.latitude.* / boundary.longitude.* keys.
type BoundaryConfig struct {
	Latitude  LatitudeRange  `yaml:"latitude"`
	Longitude LongitudeRange `yaml:"longitude"`
}

type LatitudeRange struct {
	Minimum float64 `yaml:"minimum" validate:"gte=-90,lte=90,ltfield=Maximum"`
	Maximum float64 `yaml:"maximum" validate:"gte=-90,lte=90"`
}

type LongitudeRange struct {
	Minimum float64 `yaml:"minimum" validate:"gte=-180,lte=180,ltfield=Maximum"`
	Maximum float64 `yaml:"maximum" validate:"gte=-180,lte=180"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

func Load(configPath string) (*Config, error) {
	config := &Config{}

	// Set defaults
	config.setDefaults()

	// Load from file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := config.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	config.Logging.Level = strings.ToLower(config.Logging.Level)
	config.Logging.Format = strings.ToLower(config.Logging.Format)

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// BoundingBox returns the configured bounding box.
func (c *Config) BoundingBox() model.Boundary {
	return model.Boundary{
		LatMin: c.Boundary.Latitude.Minimum,
		LonMin: c.Boundary.Longitude.Minimum,
		LatMax: c.Boundary.Latitude.Maximum,
		LonMax: c.Boundary.Longitude.Maximum,
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) setDefaults() {
	c.Server.Port = 8080
	c.Server.ReadTimeout = 15 * time.Second
	c.Server.WriteTimeout = 45 * time.Second
	c.Server.IdleTimeout = 60 * time.Second
	c.Server.ShutdownTimeout = 30 * time.Second

	c.OpenSky.BaseURL = "https://opensky-network.org/api"
	c.OpenSky.RequestTimeout = 30 * time.Second

	// Romania, approximately
	c.Boundary.Latitude.Minimum = 43.5423
	c.Boundary.Latitude.Maximum = 48.0706
	c.Boundary.Longitude.Minimum = 20.1857
	c.Boundary.Longitude.Maximum = 29.4944

	c.Logging.Level = "info"
	c.Logging.Format = "json"
}

func (c *Config) loadFromEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = p
	}

	if baseURL := os.Getenv("OPENSKY_BASE_URL"); baseURL != "" {
		c.OpenSky.BaseURL = baseURL
	}

	if timeout := os.Getenv("OPENSKY_REQUEST_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("OPENSKY_REQUEST_TIMEOUT: %w", err)
		}
		c.OpenSky.RequestTimeout = d
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"BOUNDARY_LATITUDE_MINIMUM", &c.Boundary.Latitude.Minimum},
		{"BOUNDARY_LATITUDE_MAXIMUM", &c.Boundary.Latitude.Maximum},
		{"BOUNDARY_LONGITUDE_MINIMUM", &c.Boundary.Longitude.Minimum},
		{"BOUNDARY_LONGITUDE_MAXIMUM", &c.Boundary.Longitude.Maximum},
	}
	for _, f := range floats {
		v := os.Getenv(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", f.key, err)
		}
		*f.dst = n
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.CORSAllowedOrigins = splitList(origins)
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) validate() error {
	err := structValidator.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "required":
		return fmt.Sprintf("%s is required", field)
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("%s failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
		}
		return fmt.Sprintf("%s failed %s (got %v)", field, fe.Tag(), fe.Value())
	}
}
