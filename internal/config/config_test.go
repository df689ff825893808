package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"flight-position-gateway/internal/model"
)

// clearEnv unsets every variable Load reads so host settings do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "OPENSKY_BASE_URL", "OPENSKY_REQUEST_TIMEOUT",
		"BOUNDARY_LATITUDE_MINIMUM", "BOUNDARY_LATITUDE_MAXIMUM",
		"BOUNDARY_LONGITUDE_MINIMUM", "BOUNDARY_LONGITUDE_MAXIMUM",
		"LOG_LEVEL", "LOG_FORMAT", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.OpenSky.BaseURL != "https://opensky-network.org/api" {
		t.Errorf("Unexpected base URL %s", cfg.OpenSky.BaseURL)
	}
	want := model.Boundary{LatMin: 43.5423, LonMin: 20.1857, LatMax: 48.0706, LonMax: 29.4944}
	if got := cfg.BoundingBox(); got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.Addr())
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
opensky:
  base_url: http://localhost:9999/api
  request_timeout: 2s
boundary:
  latitude:
    minimum: 50.5
    maximum: 53.7
  longitude:
    minimum: 3.3
    maximum: 7.2
logging:
  level: DEBUG
  format: console
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 45*time.Second {
		t.Errorf("Expected default write timeout kept, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.OpenSky.RequestTimeout != 2*time.Second {
		t.Errorf("Expected request timeout 2s, got %v", cfg.OpenSky.RequestTimeout)
	}
	want := model.Boundary{LatMin: 50.5, LonMin: 3.3, LatMax: 53.7, LonMax: 7.2}
	if got := cfg.BoundingBox(); got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("Unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "7070")
	t.Setenv("BOUNDARY_LATITUDE_MINIMUM", "10")
	t.Setenv("BOUNDARY_LATITUDE_MAXIMUM", "20")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Expected port 7070, got %d", cfg.Server.Port)
	}
	if b := cfg.BoundingBox(); b.LatMin != 10 || b.LatMax != 20 {
		t.Errorf("Expected latitude 10..20, got %v", b)
	}
	if len(cfg.Server.CORSAllowedOrigins) != 2 || cfg.Server.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("Unexpected CORS origins: %v", cfg.Server.CORSAllowedOrigins)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr string
	}{
		{
			name:    "Inverted latitude",
			env:     map[string]string{"BOUNDARY_LATITUDE_MINIMUM": "50", "BOUNDARY_LATITUDE_MAXIMUM": "40"},
			wantErr: "Boundary.Latitude.Minimum must be less than Maximum",
		},
		{
			name:    "Longitude out of range",
			env:     map[string]string{"BOUNDARY_LONGITUDE_MAXIMUM": "200"},
			wantErr: "Boundary.Longitude.Maximum",
		},
		{
			name:    "Malformed boundary env",
			env:     map[string]string{"BOUNDARY_LONGITUDE_MINIMUM": "west"},
			wantErr: "BOUNDARY_LONGITUDE_MINIMUM",
		},
		{
			name:    "Malformed port env",
			env:     map[string]string{"PORT": "http"},
			wantErr: "PORT",
		},
		{
			name:    "Unknown log level",
			env:     map[string]string{"LOG_LEVEL": "verbose"},
			wantErr: "Logging.Level must be one of",
		},
		{
			name:    "Port out of range",
			file:    "server:\n  port: 70000\n",
			wantErr: "Server.Port",
		},
		{
			name:    "Bad YAML",
			file:    "server: [",
			wantErr: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}
