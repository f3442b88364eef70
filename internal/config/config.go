package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pvforecast/pvwatts-importer/internal/solar"
	"github.com/pvforecast/pvwatts-importer/internal/solar/providers"
)

var validate = validator.New()

type AppConfig struct {
	APIKey   string `validate:"required"`
	Endpoint string `validate:"required,url"`

	// HTTPTimeout bounds every outbound PVWatts call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// LocationsFile backs the city endpoints of the HTTP API.
	LocationsFile string

	// Defaults are the request parameters used when a caller leaves a field unset.
	Defaults solar.Params

	Port     string `validate:"required"`
	LogLevel string `validate:"oneof=debug info warn error"`
}

// fileConfig mirrors the optional YAML file named by PVWATTS_CONFIG.
type fileConfig struct {
	Endpoint      string       `yaml:"endpoint"`
	HTTPTimeout   string       `yaml:"http_timeout"`
	LocationsFile string       `yaml:"locations_file"`
	Port          string       `yaml:"port"`
	LogLevel      string       `yaml:"log_level"`
	Defaults      solar.Params `yaml:"defaults"`
}

// Load reads configuration from the YAML file named by PVWATTS_CONFIG (if
// any) and then from the environment, which wins. A missing API key is
// reported as solar.ErrMissingAPIKey.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	fc := fileConfig{
		Endpoint:      providers.DefaultPVWattsEndpoint,
		HTTPTimeout:   "30s",
		LocationsFile: "cities.csv",
		Port:          "8080",
		LogLevel:      "info",
		Defaults:      solar.DefaultParams(),
	}
	if path := os.Getenv("PVWATTS_CONFIG"); path != "" {
		if err := loadFile(path, &fc); err != nil {
			return nil, err
		}
	}

	cfg := &AppConfig{
		APIKey:        os.Getenv("PVWATTS_API_KEY"),
		Endpoint:      getenvDefault("PVWATTS_ENDPOINT", fc.Endpoint),
		LocationsFile: getenvDefault("PVWATTS_LOCATIONS_FILE", fc.LocationsFile),
		Defaults:      fc.Defaults,
		Port:          getenvDefault("PORT", fc.Port),
		LogLevel:      getenvDefault("LOG_LEVEL", fc.LogLevel),
	}

	timeout, err := time.ParseDuration(getenvDefault("PVWATTS_HTTP_TIMEOUT", fc.HTTPTimeout))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid PVWATTS_HTTP_TIMEOUT: %v", solar.ErrConfig, err)
	}
	cfg.HTTPTimeout = timeout

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				if fe.Field() == "APIKey" {
					return nil, solar.ErrMissingAPIKey
				}
			}
		}
		return nil, fmt.Errorf("%w: %v", solar.ErrConfig, err)
	}

	return cfg, nil
}

func loadFile(path string, fc *fileConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", solar.ErrConfig, path, err)
	}
	if err := yaml.Unmarshal(raw, fc); err != nil {
		return fmt.Errorf("%w: parse %s: %v", solar.ErrConfig, path, err)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
