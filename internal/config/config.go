package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string
	DataDir   string

	RegistryAPIBaseURL string
	RegistryResourceID string
	RegistryPageSize   int
	RegistryTimeoutMs  int

	GeocoderURL      string
	GeocoderAPIKey   string
	GeocodeDelayMs   int
	GeocodeCountry   string
	GeocodeTimeoutMs int

	OverridesPath string
	DenylistPath  string

	SimilarityThreshold int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	dataDir := getEnv("DATA_DIR", filepath.Join(cwd, "data"))

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(dataDir, "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		DataDir:   dataDir,

		RegistryAPIBaseURL: getEnv("REGISTRY_API_BASE_URL", "https://data.gov.il/api/3/action"),
		RegistryResourceID: getEnv("REGISTRY_RESOURCE_ID", "5c78e9fa-c2e2-4771-93ff-7f400a12f7ba"),
		RegistryPageSize:   getEnvInt("REGISTRY_PAGE_SIZE", 1500),
		RegistryTimeoutMs:  getEnvInt("REGISTRY_TIMEOUT_MS", 30000),

		GeocoderURL:      getEnv("GEOCODER_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
		GeocoderAPIKey:   getEnv("GEOCODER_API_KEY", ""),
		GeocodeDelayMs:   getEnvInt("GEOCODE_DELAY_MS", 250),
		GeocodeCountry:   getEnv("GEOCODE_COUNTRY", "Israel"),
		GeocodeTimeoutMs: getEnvInt("GEOCODE_TIMEOUT_MS", 15000),

		OverridesPath: getEnv("OVERRIDES_PATH", filepath.Join(dataDir, "manual-overrides.json")),
		DenylistPath:  getEnv("DENYLIST_PATH", filepath.Join(dataDir, "geocode-denylist.txt")),

		SimilarityThreshold: getEnvInt("SIMILARITY_THRESHOLD", 2),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
