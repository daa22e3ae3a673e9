package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string
	Store    string

	MongoURI    string
	MongoDBName string

	ElasticURL    string
	ElasticIndex  string
	ElasticSchema string

	SeedFile    string
	SigningKey  []byte
	CORSOrigins []string

	// AdminUser may request tokens for the protected endpoints when
	// AdminPasswordHash (bcrypt) is set.
	AdminUser         string
	AdminPasswordHash string

	LocationMinDistanceM float64
	LocationMinInterval  time.Duration
	LocationTTL          time.Duration
}

const (
	StoreMongo   = "mongo"
	StoreElastic = "elastic"
	StoreMemory  = "memory"
)

// Load reads the configuration from the environment, after merging an optional
// .env file from the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	minDistance, err := strconv.ParseFloat(getEnv("LOCATION_MIN_DISTANCE_M", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("LOCATION_MIN_DISTANCE_M: %w", err)
	}
	minInterval, err := time.ParseDuration(getEnv("LOCATION_MIN_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("LOCATION_MIN_INTERVAL: %w", err)
	}
	ttl, err := time.ParseDuration(getEnv("LOCATION_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("LOCATION_TTL: %w", err)
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8888"),
		Store:                strings.ToLower(getEnv("STORE", StoreMongo)),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:          getEnv("MONGO_DB_NAME", "campusmap"),
		ElasticURL:           getEnv("ELASTIC_URL", "http://localhost:9200"),
		ElasticIndex:         getEnv("ELASTIC_INDEX", "points"),
		ElasticSchema:        getEnv("ELASTIC_SCHEMA", "./materials/schema.json"),
		SeedFile:             getEnv("SEED_FILE", ""),
		SigningKey:           []byte(os.Getenv("MY_SIGNING_KEY")),
		CORSOrigins:          splitCSV(getEnv("CORS_ORIGINS", "*")),
		AdminUser:            getEnv("ADMIN_USER", "admin"),
		AdminPasswordHash:    os.Getenv("ADMIN_PASSWORD_HASH"),
		LocationMinDistanceM: minDistance,
		LocationMinInterval:  minInterval,
		LocationTTL:          ttl,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.SigningKey) == 0 {
		return fmt.Errorf("MY_SIGNING_KEY environment variable is not set")
	}
	switch c.Store {
	case StoreMongo, StoreElastic, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if c.Store == StoreMemory && c.SeedFile == "" {
		return fmt.Errorf("STORE=memory requires SEED_FILE")
	}
	return nil
}

// Users returns the username to bcrypt hash map accepted by the token issuer.
func (c *Config) Users() map[string]string {
	users := make(map[string]string)
	if c.AdminUser != "" && c.AdminPasswordHash != "" {
		users[c.AdminUser] = c.AdminPasswordHash
	}
	return users
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
