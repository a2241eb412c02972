package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is resolved from defaults, then an optional YAML file named by
// CONFIG_FILE, then environment variables (a .env file is loaded first).
type Config struct {
	Port    string `yaml:"port"`
	Env     string `yaml:"env"`
	Storage string `yaml:"storage"`

	PostgresURL        string        `yaml:"postgres_url"`
	MongoURI           string        `yaml:"mongo_uri"`
	MongoDB            string        `yaml:"mongo_db"`
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`

	RedisURL      string `yaml:"redis_url"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	JWTSecret               string        `yaml:"jwt_secret"`
	JWTTTL                  time.Duration `yaml:"jwt_ttl"`
	FirebaseCredentialsPath string        `yaml:"firebase_credentials_path"`

	AnonMinFriends      int           `yaml:"anon_min_friends"`
	PersonaMaxChanges   int           `yaml:"persona_max_changes"`
	PersonaChangeWindow time.Duration `yaml:"persona_change_window"`
}

func defaults() *Config {
	return &Config{
		Port:                "8080",
		Env:                 "development",
		Storage:             StoragePostgres,
		MongoDB:             "campus_social",
		SlowQueryThreshold:  200 * time.Millisecond,
		JWTSecret:           "supersecretjwtkey",
		JWTTTL:              72 * time.Hour,
		AnonMinFriends:      10,
		PersonaMaxChanges:   3,
		PersonaChangeWindow: 30 * 24 * time.Hour,
	}
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.Storage = getEnv("STORAGE", cfg.Storage)
	cfg.PostgresURL = getEnv("POSTGRES_URL", cfg.PostgresURL)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getEnv("MONGO_DB", cfg.MongoDB)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.FirebaseCredentialsPath = getEnv("FIREBASE_CREDENTIALS_PATH", cfg.FirebaseCredentialsPath)

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", cfg.RedisDB); err != nil {
		return nil, err
	}
	if cfg.AnonMinFriends, err = getEnvInt("ANON_MIN_FRIENDS", cfg.AnonMinFriends); err != nil {
		return nil, err
	}
	if cfg.PersonaMaxChanges, err = getEnvInt("PERSONA_MAX_CHANGES", cfg.PersonaMaxChanges); err != nil {
		return nil, err
	}
	if cfg.PersonaChangeWindow, err = getEnvDuration("PERSONA_CHANGE_WINDOW", cfg.PersonaChangeWindow); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = getEnvDuration("JWT_TTL", cfg.JWTTTL); err != nil {
		return nil, err
	}
	if cfg.SlowQueryThreshold, err = getEnvDuration("SLOW_QUERY_THRESHOLD", cfg.SlowQueryThreshold); err != nil {
		return nil, err
	}

	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}
	// Zero means "use the default" further down, so it is refused here.
	if cfg.AnonMinFriends < 1 {
		return nil, fmt.Errorf("ANON_MIN_FRIENDS must be at least 1, got %d", cfg.AnonMinFriends)
	}
	if cfg.PersonaMaxChanges < 1 {
		return nil, fmt.Errorf("PERSONA_MAX_CHANGES must be at least 1, got %d", cfg.PersonaMaxChanges)
	}
	if cfg.PersonaChangeWindow <= 0 {
		return nil, fmt.Errorf("PERSONA_CHANGE_WINDOW must be positive, got %s", cfg.PersonaChangeWindow)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
