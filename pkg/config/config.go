package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	GRPCPort int    `yaml:"grpc_port"`
	HTTPPort int    `yaml:"http_port"`
	DBPath   string `yaml:"db_path"`
	SeedDemo bool   `yaml:"seed_demo"`

	MaxQuantity int `yaml:"max_quantity"`

	Client ClientConfig `yaml:"client"`
}

// ClientConfig drives the sync engine in cmd/cartsync.
type ClientConfig struct {
	APIURL    string `yaml:"api_url"`
	GRPCAddr  string `yaml:"grpc_addr"`
	ProbeMode string `yaml:"probe_mode"`

	DebounceWindow       time.Duration `yaml:"debounce_window"`
	MutationTimeout      time.Duration `yaml:"mutation_timeout"`
	ProbeTimeout         time.Duration `yaml:"probe_timeout"`
	ProbeInterval        time.Duration `yaml:"probe_interval"`
	OfflineProbeInterval time.Duration `yaml:"offline_probe_interval"`
	LoadRetries          int           `yaml:"load_retries"`
	LoadBackoff          time.Duration `yaml:"load_backoff"`

	LocalStore    string `yaml:"local_store"`
	LocalStoreDir string `yaml:"local_store_dir"`
	RedisAddr     string `yaml:"redis_addr"`
	SessionID     string `yaml:"session_id"`
}

func Load() Config {
	return Config{
		AppEnv:      getEnv("APP_ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnvInt("HTTP_PORT", 8080),
		GRPCPort:    getEnvInt("GRPC_PORT", 8081),
		DBPath:      getEnv("DB_PATH", "./cart.db"),
		SeedDemo:    getEnvBool("SEED_DEMO", false),
		MaxQuantity: getEnvInt("MAX_QUANTITY", 99),
		Client: ClientConfig{
			APIURL:               getEnv("CART_API_URL", "http://localhost:8080"),
			GRPCAddr:             getEnv("CART_GRPC_ADDR", "localhost:8081"),
			ProbeMode:            getEnv("PROBE_MODE", "http"),
			DebounceWindow:       getEnvDuration("DEBOUNCE_WINDOW", 300*time.Millisecond),
			MutationTimeout:      getEnvDuration("MUTATION_TIMEOUT", 8*time.Second),
			ProbeTimeout:         getEnvDuration("PROBE_TIMEOUT", 3*time.Second),
			ProbeInterval:        getEnvDuration("PROBE_INTERVAL", 30*time.Second),
			OfflineProbeInterval: getEnvDuration("OFFLINE_PROBE_INTERVAL", 5*time.Second),
			LoadRetries:          getEnvInt("LOAD_RETRIES", 3),
			LoadBackoff:          getEnvDuration("LOAD_BACKOFF", 1500*time.Millisecond),
			LocalStore:           getEnv("LOCAL_STORE", "file"),
			LocalStoreDir:        getEnv("LOCAL_STORE_DIR", defaultStoreDir()),
			RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
			SessionID:            getEnv("SESSION_ID", "default"),
		},
	}
}

// LoadFile overlays the YAML file at path on top of the environment config.
// Keys missing from the file keep their environment or default value.
func LoadFile(path string) (Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func defaultStoreDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".cartsync"
	}
	return dir + "/cartsync"
}
