package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys. The file format is a flat properties file, one
// key=value pair per line.
const (
	KeyDBURL       = "db.url"
	KeyDBUser      = "db.user"
	KeyDBPassword  = "db.password"
	KeyDBQuery     = "db.query"
	KeySamples     = "samples"
	KeyMaxRetries  = "maxRetries"
	KeyLogFile     = "log.file"
	KeyReportFile  = "report.file"
	KeyPoolMaxSize = "pool.maxSize"
	KeyPoolMinIdle = "pool.minIdle"
	KeyPoolTimeout = "pool.connectionTimeoutMs"
)

const (
	defaultSamples       = 20
	defaultMaxRetries    = 1
	defaultLogFile       = "simulator.log"
	defaultPoolMaxSize   = 10
	defaultPoolMinIdle   = 2
	defaultPoolTimeoutMs = 30000
)

var ErrMissingConfigKey = errors.New("missing required config key")
var ErrInvalidConfigValue = errors.New("invalid config value")

var requiredKeys = []string{KeyDBURL, KeyDBUser, KeyDBPassword, KeyDBQuery}

// RunConfig is the immutable configuration of one simulator invocation.
// All fields are validated on Load and never mutated afterwards.
type RunConfig struct {
	URL      string
	User     string
	Password string
	Query    string

	Samples    int
	MaxRetries int

	LogFile    string
	ReportFile string

	PoolMaxSize int
	PoolMinIdle int
	PoolTimeout time.Duration
}

// Load reads and validates the configuration file at path. Absence of a
// required key is a construction error naming the key; so is a numeric value
// that does not parse or violates its lower bound.
func Load(path string) (RunConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("properties")

	if err := v.ReadInConfig(); err != nil {
		return RunConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	for _, key := range requiredKeys {
		if strings.TrimSpace(v.GetString(key)) == "" {
			return RunConfig{}, fmt.Errorf("%w: %s", ErrMissingConfigKey, key)
		}
	}

	samples, err := intValue(v, KeySamples, defaultSamples, 0)
	if err != nil {
		return RunConfig{}, err
	}
	maxRetries, err := intValue(v, KeyMaxRetries, defaultMaxRetries, 0)
	if err != nil {
		return RunConfig{}, err
	}
	poolMaxSize, err := intValue(v, KeyPoolMaxSize, defaultPoolMaxSize, 1)
	if err != nil {
		return RunConfig{}, err
	}
	poolMinIdle, err := intValue(v, KeyPoolMinIdle, defaultPoolMinIdle, 0)
	if err != nil {
		return RunConfig{}, err
	}
	poolTimeoutMs, err := intValue(v, KeyPoolTimeout, defaultPoolTimeoutMs, 1)
	if err != nil {
		return RunConfig{}, err
	}

	logFile := strings.TrimSpace(v.GetString(KeyLogFile))
	if logFile == "" {
		logFile = defaultLogFile
	}

	cfg := RunConfig{
		URL:         strings.TrimSpace(v.GetString(KeyDBURL)),
		User:        strings.TrimSpace(v.GetString(KeyDBUser)),
		Password:    strings.TrimSpace(v.GetString(KeyDBPassword)),
		Query:       strings.TrimSpace(v.GetString(KeyDBQuery)),
		Samples:     samples,
		MaxRetries:  maxRetries,
		LogFile:     logFile,
		ReportFile:  strings.TrimSpace(v.GetString(KeyReportFile)),
		PoolMaxSize: poolMaxSize,
		PoolMinIdle: poolMinIdle,
		PoolTimeout: time.Duration(poolTimeoutMs) * time.Millisecond,
	}

	if _, err := url.Parse(cfg.URL); err != nil {
		return RunConfig{}, fmt.Errorf("%w: %s is not a valid URL: %v", ErrInvalidConfigValue, KeyDBURL, err)
	}

	return cfg, nil
}

// DSN assembles the connection string for the drivers, injecting the
// configured credentials into the backend URL.
func (c RunConfig) DSN() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return c.URL
	}

	u.User = url.UserPassword(c.User, c.Password)

	return u.String()
}

func intValue(v *viper.Viper, key string, fallback int, minimum int) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidConfigValue, key, raw)
	}
	if value < minimum {
		return 0, fmt.Errorf("%w: %s must be >= %d, got %d", ErrInvalidConfigValue, key, minimum, value)
	}

	return value, nil
}
