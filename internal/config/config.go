package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "KHARCHA"

// Keys understood by Load. Each can be set as KHARCHA_<KEY>, as the bare
// <KEY> environment variable, or in a config file.
const (
	KeyPort               = "port"
	KeyDataBackend        = "data_backend"
	KeyAMQPURL            = "amqp_url"
	KeyAMQPExchange       = "amqp_exchange"
	KeyAMQPRoutingKey     = "amqp_routing_key"
	KeyLogLevel           = "log_level"
	KeyLogFormat          = "log_format"
	KeyCacheTTL           = "cache_ttl"
	KeyCacheSize          = "cache_size"
	KeyRateLimitPerMinute = "rate_limit_per_minute"
	KeyMetricsEnabled     = "metrics_enabled"
	KeyUpcomingLimit      = "upcoming_limit"
	KeyTopCategories      = "top_categories"
)

var (
	validBackends   = []string{"memory", "sqlite"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection; both backends live in process memory.
	DataBackend string

	// AMQP event feed, disabled when AMQPURL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	LogLevel  string
	LogFormat string

	CacheTTL  time.Duration
	CacheSize int

	RateLimitPerMinute int
	MetricsEnabled     bool

	// Report sizes
	UpcomingLimit int
	TopCategories int
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8081")
	v.SetDefault(KeyDataBackend, "memory")
	v.SetDefault(KeyAMQPURL, "")
	v.SetDefault(KeyAMQPExchange, "kharcha")
	v.SetDefault(KeyAMQPRoutingKey, "expense.created")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyCacheTTL, 5*time.Minute)
	v.SetDefault(KeyCacheSize, 16)
	v.SetDefault(KeyRateLimitPerMinute, 60)
	v.SetDefault(KeyMetricsEnabled, true)
	v.SetDefault(KeyUpcomingLimit, 10)
	v.SetDefault(KeyTopCategories, 3)
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, key := range v.AllKeys() {
		upper := strings.ToUpper(key)
		_ = v.BindEnv(key, EnvPrefix+"_"+upper, upper)
	}
	return v
}

// Load reads configuration from the environment and, when configFile is
// set, from that file. Environment values win over the file.
func Load(configFile string) (*Config, error) {
	v := New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}
	return FromViper(v), nil
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:               v.GetString(KeyPort),
		DataBackend:        strings.ToLower(v.GetString(KeyDataBackend)),
		AMQPURL:            v.GetString(KeyAMQPURL),
		AMQPExchange:       v.GetString(KeyAMQPExchange),
		AMQPRoutingKey:     v.GetString(KeyAMQPRoutingKey),
		LogLevel:           strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:          strings.ToLower(v.GetString(KeyLogFormat)),
		CacheTTL:           v.GetDuration(KeyCacheTTL),
		CacheSize:          v.GetInt(KeyCacheSize),
		RateLimitPerMinute: v.GetInt(KeyRateLimitPerMinute),
		MetricsEnabled:     v.GetBool(KeyMetricsEnabled),
		UpcomingLimit:      v.GetInt(KeyUpcomingLimit),
		TopCategories:      v.GetInt(KeyTopCategories),
	}
}

// AMQPEnabled reports whether an event feed should be started.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// Validate checks every field and reports all problems in one error.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			problems = append(problems, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	if c.CacheTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid cache TTL %v: must be positive", c.CacheTTL))
	}
	if c.CacheSize < 1 {
		problems = append(problems, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.RateLimitPerMinute < 1 {
		problems = append(problems, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}
	if c.UpcomingLimit < 1 {
		problems = append(problems, fmt.Sprintf("invalid upcoming limit %d: must be at least 1", c.UpcomingLimit))
	}
	if c.TopCategories < 1 {
		problems = append(problems, fmt.Sprintf("invalid top categories %d: must be at least 1", c.TopCategories))
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n- " + strings.Join(problems, "\n- "))
	}
	return nil
}
