package config

import (
	"log/slog"
	"net"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type TargetConfig struct {
	URL string `mapstructure:"url"`
}

type PingConfig struct {
	IntervalSeconds int      `mapstructure:"interval_seconds"`
	TimeoutSeconds  int      `mapstructure:"timeout_seconds"`
	Endpoints       []string `mapstructure:"endpoints"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Target  TargetConfig  `mapstructure:"target"`
	Ping    PingConfig    `mapstructure:"ping"`
	Logging LoggingConfig `mapstructure:"logging"`
}

func Load() (*Config, error) {
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("target.url", "")
	viper.SetDefault("ping.interval_seconds", 300)
	viper.SetDefault("ping.timeout_seconds", 30)
	viper.SetDefault("ping.endpoints", []string{"/health", "/ping", "/", "/status"})
	viper.SetDefault("logging.level", LogLevelInfo)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Info("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Target,
			validation.Required,
			validation.By(func(value interface{}) error {
				tc, ok := value.(TargetConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a TargetConfig")
				}
				return validation.ValidateStruct(&tc,
					validation.Field(&tc.URL,
						validation.Required,
						validation.By(validateTargetURL),
					),
				)
			}),
		),
		validation.Field(&c.Ping,
			validation.Required,
			validation.By(func(value interface{}) error {
				pc, ok := value.(PingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a PingConfig")
				}
				return validation.ValidateStruct(&pc,
					validation.Field(&pc.IntervalSeconds,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&pc.TimeoutSeconds,
						validation.Required,
						validation.Min(1),
					),
					validation.Field(&pc.Endpoints,
						validation.Required,
						validation.Length(1, 0),
						validation.Each(validation.By(validateEndpointPath)),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateTargetURL(value interface{}) error {
	targetURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if targetURL == "" {
		return validation.NewError("validation_empty_url", "target URL cannot be empty")
	}

	parsedURL, err := url.Parse(targetURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

func validateEndpointPath(value interface{}) error {
	endpoint, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if !strings.HasPrefix(endpoint, "/") {
		return validation.NewError("validation_invalid_endpoint", "endpoint must start with /")
	}

	return nil
}
