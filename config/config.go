package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/slulibrary/nerdemo/internal"
)

const EnvPrefix = "NERDEMO"

// Only internal may be imported here; every other package depends on config.
var log = internal.GetLogger()

var defaults = map[string]any{
	"nlp.pipeline":           PipelineLocal,
	"nlp.model_path":         "training/output/model-best",
	"nlp.language":           "en",
	"nlp.fallback.name":      "en_core_web_sm",
	"nlp.fallback.cache_dir": ".models",
	"nlp.fallback.url":       "",
	"nlp.fallback.checksum":  "",
	"nlp.server_url":         "http://localhost:5557",
	"nlp.comprehend.region":  "us-east-1",

	"nlp.comprehend.access_key_id": "",

	"server.host":             "0.0.0.0",
	"server.port":             8000,
	"server.debug":            true,
	"server.max_request_size": 5 << 20,

	"ui.host":                "0.0.0.0",
	"ui.port":                8501,
	"ui.echo":                false,
	"ui.max_sessions":        1024,
	"ui.session_ttl_minutes": 60,

	"log.level":  "info",
	"log.format": "text",

	"auth.required": false,
}

// LoadConfig loads the config file and ENV variables into a Config struct.
// A missing config file is not an error; defaults and the environment are used instead.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Environment variables take precedence over config file
	loadDotEnv()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets are only read from the environment
	for key, env := range map[string]string{
		"auth.secret":                      EnvPrefix + "_AUTH_SECRET",
		"nlp.comprehend.secret_access_key": EnvPrefix + "_NLP_COMPREHEND_SECRET_ACCESS_KEY",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding environment variable %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
		log.Debug("config.yaml not found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints and the settings each pipeline type depends on.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch cfg.NLP.Pipeline {
	case PipelineNLPServer:
		if cfg.NLP.ServerURL == "" {
			return errors.New("invalid config: nlp.server_url must be set for the nlp_server pipeline")
		}
	case PipelineComprehend:
		if cfg.NLP.Comprehend.Region == "" {
			return errors.New("invalid config: nlp.comprehend.region must be set for the comprehend pipeline")
		}
	}

	if cfg.Auth.Required && cfg.Auth.Secret == "" {
		return fmt.Errorf("invalid config: auth is required but %s_AUTH_SECRET is not set", EnvPrefix)
	}

	return nil
}

// loadDotEnv loads environment variables from .env file
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Debug(".env file not found or unable to load")
	}
}

// SetLogLevel sets the log level based on the config file. Defaults to INFO if not set or invalid.
// Debug servers always log at DEBUG.
func SetLogLevel(cfg *Config) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if cfg.Server.Debug {
		level = logrus.DebugLevel
	}
	internal.SetLogLevel(level)
	if err := internal.SetLogFormat(cfg.Log.Format); err != nil {
		log.Warn(err)
	}
	log.Info("Log level set to: ", level)
}
