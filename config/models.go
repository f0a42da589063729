package config

// Config holds the configuration of the application
// Use LoadConfig to create a new instance
type Config struct {
	NLP    NLPConfig    `mapstructure:"nlp"    yaml:"nlp"    json:"nlp"`
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
	UI     UIConfig     `mapstructure:"ui"     yaml:"ui"     json:"ui"`
	Log    LogConfig    `mapstructure:"log"    yaml:"log"    json:"log"`
	Auth   AuthConfig   `mapstructure:"auth"   yaml:"auth"   json:"auth"`
}

const (
	PipelineLocal      = "local"
	PipelineNLPServer  = "nlp_server"
	PipelineComprehend = "comprehend"
)

// NLPConfig selects and configures the pipeline backing entity extraction.
type NLPConfig struct {
	Pipeline   string           `mapstructure:"pipeline"   yaml:"pipeline"   json:"pipeline"   validate:"oneof=local nlp_server comprehend" jsonschema:"enum=local,enum=nlp_server,enum=comprehend"`
	ModelPath  string           `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	Language   string           `mapstructure:"language"   yaml:"language"   json:"language"   validate:"required"`
	Fallback   FallbackConfig   `mapstructure:"fallback"   yaml:"fallback"   json:"fallback"`
	ServerURL  string           `mapstructure:"server_url" yaml:"server_url" json:"server_url" validate:"omitempty,url"`
	Comprehend ComprehendConfig `mapstructure:"comprehend" yaml:"comprehend" json:"comprehend"`
}

// FallbackConfig describes the model archive downloaded when ModelPath holds no model.
// With an empty URL the model built into the prose library is used instead.
type FallbackConfig struct {
	Name     string `mapstructure:"name"      yaml:"name"      json:"name"      validate:"required"`
	URL      string `mapstructure:"url"       yaml:"url"       json:"url"       validate:"omitempty,url"`
	Checksum string `mapstructure:"checksum"  yaml:"checksum"  json:"checksum"  validate:"required_with=URL"`
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir" json:"cache_dir" validate:"required"`
}

type ComprehendConfig struct {
	Region string `mapstructure:"region" yaml:"region" json:"region"`
	// Static credentials are optional; the default AWS credential chain is used when empty.
	AccessKeyID     string `mapstructure:"access_key_id"     yaml:"access_key_id"     json:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"-"                 json:"-"`
}

type ServerConfig struct {
	Host           string `mapstructure:"host"             yaml:"host"             json:"host"`
	Port           int    `mapstructure:"port"             yaml:"port"             json:"port"             validate:"min=1,max=65535"`
	Debug          bool   `mapstructure:"debug"            yaml:"debug"            json:"debug"`
	MaxRequestSize int64  `mapstructure:"max_request_size" yaml:"max_request_size" json:"max_request_size" validate:"min=1"`
}

type UIConfig struct {
	Host          string `mapstructure:"host"           yaml:"host"           json:"host"`
	Port          int    `mapstructure:"port"           yaml:"port"           json:"port"           validate:"min=1,max=65535"`
	Echo          bool   `mapstructure:"echo"           yaml:"echo"           json:"echo"`
	MaxSessions   int    `mapstructure:"max_sessions"   yaml:"max_sessions"   json:"max_sessions"   validate:"min=1"`
	SessionTTLMin int    `mapstructure:"session_ttl_minutes" yaml:"session_ttl_minutes" json:"session_ttl_minutes" validate:"min=1"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"omitempty,oneof=text json"`
}

type AuthConfig struct {
	Secret   string `mapstructure:"secret"   yaml:"-"        json:"-"`
	Required bool   `mapstructure:"required" yaml:"required" json:"required"`
}
