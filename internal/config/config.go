package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/menta2k/image-captioner/pkg/model"
	"github.com/menta2k/image-captioner/pkg/processing"
)

// Config holds the application configuration
type Config struct {
	Server     ServerConfig
	Model      ModelConfig
	Processing ProcessingConfig
	Fetch      FetchConfig
	Log        LogConfig
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Host string
	Port string
}

// ModelConfig selects the vision model backend
type ModelConfig struct {
	Backend     string
	URL         string
	Name        string
	APIKey      string
	Timeout     time.Duration
	LoadTimeout time.Duration
	Pull        bool
}

// ProcessingConfig controls how images are sent to the model
type ProcessingConfig struct {
	SendFormat  string
	SendSize    int
	SendQuality int
}

// FetchConfig controls downloads of images by URL
type FetchConfig struct {
	Timeout   time.Duration
	UserAgent string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "5000",
		},
		Model: ModelConfig{
			Backend:     model.BackendOllama,
			Name:        model.DefaultModelName(model.BackendOllama),
			Timeout:     5 * time.Minute,
			LoadTimeout: 2 * time.Minute,
		},
		Processing: ProcessingConfig{
			SendFormat:  "jpg",
			SendSize:    1536,
			SendQuality: 85,
		},
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			UserAgent: processing.DefaultUserAgent,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadEnvFile loads variables from .env style files into the process
// environment. Missing files are ignored.
func LoadEnvFile(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		_ = godotenv.Load(p)
	}
}

// Load reads configuration from defaults, an optional config file and the
// environment, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.AutomaticEnv()

	if configFile == "" {
		configFile = v.GetString("CONFIG_FILE")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	backend := strings.ToLower(v.GetString("MODEL_BACKEND"))
	modelName := v.GetString("MODEL_NAME")
	if modelName == "" {
		modelName = model.DefaultModelName(backend)
	}

	apiKey := v.GetString("MODEL_API_KEY")
	if apiKey == "" {
		apiKey = v.GetString("GEMINI_API_KEY")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetString("SERVER_PORT"),
		},
		Model: ModelConfig{
			Backend:     backend,
			URL:         v.GetString("MODEL_URL"),
			Name:        modelName,
			APIKey:      apiKey,
			Timeout:     v.GetDuration("MODEL_TIMEOUT"),
			LoadTimeout: v.GetDuration("MODEL_LOAD_TIMEOUT"),
			Pull:        v.GetBool("MODEL_PULL"),
		},
		Processing: ProcessingConfig{
			SendFormat:  strings.ToLower(v.GetString("PROCESSING_SEND_FORMAT")),
			SendSize:    v.GetInt("PROCESSING_SEND_SIZE"),
			SendQuality: v.GetInt("PROCESSING_SEND_QUALITY"),
		},
		Fetch: FetchConfig{
			Timeout:   v.GetDuration("FETCH_TIMEOUT"),
			UserAgent: v.GetString("FETCH_USER_AGENT"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("SERVER_HOST", d.Server.Host)
	v.SetDefault("SERVER_PORT", d.Server.Port)
	v.SetDefault("MODEL_BACKEND", d.Model.Backend)
	v.SetDefault("MODEL_URL", d.Model.URL)
	// MODEL_NAME has no default here; it depends on the backend
	v.SetDefault("MODEL_API_KEY", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("MODEL_TIMEOUT", d.Model.Timeout)
	v.SetDefault("MODEL_LOAD_TIMEOUT", d.Model.LoadTimeout)
	v.SetDefault("MODEL_PULL", d.Model.Pull)
	v.SetDefault("PROCESSING_SEND_FORMAT", d.Processing.SendFormat)
	v.SetDefault("PROCESSING_SEND_SIZE", d.Processing.SendSize)
	v.SetDefault("PROCESSING_SEND_QUALITY", d.Processing.SendQuality)
	v.SetDefault("FETCH_TIMEOUT", d.Fetch.Timeout)
	v.SetDefault("FETCH_USER_AGENT", d.Fetch.UserAgent)
	v.SetDefault("LOG_LEVEL", d.Log.Level)
	v.SetDefault("CONFIG_FILE", "")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port cannot be empty")
	}

	switch c.Model.Backend {
	case model.BackendOllama, model.BackendLlamaCpp:
	case model.BackendGemini:
		if c.Model.APIKey == "" {
			return fmt.Errorf("model.api_key is required for the gemini backend")
		}
	default:
		return fmt.Errorf("model.backend must be one of ollama, llamacpp, gemini (got %q)", c.Model.Backend)
	}

	if c.Model.Name == "" {
		return fmt.Errorf("model.name cannot be empty")
	}

	if c.Model.Timeout < 0 || c.Model.LoadTimeout < 0 || c.Fetch.Timeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}

	if c.Processing.SendFormat != "jpg" && c.Processing.SendFormat != "jpeg" && c.Processing.SendFormat != "png" {
		return fmt.Errorf("processing.send_format must be jpg or png")
	}

	if c.Processing.SendSize < 0 {
		return fmt.Errorf("processing.send_size cannot be negative")
	}

	if c.Processing.SendQuality < 1 || c.Processing.SendQuality > 100 {
		return fmt.Errorf("processing.send_quality must be between 1 and 100")
	}

	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// ModelOptions converts the model section for model.Load
func (c *Config) ModelOptions() model.Options {
	return model.Options{
		Backend: c.Model.Backend,
		URL:     c.Model.URL,
		Name:    c.Model.Name,
		APIKey:  c.Model.APIKey,
		Timeout: c.Model.Timeout,
		Pull:    c.Model.Pull,
	}
}

// ProcessorConfig converts the processing and fetch sections for the image processor
func (c *Config) ProcessorConfig() processing.Config {
	return processing.Config{
		SendFormat:   c.Processing.SendFormat,
		SendSize:     c.Processing.SendSize,
		SendQuality:  c.Processing.SendQuality,
		FetchTimeout: c.Fetch.Timeout,
		UserAgent:    c.Fetch.UserAgent,
	}
}
