package config

import (
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Secret Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (RESUMELENS_GRAMMAR_GEMINI_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Analysis      AnalysisConfig      `mapstructure:"analysis"`
	Grammar       GrammarConfig       `mapstructure:"grammar"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Queue         QueueConfig         `mapstructure:"queue"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              string        `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`
	AllowedExtensions []string      `mapstructure:"allowedExtensions"`

	TLS TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds server-side TLS configuration
type TLSConfig struct {
	Mode     string `mapstructure:"mode"`     // "disabled" or "server"
	CertFile string `mapstructure:"certFile"` // PEM
	KeyFile  string `mapstructure:"keyFile"`  // PEM

	// Set when certificates come from Vault instead of files
	CertContent string `mapstructure:"certContent"`
	KeyContent  string `mapstructure:"keyContent"`

	MinVersion   string   `mapstructure:"minVersion"` // "1.2" or "1.3"
	CipherSuites []string `mapstructure:"cipherSuites"`

	AutoReload AutoReloadConfig `mapstructure:"autoReload"`
}

// AutoReloadConfig controls certificate hot reload
type AutoReloadConfig struct {
	Enabled     bool              `mapstructure:"enabled"`
	FileWatcher FileWatcherConfig `mapstructure:"fileWatcher"`
}

// FileWatcherConfig holds configuration for file-based certificate watching
type FileWatcherConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// AnalysisConfig tunes the analysis pipeline
type AnalysisConfig struct {
	GapThresholdDays int    `mapstructure:"gapThresholdDays"`
	MinWords         int    `mapstructure:"minWords"`
	MaxWords         int    `mapstructure:"maxWords"`
	VocabularyFile   string `mapstructure:"vocabularyFile"`
	SkillDisplayCase string `mapstructure:"skillDisplayCase"` // "original" or "title"
	Timezone         string `mapstructure:"timezone"`
}

// GrammarConfig selects and tunes the grammar checking provider
type GrammarConfig struct {
	Provider       string               `mapstructure:"provider"` // "languagetool", "gemini" or "none"
	Language       string               `mapstructure:"language"`
	MaxWords       int                  `mapstructure:"maxWords"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	MaxRetries     int                  `mapstructure:"maxRetries"`
	LanguageTool   LanguageToolConfig   `mapstructure:"languageTool"`
	Gemini         GeminiConfig         `mapstructure:"gemini"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// LanguageToolConfig holds settings for a LanguageTool server
type LanguageToolConfig struct {
	Endpoint          string `mapstructure:"endpoint"`
	APIKey            string `mapstructure:"apiKey"`
	Username          string `mapstructure:"username"`
	RequestsPerMinute int    `mapstructure:"requestsPerMinute"`
	Burst             int    `mapstructure:"burst"`
}

// GeminiConfig holds settings for the Gemini grammar provider
type GeminiConfig struct {
	Model            string  `mapstructure:"model"`
	APIKey           string  `mapstructure:"apiKey"`
	Temperature      float32 `mapstructure:"temperature"`
	SystemPrompt     string  `mapstructure:"systemPrompt"`
	SystemPromptFile string  `mapstructure:"systemPromptFile"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// StorageConfig points at an S3-compatible document store
type StorageConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	Region       string `mapstructure:"region"`
	AccessKey    string `mapstructure:"accessKey"`
	SecretKey    string `mapstructure:"secretKey"`
	UsePathStyle bool   `mapstructure:"usePathStyle"`
	MaxAttempts  int    `mapstructure:"maxAttempts"`
}

// QueueConfig holds AMQP worker settings
type QueueConfig struct {
	URL            string `mapstructure:"url"`
	RequestQueue   string `mapstructure:"requestQueue"`
	ResultExchange string `mapstructure:"resultExchange"`
	Prefetch       int    `mapstructure:"prefetch"`
	Concurrency    int    `mapstructure:"concurrency"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig toggles groups of domain metrics
type CustomMetricsConfig struct {
	Analysis       AnalysisMetricsConfig       `mapstructure:"analysis"`
	Grammar        GrammarMetricsConfig        `mapstructure:"grammar"`
	Infrastructure InfrastructureMetricsConfig `mapstructure:"infrastructure"`
}

// AnalysisMetricsConfig holds pipeline metric toggles
type AnalysisMetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	TrackDuration  bool `mapstructure:"trackDuration"`
	TrackScores    bool `mapstructure:"trackScores"`
	TrackDocuments bool `mapstructure:"trackDocuments"`
}

// GrammarMetricsConfig holds grammar provider metric toggles
type GrammarMetricsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	TrackDuration bool `mapstructure:"trackDuration"`
}

// InfrastructureMetricsConfig holds infrastructure metrics configuration
type InfrastructureMetricsConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	TrackCertReloads bool `mapstructure:"trackCertReloads"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("RESUMELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	log.Println("[CONFIG] Configured environment variable handling with prefix 'RESUMELENS'")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/resumelens/")
	v.AddConfigPath("$HOME/.resumelens")
	v.AddConfigPath(".")

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.loadGrammarPromptFile(); err != nil {
		return nil, fmt.Errorf("failed to load grammar prompt: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if len(c.App.SupportedFormats) > 0 && !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if c.App.MaxFileSize <= 0 {
		return fmt.Errorf("app maxFileSize must be positive")
	}

	if err := c.validateAnalysis(); err != nil {
		return fmt.Errorf("analysis configuration error: %w", err)
	}

	if err := c.validateGrammar(); err != nil {
		return fmt.Errorf("grammar configuration error: %w", err)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

func (c *Config) validateAnalysis() error {
	a := c.Analysis
	if a.GapThresholdDays < 0 {
		return fmt.Errorf("gapThresholdDays must not be negative")
	}
	if a.MinWords < 0 || a.MaxWords <= 0 || a.MinWords >= a.MaxWords {
		return fmt.Errorf("minWords (%d) must be below maxWords (%d)", a.MinWords, a.MaxWords)
	}
	switch a.SkillDisplayCase {
	case "", "original", "title":
	default:
		return fmt.Errorf("invalid skillDisplayCase: %s (must be 'original' or 'title')", a.SkillDisplayCase)
	}
	if a.Timezone != "" {
		if _, err := time.LoadLocation(a.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", a.Timezone, err)
		}
	}
	return nil
}

func (c *Config) validateGrammar() error {
	g := c.Grammar
	switch g.Provider {
	case "none":
		return nil
	case "languagetool":
		if g.LanguageTool.Endpoint == "" {
			return fmt.Errorf("languageTool endpoint is required")
		}
		if g.LanguageTool.RequestsPerMinute < 0 {
			return fmt.Errorf("languageTool requestsPerMinute must not be negative")
		}
	case "gemini":
		if g.Gemini.Model == "" {
			return fmt.Errorf("gemini model is required")
		}
	default:
		return fmt.Errorf("unsupported grammar provider: %s (must be 'languagetool', 'gemini' or 'none')", g.Provider)
	}
	if g.MaxWords <= 0 {
		return fmt.Errorf("maxWords must be positive")
	}
	if g.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if t := g.CircuitBreaker.FailureThreshold; g.CircuitBreaker.Enabled && (t <= 0 || t > 1) {
		return fmt.Errorf("circuitBreaker failureThreshold must be in (0, 1]")
	}
	return nil
}
