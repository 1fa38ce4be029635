package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server" jsonschema:"description=HTTP control API configuration"`
	Database DatabaseConfig `yaml:"database" json:"database" jsonschema:"description=Database configuration"`
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule" jsonschema:"description=Posting cycle configuration"`
	Queue    QueueConfig    `yaml:"queue" json:"queue" jsonschema:"description=Draft queue configuration"`
	LLM      LLMConfig      `yaml:"llm" json:"llm" jsonschema:"description=Language model configuration"`
	Trends   TrendsConfig   `yaml:"trends" json:"trends" jsonschema:"description=Trend sources configuration"`
	X        XConfig        `yaml:"x" json:"x" jsonschema:"description=X api credentials"`
	Notify   NotifyConfig   `yaml:"notify" json:"notify" jsonschema:"description=Notification channels"`
}

// ServerConfig holds HTTP control API settings
type ServerConfig struct {
	Listen       string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address, empty disables the api"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server read and write timeout"`
	AuthUser     string        `yaml:"auth_user" json:"auth_user" jsonschema:"description=Basic auth user, auth is disabled when empty"`
	AuthPassword string        `yaml:"auth_password" json:"auth_password" jsonschema:"description=Basic auth password"`
}

// DatabaseConfig holds sqlite settings
type DatabaseConfig struct {
	DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:trendposter.db?cache=shared&mode=rwc&_txlock=immediate,description=Database connection string"`
	MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=4,description=Maximum number of open connections"`
	MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=2,description=Maximum number of idle connections"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
}

// ScheduleConfig holds cycle policy: when to run, when posting is allowed and the score gate
type ScheduleConfig struct {
	CheckInterval     time.Duration `yaml:"check_interval" json:"check_interval" jsonschema:"default=60m,description=Interval between automatic cycles"`
	PostingHoursStart int           `yaml:"posting_hours_start" json:"posting_hours_start" jsonschema:"default=8,minimum=0,maximum=23,description=First hour (inclusive) when posting is allowed"`
	PostingHoursEnd   int           `yaml:"posting_hours_end" json:"posting_hours_end" jsonschema:"default=22,minimum=0,maximum=23,description=Hour (exclusive) when posting stops, may be less than start to wrap midnight"`
	MinRelevanceScore int           `yaml:"min_relevance_score" json:"min_relevance_score" jsonschema:"default=40,minimum=0,maximum=100,description=Minimum model score required to post"`
	AutoPost          bool          `yaml:"auto_post" json:"auto_post" jsonschema:"default=true,description=Run cycles automatically on the check interval"`
	Timezone          string        `yaml:"timezone" json:"timezone" jsonschema:"default=UTC,description=IANA timezone for posting hours"`
	ManualCooldown    time.Duration `yaml:"manual_cooldown" json:"manual_cooldown" jsonschema:"default=30s,description=Minimum time between manually triggered expensive operations"`
	CycleTimeout      time.Duration `yaml:"cycle_timeout" json:"cycle_timeout" jsonschema:"default=5m,description=Upper bound for a single automatic cycle"`
}

// QueueConfig holds draft queue limits
type QueueConfig struct {
	MaxSize int           `yaml:"max_size" json:"max_size" jsonschema:"default=50,minimum=0,description=Maximum number of queued drafts, 0 means unlimited"`
	MaxAge  time.Duration `yaml:"max_age" json:"max_age" jsonschema:"default=0,description=Queued drafts older than this expire, 0 disables expiration"`
}

// LLMConfig holds language model settings. Provider is detected from the configured keys when empty.
type LLMConfig struct {
	Provider        string        `yaml:"provider" json:"provider" jsonschema:"enum=,enum=anthropic,enum=openai,enum=gemini,enum=ollama,description=LLM provider, auto-detected when empty"`
	Model           string        `yaml:"model" json:"model" jsonschema:"description=Model name, provider default when empty"`
	APIKey          string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key for the explicitly set provider"`
	Endpoint        string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=API base URL override"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key" json:"anthropic_api_key" jsonschema:"description=Anthropic API key"`
	OpenAIAPIKey    string        `yaml:"openai_api_key" json:"openai_api_key" jsonschema:"description=OpenAI API key"`
	GeminiAPIKey    string        `yaml:"gemini_api_key" json:"gemini_api_key" jsonschema:"description=Gemini API key"`
	OllamaURL       string        `yaml:"ollama_url" json:"ollama_url" jsonschema:"description=Ollama base URL, e.g. http://localhost:11434"`
	Temperature     float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0,minimum=0,maximum=2,description=Sampling temperature (ignored by anthropic)"`
	MaxTokens       int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=1024,description=Maximum tokens in response"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout" jsonschema:"description=Request timeout, 60s by default and 120s for ollama"`
}

// TrendsConfig holds trend source settings
type TrendsConfig struct {
	Sources   []string          `yaml:"sources" json:"sources" jsonschema:"description=Trend sources in priority order (trends24, getdaytrends, google-rss)"`
	URLs      map[string]string `yaml:"urls" json:"urls" jsonschema:"description=Per-source URL overrides, may contain {country} and {geo}"`
	Country   string            `yaml:"country" json:"country" jsonschema:"default=united-states,description=Country slug for aggregator sites"`
	Geo       string            `yaml:"geo" json:"geo" jsonschema:"default=US,description=Country code for Google Trends"`
	Timeout   time.Duration     `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Timeout per source request"`
	MaxTrends int               `yaml:"max_trends" json:"max_trends" jsonschema:"default=30,minimum=1,description=Maximum number of trends used per cycle"`
	UserAgent string            `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for trend requests"`
}

// XConfig holds OAuth1 user-context credentials
type XConfig struct {
	APIKey       string `yaml:"api_key" json:"api_key" jsonschema:"required,description=X consumer key"`
	APISecret    string `yaml:"api_secret" json:"api_secret" jsonschema:"required,description=X consumer secret"`
	AccessToken  string `yaml:"access_token" json:"access_token" jsonschema:"required,description=X access token"`
	AccessSecret string `yaml:"access_secret" json:"access_secret" jsonschema:"required,description=X access token secret"`
	APIHost      string `yaml:"api_host,omitempty" json:"api_host,omitempty" jsonschema:"description=v2 api host override"`
	UploadURL    string `yaml:"upload_url,omitempty" json:"upload_url,omitempty" jsonschema:"description=media upload endpoint override"`
}

// NotifyConfig holds notification channels, log notifications are always on
type NotifyConfig struct {
	Telegram TelegramConfig `yaml:"telegram" json:"telegram" jsonschema:"description=Telegram notifications"`
}

// TelegramConfig holds telegram bot settings, disabled when token is empty
type TelegramConfig struct {
	Token  string `yaml:"token" json:"token" jsonschema:"description=Telegram bot token"`
	ChatID string `yaml:"chat_id" json:"chat_id" jsonschema:"description=Chat to send notifications to"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	// defaults where zero is a meaningful value are preset, so explicit zeros survive decoding
	var cfg Config
	cfg.Schedule.AutoPost = true
	cfg.Schedule.PostingHoursStart, cfg.Schedule.PostingHoursEnd = 8, 22
	cfg.Schedule.MinRelevanceScore = 40
	cfg.Queue.MaxSize = 50
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// setDefaults fills zero values with defaults
func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:trendposter.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 4
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// schedule
	if cfg.Schedule.CheckInterval == 0 {
		cfg.Schedule.CheckInterval = 60 * time.Minute
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "UTC"
	}
	if cfg.Schedule.ManualCooldown == 0 {
		cfg.Schedule.ManualCooldown = 30 * time.Second
	}
	if cfg.Schedule.CycleTimeout == 0 {
		cfg.Schedule.CycleTimeout = 5 * time.Minute
	}

	// llm
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}

	// trends
	if len(cfg.Trends.Sources) == 0 {
		cfg.Trends.Sources = []string{"trends24", "getdaytrends", "google-rss"}
	}
	if cfg.Trends.Country == "" {
		cfg.Trends.Country = "united-states"
	}
	if cfg.Trends.Geo == "" {
		cfg.Trends.Geo = "US"
	}
	if cfg.Trends.Timeout == 0 {
		cfg.Trends.Timeout = 15 * time.Second
	}
	if cfg.Trends.MaxTrends == 0 {
		cfg.Trends.MaxTrends = 30
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	s := cfg.Schedule
	if s.PostingHoursStart < 0 || s.PostingHoursStart > 23 || s.PostingHoursEnd < 0 || s.PostingHoursEnd > 23 {
		return fmt.Errorf("schedule.posting_hours_start and posting_hours_end must be between 0 and 23")
	}
	if s.PostingHoursStart == s.PostingHoursEnd {
		return fmt.Errorf("schedule.posting_hours_start and posting_hours_end must differ")
	}
	if s.MinRelevanceScore < 0 || s.MinRelevanceScore > 100 {
		return fmt.Errorf("schedule.min_relevance_score must be between 0 and 100")
	}
	if s.CheckInterval < time.Minute {
		return fmt.Errorf("schedule.check_interval must be at least 1 minute")
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("invalid schedule.timezone %q: %w", s.Timezone, err)
	}

	if cfg.Queue.MaxSize < 0 {
		return fmt.Errorf("queue.max_size must be non-negative")
	}
	if cfg.Queue.MaxAge < 0 {
		return fmt.Errorf("queue.max_age must be non-negative")
	}

	switch strings.ToLower(cfg.LLM.Provider) {
	case "", "anthropic", "openai", "gemini", "ollama":
	default:
		return fmt.Errorf("llm.provider must be one of anthropic, openai, gemini, ollama")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}

	if cfg.Trends.MaxTrends < 1 {
		return fmt.Errorf("trends.max_trends must be at least 1")
	}

	if cfg.X.APIKey == "" || cfg.X.APISecret == "" || cfg.X.AccessToken == "" || cfg.X.AccessSecret == "" {
		return fmt.Errorf("x.api_key, x.api_secret, x.access_token and x.access_secret are required")
	}

	if cfg.Notify.Telegram.Token != "" && cfg.Notify.Telegram.ChatID == "" {
		return fmt.Errorf("notify.telegram.chat_id is required when telegram token is set")
	}

	if cfg.Server.Listen != "" && cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if (cfg.Server.AuthUser == "") != (cfg.Server.AuthPassword == "") {
		return fmt.Errorf("server.auth_user and server.auth_password must be set together")
	}

	return nil
}

// Location returns the configured schedule timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Schedule.Timezone)
}

// Secrets returns all configured secret values, used to mask them in logs
func (c *Config) Secrets() []string {
	candidates := []string{
		c.LLM.APIKey, c.LLM.AnthropicAPIKey, c.LLM.OpenAIAPIKey, c.LLM.GeminiAPIKey,
		c.X.APIKey, c.X.APISecret, c.X.AccessToken, c.X.AccessSecret,
		c.Notify.Telegram.Token, c.Server.AuthPassword,
	}
	res := make([]string, 0, len(candidates))
	for _, s := range candidates {
		if s != "" {
			res = append(res, s)
		}
	}
	return res
}
