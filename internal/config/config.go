package config

import (
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv     = "NEWSCHECKER_CONFIG"
	addrEnv           = "NEWSCHECKER_ADDR"
	modelPathEnv      = "NEWSCHECKER_MODEL_PATH"
	modelBackendEnv   = "NEWSCHECKER_MODEL_BACKEND"
	logLevelEnv       = "NEWSCHECKER_LOG_LEVEL"
	databaseDSNEnv    = "DATABASE_DSN"
	mlInferenceURLEnv = "ML_INFERENCE_URL"
	mlAPIKeyEnv       = "ML_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Model backends.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
	BackendONNX   = "onnx"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Model         ModelConfig        `yaml:"model"`
	ML            MLConfig           `yaml:"ml"`
	Extractor     ExtractorConfig    `yaml:"extractor"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Monitor       MonitorConfig      `yaml:"monitor"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// ServerConfig describes the HTTP front end.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	MaxTextBytes int           `yaml:"maxTextBytes"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// ModelConfig selects and locates the classifier backend.
// Path always points at the artifact holding the fitted vectorizer.
type ModelConfig struct {
	Backend string     `yaml:"backend"`
	Path    string     `yaml:"path"`
	ONNX    ONNXConfig `yaml:"onnx"`
}

// ONNXConfig locates an ONNX classifier and the runtime library.
type ONNXConfig struct {
	ModelPath         string `yaml:"modelPath"`
	LibraryPath       string `yaml:"libraryPath"`
	InputName         string `yaml:"inputName"`
	LabelName         string `yaml:"labelName"`
	ProbabilitiesName string `yaml:"probabilitiesName"`
}

// MLConfig describes remote inference service parameters.
type MLConfig struct {
	InferenceURL string        `yaml:"inferenceUrl"`
	APIKey       string        `yaml:"apiKey"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ExtractorConfig controls URL-to-article resolution.
type ExtractorConfig struct {
	Strategy        string        `yaml:"strategy"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxContentBytes int           `yaml:"maxContentBytes"`
	UserAgent       string        `yaml:"userAgent"`
}

// DatabaseConfig describes the analysis history store. An empty DSN disables it.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// MonitorConfig defines the watchlist and when it is re-scored.
type MonitorConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	Concurrency    int            `yaml:"concurrency"`
	URLs           []string       `yaml:"urls"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the monitor timezone string to a time.Location.
func (m MonitorConfig) Location() *time.Location {
	if m.location != nil {
		return m.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LoggingConfig sets the slog level and handler format (text|json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom is Load with an explicit file path; an empty path skips the file.
func LoadFrom(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(addrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(modelPathEnv); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv(modelBackendEnv); v != "" {
		c.Model.Backend = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(mlInferenceURLEnv); v != "" {
		c.ML.InferenceURL = v
	}
	if v := os.Getenv(mlAPIKeyEnv); v != "" {
		c.ML.APIKey = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Monitor.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Monitor.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.MaxTextBytes > 0 {
		base.Server.MaxTextBytes = override.Server.MaxTextBytes
	}
	if override.Server.ReadTimeout > 0 {
		base.Server.ReadTimeout = override.Server.ReadTimeout
	}
	if override.Server.WriteTimeout > 0 {
		base.Server.WriteTimeout = override.Server.WriteTimeout
	}

	if override.Model.Backend != "" {
		base.Model.Backend = override.Model.Backend
	}
	if override.Model.Path != "" {
		base.Model.Path = override.Model.Path
	}
	if override.Model.ONNX.ModelPath != "" {
		base.Model.ONNX = override.Model.ONNX
	}

	if override.ML.InferenceURL != "" {
		base.ML.InferenceURL = override.ML.InferenceURL
	}
	if override.ML.APIKey != "" {
		base.ML.APIKey = override.ML.APIKey
	}
	if override.ML.Timeout > 0 {
		base.ML.Timeout = override.ML.Timeout
	}

	if override.Extractor.Strategy != "" {
		base.Extractor.Strategy = override.Extractor.Strategy
	}
	if override.Extractor.Timeout > 0 {
		base.Extractor.Timeout = override.Extractor.Timeout
	}
	if override.Extractor.MaxContentBytes > 0 {
		base.Extractor.MaxContentBytes = override.Extractor.MaxContentBytes
	}
	if override.Extractor.UserAgent != "" {
		base.Extractor.UserAgent = override.Extractor.UserAgent
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
		if base.Database.Driver == "" {
			base.Database.Driver = defaultConfig().Database.Driver
		}
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Monitor.CronExpression != "" {
		base.Monitor.CronExpression = override.Monitor.CronExpression
	}
	if override.Monitor.Timezone != "" {
		base.Monitor.Timezone = override.Monitor.Timezone
	}
	if override.Monitor.Concurrency > 0 {
		base.Monitor.Concurrency = override.Monitor.Concurrency
	}
	if len(override.Monitor.URLs) > 0 {
		base.Monitor.URLs = override.Monitor.URLs
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			MaxTextBytes: 100_000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Model: ModelConfig{Backend: BackendLocal, Path: "model.json"},
		ML:    MLConfig{InferenceURL: "", APIKey: "", Timeout: 15 * time.Second},
		Extractor: ExtractorConfig{
			Strategy:        "readability",
			Timeout:         20 * time.Second,
			MaxContentBytes: 50_000,
			UserAgent:       "NewsChecker/1.0",
		},
		Database: DatabaseConfig{Driver: "sqlite", DSN: ""},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Monitor: MonitorConfig{
			CronExpression: "0 6 * * *",
			Timezone:       defaultTimezone,
			Concurrency:    4,
			location:       tz,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

