package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging     LoggingConfig    `yaml:"logging"`
	GeminiModel string           `yaml:"gemini_model"`
	LLMQuota    LLMQuotaConfig   `yaml:"llm_quota"`
	Timeouts    TimeoutConfig    `yaml:"timeouts"`
	Sources     SourcesConfig    `yaml:"sources"`
	Categories  []CategoryConfig `yaml:"categories"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LLMQuotaConfig defines rate/daily limits for brief-generation LLM calls.
// A value of 0 or below means no limit in that direction.
type LLMQuotaConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

type TimeoutConfig struct {
	SourceSeconds  int `yaml:"source_seconds"`
	LLMSeconds     int `yaml:"llm_seconds"`
	HandlerSeconds int `yaml:"handler_seconds"`
}

type SourcesConfig struct {
	RedditUserAgent   string  `yaml:"reddit_user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	PerSourceLimit    int     `yaml:"per_source_limit"`
	ExcerptBackfill   int     `yaml:"excerpt_backfill"`
}

// CategoryConfig is one topical bucket the daily pipeline builds a brief for.
// Loaded once at startup and read-only afterwards.
type CategoryConfig struct {
	Key        string   `yaml:"key"`
	Name       string   `yaml:"name"`
	XQueries   []string `yaml:"x_queries"`
	Subreddits []string `yaml:"subreddits"`
	HNKeywords []string `yaml:"hn_keywords"`
	BriefFocus string   `yaml:"brief_focus"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	config = &c

	Logger = NewLogger(c.Logging.Level)
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

// CategoryByKey returns the category config for key, if configured.
func CategoryByKey(key string) (CategoryConfig, bool) {
	for _, c := range GetConfig().Categories {
		if c.Key == key {
			return c, true
		}
	}
	return CategoryConfig{}, false
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
