package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/speedwagon-io/speedbot/internal/model"
)

const DefaultFileName = ".env"

type Config struct {
	Env       string          `yaml:"env" env:"ENV" env-default:"prod"`
	HostName  string          `yaml:"host_name" env:"HOST_NAME"`
	Bot       BotConfig       `yaml:"bot"`
	Speedtest SpeedtestConfig `yaml:"speedtest"`
	IPLookup  IPLookupConfig  `yaml:"ip_lookup"`
	Results   ResultsConfig   `yaml:"results"`
	History   HistoryConfig   `yaml:"history"`
	Log       LogConfig       `yaml:"log"`
}

// BotConfig is not marked env-required: a missing pair is reported by the
// caller, not by the loader.
type BotConfig struct {
	Token   string        `yaml:"token" env:"BOT_TOKEN"`
	ChatID  string        `yaml:"chat_id" env:"BOT_CHAT_ID"`
	APIURL  string        `yaml:"api_url" env:"BOT_API_URL" env-default:"https://api.telegram.org"`
	Timeout time.Duration `yaml:"timeout" env:"BOT_TIMEOUT" env-default:"0s"`
}

type SpeedtestConfig struct {
	Binary      string `yaml:"binary" env:"SPEEDTEST_BIN" env-default:"speedtest"`
	AutoInstall bool   `yaml:"auto_install" env:"SPEEDTEST_AUTO_INSTALL" env-default:"true"`
}

type IPLookupConfig struct {
	URL     string        `yaml:"url" env:"IP_LOOKUP_URL" env-default:"https://ifconfig.me/ip"`
	Timeout time.Duration `yaml:"timeout" env:"IP_LOOKUP_TIMEOUT" env-default:"5s"`
}

type ResultsConfig struct {
	Path string `yaml:"path" env:"RESULTS_LOG" env-default:"results.log"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" env:"HISTORY_ENABLED" env-default:"false"`
	Path    string `yaml:"path" env:"HISTORY_PATH" env-default:"history.db"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Credential returns the bot token and chat id pair. The pair may be
// incomplete; check Valid before use.
func (c *Config) Credential() model.Credential {
	return model.Credential{
		Token:  c.Bot.Token,
		ChatID: c.Bot.ChatID,
	}
}

// Load reads configuration from configPath, falling back to CONFIG_PATH and
// then to a .env file next to the executable or in the working directory.
// When no file is found the process environment alone is used.
// Relative data paths are resolved against the executable's directory.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file not found: %s: %w", configPath, err)
		}
		if err := readFile(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if path, ok := findDefault(); ok {
		if err := readFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.resolvePaths(ExecutableDir())

	return &cfg, nil
}

// readFile loads a yaml or .env file into cfg. Variables already present in
// the process environment take precedence over the file in both cases.
func readFile(path string, cfg *Config) error {
	if filepath.Ext(path) != ".env" {
		return cleanenv.ReadConfig(path, cfg)
	}
	if err := godotenv.Load(path); err != nil {
		return err
	}
	return cleanenv.ReadEnv(cfg)
}

// ExecutableDir returns the directory holding the running binary, or the
// working directory if it cannot be determined.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

func findDefault() (string, bool) {
	candidates := []string{filepath.Join(ExecutableDir(), DefaultFileName)}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, DefaultFileName))
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

func (c *Config) resolvePaths(baseDir string) {
	c.Results.Path = resolve(baseDir, c.Results.Path)
	c.History.Path = resolve(baseDir, c.History.Path)
}

func resolve(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
