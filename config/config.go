package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"strings"
	"time"

	"boinkfarm/constant"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MinCycleInterval keeps a typo from turning the farm loop into a busy loop.
const MinCycleInterval = time.Second

type Config struct {
	RefID             string
	SessionsFile      string
	ProxyFile         string
	UseProxy          bool
	UserAgentsFile    string
	BotToken          string
	LogLevel          string
	LogFile           string
	RequestsPerSecond float64
	CycleInterval     time.Duration
}

// Load reads envFile into the process environment when it exists and then
// resolves every setting from the environment, falling back to defaults.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("REF_ID", constant.DefaultRefID)
	v.SetDefault("SESSIONS_FILE", "sessions.txt")
	v.SetDefault("PROXY_FILE", "proxy.txt")
	v.SetDefault("USE_PROXY", false)
	v.SetDefault("USER_AGENTS_FILE", "user_agents.json")
	v.SetDefault("BOT_TOKEN", "")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("REQUESTS_PER_SECOND", 2.0)
	v.SetDefault("CYCLE_INTERVAL", constant.CycleInterval.String())

	interval, err := parseInterval(v.GetString("CYCLE_INTERVAL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		RefID:             v.GetString("REF_ID"),
		SessionsFile:      v.GetString("SESSIONS_FILE"),
		ProxyFile:         v.GetString("PROXY_FILE"),
		UseProxy:          v.GetBool("USE_PROXY"),
		UserAgentsFile:    v.GetString("USER_AGENTS_FILE"),
		BotToken:          v.GetString("BOT_TOKEN"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFile:           v.GetString("LOG_FILE"),
		RequestsPerSecond: v.GetFloat64("REQUESTS_PER_SECOND"),
		CycleInterval:     interval,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SessionsFile == "" {
		return errors.New("SESSIONS_FILE must not be empty")
	}
	if c.UseProxy && c.ProxyFile == "" {
		return errors.New("USE_PROXY is set but PROXY_FILE is empty")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("REQUESTS_PER_SECOND must not be negative, got %v", c.RequestsPerSecond)
	}
	if c.CycleInterval < MinCycleInterval {
		return fmt.Errorf("CYCLE_INTERVAL must be at least %s, got %s", MinCycleInterval, c.CycleInterval)
	}
	return nil
}

// parseInterval reads a Go duration ("10m", "600s"). A bare number is taken
// as seconds.
func parseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("CYCLE_INTERVAL: invalid value %q", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("CYCLE_INTERVAL: %w", err)
	}
	return d, nil
}
