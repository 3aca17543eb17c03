package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	General     GeneralConfig      `toml:"general"`
	Monitor     MonitorConfig      `toml:"monitor"`
	Risk        RiskConfig         `toml:"risk"`
	Forecasters []ForecasterConfig `toml:"forecaster"`

	Secrets Secrets `toml:"-"`
}

type GeneralConfig struct {
	DBPath   string `toml:"db_path"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
}

type MonitorConfig struct {
	Creator        string   `toml:"creator"`
	PollInterval   Duration `toml:"poll_interval"`
	Cooldown       Duration `toml:"cooldown"`
	MarketLimit    int      `toml:"market_limit"`
	ReportInterval Duration `toml:"report_interval"`
}

type RiskConfig struct {
	Bankroll      float64 `toml:"bankroll"`
	MaxBet        float64 `toml:"max_bet"`
	KellyFraction float64 `toml:"kelly_fraction"`
	MinConfidence float64 `toml:"min_confidence"`
	MinStake      float64 `toml:"min_stake"`
}

// ForecasterConfig selects a completion back-end by tag rather than by
// back-end-specific construction in main.
type ForecasterConfig struct {
	Name    string `toml:"name"`
	Backend string `toml:"backend"` // "openai" or "anthropic"
	Model   string `toml:"model"`
}

// Secrets are read from the environment (optionally via a .env file),
// never from the TOML file.
type Secrets struct {
	ManifoldAPIKey  string
	OpenAIAPIKey    string
	AnthropicAPIKey string
}

// Duration wraps time.Duration for TOML unmarshaling.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Load reads the TOML tuning file, then overlays environment variables.
// A missing file is not an error; the defaults plus environment are a
// complete configuration on their own.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// .env is a convenience for local runs; absence is fine.
	_ = godotenv.Load()
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			DBPath:   "./data/caissa.db",
			LogLevel: "info",
		},
		Monitor: MonitorConfig{
			PollInterval:   Duration{5 * time.Minute},
			Cooldown:       Duration{time.Minute},
			MarketLimit:    50,
			ReportInterval: Duration{time.Hour},
		},
		Risk: RiskConfig{
			Bankroll:      1000,
			MaxBet:        100,
			KellyFraction: 0.25,
			MinConfidence: 0.6,
			MinStake:      1,
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Secrets.ManifoldAPIKey = os.Getenv("MANIFOLD_API_KEY")
	cfg.Secrets.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.Secrets.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")

	if v := os.Getenv("TARGET_CREATOR"); v != "" {
		cfg.Monitor.Creator = v
	}
	if v := os.Getenv("MAX_BET_AMOUNT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.MaxBet = f
		}
	}
	if v := os.Getenv("MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Risk.MinConfidence = f
		}
	}
	if v := os.Getenv("POLL_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Monitor.PollInterval = Duration{time.Duration(n) * time.Second}
		}
	}
}

// Validate enforces the preconditions that must hold before any polling
// starts. Forecaster keys are deliberately not required: without them the
// bot still runs, it just never produces an actionable signal.
func (c *Config) Validate() error {
	if c.Secrets.ManifoldAPIKey == "" {
		return fmt.Errorf("MANIFOLD_API_KEY is required")
	}
	if c.Monitor.Creator == "" {
		return fmt.Errorf("target creator is required (set [monitor] creator or TARGET_CREATOR)")
	}
	if c.Risk.KellyFraction <= 0 || c.Risk.KellyFraction > 1 {
		return fmt.Errorf("kelly_fraction must be in (0, 1], got %v", c.Risk.KellyFraction)
	}
	if c.Risk.MinConfidence < 0 || c.Risk.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be in [0, 1], got %v", c.Risk.MinConfidence)
	}
	for _, f := range c.Forecasters {
		switch f.Backend {
		case "openai", "anthropic":
		default:
			return fmt.Errorf("forecaster %q: unknown backend %q", f.Name, f.Backend)
		}
	}
	return nil
}

// BackendKey returns the API key for a forecaster back-end, or "" when the
// corresponding key is absent from the environment.
func (c *Config) BackendKey(backend string) string {
	switch backend {
	case "openai":
		return c.Secrets.OpenAIAPIKey
	case "anthropic":
		return c.Secrets.AnthropicAPIKey
	}
	return ""
}
