package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ConfigName is the config file base name; any extension viper knows
	// (json, yaml, toml) is accepted.
	ConfigName = "tinyfootball"
	EnvPrefix  = "TINYFOOTBALL"

	FrontendWindow   = "window"
	FrontendHeadless = "headless"
)

// GraylogConfig holds the optional GELF log sink.
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

// MatchConfig holds match length.
type MatchConfig struct {
	DurationSeconds int `json:"durationSeconds" mapstructure:"durationSeconds"`
}

// LoopConfig holds frame pacing.
type LoopConfig struct {
	TPS int `json:"tps" mapstructure:"tps"`
}

// InputConfig holds input mapping behaviour.
type InputConfig struct {
	EdgeTriggered bool `json:"edgeTriggered" mapstructure:"edgeTriggered"`
}

// SpectatorConfig holds the websocket spectator server settings.
type SpectatorConfig struct {
	Enabled        bool     `json:"enabled" mapstructure:"enabled"`
	Addr           string   `json:"addr" mapstructure:"addr"`
	AllowedOrigins []string `json:"allowedOrigins" mapstructure:"allowedOrigins"`
	MaxConnsPerIP  int      `json:"maxConnsPerIP" mapstructure:"maxConnsPerIP"`
	MsgRate        int      `json:"msgRate" mapstructure:"msgRate"`
	MaxSpectators  int      `json:"maxSpectators" mapstructure:"maxSpectators"`
	StaticDir      string   `json:"staticDir" mapstructure:"staticDir"`
}

// Config is the full runtime configuration.
type Config struct {
	LogLevel  string          `json:"logLevel" mapstructure:"logLevel"`
	Frontend  string          `json:"frontend" mapstructure:"frontend"`
	Graylog   GraylogConfig   `json:"graylog" mapstructure:"graylog"`
	Match     MatchConfig     `json:"match" mapstructure:"match"`
	Loop      LoopConfig      `json:"loop" mapstructure:"loop"`
	Input     InputConfig     `json:"input" mapstructure:"input"`
	Spectator SpectatorConfig `json:"spectator" mapstructure:"spectator"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("frontend", FrontendWindow)

	v.SetDefault("graylog.enabled", false)
	v.SetDefault("graylog.address", "localhost:12201")

	v.SetDefault("match.durationSeconds", 300)
	v.SetDefault("loop.tps", 60)
	v.SetDefault("input.edgeTriggered", false)

	v.SetDefault("spectator.enabled", false)
	v.SetDefault("spectator.addr", ":8080")
	v.SetDefault("spectator.allowedOrigins", []string{})
	v.SetDefault("spectator.maxConnsPerIP", 4)
	v.SetDefault("spectator.msgRate", 120)
	v.SetDefault("spectator.maxSpectators", 64)
	v.SetDefault("spectator.staticDir", "")
}

// Flags declares the command line overrides. Parse the returned set, then
// hand it to Load.
func Flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "directory containing "+ConfigName+".{json,yaml,toml}")
	fs.String("log-level", "", "trace, debug, info, warn or error")
	fs.String("frontend", "", "window or headless")
	fs.Bool("headless", false, "shorthand for --frontend=headless")
	fs.Int("duration", 0, "match length in seconds")
	fs.Int("tps", 0, "simulation ticks per second")
	fs.Bool("edge-triggered", false, "switch, steal and kick fire once per key press")
	fs.String("spectate", "", "serve spectators on this address, e.g. :8080")
	return fs
}

var flagKeys = map[string]string{
	"log-level":      "logLevel",
	"frontend":       "frontend",
	"duration":       "match.durationSeconds",
	"tps":            "loop.tps",
	"edge-triggered": "input.edgeTriggered",
	"spectate":       "spectator.addr",
}

// Load resolves configuration from defaults, the optional config file in
// configDir, TINYFOOTBALL_* environment variables and flags, in increasing
// precedence. fs may be nil.
func Load(configDir string, fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	if fs != nil && configDir == "" {
		if f := fs.Lookup("config"); f != nil {
			configDir = f.Value.String()
		}
	}

	v.SetConfigName(ConfigName)
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for flag, key := range flagKeys {
			if f := fs.Lookup(flag); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
		if f := fs.Lookup("headless"); f != nil && f.Changed && f.Value.String() == "true" {
			v.Set("frontend", FrontendHeadless)
		}
		if f := fs.Lookup("spectate"); f != nil && f.Changed {
			v.Set("spectator.enabled", true)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the game cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Match.DurationSeconds <= 0 {
		errs = append(errs, fmt.Errorf("match.durationSeconds must be positive, got %d", c.Match.DurationSeconds))
	}
	if c.Loop.TPS <= 0 || c.Loop.TPS > 1000 {
		errs = append(errs, fmt.Errorf("loop.tps must be in 1..1000, got %d", c.Loop.TPS))
	}
	switch c.Frontend {
	case FrontendWindow, FrontendHeadless:
	default:
		errs = append(errs, fmt.Errorf("frontend must be %q or %q, got %q", FrontendWindow, FrontendHeadless, c.Frontend))
	}
	if c.Graylog.Enabled && c.Graylog.Address == "" {
		errs = append(errs, errors.New("graylog.address is required when graylog is enabled"))
	}
	if c.Spectator.Enabled {
		if c.Spectator.Addr == "" {
			errs = append(errs, errors.New("spectator.addr is required when spectators are enabled"))
		}
		if c.Spectator.MaxConnsPerIP <= 0 || c.Spectator.MsgRate <= 0 || c.Spectator.MaxSpectators <= 0 {
			errs = append(errs, errors.New("spectator limits must be positive"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
