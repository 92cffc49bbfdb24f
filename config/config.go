package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ErrMissingConfig = errors.New("missing-config")

type Config struct {
	Server struct {
		Addr           string   `mapstructure:"addr"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
		Debug          bool     `mapstructure:"debug"`
		PrettyLogs     bool     `mapstructure:"pretty_logs"`
	} `mapstructure:"server"`
	Postgres struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"postgres"`
	Redis struct {
		Addr        string        `mapstructure:"addr"`
		Password    string        `mapstructure:"password"`
		DB          int           `mapstructure:"db"`
		SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
	} `mapstructure:"redis"`
	Auth struct {
		JWTKey   string        `mapstructure:"jwt_key"`
		TokenAge time.Duration `mapstructure:"token_age"`
	} `mapstructure:"auth"`
	Game struct {
		ServerTiming        bool    `mapstructure:"server_timing"`
		GuessRate           float64 `mapstructure:"guess_rate"`
		GuessBurst          int     `mapstructure:"guess_burst"`
		DefaultRounds       int     `mapstructure:"default_rounds"`
		DefaultTimerSeconds int     `mapstructure:"default_timer_seconds"`
	} `mapstructure:"game"`
}

// Load reads BLINDTEST_* environment variables, optionally overlaid on a
// config.yaml found in the working directory or ./config.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("BLINDTEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// keys without defaults still have to be known to Unmarshal
	for _, key := range []string{
		"server.allowed_origins",
		"postgres.url",
		"redis.addr",
		"redis.password",
		"auth.jwt_key",
	} {
		v.BindEnv(key)
	}

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.pretty_logs", false)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.snapshot_ttl", "2s")
	v.SetDefault("auth.token_age", "168h")
	v.SetDefault("game.server_timing", false)
	v.SetDefault("game.guess_rate", 5)
	v.SetDefault("game.guess_burst", 10)
	v.SetDefault("game.default_rounds", 10)
	v.SetDefault("game.default_timer_seconds", 30)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		log.Debug().Msg("config.yaml not found, using environment only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Server.AllowedOrigins = cleanList(cfg.Server.AllowedOrigins)
	if len(cfg.Server.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("%w: server.allowed_origins (BLINDTEST_SERVER_ALLOWED_ORIGINS)", ErrMissingConfig)
	}
	if cfg.Auth.JWTKey == "" {
		return nil, fmt.Errorf("%w: auth.jwt_key (BLINDTEST_AUTH_JWT_KEY)", ErrMissingConfig)
	}
	return &cfg, nil
}

// cleanList splits comma separated entries and drops blanks.
func cleanList(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
