package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Discord struct {
		Token         string   `json:"token" env:"WARDEN_DISCORD_TOKEN"`                   // bot token from the developer portal, without "Bot " prefix
		ApplicationID string   `json:"application_id" env:"WARDEN_DISCORD_APPLICATION_ID"` // needed for the invite url
		ClientSecret  string   `json:"client_secret" env:"WARDEN_DISCORD_CLIENT_SECRET"`   // only used for the invite url
		OwnerID       string   `json:"owner_id" env:"WARDEN_DISCORD_OWNER_ID"`             // gets a DM when a cog fails to start
		GuildIDs      []string `json:"guild_ids" env:"WARDEN_DISCORD_GUILD_IDS"`           // register commands per guild instead of globally
	} `json:"discord"`
	Postgres struct {
		Host     string `json:"host" env:"WARDEN_POSTGRES_HOST"`
		Port     int    `json:"port" env:"WARDEN_POSTGRES_PORT"`
		User     string `json:"user" env:"WARDEN_POSTGRES_USER"`
		Password string `json:"password" env:"WARDEN_POSTGRES_PASSWORD"`
		Database string `json:"database" env:"WARDEN_POSTGRES_DATABASE"`
	} `json:"postgres"`
	Captcha struct {
		DataDir               string `json:"data_dir" env:"WARDEN_CAPTCHA_DATA_DIR"`                             // captcha images are written here
		CleanupDelaySeconds   int    `json:"cleanup_delay_seconds" env:"WARDEN_CAPTCHA_CLEANUP_DELAY_SECONDS"`     // transient messages are deleted after this
		VerifyCooldownSeconds int    `json:"verify_cooldown_seconds" env:"WARDEN_CAPTCHA_VERIFY_COOLDOWN_SECONDS"` // minimum gap between two verify clicks
	} `json:"captcha"`
	Roomer struct {
		DeletionDelaySeconds int `json:"deletion_delay_seconds" env:"WARDEN_ROOMER_DELETION_DELAY_SECONDS"` // empty rooms are deleted after this
	} `json:"roomer"`
	Metrics struct {
		Addr string `json:"addr" env:"WARDEN_METRICS_ADDR"` // empty disables the http server
	} `json:"metrics"`
}

// Instances new config from json file, then applies environment overrides.
//
// A .env file in the working directory is loaded first if it exists.
// Does not check for any missing keys, use CheckConfig for that.
func LoadConfig(cfgPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	f, err := os.Open(cfgPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()

	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// Returns a config with every optional value set.
func Default() *Config {
	var cfg Config

	cfg.Postgres.Port = 5432
	cfg.Captcha.DataDir = "./files/captcha"
	cfg.Captcha.CleanupDelaySeconds = 10
	cfg.Captcha.VerifyCooldownSeconds = 5
	cfg.Roomer.DeletionDelaySeconds = 60

	return &cfg
}

// Checks config for important or missing keys / values and returns error if missing.
//
// Postgres keys are only checked if usePostgres is true.
func (c *Config) CheckConfig(usePostgres bool) error {
	if c.Discord.Token == "" {
		return fmt.Errorf("missing key: discord token")
	}

	if usePostgres {
		if c.Postgres.Host == "" {
			return fmt.Errorf("missing key: postgres host")
		}

		if c.Postgres.Port == 0 {
			return fmt.Errorf("missing key: postgres port")
		}

		if c.Postgres.User == "" {
			return fmt.Errorf("missing key: postgres user")
		}

		if c.Postgres.Password == "" {
			return fmt.Errorf("missing key: postgres password")
		}

		if c.Postgres.Database == "" {
			return fmt.Errorf("missing key: postgres database")
		}
	}

	if c.Captcha.DataDir == "" {
		return fmt.Errorf("missing key: captcha data dir")
	}

	if c.Captcha.CleanupDelaySeconds <= 0 {
		return fmt.Errorf("invalid key: captcha cleanup delay must be positive")
	}

	if c.Captcha.VerifyCooldownSeconds < 0 {
		return fmt.Errorf("invalid key: captcha verify cooldown must not be negative")
	}

	if c.Roomer.DeletionDelaySeconds < 10 || c.Roomer.DeletionDelaySeconds > 60 {
		return fmt.Errorf("invalid key: roomer deletion delay must be between 10 and 60 seconds")
	}

	return nil
}

// Postgres connection string built from the postgres section.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Postgres.User, c.Postgres.Password,
		c.Postgres.Host, c.Postgres.Port, c.Postgres.Database)
}
