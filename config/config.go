package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds process configuration, read once at startup.
type Config struct {
	Token      string `mapstructure:"BOT_TOKEN"`
	OwnerID    int64  `mapstructure:"OWNER_ID"`
	ChannelID  string `mapstructure:"CHANNEL_ID"`
	SudoUsers  string `mapstructure:"SUDO_USERS"`
	DBPath     string `mapstructure:"DB_PATH"`
	HealthAddr string `mapstructure:"HEALTH_ADDR"`
}

// Cfg is the process-wide configuration.
var Cfg Config

// LoadConfig reads configuration from config.yaml (optional) and the
// environment. A missing bot token is fatal to the caller.
func LoadConfig() error {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	viper.SetDefault("DB_PATH", "./data/botlibrary.db")
	viper.SetDefault("HEALTH_ADDR", ":8080")

	// Env-only deployments have no config file; that is not an error.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	for _, key := range []string{"BOT_TOKEN", "OWNER_ID", "CHANNEL_ID", "SUDO_USERS", "DB_PATH", "HEALTH_ADDR"} {
		if err := viper.BindEnv(key); err != nil {
			return err
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		return err
	}

	if Cfg.Token == "" {
		return fmt.Errorf("BOT_TOKEN is not set")
	}
	return nil
}

// SudoSet parses the comma-separated privileged-account list. The owner is
// always included.
func (c Config) SudoSet() map[int64]bool {
	set := make(map[int64]bool)
	if c.OwnerID != 0 {
		set[c.OwnerID] = true
	}
	for _, part := range strings.Split(c.SudoUsers, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		set[id] = true
	}
	return set
}
