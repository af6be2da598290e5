// Package config loads service settings from lostfound.yaml, LOSTFOUND_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/erazemk/lostfound/internal/model"
)

// Config keys.
const (
	KeyDB              = "db"
	KeyAddr            = "addr"
	KeyLog             = "log"
	KeyAdminUser       = "admin_user"
	KeyRegistrationFee = "registration_fee"
	KeyClaimFee        = "claim_fee"
)

const (
	configName = "lostfound"
	configType = "yaml"
	envPrefix  = "LOSTFOUND"
)

// Amounts are in minor units; one currency unit is 1,000,000 of them.
const (
	DefaultRegistrationFee = 10_000
	DefaultClaimFee        = 5_000
)

// Config is the resolved service configuration.
type Config struct {
	DB              string `mapstructure:"db"`
	Addr            string `mapstructure:"addr"`
	Log             string `mapstructure:"log"`
	AdminUser       string `mapstructure:"admin_user"`
	RegistrationFee int64  `mapstructure:"registration_fee"`
	ClaimFee        int64  `mapstructure:"claim_fee"`
}

// Fees returns the configured fee schedule.
func (c *Config) Fees() model.Fees {
	return model.Fees{RegistrationFee: c.RegistrationFee, ClaimFee: c.ClaimFee}
}

// New returns a viper instance with defaults and environment binding set up.
// Flags can be bound to it before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyDB, "lostfound.sqlite3")
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyLog, "")
	v.SetDefault(KeyAdminUser, "Admin")
	v.SetDefault(KeyRegistrationFee, DefaultRegistrationFee)
	v.SetDefault(KeyClaimFee, DefaultClaimFee)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file and returns the validated configuration. With
// an empty configFile, lostfound.yaml is looked up in the working directory
// and /etc/lostfound; a missing file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/lostfound")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.DB == "" {
		return errors.New("config: db path required")
	}
	if c.Addr == "" {
		return errors.New("config: listen address required")
	}
	if c.AdminUser == "" {
		return errors.New("config: admin_user required")
	}
	if c.RegistrationFee < 0 || c.ClaimFee < 0 {
		return errors.New("config: fees must not be negative")
	}
	return nil
}
