// Package config loads CLI and connection configuration.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem used for config probing; swapped for a memory fs
// in tests.
var AppFs = afero.NewOsFs()

// Config holds cluster connection settings for the CLI.
type Config struct {
	Hosts          []string
	Port           int
	Keyspace       string
	Username       string
	Password       string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	Verbose        bool
}

// Load reads configuration from .casql.yaml (working directory, home
// directory, ~/.config/casql), the CASQL_* environment and a .env file when
// present. Missing config files are not an error; defaults apply.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	viper.SetConfigName(".casql")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(home)
	viper.AddConfigPath(filepath.Join(home, ".config", "casql"))

	viper.SetEnvPrefix("CASQL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("hosts", []string{"127.0.0.1"})
	viper.SetDefault("port", 9042)
	viper.SetDefault("timeout", "10s")
	viper.SetDefault("connect_timeout", "10s")
	viper.SetDefault("verbose", false)

	_ = viper.ReadInConfig()

	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Hosts:          viper.GetStringSlice("hosts"),
		Port:           viper.GetInt("port"),
		Keyspace:       viper.GetString("keyspace"),
		Username:       viper.GetString("username"),
		Password:       viper.GetString("password"),
		Timeout:        viper.GetDuration("timeout"),
		ConnectTimeout: viper.GetDuration("connect_timeout"),
		Verbose:        viper.GetBool("verbose"),
	}
	return cfg, nil
}

// Save writes the current configuration to ~/.config/casql/.casql.yaml.
func Save(cfg *Config) error {
	viper.Set("hosts", cfg.Hosts)
	viper.Set("port", cfg.Port)
	viper.Set("keyspace", cfg.Keyspace)
	viper.Set("verbose", cfg.Verbose)

	home, err := homedir.Dir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, ".config", "casql")
	if err := AppFs.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return viper.WriteConfigAs(filepath.Join(dir, ".casql.yaml"))
}
