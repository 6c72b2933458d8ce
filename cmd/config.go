package cmd

import (
	"log/slog"

	"github.com/spf13/viper"

	"github.com/RanaTayyab/osu-api-manager/internal/config"
)

const (
	DefaultConfigName = "configuration"
	DefaultConfigType = "yaml"
)

// LoadConfigFromCLI reads the configuration file named by `--config`, or ./configuration.yaml,
// merges flags and environment variables and validates the result.
func LoadConfigFromCLI() (*config.Config, error) {
	if path := viper.GetString("config"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("./")
		viper.SetConfigName(DefaultConfigName)
		viper.SetConfigType(DefaultConfigType)
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, &config.ConfigError{Key: "config", Reason: err.Error()}
	}
	slog.Debug("Using config file", "path", viper.ConfigFileUsed())

	return config.Load(viper.GetViper())
}
