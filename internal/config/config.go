// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Catalog struct {
		BaseURL         string `mapstructure:"base_url"`
		LocalPath       string `mapstructure:"local_path"`
		RefreshInterval int    `mapstructure:"refresh_interval"`
	} `mapstructure:"catalog"`
	Search struct {
		SuggestionLimit int `mapstructure:"suggestion_limit"`
		ResultLimit     int `mapstructure:"result_limit"`
	} `mapstructure:"search"`
	Reader struct {
		FinishThreshold float64 `mapstructure:"finish_threshold"`
	} `mapstructure:"reader"`
	Billing struct {
		CheckoutURL    string `mapstructure:"checkout_url"`
		PortalURL      string `mapstructure:"portal_url"`
		MonthlyPriceID string `mapstructure:"monthly_price_id"`
		YearlyPriceID  string `mapstructure:"yearly_price_id"`
		TrialDays      int    `mapstructure:"trial_days"`
	} `mapstructure:"billing"`
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or "yaml"
	viper.AddConfigPath(".")      // looking for config in the current directory

	// --- Environment Variable Overrides ---
	// This tells Viper to look for environment variables with a "SUMMARIST_"
	// prefix. e.g., SUMMARIST_DATABASE_PATH overrides the `database.path` key.
	viper.SetEnvPrefix("SUMMARIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("port", 8080)
	viper.SetDefault("database.path", "./summarist.db")
	viper.SetDefault("catalog.base_url", "https://us-central1-summaristt.cloudfunctions.net")
	viper.SetDefault("catalog.local_path", "")
	viper.SetDefault("catalog.refresh_interval", 60)
	// The two caps differ on purpose: the inline suggestion dropdown shows
	// more rows than the search results page.
	viper.SetDefault("search.suggestion_limit", 12)
	viper.SetDefault("search.result_limit", 10)
	viper.SetDefault("reader.finish_threshold", 95)
	viper.SetDefault("billing.checkout_url", "")
	viper.SetDefault("billing.portal_url", "")
	viper.SetDefault("billing.monthly_price_id", "")
	viper.SetDefault("billing.yearly_price_id", "")
	viper.SetDefault("billing.trial_days", 7)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
