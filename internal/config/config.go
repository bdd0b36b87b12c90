// Package config loads and validates the daemon configuration.
package config

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/wheelibin/duskd/internal/astro"
	"github.com/wheelibin/duskd/internal/scheduler"
)

const (
	defaultOffTime    = "23:00"
	defaultBrightness = 200
)

type MQTT struct {
	Broker    string `mapstructure:"broker"`
	BaseTopic string `mapstructure:"baseTopic"`
	ClientID  string `mapstructure:"clientId"`
}

type Web struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

type Config struct {
	City       string   `mapstructure:"city"`
	OffTime    string   `mapstructure:"offTime"`
	Brightness int      `mapstructure:"brightness"`
	Lights     []string `mapstructure:"lights"`
	Outlets    []string `mapstructure:"outlets"`
	MQTT       MQTT     `mapstructure:"mqtt"`
	Web        Web      `mapstructure:"web"`
	LogFile    string   `mapstructure:"logFile"`
	HistoryDB  string   `mapstructure:"historyDb"`

	// parsed from OffTime during validation
	OffHour   int `mapstructure:"-"`
	OffMinute int `mapstructure:"-"`
}

func setDefaults() {
	viper.SetDefault("city", "Toronto")
	viper.SetDefault("offTime", defaultOffTime)
	viper.SetDefault("brightness", defaultBrightness)
	viper.SetDefault("mqtt.broker", "tcp://localhost:1883")
	viper.SetDefault("mqtt.baseTopic", "zigbee2mqtt")
	viper.SetDefault("mqtt.clientId", "duskd")
	viper.SetDefault("web.enabled", true)
	viper.SetDefault("web.listen", ":8080")
	viper.SetDefault("logFile", "")
	viper.SetDefault("historyDb", "duskd.db")
}

// Load reads the config file (duskd.{yaml,json,toml} from /etc/duskd,
// $HOME/.config/duskd or the working directory) and applies validation
// fallbacks. A missing config file is not an error; defaults apply.
func Load(logger *log.Logger) (*Config, error) {
	viper.SetConfigName("duskd")
	viper.AddConfigPath("/etc/duskd/")
	viper.AddConfigPath("$HOME/.config/duskd/")
	viper.AddConfigPath(".")
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		logger.Warn("no config file found, using defaults")
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Validate(logger)
	return cfg, nil
}

// Validate applies runtime fallbacks. No configuration problem is fatal:
// a bad off-time or brightness falls back to its default and an unknown city
// is logged here and resolved to the default dusk at runtime.
func (c *Config) Validate(logger *log.Logger) {
	hour, minute, err := scheduler.ParseTimeOfDay(c.OffTime)
	if err != nil {
		logger.Error("invalid offTime in configuration, using default",
			"offTime", c.OffTime, "default", defaultOffTime)
		c.OffTime = defaultOffTime
		hour, minute, _ = scheduler.ParseTimeOfDay(defaultOffTime)
	}
	c.OffHour = hour
	c.OffMinute = minute

	if c.Brightness < 0 || c.Brightness > 254 {
		logger.Error("invalid brightness in configuration, using default",
			"brightness", c.Brightness, "default", defaultBrightness)
		c.Brightness = defaultBrightness
	}

	if _, err := astro.LookupCity(c.City); err != nil {
		logger.Error("unrecognised city in configuration, the default dusk time will be used",
			"city", c.City)
	}

	if len(c.Lights) == 0 {
		logger.Warn("no lights configured")
	}
}
