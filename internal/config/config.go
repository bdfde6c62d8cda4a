package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the CAN driver bring-up host.
type Config struct {
	Chip   ChipConfig   `mapstructure:"chip"`
	Logger LoggerConfig `mapstructure:"logger"`
}

// ChipConfig mirrors can.Config in file/env-configurable form — the
// fields a host picks at deploy time rather than compiles in.
type ChipConfig struct {
	Transport    string `mapstructure:"transport"`      // "spi0" | "spi1"
	BaudKbps     int    `mapstructure:"baud_kbps"`       // one of 50, 100, 125, 250, 500
	OneShot      bool   `mapstructure:"one_shot"`
	SampleThrice bool   `mapstructure:"sample_thrice"`
	WakeUpFilter bool   `mapstructure:"wake_up_filter"`
	RXB0AcceptAny bool  `mapstructure:"rxb0_accept_any"`
	RXB1AcceptAny bool  `mapstructure:"rxb1_accept_any"`
	RXB0Rollover bool   `mapstructure:"rxb0_rollover"`
	Mode         string `mapstructure:"mode"` // "normal" | "sleep" | "loopback" | "listen-only" | "configuration"
	OscillatorHz uint32 `mapstructure:"oscillator_hz"`

	// Mask0/Mask1 and Filters back the two RX masks and up to six RX
	// filters. Both are re-read and re-armed on every config file reload.
	Mask0   uint32         `mapstructure:"mask0"`
	Mask1   uint32         `mapstructure:"mask1"`
	Filters []FilterConfig `mapstructure:"filters"`
}

// FilterConfig is one RX filter slot's deploy-time value. ID is the packed
// 29-bit identifier (see can.PackedExtendedID); Extended selects whether the
// filter gates extended-frame identifiers.
type FilterConfig struct {
	ID       uint32 `mapstructure:"id"`
	Extended bool   `mapstructure:"extended"`
}

// LoggerConfig contains logging settings.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	LogDir string `mapstructure:"log_dir"`
}

// Load reads configuration from file and environment variables. When no
// configPath is given, finding no config file in the search paths is not an
// error — the defaults below (spi0, 500 kbit/s, normal mode) are a runnable
// bring-up configuration on their own.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath(getConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("CANSVC")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chip.transport", "spi0")
	v.SetDefault("chip.baud_kbps", 500)
	v.SetDefault("chip.one_shot", false)
	v.SetDefault("chip.sample_thrice", false)
	v.SetDefault("chip.wake_up_filter", false)
	v.SetDefault("chip.rxb0_accept_any", false)
	v.SetDefault("chip.rxb1_accept_any", false)
	v.SetDefault("chip.rxb0_rollover", true)
	v.SetDefault("chip.mode", "normal")
	v.SetDefault("chip.oscillator_hz", 8_000_000)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.log_dir", "./logs")
}

func getConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".cansvc")
}
