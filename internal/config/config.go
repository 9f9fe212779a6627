package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	SaveDir      string  `mapstructure:"save_dir" yaml:"save_dir"`
	ImageFormat  string  `mapstructure:"image_format" yaml:"image_format"`
	Theme        string  `mapstructure:"theme" yaml:"theme"`
	PlotWidthIn  float64 `mapstructure:"plot_width_in" yaml:"plot_width_in"`
	PlotHeightIn float64 `mapstructure:"plot_height_in" yaml:"plot_height_in"`

	// KPI defaults
	MaxShownPartitions int    `mapstructure:"max_shown_partitions" yaml:"max_shown_partitions"`
	TickInterval       int    `mapstructure:"tick_interval" yaml:"tick_interval"`
	Perspective        string `mapstructure:"perspective" yaml:"perspective"`
	PlotType           string `mapstructure:"plot_type" yaml:"plot_type"`

	// Trend defaults
	WindowSize int `mapstructure:"window_size" yaml:"window_size"`

	// Input
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// Dir returns ~/.kpiscope.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".kpiscope"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.kpiscope/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("KPISCOPE")
	v.AutomaticEnv()

	v.SetDefault("save_dir", "./img")
	v.SetDefault("image_format", "png")
	v.SetDefault("theme", "ggplot")
	v.SetDefault("plot_width_in", 20.0)
	v.SetDefault("plot_height_in", 10.0)
	v.SetDefault("max_shown_partitions", 10)
	v.SetDefault("tick_interval", 1)
	v.SetDefault("perspective", "overall")
	v.SetDefault("plot_type", "l")
	v.SetDefault("window_size", 10)
	v.SetDefault("delimiter", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// A missing file is fine; a malformed one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
