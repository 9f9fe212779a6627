package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/kpiscope/internal/analysis"
	"github.com/KaramelBytes/kpiscope/internal/chart"
	cfgpkg "github.com/KaramelBytes/kpiscope/internal/config"
	"github.com/KaramelBytes/kpiscope/internal/dataset"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set kpiscope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("save_dir: %s\n", cfg.SaveDir)
		fmt.Printf("image_format: %s\n", cfg.ImageFormat)
		fmt.Printf("theme: %s\n", cfg.Theme)
		fmt.Printf("plot_width_in: %.1f\n", cfg.PlotWidthIn)
		fmt.Printf("plot_height_in: %.1f\n", cfg.PlotHeightIn)
		fmt.Printf("max_shown_partitions: %d\n", cfg.MaxShownPartitions)
		fmt.Printf("tick_interval: %d\n", cfg.TickInterval)
		fmt.Printf("perspective: %s\n", cfg.Perspective)
		fmt.Printf("plot_type: %s\n", cfg.PlotType)
		fmt.Printf("window_size: %d\n", cfg.WindowSize)
		if cfg.Delimiter != "" {
			fmt.Printf("delimiter: %q\n", cfg.Delimiter)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := applySetting(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		success("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// applySetting validates val for key and stores it in c.
func applySetting(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "save_dir":
		c.SaveDir = val
	case "image_format":
		f := strings.TrimPrefix(strings.ToLower(val), ".")
		st := chart.DefaultStyle()
		st.Format = f
		if err := st.Validate(); err != nil {
			return err
		}
		c.ImageFormat = f
	case "theme":
		th, err := chart.ThemeByName(val)
		if err != nil {
			return err
		}
		c.Theme = th.Name
	case "plot_width_in", "plot_height_in":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid size for %s: %v", key, val)
		}
		if key == "plot_width_in" {
			c.PlotWidthIn = f
		} else {
			c.PlotHeightIn = f
		}
	case "max_shown_partitions":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for max_shown_partitions: %v", val)
		}
		c.MaxShownPartitions = i
	case "tick_interval":
		i, err := strconv.Atoi(val)
		if err != nil || i < 1 {
			return fmt.Errorf("invalid int for tick_interval: %v (must be >= 1)", val)
		}
		c.TickInterval = i
	case "window_size":
		i, err := strconv.Atoi(val)
		if err != nil || i < 1 {
			return fmt.Errorf("invalid int for window_size: %v (must be >= 1)", val)
		}
		c.WindowSize = i
	case "perspective":
		switch p := analysis.Perspective(strings.ToLower(val)); p {
		case analysis.Overall, analysis.ByWeekday, analysis.ByDay:
			c.Perspective = string(p)
		default:
			return fmt.Errorf("invalid perspective: %s (use overall, weekday or day)", val)
		}
	case "plot_type":
		switch p := analysis.PlotType(strings.ToLower(val)); p {
		case analysis.LinePlot, analysis.ScatterPlot:
			c.PlotType = string(p)
		default:
			return fmt.Errorf("invalid plot_type: %s (use l or s)", val)
		}
	case "delimiter":
		if _, err := dataset.ParseDelimiter(val); err != nil {
			return err
		}
		c.Delimiter = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}
