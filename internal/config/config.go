// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/taigrr/vitrine/pkg/picking"
	"github.com/taigrr/vitrine/pkg/viewer"
	"go.uber.org/zap"
)

// Config holds all viewer settings.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Grid    GridConfig    `yaml:"grid"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewerConfig holds camera, animation and highlight settings.
type ViewerConfig struct {
	FPS           int           `yaml:"fps"`
	Background    string        `yaml:"background"` // "R,G,B" or "#rrggbb"
	FOV           float64       `yaml:"fov"`        // Degrees
	Near          float64       `yaml:"near"`
	Far           float64       `yaml:"far"`
	PositionRatio float64       `yaml:"position_ratio"`
	HomeDuration  time.Duration `yaml:"home_duration"`
	RotateSpeed   float64       `yaml:"rotate_speed"`
	ExplodeScale  float64       `yaml:"explode_scale"`
	HoverLighten  float64       `yaml:"hover_lighten"`
	SelectColor   string        `yaml:"select_color"`
	ShowHUD       bool          `yaml:"show_hud"`
}

// GridConfig holds floor grid settings.
type GridConfig struct {
	SizeRatio float64 `yaml:"size_ratio"`
	Divisions int     `yaml:"divisions"`
	Color     string  `yaml:"color"`
}

// WatchConfig holds model file watching settings.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock viewer settings.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			FPS:           60,
			Background:    "30,30,40",
			FOV:           75,
			Near:          0.1,
			Far:           1000,
			PositionRatio: 0.9,
			HomeDuration:  300 * time.Millisecond,
			RotateSpeed:   2,
			ExplodeScale:  3,
			HoverLighten:  0.2,
			SelectColor:   "#ff8800",
			ShowHUD:       true,
		},
		Grid: GridConfig{
			SizeRatio: 3,
			Divisions: 20,
			Color:     "90,90,100",
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports every setting that would break the viewer.
func (c *Config) Validate() error {
	var errs []error
	v := c.Viewer
	if v.FPS <= 0 {
		errs = append(errs, fmt.Errorf("viewer.fps must be positive, got %d", v.FPS))
	}
	if v.FOV <= 0 || v.FOV >= 180 {
		errs = append(errs, fmt.Errorf("viewer.fov must be in (0, 180), got %g", v.FOV))
	}
	if v.Near <= 0 || v.Far <= v.Near {
		errs = append(errs, fmt.Errorf("viewer clip planes must satisfy 0 < near < far, got %g, %g", v.Near, v.Far))
	}
	if v.PositionRatio <= 0 {
		errs = append(errs, fmt.Errorf("viewer.position_ratio must be positive, got %g", v.PositionRatio))
	}
	if v.HomeDuration < 0 {
		errs = append(errs, fmt.Errorf("viewer.home_duration must not be negative, got %s", v.HomeDuration))
	}
	if c.Grid.Divisions < 0 {
		errs = append(errs, fmt.Errorf("grid.divisions must not be negative, got %d", c.Grid.Divisions))
	}
	for name, s := range map[string]string{
		"viewer.background":   v.Background,
		"viewer.select_color": v.SelectColor,
		"grid.color":          c.Grid.Color,
	} {
		if _, err := ParseColor(s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// ViewerOptions converts the config into viewer options.
func (c *Config) ViewerOptions(log *zap.Logger) (viewer.Options, error) {
	if err := c.Validate(); err != nil {
		return viewer.Options{}, err
	}
	bg, _ := ParseColor(c.Viewer.Background)
	sel, _ := ParseColor(c.Viewer.SelectColor)
	grid, _ := ParseColor(c.Grid.Color)

	opts := viewer.DefaultOptions()
	opts.FPS = c.Viewer.FPS
	opts.FOVDegrees = c.Viewer.FOV
	opts.Near = c.Viewer.Near
	opts.Far = c.Viewer.Far
	opts.PositionRatio = c.Viewer.PositionRatio
	opts.HomeDuration = c.Viewer.HomeDuration
	opts.RotateSpeed = c.Viewer.RotateSpeed
	opts.ExplodeScale = c.Viewer.ExplodeScale
	opts.HoverLighten = c.Viewer.HoverLighten
	opts.SelectColor = sel
	opts.Background = bg
	opts.GridRatio = c.Grid.SizeRatio
	opts.GridDivisions = c.Grid.Divisions
	opts.GridColor = grid
	opts.Logger = log
	return opts, nil
}

// ParseColor accepts "#rrggbb" or the "R,G,B" form with components in
// 0-255.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return picking.ParseColor(s)
	}
	var r, g, b int
	if n, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil || n != 3 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want R,G,B or #rrggbb", s)
	}
	for _, c := range []int{r, g, b} {
		if c < 0 || c > 255 {
			return color.RGBA{}, fmt.Errorf("invalid color %q: component out of range", s)
		}
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, nil
}
