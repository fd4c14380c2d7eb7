package config

import "github.com/spf13/pflag"

// Flags holds the command-line overrides registered on a flag set. Only
// flags the user actually set override file values.
type Flags struct {
	fs *pflag.FlagSet

	config      *string
	debug       *bool
	logFile     *string
	fps         *int
	bg          *string
	fov         *float64
	rotateSpeed *float64
	selectColor *string
	watch       *bool
	noHUD       *bool
}

// RegisterFlags adds the config flags to fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	d := Default()
	return &Flags{
		fs:          fs,
		config:      fs.StringP("config", "c", "", "Path to config file"),
		debug:       fs.Bool("debug", false, "Enable debug logging"),
		logFile:     fs.String("log-file", "", "Write logs to this file"),
		fps:         fs.Int("fps", d.Viewer.FPS, "Target FPS"),
		bg:          fs.String("bg", d.Viewer.Background, "Background color (R,G,B or #rrggbb)"),
		fov:         fs.Float64("fov", d.Viewer.FOV, "Vertical field of view in degrees"),
		rotateSpeed: fs.Float64("rotate-speed", d.Viewer.RotateSpeed, "Auto-rotate speed"),
		selectColor: fs.String("select-color", d.Viewer.SelectColor, "Selection highlight color"),
		watch:       fs.BoolP("watch", "w", d.Watch.Enabled, "Reload the model when the file changes"),
		noHUD:       fs.Bool("no-hud", false, "Start with the HUD hidden"),
	}
}

// ConfigPath returns the explicit config path if provided via --config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

func (f *Flags) changed(name string) bool {
	return f.fs.Changed(name)
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if f.changed("log-file") {
		cfg.Logging.LogFile = *f.logFile
	}
	if f.changed("fps") {
		cfg.Viewer.FPS = *f.fps
	}
	if f.changed("bg") {
		cfg.Viewer.Background = *f.bg
	}
	if f.changed("fov") {
		cfg.Viewer.FOV = *f.fov
	}
	if f.changed("rotate-speed") {
		cfg.Viewer.RotateSpeed = *f.rotateSpeed
	}
	if f.changed("select-color") {
		cfg.Viewer.SelectColor = *f.selectColor
	}
	if f.changed("watch") {
		cfg.Watch.Enabled = *f.watch
	}
	if *f.noHUD {
		cfg.Viewer.ShowHUD = false
	}
}
