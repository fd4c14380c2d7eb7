// vitrine - Terminal 3D Model Inspector
// Inspect glTF models part by part in your terminal.
//
// Controls:
//
//	Mouse drag  - Orbit camera
//	Scroll      - Zoom in/out
//	Click       - Select part (click again or Esc to deselect)
//	H           - Fly camera home
//	R           - Toggle auto-rotate
//	E           - Toggle explode
//	[ / ]       - Rotate slower/faster
//	- / +       - Explode less/more
//	Arrows/WASD - Orbit camera
//	X           - Toggle wireframe
//	?           - Toggle HUD overlay
//	Esc         - Deselect, or quit with nothing selected
//	Q           - Quit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/taigrr/vitrine/internal/config"
	"github.com/taigrr/vitrine/internal/logger"
)

const controlsHelp = `Controls:
  Mouse drag  - Orbit camera
  Scroll      - Zoom in/out
  Click       - Select part
  H           - Fly camera home
  R           - Toggle auto-rotate
  E           - Toggle explode
  [ / ]       - Rotate slower/faster
  - / +       - Explode less/more
  Arrows/WASD - Orbit camera
  X           - Toggle wireframe
  ?           - Toggle HUD overlay
  Esc         - Deselect, or quit
  Q           - Quit`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		flags *config.Flags
		cfg   *config.Config
	)

	root := &cobra.Command{
		Use:           "vitrine [flags] <model.glb|model.gltf>",
		Short:         "Terminal 3D model inspector",
		Long:          "vitrine - Terminal 3D Model Inspector\n\n" + controlsHelp,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(flags)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, args[0])
		},
	}
	flags = config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newConfigCmd(func() *config.Config { return cfg }),
		newSnapshotCmd(func() *config.Config { return cfg }),
	)
	return root
}

func newConfigCmd(current func() *config.Config) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := current()
			if save {
				path := filepath.Join(config.ConfigDir(), "config.yaml")
				if err := cfg.SaveTo(path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
				return nil
			}
			_, err := cfg.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Write the effective configuration to the user config dir")
	return cmd
}

func newSnapshotCmd(current func() *config.Config) *cobra.Command {
	var opts snapshotOptions
	cmd := &cobra.Command{
		Use:   "snapshot <model.glb|model.gltf> <out.png>",
		Short: "Render a single frame to a PNG file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := snapshot(current(), args[0], args[1], opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[1])
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Width, "width", 320, "Image width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", 240, "Image height in pixels")
	cmd.Flags().Float64Var(&opts.Explode, "explode", 0, "Explode power in [0,1]")
	return cmd
}
