package main

import (
	"fmt"
	"time"

	"github.com/taigrr/vitrine/internal/config"
	"github.com/taigrr/vitrine/internal/logger"
	"github.com/taigrr/vitrine/pkg/render"
	"github.com/taigrr/vitrine/pkg/scene"
	"github.com/taigrr/vitrine/pkg/viewer"
)

type snapshotOptions struct {
	Width, Height int
	Explode       float64
}

// snapshot renders one framed frame of the model to a PNG file.
func snapshot(cfg *config.Config, modelPath, out string, opts snapshotOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", viewer.ErrInvalidViewport, opts.Width, opts.Height)
	}
	model, err := scene.LoadGLTF(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	vopts, err := cfg.ViewerOptions(logger.Named("viewer"))
	if err != nil {
		return err
	}

	renderer := render.NewSceneRenderer(opts.Width, opts.Height)
	v := viewer.New(vopts, renderer)
	if err := v.Resize(opts.Width, opts.Height); err != nil {
		return err
	}
	v.Load(model)
	if opts.Explode > 0 {
		v.SetExplodePower(opts.Explode)
		v.Click(viewer.ActionExplode)
	}
	v.Tick(time.Now())

	if err := renderer.Framebuffer().SavePNG(out); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	logger.Info("snapshot written")
	return nil
}
