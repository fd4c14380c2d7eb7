package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/taigrr/vitrine/internal/config"
	"github.com/taigrr/vitrine/internal/logger"
	"github.com/taigrr/vitrine/internal/watch"
	"github.com/taigrr/vitrine/pkg/render"
	"github.com/taigrr/vitrine/pkg/scene"
	"github.com/taigrr/vitrine/pkg/viewer"
)

// cellToPixel maps a terminal cell to the framebuffer pixel at its center.
// Each cell is one pixel wide and two tall.
func cellToPixel(x, y int) (float64, float64) {
	return float64(x) + 0.5, float64(y*2) + 1
}

// newModelWatcher returns the reload watcher, or nil when watching is off.
func newModelWatcher(cfg *config.Config, modelPath string) (*watch.Watcher, error) {
	if !cfg.Watch.Enabled {
		return nil, nil
	}
	return watch.New(modelPath, cfg.Watch.Debounce, logger.Named("watch"))
}

func run(ctx context.Context, cfg *config.Config, modelPath string) error {
	log := logger.Named("viewer")

	model, err := scene.LoadGLTF(modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	opts, err := cfg.ViewerOptions(log)
	if err != nil {
		return err
	}
	watcher, err := newModelWatcher(cfg, modelPath)
	if err != nil {
		return err
	}

	// Create terminal
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable mouse mode
	fmt.Fprint(os.Stdout, "\x1b[?1003h") // Enable any-event mouse tracking
	fmt.Fprint(os.Stdout, "\x1b[?1006h") // Enable SGR extended mouse mode

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	renderer := render.NewSceneRenderer(width, height*2)
	v := viewer.New(opts, renderer)
	if err := v.Resize(width, height*2); err != nil {
		log.Warn("initial resize", zap.Error(err))
	}
	v.Load(model)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := &session{
		viewer:   v,
		renderer: renderer,
		hud:      NewHUD(filepath.Base(modelPath), cfg.Viewer.ShowHUD),
		quit:     cancel,
	}
	area := uv.Rect(0, 0, width, height)

	loop := viewer.NewLoop(v, opts.FPS)
	loop.AfterTick = func(v *viewer.Viewer) {
		renderer.Framebuffer().Draw(term, area)
		s.hud.UpdateFPS(time.Now())
		s.hud.Draw(term, area, v, renderer.Triangles)
		if err := term.Display(); err != nil {
			log.Warn("display", zap.Error(err))
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		pumpEvents(gctx, term.Events(), loop, s, func(w, h int) {
			term.Erase()
			term.Resize(w, h)
			area = uv.Rect(0, 0, w, h)
		})
		return nil
	})
	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx, func(path string) {
				m, err := scene.LoadGLTF(path)
				if err != nil {
					log.Warn("reload failed", zap.String("path", path), zap.Error(err))
					return
				}
				loop.Post(func(v *viewer.Viewer) {
					v.Load(m)
					s.hud.SetFilename(filepath.Base(path))
				})
			})
		})
	}

	err = g.Wait()
	loop.Stop()
	return err
}

// pumpEvents translates terminal input into viewer events until ctx is
// done. resize runs on the loop goroutine before the viewer is resized.
func pumpEvents(ctx context.Context, events <-chan uv.Event, loop *viewer.Loop, s *session, resize func(w, h int)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				s.quit()
				return
			}
			if e := translate(ev, s, resize); e != nil {
				loop.Post(e)
			}
		}
	}
}

// translate converts one terminal event into a viewer event, or nil.
func translate(ev uv.Event, s *session, resize func(w, h int)) viewer.Event {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		w, h := ev.Width, ev.Height
		return func(v *viewer.Viewer) {
			if resize != nil {
				resize(w, h)
			}
			if err := v.Resize(w, h*2); err != nil {
				logger.Warn("resize ignored", zap.Error(err))
			}
		}

	case uv.KeyPressEvent:
		b := match(ev.MatchString)
		if b == nil {
			return nil
		}
		return func(*viewer.Viewer) { b.run(s) }

	case uv.MouseClickEvent:
		if ev.Button != uv.MouseLeft {
			return nil
		}
		x, y := cellToPixel(ev.X, ev.Y)
		return func(v *viewer.Viewer) {
			v.PointerMove(x, y)
			v.PointerDown(x, y)
		}

	case uv.MouseReleaseEvent:
		x, y := cellToPixel(ev.X, ev.Y)
		return func(v *viewer.Viewer) { v.PointerUp(x, y) }

	case uv.MouseMotionEvent:
		x, y := cellToPixel(ev.X, ev.Y)
		return func(v *viewer.Viewer) { v.PointerMove(x, y) }

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			return func(v *viewer.Viewer) { v.Wheel(1) }
		case uv.MouseWheelDown:
			return func(v *viewer.Viewer) { v.Wheel(-1) }
		}
	}
	return nil
}
