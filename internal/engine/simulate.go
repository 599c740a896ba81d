package engine

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scrollsite/internal/config"
	"github.com/ivlev/scrollsite/internal/director"
	"github.com/ivlev/scrollsite/internal/layout"
	"github.com/ivlev/scrollsite/internal/renderer"
	"github.com/ivlev/scrollsite/internal/system"
)

// Report summarizes one headless run of a scene.
type Report struct {
	Page     string
	Frames   int
	Writes   int
	Position float64
	Themes   []string
	Final    map[string]string // target -> CSS of its merged style
	Elapsed  time.Duration
}

// Simulate scrolls page from top to bottom without a browser, feeding
// evenly spaced wheel input, and prints the style writes of every frame.
func Simulate(ctx context.Context, page *director.Page, p config.SimulationParams, scfg config.ScrollConfig, w io.Writer, log *zap.Logger) (*Report, error) {
	started := time.Now()
	sc := page.Scene

	if p.Width > 0 && p.Height > 0 {
		scfg.ViewportWidth, scfg.ViewportHeight = p.Width, p.Height
	} else if sc.Viewport.Width > 0 {
		scfg.ViewportWidth, scfg.ViewportHeight = sc.Viewport.Width, sc.Viewport.Height
	}
	if p.FPS > 0 {
		scfg.FPS = p.FPS
	}
	if scfg.FPS <= 0 {
		scfg.FPS = 60
	}
	if p.Duration <= 0 {
		p.Duration = 4
	}

	stage := NewStage(scfg, log, nil)
	defer stage.Stop()

	report := &Report{Page: sc.Page, Final: make(map[string]string)}
	unsubTheme := stage.Theme.Subscribe(func(t director.Theme) {
		name := t.Name
		if name == "" {
			name = t.Background.Hex()
		}
		report.Themes = append(report.Themes, name)
	})
	defer unsubTheme()

	scope := stage.Mount(page)
	defer scope.Close()

	// Mount applies the scene viewport; a size given on the command line
	// wins over it.
	if p.Width > 0 && p.Height > 0 {
		stage.Tracker.SetViewport(layout.Viewport{Width: p.Width, Height: p.Height}, 0)
		stage.Tracker.RefreshAll()
		stage.Scroll.SetLimit(sc.Height - p.Height)
	}

	limit := sc.Height - stage.Tracker.Viewport().Height
	distance := p.Distance
	if distance <= 0 {
		distance = limit
	}
	if distance <= 0 {
		return nil, fmt.Errorf("scene %s: nothing to scroll (height %.0f, viewport %.0f)", sc.Page, sc.Height, stage.Tracker.Viewport().Height)
	}

	frameDur := time.Second / time.Duration(scfg.FPS)
	inputFrames := int(math.Ceil(p.Duration * float64(scfg.FPS)))
	settleFrames := int(ScrollOptions(scfg).Duration/frameDur) + scfg.FPS
	perFrame := distance / float64(inputFrames)

	fmt.Fprintf(w, "[*] Сцена: %s | Таймлайнов: %d | Прокрутка: %.0fpx за %.1fs @ %d FPS\n",
		sc.Page, len(page.Timelines), distance, p.Duration, scfg.FPS)

	seen := make(map[string]int, len(page.Recorders))
	names := make([]string, 0, len(page.Recorders))
	for name := range page.Recorders {
		names = append(names, name)
	}
	sort.Strings(names)

	for f := 1; f <= inputFrames+settleFrames; f++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f <= inputFrames {
			stage.Scroll.Wheel(perFrame)
		}
		now := time.Duration(f) * frameDur
		stage.Step(now)
		report.Frames++

		for _, name := range names {
			rec := page.Recorders[name]
			for _, st := range rec.Writes[seen[name]:] {
				report.Writes++
				if p.Verbose {
					fmt.Fprintf(w, "[>] f=%04d t=%.3fs y=%7.1f %-16s { %s }\n",
						f, now.Seconds(), stage.Scroll.Position(), name, renderer.CSS(st))
				}
			}
			seen[name] = len(rec.Writes)
		}
	}

	for _, name := range names {
		report.Final[name] = renderer.CSS(page.Recorders[name].Current())
	}
	report.Position = stage.Scroll.Position()
	report.Elapsed = time.Since(started)

	fmt.Fprintf(w, "[+++] %s: кадров %d, записей стилей %d, позиция %.1f\n", sc.Page, report.Frames, report.Writes, report.Position)
	return report, nil
}

// SimulateAll runs several scenes in parallel. Each run prints into its own
// buffer; buffers are flushed to w whole so outputs never interleave.
func SimulateAll(ctx context.Context, pages []*director.Page, p config.SimulationParams, scfg config.ScrollConfig, workers int, w io.Writer, log *zap.Logger) ([]*Report, error) {
	if workers <= 0 {
		workers = 4
	}
	reports := make([]*Report, len(pages))

	var mu sync.Mutex
	done := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			buf := system.GetBuffer()
			defer system.PutBuffer(buf)

			r, err := Simulate(ctx, page, p, scfg, buf, log)
			if err != nil {
				return fmt.Errorf("simulate %s: %w", page.Scene.Page, err)
			}
			reports[i] = r

			mu.Lock()
			defer mu.Unlock()
			done++
			if _, err := buf.WriteTo(w); err != nil {
				return err
			}
			fmt.Fprintf(w, "[>] Ready: %d/%d\n", done, len(pages))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
