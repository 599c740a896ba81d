package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scrollsite/internal/blog"
	"github.com/ivlev/scrollsite/internal/director"
	"github.com/ivlev/scrollsite/internal/engine"
	"github.com/ivlev/scrollsite/internal/metrics"
	"github.com/ivlev/scrollsite/internal/site"
	"github.com/ivlev/scrollsite/internal/system"
)

var previewPage string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blog API, uploads and scenes",
	Long: `Starts the HTTP server. Scenes are loaded from the scenes directory and,
unless disabled, reloaded when their files change. The preview page is kept
mounted on a live stage so scene errors show up in the log as soon as the
file is saved.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&previewPage, "preview", "home", "Scene kept mounted on the live stage (empty disables)")
}

func runServe(cmd *cobra.Command, args []string) error {
	system.InitResourceLimits()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := blog.OpenStore(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	scenes := director.NewDirector(cfg.Scenes.Dir, logger.Named("scenes"))
	if err := os.MkdirAll(cfg.Scenes.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create scenes dir: %w", err)
	}
	if err := scenes.LoadAll(); err != nil {
		logger.Warn("some scenes were not loaded", zap.Error(err))
	}

	reg := metrics.New()
	stage := engine.NewStage(cfg.Scroll, logger.Named("stage"), reg)
	preview := &previewer{stage: stage, page: previewPage, log: logger.Named("preview")}
	if sc, ok := scenes.Scene(previewPage); ok {
		preview.remount(sc)
	}

	uploads := &blog.Uploads{Dir: cfg.Storage.UploadDir, PublicURL: cfg.Server.PublicURL, DPI: cfg.Storage.CoverDPI}
	mux := http.NewServeMux()
	blog.NewHTTPHandler(store, uploads, scenes, reg, logger, cfg.MaxUploadBytes()).
		RegisterHTTPHandlers(cfg.Server.APIPrefix, mux)
	mux.Handle("GET /", reg.Middleware("GET /", site.Handler(scenes)))
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("api", cfg.Server.APIPrefix),
			zap.Strings("scenes", scenes.Pages()), zap.String("version", cfg.BuildVersion))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return stage.Run(ctx)
	})

	if cfg.Scenes.Watch {
		w, err := director.NewWatcher(scenes, cfg.GetScenesDebounce(), logger.Named("watch"))
		if err != nil {
			logger.Warn("scene watching disabled", zap.Error(err))
		} else {
			w.OnReload = func(sc *director.Scene) {
				if strings.EqualFold(sc.Page, previewPage) {
					preview.remount(sc)
				}
			}
			g.Go(func() error { return w.Run(ctx) })
		}
	}

	return g.Wait()
}

// previewer keeps one page mounted on the stage. Remounts are posted so the
// scope is only touched from the frame goroutine.
type previewer struct {
	stage *engine.Stage
	page  string
	log   *zap.Logger
	scope *engine.Scope
}

func (p *previewer) remount(sc *director.Scene) {
	page, err := director.Compile(sc, nil)
	if err != nil {
		p.log.Warn("preview not compiled", zap.String("page", sc.Page), zap.Error(err))
		return
	}
	err = p.stage.Post(func() {
		if p.scope != nil {
			p.scope.Close()
		}
		p.scope = p.stage.Mount(page)
		p.log.Info("preview mounted", zap.String("page", sc.Page), zap.Int("timelines", len(page.Timelines)))
	})
	if err != nil {
		p.log.Warn("preview not mounted", zap.Error(err))
	}
}
