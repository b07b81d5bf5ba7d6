// Package watch reruns the documentation check whenever files under the root
// change, with an optional periodic full run and Prometheus endpoint.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docscheck/internal/config"
	"git.home.luguber.info/inful/docscheck/internal/logfields"
)

// Watcher monitors a documentation root and invokes run after changes settle.
type Watcher struct {
	root           string
	cfg            config.WatchConfig
	run            func(context.Context)
	watcher        *fsnotify.Watcher
	changeChan     chan struct{}
	debounce       time.Duration
	metricsHandler http.Handler
}

// NewWatcher creates a watcher over root. run is invoked once up front and
// again after every debounced change burst.
func NewWatcher(root string, cfg config.WatchConfig, run func(context.Context)) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	debounce, err := time.ParseDuration(cfg.Debounce)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("invalid watch debounce %q: %w", cfg.Debounce, err)
	}

	return &Watcher{
		root:       absRoot,
		cfg:        cfg,
		run:        run,
		watcher:    fsw,
		changeChan: make(chan struct{}, 1),
		debounce:   debounce,
	}, nil
}

// WithMetricsHandler serves handler on the configured metrics address.
func (w *Watcher) WithMetricsHandler(h http.Handler) *Watcher {
	w.metricsHandler = h
	return w
}

// Run blocks until ctx is cancelled, rechecking on changes and on the
// configured interval.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addDirs(w.root); err != nil {
		return err
	}
	slog.Info("Watching documentation root", logfields.Root(w.root))

	scheduler, err := w.startScheduler(ctx)
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { _ = scheduler.Shutdown() }()
	}

	metricsSrv := w.startMetricsServer()
	if metricsSrv != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	go w.watchLoop(ctx)

	w.run(ctx)
	w.debounceLoop(ctx)
	return nil
}

// addDirs registers root and every subdirectory. fsnotify does not recurse.
func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			// New directories need their own watch before anything inside
			// them produces events.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if err := w.addDirs(event.Name); err == nil {
					slog.Debug("Watching new path", logfields.Path(event.Name))
				}
			}
			w.triggerChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) triggerChange() {
	select {
	case w.changeChan <- struct{}{}:
	default:
	}
}

// debounceLoop coalesces change bursts: the check runs once the root has been
// quiet for the debounce window.
func (w *Watcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.changeChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			slog.Info("Change detected, rechecking", logfields.Root(w.root))
			w.run(ctx)
		}
	}
}

func (w *Watcher) startScheduler(ctx context.Context) (gocron.Scheduler, error) {
	if w.cfg.Interval == "" {
		return nil, nil
	}
	interval, err := time.ParseDuration(w.cfg.Interval)
	if err != nil {
		return nil, fmt.Errorf("invalid watch interval %q: %w", w.cfg.Interval, err)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			slog.Info("Periodic recheck", logfields.Root(w.root))
			w.run(ctx)
		}),
		gocron.WithName("periodic-recheck"),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule periodic recheck: %w", err)
	}

	scheduler.Start()
	return scheduler, nil
}

func (w *Watcher) startMetricsServer() *http.Server {
	if w.cfg.MetricsAddr == "" || w.metricsHandler == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", w.metricsHandler)
	srv := &http.Server{Addr: w.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		slog.Info("Serving metrics", slog.String("addr", w.cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
	return srv
}
