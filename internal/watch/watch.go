// Package watch rebuilds the site when sources, templates or static assets
// change, and optionally on a fixed schedule.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Rebuild triggers.
const (
	TriggerInitial  = "initial"
	TriggerFSNotify = "fsnotify"
	TriggerSchedule = "schedule"
)

// BuildFunc runs one build. Errors are logged and do not stop the watcher.
type BuildFunc func(ctx context.Context, trigger string) error

// Options configures a Watcher.
type Options struct {
	Dirs     []string // watched recursively; missing directories are skipped
	Ignore   []string // directories whose events are dropped, e.g. the output root
	Debounce time.Duration
	Schedule string // Go duration or cron expression; empty disables scheduled builds
	Initial  bool   // build once before watching
	Logger   *slog.Logger
}

// OptionsFromConfig watches the source, template and static directories and
// ignores the output root.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dirs:     []string{cfg.SourceRoot(), cfg.TemplatesDir(), cfg.StaticPath()},
		Ignore:   []string{cfg.OutputDir()},
		Debounce: cfg.Watch.DebounceDuration(),
		Schedule: cfg.Watch.Schedule,
		Initial:  true,
	}
}

// Watcher serializes rebuilds requested by file events and the scheduler.
type Watcher struct {
	opts   Options
	build  BuildFunc
	logger *slog.Logger

	requests chan string

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a Watcher.
func New(opts Options, build BuildFunc) *Watcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	return &Watcher{opts: opts, build: build, logger: logger, requests: make(chan string, 1)}
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fsw.Close() }()

	watched := 0
	for _, dir := range w.opts.Dirs {
		n, err := w.addDirsRecursive(fsw, dir)
		if err != nil {
			return err
		}
		watched += n
	}
	w.logger.Info("Watching for changes", logfields.Count(watched))

	if w.opts.Schedule != "" {
		s, err := w.startScheduler()
		if err != nil {
			return err
		}
		defer func() {
			if err := s.Shutdown(); err != nil {
				w.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	if w.opts.Initial {
		w.request(TriggerInitial)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(workerCtx)
	}()
	defer func() {
		w.stopTimer()
		cancel()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// worker runs builds one at a time. A request arriving during a build waits
// in the buffered channel, so bursts collapse into a single follow-up build.
func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case trigger := <-w.requests:
			if ctx.Err() != nil {
				return
			}
			w.logger.Info("Rebuilding site", logfields.Trigger(trigger))
			if err := w.build(ctx, trigger); err != nil {
				w.logger.Warn("Rebuild failed", logfields.Trigger(trigger), logfields.Error(err))
			}
		}
	}
}

func (w *Watcher) request(trigger string) {
	select {
	case w.requests <- trigger:
	default:
		// already pending
	}
}

// trigger debounces file events into one rebuild request.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() { w.request(TriggerFSNotify) })
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod || w.shouldIgnore(ev.Name) {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if _, err := w.addDirsRecursive(fsw, ev.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
			}
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.trigger()
}

// shouldIgnore drops hidden files, editor swap files and anything below an ignored directory.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp") {
		return true
	}
	for _, dir := range w.opts.Ignore {
		if dir == "" {
			continue
		}
		rel, err := filepath.Rel(dir, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirsRecursive(fsw *fsnotify.Watcher, root string) (int, error) {
	if root == "" {
		return 0, nil
	}
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug("Skipping missing watch directory", logfields.Path(root))
		return 0, nil
	}
	added := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			return nil
		}
		added++
		return nil
	})
	if err != nil {
		return added, fmt.Errorf("watch %s: %w", root, err)
	}
	return added, nil
}

func (w *Watcher) startScheduler() (gocron.Scheduler, error) {
	def, err := ScheduleDefinition(w.opts.Schedule)
	if err != nil {
		return nil, err
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		def,
		gocron.NewTask(w.request, TriggerSchedule),
		gocron.WithName("scheduled-build"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create scheduled build job: %w", err)
	}
	s.Start()
	w.logger.Info("Scheduled rebuilds enabled", slog.String("schedule", w.opts.Schedule))
	return s, nil
}

// ScheduleDefinition turns a Go duration ("30m") or a five-field cron
// expression into a gocron job definition.
func ScheduleDefinition(schedule string) (gocron.JobDefinition, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return nil, errors.New("empty schedule")
	}
	if d, err := time.ParseDuration(schedule); err == nil {
		if d <= 0 {
			return nil, fmt.Errorf("schedule interval must be positive: %s", schedule)
		}
		return gocron.DurationJob(d), nil
	}
	if len(strings.Fields(schedule)) != 5 {
		return nil, fmt.Errorf("schedule %q is neither a duration nor a cron expression", schedule)
	}
	return gocron.CronJob(schedule, false), nil
}
