// Package watcher observes the local files a build touched, coalesces
// filesystem events with a 150ms debounce, and drives a full re-run of
// the importer+resolver pipeline on fire.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"reqcraft/internal/build"
	"reqcraft/internal/model"
)

const debounceDelay = 150 * time.Millisecond

// relevantSuffixes mirrors the importer's own dispatch suffixes: only
// files that could actually have contributed to the merged tree trigger a
// rebuild. Remote imports are never watched.
var relevantSuffixes = []string{".rqc", ".json", ".yaml", ".yml"}

// debouncer coalesces repeated triggers into a single delayed call. A
// single pending function is enough: every fire re-runs the whole build
// regardless of which files changed, so there's no need to track a batch
// of distinct events.
type debouncer struct {
	delay time.Duration
	mu    sync.Mutex
	timer *time.Timer
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Callbacks lets the CLI/server wire the watcher's outcomes without the
// watcher importing internal/server directly.
type Callbacks struct {
	OnSuccess func(*model.ApiModel)
	OnFailure func(message string)
}

// Watcher re-runs internal/build.Run on debounced filesystem changes
// beneath the root file's tree, swapping in the new model on success and
// leaving the previous one in place on failure. The watch set grows on
// every attempt, failed ones included, and never shrinks.
type Watcher struct {
	log      *slog.Logger
	rootPath string
	opts     build.Options
	cb       Callbacks

	fsw       *fsnotify.Watcher
	debouncer debouncer

	mu          sync.Mutex
	watchedDirs map[string]bool
}

func New(log *slog.Logger, rootPath string, opts build.Options, cb Callbacks) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		log: log, rootPath: rootPath, opts: opts, cb: cb,
		fsw:         fsw,
		debouncer:   debouncer{delay: debounceDelay},
		watchedDirs: map[string]bool{},
	}
	return w, nil
}

// Run performs an initial build, starts watching every file it touched,
// then blocks processing filesystem events until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	w.runBuild(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if isRelevant(ev) {
				w.debouncer.trigger(func() { w.runBuild(ctx) })
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "err", err)
		}
	}
}

func isRelevant(ev fsnotify.Event) bool {
	if !(ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(ev.Name))
	for _, s := range relevantSuffixes {
		if ext == s {
			return true
		}
	}
	return false
}

// runBuild re-runs the build pipeline and applies its outcome. The watch
// set grows on every attempt and never shrinks on failure: files that
// disappeared stay watched so their return is observed.
func (w *Watcher) runBuild(ctx context.Context) {
	res := build.Run(ctx, w.rootPath, w.opts)
	w.growWatchSet(res.Watched)

	if res.Diags.HasErrors() {
		msg := "build failed"
		if first := res.Diags.First(); first != nil {
			msg = first.Render("")
		}
		w.log.Warn("rebuild failed, retaining previous model", "err", msg)
		if w.cb.OnFailure != nil {
			w.cb.OnFailure(msg)
		}
		return
	}

	w.log.Info("rebuild succeeded", "endpoints", len(res.Model.Endpoints))
	if w.cb.OnSuccess != nil {
		w.cb.OnSuccess(res.Model)
	}
}

// growWatchSet adds fsnotify watches for any directory not already
// watched. Directories already registered are left alone; none are ever
// removed, matching the "not shrunk on failure" rule for the simple case
// of directories that also hold files besides the one that disappeared.
func (w *Watcher) growWatchSet(paths []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range paths {
		dir := filepath.Dir(p)
		if w.watchedDirs[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			w.log.Warn("failed to watch directory", "dir", dir, "err", err)
			continue
		}
		w.watchedDirs[dir] = true
	}
}
