package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/typegraph/pkg/pipeline"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// watchFile calls onChange after path is written, created or renamed onto,
// until ctx is cancelled. The parent directory is watched so that atomic
// saves (write temp file, rename over the original) are seen.
func watchFile(ctx context.Context, path string, logger *log.Logger, onChange func()) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	logger.Debug("watcher: started", "path", target)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			timerCh = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(watchDebounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Debug("watcher: stopped", "path", target)
			return nil

		case <-timerCh:
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if name, err := filepath.Abs(ev.Name); err != nil || name != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				logger.Debug("watcher: event", "op", ev.Op.String())
				schedule()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", "error", err)
		}
	}
}

// watchRender renders input, then re-renders on every change. Render
// errors are reported and watching continues.
func (c *CLI) watchRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	render := func() {
		if err := c.runRender(ctx, input, opts, output, noCache); err != nil {
			printError("%v", err)
		}
	}
	render()
	printInfo("Watching %s (ctrl+c to stop)", input)
	return watchFile(ctx, input, c.Logger, render)
}
