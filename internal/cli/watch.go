package cli

import (
	"context"
	"crypto/md5"
	"os"
	"time"

	"github.com/aretw0/landsketch"
	"github.com/aretw0/landsketch/pkg/adapters/memory"
)

// WatchFile polls path every interval and sends its name whenever the
// content changes. The channel closes when ctx is done.
func WatchFile(ctx context.Context, path string, interval time.Duration) <-chan string {
	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		last := fileHash(path)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h := fileHash(path)
				if h == last {
					continue
				}
				last = h
				select {
				case ch <- path:
				default:
				}
			}
		}
	}()
	return ch
}

func fileHash(path string) [md5.Size]byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return [md5.Size]byte{}
	}
	return md5.Sum(data)
}

// WatchPaint replays the script at path, hands the studio to render, and
// repeats every time the file changes until ctx is cancelled.
func (a *App) WatchPaint(ctx *SignalContext, path string, interval time.Duration, render func(*landsketch.Studio) error) error {
	changes := WatchFile(ctx, path, interval)
	PrintSystemMessage(a.Out, "Watching '%s'.", path)

	for {
		studio, n, err := a.Paint(ctx, memory.NewStore(), path)
		if err != nil {
			a.Logger.Error("Replay failed", "path", path, "err", err)
			PrintSystemMessage(a.Out, "Replay failed: %v", err)
		} else {
			a.Logger.Info("Script replayed", "path", path, "strokes", n)
			if err := render(studio); err != nil {
				return err
			}
			studio.Unmount()
		}

		PrintSystemMessage(a.Out, "Waiting for changes...")
		select {
		case <-ctx.Done():
			a.Logger.Info("Stopping watcher (signal received)", "signal", ctx.Signal())
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			PrintSystemMessage(a.Out, "Change detected in '%s'.", path)
		}
	}
}
