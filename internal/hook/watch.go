package hook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/thiagokokada/pushguard/internal/debounce"
	"github.com/thiagokokada/pushguard/internal/header"
)

var watchDebounceDelay = 250 * time.Millisecond

// ReadMessage reads a commit message file the way git commit leaves it:
// lines starting with '#' are comments and are dropped.
func ReadMessage(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	var lines []string
	for _, l := range difflib.SplitLines(text) {
		l = strings.TrimRight(l, "\r\n")
		if strings.HasPrefix(l, "#") {
			continue
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// CheckMessage validates the message file at path.
func CheckMessage(path string, v *header.Validator) (header.CommitHeader, error) {
	lines, err := ReadMessage(path)
	if err != nil {
		return nil, err
	}
	return v.Validate(lines)
}

// Watch validates the file at path now and again after every change, writing
// the outcome to out, until ctx is cancelled.
func Watch(ctx context.Context, path string, v *header.Validator, out io.Writer) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Error("watcher close", slog.Any("error", err))
		}
	}()
	// Editors often replace the file on save, so watch its directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var mu sync.Mutex
	check := func() {
		mu.Lock()
		defer mu.Unlock()
		if _, err := CheckMessage(abs, v); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return
			}
			_ = Report(out, err)
			return
		}
		fmt.Fprintf(out, "%s: ok\n", path)
	}
	check()

	d := debounce.New(watchDebounceDelay, check)
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			d.Trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}
