package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nox-hq/ctrlmatrix/core"
	"github.com/nox-hq/ctrlmatrix/core/report"
	"golang.org/x/time/rate"
)

func runWatch(g *globals, args []string) int {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	var (
		prr        string
		matrixPath string
		debounce   time.Duration
	)
	fs.StringVar(&prr, "prr", "", "path to the PRR requirements document")
	fs.StringVar(&matrixPath, "matrix", "", "path to the control matrix CSV")
	fs.DurationVar(&debounce, "debounce", 500*time.Millisecond, "debounce interval for file changes")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if prr == "" || matrixPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: ctrlmatrix watch --prr <file> --matrix <file> [--debounce 500ms]")
		return 2
	}

	opts, err := g.options()
	if err != nil {
		return reportError(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating watcher: %v\n", err)
		return 2
	}
	defer watcher.Close()

	// Editors replace files on save, so watch the parent directories and
	// filter events by name.
	watched := watchTargets(prr, matrixPath)
	for dir := range dirsOf(watched) {
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(os.Stderr, "error: watching %s: %v\n", dir, err)
			return 2
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("watch: validating %s against %s (debounce: %s)\n", matrixPath, prr, debounce)
	printValidation(prr, matrixPath, opts)

	var mu sync.Mutex
	var timer *time.Timer

	resetTimer := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			fmt.Print("\033[2J\033[H") // clear terminal
			fmt.Printf("watch: re-validating %s\n", matrixPath)
			printValidation(prr, matrixPath, opts)
		})
	}

	errLog := rate.Sometimes{First: 3, Interval: 10 * time.Second}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				resetTimer()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			errLog.Do(func() {
				fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
			})
		case <-sigCh:
			fmt.Println("\nwatch: stopped")
			return 0
		}
	}
}

// watchTargets returns the cleaned paths whose events trigger a re-run.
func watchTargets(paths ...string) map[string]bool {
	out := make(map[string]bool, len(paths))
	for _, p := range paths {
		out[filepath.Clean(p)] = true
	}
	return out
}

func dirsOf(files map[string]bool) map[string]struct{} {
	dirs := make(map[string]struct{}, len(files))
	for f := range files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	return dirs
}

func printValidation(prr, matrixPath string, opts core.Options) {
	result, err := core.Validate(context.Background(), prr, matrixPath, opts)
	if err != nil {
		reportError(err)
		return
	}
	if err := (&report.TextReporter{Styled: isTerminal()}).Write(os.Stdout, result); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}
