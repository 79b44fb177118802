package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/tbeckett/grammarsmith/internal/config"
)

var watchCmd = &cobra.Command{
	Use:   "watch <manifest>",
	Short: "Regenerate the extension whenever the manifest changes",
	Long: `Watch runs an initial generation, then re-runs it every time the
grammar manifest changes on disk. Changes are debounced so editors that
write in multiple steps trigger a single regeneration.

Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Output directory (default from config)")
	watchCmd.Flags().IntVar(&generatePool, "pool", 0, "Worker pool size (default: CPU count, capped)")
	watchCmd.Flags().DurationVar(&generateTimeout, "timeout", 0, "Per-task timeout (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyGenerateFlags(cmd, cfg)
	// The progress view would fight the terminal across repeated runs.
	cfg.TUI.Enabled = false

	manifestPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve manifest path: %w", err)
	}

	regenerate := func() {
		fmt.Printf("\n%s %s\n", color.CyanString("generating"), manifestPath)
		if _, err := generateOnce(cmd.Context(), manifestPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		}
	}

	regenerate()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: many editors save by renaming
	// a temp file over the original, which drops a file-level watch.
	if err := watcher.Add(filepath.Dir(manifestPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(manifestPath), err)
	}

	fmt.Printf("%s %s (Ctrl+C to stop)\n", color.CyanString("watching"), manifestPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var debounce *time.Timer
	debounceCh := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != manifestPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(cfg.Watch.Debounce, func() {
				select {
				case debounceCh <- struct{}{}:
				default:
				}
			})

		case <-debounceCh:
			if _, err := os.Stat(manifestPath); err != nil {
				continue
			}
			regenerate()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)

		case <-sigCh:
			fmt.Println("\nstopped")
			return nil

		case <-cmd.Context().Done():
			return nil
		}
	}
}
