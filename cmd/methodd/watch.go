package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/interpretivelabs/methodd/internal/state"
)

// watchDebounce coalesces the write-then-rename burst an atomic state
// commit produces into one regeneration.
const watchDebounce = 250 * time.Millisecond

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate the rules whenever the project state changes",
	Long: `Watch the project's state file and regenerate the rule artifact on
every change, so external edits and concurrent sessions keep the rules
current. Runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		if !e.store.Exists() {
			return state.NewError(state.CodeConfigNotFound,
				"project state not found at %s; initialize the project first", e.store.StatePath())
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return state.WrapError(state.CodeInternal, err, "failed to create watcher")
		}
		defer watcher.Close()

		// Watch the directory, not the file: the atomic rename replaces
		// the inode on every commit.
		if err := watcher.Add(e.store.Dir()); err != nil {
			return state.WrapError(state.CodeInternal, err, "failed to watch %s", e.store.Dir())
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e.logger.Info("watching project state", zap.String("path", e.store.StatePath()))

		var timer *time.Timer
		regen := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Name != e.store.StatePath() {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					select {
					case regen <- struct{}{}:
					default:
					}
				})
			case <-regen:
				art, err := e.rules().Regenerate()
				if err != nil {
					e.logger.Warn("rule regeneration failed", zap.Error(err))
					continue
				}
				e.logger.Info("rules regenerated",
					zap.Int("rules", len(art.Rules)),
					zap.String("phase", string(art.CurrentPhase)))
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				e.logger.Warn("watch error", zap.Error(err))
			}
		}
	},
}
