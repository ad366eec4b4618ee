package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"

	"github.com/llehouerou/starlight/internal/bridge"
	"github.com/llehouerou/starlight/internal/config"
	"github.com/llehouerou/starlight/internal/errmsg"
	"github.com/llehouerou/starlight/internal/icons"
	"github.com/llehouerou/starlight/internal/monitor"
	"github.com/llehouerou/starlight/internal/mpris"
	"github.com/llehouerou/starlight/internal/notify"
	"github.com/llehouerou/starlight/internal/playback"
	"github.com/llehouerou/starlight/internal/player"
	"github.com/llehouerou/starlight/internal/source"
	"github.com/llehouerou/starlight/internal/state"
	"github.com/llehouerou/starlight/internal/stderr"
)

type globalOptions struct {
	configPath string
	logFile    string
	logLevel   string
}

// app holds everything one command run needs.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	logClose  func() error
	module    *playback.Module
	store     *state.Manager
	saved     *state.PlaybackState
	mpris     *mpris.Adapter
	recSub    *playback.Subscription
	recorder  chan struct{}
	annSub    *playback.Subscription
	announcer chan struct{}
}

// quietLogs discards logs unless a log file is set; the terminal monitor owns
// the screen.
func newApp(opts globalOptions, quietLogs bool) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	// Native audio libraries write to fd 2; capture before the device opens.
	if err := stderr.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "stderr capture unavailable:", err)
	}

	log, logClose, err := newLogger(opts.logFile, cfg.SlogLevel(), quietLogs)
	if err != nil {
		return nil, err
	}
	stderr.Forward(log)

	a := &app{cfg: cfg, log: log, logClose: logClose}

	pb := cfg.GetPlaybackConfig()
	modOpts := playback.Options{
		ProgressInterval: pb.ProgressInterval,
		Volume:           *pb.Volume,
		Rate:             pb.Rate,
		Logger:           log.With("component", "playback"),
	}

	if !cfg.State.Disabled {
		store, err := state.Open()
		if err != nil {
			log.Warn(errmsg.Format(errmsg.OpStateLoad, err))
		} else {
			a.store = store
			if saved, err := store.GetPlayback(); err == nil {
				a.saved = saved
				modOpts.Volume = saved.Volume
				modOpts.Rate = saved.Rate
			} else {
				log.Warn(errmsg.Format(errmsg.OpStateLoad, err))
			}
		}
	}

	remote := cfg.GetRemoteConfig()
	resolver := source.NewResolver(source.Options{
		Timeout:  remote.Timeout,
		MaxBytes: remote.MaxBytes,
		TempDir:  remote.TempDir,
		Logger:   log.With("component", "source"),
	})

	a.module = playback.New(player.New(), resolver, modOpts)

	if a.store != nil {
		a.recorder = make(chan struct{})
		a.recSub = a.module.Subscribe()
		go func() {
			defer close(a.recorder)
			a.store.Record(a.recSub, a.module.Status, log.With("component", "state"))
		}()
	}

	if cfg.MPRISEnabled() {
		adapter, err := mpris.New(a.module)
		if err != nil {
			log.Warn("mpris unavailable", "error", err)
		} else {
			a.mpris = adapter
		}
	}

	if cfg.Notifications.Enabled {
		n, err := notify.New()
		if err != nil {
			log.Warn("desktop notifications unavailable", "error", err)
		} else {
			a.announcer = make(chan struct{})
			a.annSub = a.module.Subscribe()
			go func() {
				defer close(a.announcer)
				notify.Announce(a.annSub, n, log.With("component", "notify"))
			}()
		}
	}

	return a, nil
}

// Close saves the final position, then releases the module and the store.
func (a *app) Close() {
	if a.recSub != nil {
		a.module.Unsubscribe(a.recSub)
		<-a.recorder
		a.store.SavePlayback(state.Snapshot(a.module.Status()))
	}
	if a.annSub != nil {
		a.module.Unsubscribe(a.annSub)
		<-a.announcer
	}
	if a.mpris != nil {
		_ = a.mpris.Close()
	}
	_ = a.module.Close()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn(errmsg.Format(errmsg.OpStateSave, err))
		}
	}
	if a.logClose != nil {
		_ = a.logClose()
	}
}

func loadConfig(opts globalOptions) (*config.Config, error) {
	if opts.configPath != "" {
		if _, err := os.Stat(opts.configPath); err != nil {
			return nil, err
		}
		return config.LoadFrom(opts.configPath)
	}
	return config.Load()
}

func newLogger(path string, level slog.Level, quiet bool) (*slog.Logger, func() error, error) {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return slog.New(tint.NewHandler(f, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
			NoColor:    true,
		})), f.Close, nil
	}
	if quiet {
		return slog.New(slog.DiscardHandler), nil, nil
	}
	return slog.New(tint.NewHandler(stderr.Original(), &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})), nil, nil
}

func runStdio(ctx context.Context, opts globalOptions) error {
	a, err := newApp(opts, false)
	if err != nil {
		return err
	}
	defer a.Close()

	a.log.Info("bridge ready", "transport", "stdio")
	done := make(chan error, 1)
	go func() {
		done <- bridge.ServeStdio(ctx, a.module, os.Stdin, os.Stdout, a.log.With("component", "bridge"))
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return nil
	}
}

func runServe(ctx context.Context, opts globalOptions, listen string) error {
	a, err := newApp(opts, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if listen == "" {
		listen = a.cfg.ListenAddr()
	}
	return bridge.ListenAndServe(ctx, listen, a.module, a.log.With("component", "bridge"))
}

var errNothingToPlay = errors.New("no source given and no saved session to resume")

func runPlay(ctx context.Context, opts globalOptions, locator string, resume bool) error {
	a, err := newApp(opts, true)
	if err != nil {
		return err
	}
	defer a.Close()

	var resumeAt time.Duration
	if locator == "" && resume && a.saved != nil {
		locator = a.saved.Source
		resumeAt = a.saved.Position
	}
	if locator == "" {
		return errNothingToPlay
	}

	sub := a.module.Subscribe()
	if err := a.module.Load(ctx, locator); err != nil {
		return err
	}
	if !source.IsRemote(locator) {
		if resumeAt > 0 {
			a.module.Seek(resumeAt)
		}
		if err := a.module.Play(); err != nil {
			return err
		}
	}

	icons.Init(a.cfg.Monitor.Icons)
	mon := monitor.New(a.module, sub)
	if source.IsRemote(locator) {
		mon.Autoplay = true
		mon.ResumeAt = resumeAt
	}
	prog := tea.NewProgram(mon, tea.WithContext(ctx))
	_, err = prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
