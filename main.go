package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llehouerou/starlight/internal/stderr"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	stderr.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "starlight:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:     "starlight",
		Short:   "Native audio playback bridge",
		Version: appVersion(),
		Long: `starlight plays audio on behalf of a scripting layer.

Commands arrive as newline-delimited JSON and replies and events go back the
same way, over stdin/stdout (default) or a websocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStdio(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: XDG config dir, then ./config.toml)")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log_level from the config")

	root.AddCommand(stdioCmd(&opts))
	root.AddCommand(serveCmd(&opts))
	root.AddCommand(playCmd(&opts))
	return root
}

func stdioCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve the bridge over stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStdio(cmd.Context(), *opts)
		},
	}
}

func serveCmd(opts *globalOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the bridge over websocket",
		Long: `Serve the bridge over websocket at /bridge.

Every connected client can send commands and receives all events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *opts, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, 127.0.0.1:7655)")
	return cmd
}

func playCmd(opts *globalOptions) *cobra.Command {
	var resume bool
	cmd := &cobra.Command{
		Use:   "play [SOURCE]",
		Short: "Play a source in a terminal monitor",
		Long: `Play a file path, file:// URI, http(s):// URL or data: URI in a terminal
monitor. With --resume and no SOURCE, the last saved session is reopened at
its saved position.

Keys: space play/pause, left/right seek 5s, +/- volume, m mute,
[/] rate, s stop, o open another source, q quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var locator string
			if len(args) == 1 {
				locator = args[0]
			}
			return runPlay(cmd.Context(), *opts, locator, resume)
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "resume the last session")
	return cmd
}

func appVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown-(no build info)"
	}
	if bi.Main.Version == "" {
		return "unknown-(no version)"
	}
	return bi.Main.Version
}
