// ABOUTME: Entry point for the Memorylane player
// ABOUTME: Builds the cobra CLI, loads configuration and starts the application
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/memorylane/memorylane-go/internal/app"
	"github.com/memorylane/memorylane-go/internal/config"
	"github.com/memorylane/memorylane-go/internal/logger"
	"github.com/memorylane/memorylane-go/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const rootLongDesc = `Memorylane plays recorded memories from a folder.

Pick a memory and press enter to play it, enter again to pause.
Left and right jump back or ahead 15 seconds.

Configuration is read from ~/.memorylane/config.toml and MEMORYLANE_*
environment variables; flags override both.`

// flagKeys maps CLI flags to config keys
var flagKeys = map[string]string{
	"dir":      "library.dir",
	"engine":   "audio.engine",
	"remote":   "remote.enabled",
	"log-file": "log.file",
	"debug":    "log.debug",
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string
	var noTUI bool

	cmd := &cobra.Command{
		Use:          "memorylane",
		Short:        "Memorylane - tap to play memories",
		Long:         rootLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, configDir, !noTUI, func(ctx context.Context, a *app.App) error {
				return a.Run(ctx)
			})
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("dir", ".", "Folder of memory recordings")
	flags.StringVar(&configDir, "config-dir", "", "Config directory (default ~/.memorylane)")
	flags.String("engine", config.EngineOto, "Audio engine: oto or beep")
	flags.String("log-file", "memorylane.log", "Log file path")
	flags.BoolP("debug", "d", false, "Enable debug logging")
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Disable TUI, use streaming logs instead")
	cmd.Flags().Bool("remote", false, "Serve the remote control websocket")

	cmd.AddCommand(newPlayCmd(&configDir), newVersionCmd())
	return cmd
}

func newPlayCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "play <file-or-url>",
		Short: "Play one recording to the end",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, *configDir, false, func(ctx context.Context, a *app.App) error {
				return a.Play(ctx, args[0])
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.Product, version.Version)
		},
	}
}

// run loads configuration, sets up logging and runs fn until a signal arrives
func run(cmd *cobra.Command, configDir string, useTUI bool, fn func(context.Context, *app.App) error) error {
	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
	settings, err := config.Load(v)
	if err != nil {
		return err
	}

	logFile, err := logger.OpenFile(settings.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	log := logger.ForMode(settings.Log.Debug, useTUI, logFile)
	defer func() { _ = log.Sync() }()

	if !useTUI {
		log.Info("starting",
			zap.String("product", version.Product),
			zap.String("version", version.Version),
			zap.String("engine", settings.Audio.Engine))
	}

	a, err := app.New(app.Config{
		Settings: settings,
		UseTUI:   useTUI,
		Logger:   log,
	})
	if err != nil {
		log.Error("failed to start", zap.Error(err))
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("error during shutdown", zap.Error(err))
		}
		log.Info("stopped")
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return fn(ctx, a)
}
