package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"integral-solver/config"

	"github.com/spf13/cobra"
)

// logOutputAnnotation set to "stderr" on a command moves its logs off stdout.
const logOutputAnnotation = "log-output"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "integral-solver",
	Short: "Symbolic indefinite integration server and clients",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(logOutput(cmd))
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default config.toml)")
}

func logOutput(cmd *cobra.Command) io.Writer {
	if cmd.Annotations[logOutputAnnotation] == "stderr" {
		return cmd.ErrOrStderr()
	}
	return os.Stdout
}

func setupLogging(w io.Writer) {
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
	config.InitConfig(configPath)
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: config.C.SlogLevel(),
	})))
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// a failed solve has already printed its outcome
		if !errors.Is(err, errSolveFailed) {
			slog.Error("failed to execute command", "err", err)
		}
		cancel()
		os.Exit(1)
	}
}
