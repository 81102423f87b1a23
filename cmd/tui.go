package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"integral-solver/client"
	"integral-solver/config"
	"integral-solver/render"
	"integral-solver/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var tuiFlags struct {
	server  string
	format  string
	logFile string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive terminal solver backed by the solve service",

	// the alternate screen owns stdout
	Annotations: map[string]string{logOutputAnnotation: "stderr"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.C
		if tuiFlags.logFile != "" {
			f, err := os.OpenFile(tuiFlags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer f.Close()
			slog.SetDefault(slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
		} else {
			slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		}

		url := tuiFlags.server
		if url == "" {
			url = cfg.ServerURL
		}
		name := tuiFlags.format
		if name == "" {
			name = cfg.Formatter
		}
		f, err := render.Lookup(name)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		c := client.New(url, client.WithTimeout(cfg.ClientTimeout))
		slog.Info("Starting terminal solver", "server", c.BaseURL(), "formatter", f.Name())
		p := tea.NewProgram(ui.NewModel(ctx, c, f), tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	},
}

func init() {
	f := tuiCmd.Flags()
	f.StringVarP(&tuiFlags.server, "server", "s", "", "solve service URL (overrides server_url)")
	f.StringVarP(&tuiFlags.format, "format", "f", "", "formatter for results")
	f.StringVar(&tuiFlags.logFile, "log-file", "", "write logs to this file instead of discarding them")
	rootCmd.AddCommand(tuiCmd)
}
