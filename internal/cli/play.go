package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/tui"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	SessionFlags
	Step    float64
	LogFile string

	// NewScreen returns an initialised screen (for testing).
	// If nil, the terminal is used.
	NewScreen func() (tcell.Screen, error)
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	return newPlayCommand(&PlayOptions{RootOptions: rootOpts})
}

func newPlayCommand(opts *PlayOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <level>",
		Short: "Play a level in the terminal",
		Long: `Play a level in the terminal.

Keys:
  arrows, hjkl   move the cursor
  tab, 1 2 3     change aura
  u              undo
  r              restart
  q, esc         quit

The screen belongs to the game while it runs, so logs go to --log.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Step, "step", tui.DefaultStep, "distance moved per key press")
	cmd.Flags().StringVar(&opts.LogFile, "log", "", "write logs to this file")
	opts.SessionFlags.Register(cmd)

	return cmd
}

func runPlay(opts *PlayOptions, path string, cmd *cobra.Command) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var logOut io.Writer = io.Discard
	if opts.LogFile != "" {
		f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open log file", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := NewLogger(opts.RootOptions, logOut)

	s, release, err := opts.SessionFlags.Start(ctx, path, logger)
	if err != nil {
		return err
	}
	defer release()

	screen, err := openScreen(opts.NewScreen)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open terminal", err)
	}
	defer screen.Fini()

	err = tui.New(screen, s, tui.WithStep(opts.Step), tui.WithLogger(logger)).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "play failed", err)
	}
	logger.Info("play ended", "session", s.ID(), "seq", s.Seq(), "solved", s.Solved(), slog.Bool("interrupted", err != nil))
	return nil
}

func openScreen(factory func() (tcell.Screen, error)) (tcell.Screen, error) {
	if factory != nil {
		return factory()
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}
