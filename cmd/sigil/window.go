package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sigil/internal/cli"
	"github.com/roach88/sigil/internal/window"
)

type windowOptions struct {
	*cli.RootOptions
	cli.SessionFlags
	Width, Height int
	Step          float64
}

// newWindowCommand is registered from main so internal/cli does not
// import ebiten.
func newWindowCommand(rootOpts *cli.RootOptions) *cobra.Command {
	opts := &windowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "window <level>",
		Short: "Play a level in a window",
		Long: `Play a level in a desktop window.

Keys:
  arrows         move the cursor
  1 2 3          change aura
  u              undo
  r              restart
  esc            quit`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWindow(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Width, "width", window.DefaultWidth, "window width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", window.DefaultHeight, "window height in pixels")
	cmd.Flags().Float64Var(&opts.Step, "step", window.DefaultStep, "distance moved per key press")
	opts.SessionFlags.Register(cmd)

	return cmd
}

func runWindow(opts *windowOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cli.NewLogger(opts.RootOptions, os.Stderr)

	s, release, err := opts.SessionFlags.Start(ctx, path, logger)
	if err != nil {
		return err
	}
	defer release()

	err = window.Run(ctx, s,
		window.WithSize(opts.Width, opts.Height),
		window.WithStep(opts.Step),
		window.WithLogger(logger),
	)
	if err != nil {
		return cli.WrapExitError(cli.ExitFailure, "window failed", err)
	}
	logger.Info("window closed", "session", s.ID(), "seq", s.Seq(), "solved", s.Solved())
	return nil
}
