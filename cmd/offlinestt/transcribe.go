package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/offlinestt/bootstrap"
	"github.com/kbukum/offlinestt/dispatch"
)

func (c *cli) transcribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe [FILE]",
		Short: "Transcribe FILE, or the newest recording when FILE is omitted",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.load(cmd)
			if err != nil {
				return err
			}
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				d, err := newDispatcher(app)
				if err != nil {
					return err
				}
				interrupts := app.Interrupts()
				defer interrupts.Stop()
				return transcribeFile(ctx, interrupts, d, cmd.OutOrStdout(), input)
			})
		},
	}
}

// transcribeFile dispatches input in its own interrupt phase and prints the
// transcript path.
func transcribeFile(ctx context.Context, interrupts *bootstrap.Interrupts, d *dispatch.Dispatcher, out io.Writer, input string) error {
	ctx, stop := interrupts.Phase(ctx)
	defer stop()

	res, err := d.Dispatch(ctx, dispatch.Request{InputPath: input})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, res.TranscriptPath)
	return nil
}
