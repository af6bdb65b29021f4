package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/offlinestt/diagnostics"
	"github.com/kbukum/offlinestt/transcription/whisper"
)

func (c *cli) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories and the transcription backend",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.load(cmd)
			if err != nil {
				return err
			}
			var opts []diagnostics.Option
			if app.Cfg.Transcription.Backend == whisper.ProviderName {
				backend, err := newTranscriber(app.Cfg, app.Logger)
				if err != nil {
					return err
				}
				opts = append(opts, diagnostics.WithBackend(backend))
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				report := diagnostics.NewChecker(opts...).Run(ctx, app.Cfg)
				report.Print(cmd.OutOrStdout())
				return report.Err()
			})
		},
	}
}
