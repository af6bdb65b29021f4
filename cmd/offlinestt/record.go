package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/offlinestt/bootstrap"
	"github.com/kbukum/offlinestt/dispatch"
	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/logger"
	"github.com/kbukum/offlinestt/observability"
	"github.com/kbukum/offlinestt/recorder"
	"github.com/kbukum/offlinestt/util"
)

func (c *cli) recordCommand() *cobra.Command {
	var noTranscribe bool
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record from the default input device, then transcribe the recording",
		Long: "record captures 16 kHz mono audio until the stop policy fires: a run of silence " +
			"(policy silence), Ctrl-C (policy manual) or the max-seconds ceiling. Ctrl-C always " +
			"ends the recording without failing, and the captured audio is still transcribed.",
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.load(cmd)
			if err != nil {
				return err
			}
			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				return record(ctx, app, cmd.OutOrStdout(), !noTranscribe)
			})
		},
	}
	f := cmd.Flags()
	f.String("policy", "", "stop policy: silence or manual")
	f.String("engine", "", "capture engine: stream (level monitor) or sox (rec silence effect; "+
		"sox skips leading silence, so a recording silent from the start runs to max-seconds)")
	f.Int("max-seconds", 0, "recording ceiling in seconds")
	f.BoolVar(&noTranscribe, "no-transcribe", false, "keep the recording without transcribing it")
	return cmd
}

func record(ctx context.Context, app *bootstrap.App, out io.Writer, transcribe bool) error {
	cfg := app.Cfg
	if _, err := dispatch.EnsureDir("recordings", cfg.RecordingsDir, cfg.AutoCreateDirs); err != nil {
		return err
	}

	// Build the dispatcher first so a broken backend fails before recording.
	var d *dispatch.Dispatcher
	if transcribe {
		var err error
		if d, err = newDispatcher(app); err != nil {
			return err
		}
	}

	rec, err := recorder.New(cfg.Recorder.Engine, cfg.Tools.Rec, app.Logger)
	if err != nil {
		return err
	}
	opts := recorderOptions(cfg.Recorder)
	path := recorder.SessionPath(cfg.RecordingsDir, time.Now(), cfg.StampLayout())

	app.Logger.Info("recording", logger.Fields(
		logger.FieldPath, path,
		logger.FieldPolicy, string(opts.Policy),
		"max_seconds", cfg.Recorder.MaxSeconds,
	))
	interrupts := app.Interrupts()
	defer interrupts.Stop()

	recCtx, endRecording := interrupts.Phase(ctx)
	recCtx, end := observability.StartPhase(recCtx, observability.PhaseRecord)
	outcome, err := rec.Record(recCtx, path, opts)
	if outcome != nil {
		observability.SetSpanAttribute(recCtx, observability.AttrReason, string(outcome.Reason))
	}
	end(err)
	endRecording()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "recorded %s (%s, %s)\n", outcome.Path, util.FormatDuration(outcome.Audio), outcome.Reason)

	if !transcribe {
		return nil
	}
	if outcome.Audio == 0 {
		return errors.New(errors.ErrCodeNoAudioFiles, fmt.Sprintf("recording %s holds no audio", outcome.Path)).
			WithDetail(logger.FieldReason, string(outcome.Reason))
	}
	return transcribeFile(ctx, interrupts, d, out, outcome.Path)
}
