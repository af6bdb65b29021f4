// Package normalize re-encodes audio files into canonical PCM with ffmpeg.
package normalize

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kbukum/offlinestt/audio"
	"github.com/kbukum/offlinestt/errors"
	"github.com/kbukum/offlinestt/logger"
	"github.com/kbukum/offlinestt/process"
)

// Runner executes one subprocess. process.Run in production.
type Runner func(ctx context.Context, cmd process.Command) (*process.Result, error)

// Normalizer converts any accepted audio file into audio.Canonical WAV.
type Normalizer struct {
	ffmpeg string
	target audio.Format
	run    Runner
	log    *logger.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithRunner replaces subprocess execution, for tests.
func WithRunner(r Runner) Option {
	return func(n *Normalizer) { n.run = r }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(n *Normalizer) { n.log = l }
}

// New returns a Normalizer invoking the ffmpeg binary.
func New(ffmpeg string, opts ...Option) *Normalizer {
	n := &Normalizer{
		ffmpeg: ffmpeg,
		target: audio.Canonical,
		run:    process.Run,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Args returns the ffmpeg arguments converting in into out.
func (n *Normalizer) Args(in, out string) []string {
	return []string{
		"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
		"-i", in,
		"-vn",
		"-ar", strconv.Itoa(n.target.SampleRate),
		"-ac", strconv.Itoa(n.target.Channels),
		"-c:a", "pcm_s16le",
		out,
	}
}

// Normalize writes the canonical rendition of in to out, replacing any
// existing file. Output is produced under a temporary name and renamed only
// after it has been verified, so a failed conversion never leaves a file at out.
func (n *Normalizer) Normalize(ctx context.Context, in, out string) error {
	if _, err := os.Stat(in); err != nil {
		return errors.InputNotFound(in).WithCause(err)
	}
	partial := partialPath(out)
	defer os.Remove(partial)

	log := n.log.WithFields(logger.Fields(logger.FieldInput, in, logger.FieldOutput, out))
	log.Debug("normalizing audio")

	result, err := n.run(ctx, process.Command{
		Binary: n.ffmpeg,
		Args:   n.Args(in, partial),
	})
	if err != nil {
		log.WithError(err).Error("ffmpeg failed", logger.Fields(logger.FieldTool, n.ffmpeg))
		return err
	}

	info, err := audio.Inspect(partial)
	if err != nil {
		return errors.ToolFailed(n.ffmpeg, 0, err).WithDetail("stderr", result.StderrTail(10))
	}
	if !info.PCM || info.Format != n.target {
		return errors.ToolFailed(n.ffmpeg, 0,
			fmt.Errorf("produced %s, want %s", info.Format, n.target))
	}
	if err := os.Rename(partial, out); err != nil {
		return errors.Internal(fmt.Errorf("promote normalized file: %w", err))
	}

	log.Info("audio normalized", logger.Fields(logger.FieldBytes, info.DataLen, "audio_seconds", info.Duration.Seconds()))
	return nil
}

func partialPath(out string) string {
	if base, ok := strings.CutSuffix(out, ".wav"); ok {
		return base + ".partial.wav"
	}
	return out + ".partial.wav"
}
