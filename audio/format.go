package audio

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Format is a PCM sample layout.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Canonical is the format the transcription model expects.
var Canonical = Format{SampleRate: 16000, Channels: 1, BitDepth: 16}

// BytesPerSecond returns the PCM data rate.
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * f.BitDepth / 8
}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d ch, %d-bit", f.SampleRate, f.Channels, f.BitDepth)
}

// wavFormatPCM is the WAVE_FORMAT_PCM tag.
const wavFormatPCM = 1

// Info describes a WAV file on disk.
type Info struct {
	Format   Format
	PCM      bool
	DataLen  int64
	Duration time.Duration
}

// IsCanonical reports whether the file is integer PCM in the Canonical format.
func (i Info) IsCanonical() bool {
	return i.PCM && i.Format == Canonical
}

// Inspect reads the header of the WAV file at path.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return Info{}, fmt.Errorf("%s: not a valid WAV file", path)
	}
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := d.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("%s: locate PCM data: %w", path, err)
	}

	info := Info{
		Format: Format{
			SampleRate: int(d.SampleRate),
			Channels:   int(d.NumChans),
			BitDepth:   int(d.BitDepth),
		},
		PCM:     d.WavAudioFormat == wavFormatPCM,
		DataLen: d.PCMLen(),
	}
	if bps := info.Format.BytesPerSecond(); bps > 0 {
		info.Duration = time.Duration(info.DataLen) * time.Second / time.Duration(bps)
	}
	return info, nil
}
