package audio

import (
	"encoding/binary"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Writer streams little-endian signed PCM into a WAV file. The header is
// finalized by Close.
type Writer struct {
	f       *os.File
	enc     *wav.Encoder
	format  Format
	samples int64
}

// NewWriter creates path and prepares a WAV encoder for format.
func NewWriter(path string, format Format) (*Writer, error) {
	if format.BitDepth != 16 {
		return nil, fmt.Errorf("audio: unsupported bit depth %d", format.BitDepth)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{
		f:      f,
		enc:    wav.NewEncoder(f, format.SampleRate, format.BitDepth, format.Channels, wavFormatPCM),
		format: format,
	}, nil
}

// WriteSamples appends interleaved samples.
func (w *Writer) WriteSamples(samples []int) error {
	if len(samples) == 0 {
		return nil
	}
	if err := w.enc.Write(w.buffer(samples)); err != nil {
		return err
	}
	w.samples += int64(len(samples))
	return nil
}

func (w *Writer) buffer(samples []int) *goaudio.IntBuffer {
	return &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: w.format.Channels,
			SampleRate:  w.format.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: w.format.BitDepth,
	}
}

// Samples returns the number of samples written so far.
func (w *Writer) Samples() int64 {
	return w.samples
}

// Close finalizes the header and closes the file. A writer that received no
// samples still leaves a valid, empty WAV file.
func (w *Writer) Close() error {
	var encErr error
	if w.samples == 0 {
		encErr = w.enc.Write(w.buffer(nil))
	}
	if encErr == nil {
		encErr = w.enc.Close()
	}
	closeErr := w.f.Close()
	if encErr != nil {
		return encErr
	}
	return closeErr
}

// DecodeS16LE converts little-endian signed 16-bit PCM to samples.
func DecodeS16LE(p []byte) []int {
	out := make([]int, len(p)/2)
	for i := range out {
		out[i] = int(int16(binary.LittleEndian.Uint16(p[2*i:])))
	}
	return out
}
