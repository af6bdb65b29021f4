// Package audio describes PCM formats and reads and writes the WAV files
// offlinestt produces. The canonical transcription input is 16 kHz, mono,
// signed 16-bit little-endian PCM.
package audio
