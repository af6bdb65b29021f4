package audio

import "math"

// SilenceFloor is reported for digital silence.
const SilenceFloor = -120.0

// DBFS returns the RMS level of samples relative to full scale for bitDepth.
func DBFS(samples []int, bitDepth int) float64 {
	if len(samples) == 0 {
		return SilenceFloor
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	full := math.Exp2(float64(bitDepth - 1))
	if rms == 0 {
		return SilenceFloor
	}
	db := 20 * math.Log10(rms/full)
	if db < SilenceFloor {
		return SilenceFloor
	}
	return db
}
