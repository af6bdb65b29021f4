// Package recorder captures microphone audio into one WAV file per session
// and stops it according to a Policy.
//
// Two engines implement Recorder. StreamRecorder reads raw PCM from the
// capture tool and decides when to stop in Go with a Monitor; it is the
// default. SoxRecorder hands the stop conditions to sox's own silence and
// trim effects.
//
// Every session is bounded by Options.MaxDuration. Cancelling the context
// is an operator interrupt: the capture tool receives SIGINT so it can
// finalize the file, and Record reports ReasonInterrupted without an error.
package recorder
