// Package process runs the external programs offlinestt drives: rec, ffmpeg
// and the transcription model.
//
// Every child runs in its own process group. Cancelling the context delivers
// the command's StopSignal to the whole group and escalates to SIGKILL after
// the grace period. Failures are reported as *errors.AppError values with
// TOOL_NOT_FOUND, TOOL_FAILED or CANCELED codes.
package process
