// Package dispatch turns one audio file into one transcript.
//
// A dispatch resolves its input (an explicit path or the newest recording),
// normalizes it into a private scratch directory, hands the canonical file to
// the transcription backend and removes the scratch directory on every exit
// path. Phases run strictly one after another.
package dispatch
