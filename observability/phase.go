package observability

import "context"

// Phases of one recording or transcription run.
const (
	PhaseRecord     = "record"
	PhaseSelect     = "select"
	PhaseNormalize  = "normalize"
	PhaseTranscribe = "transcribe"
)

// Attribute keys.
const (
	AttrPhase      = "offlinestt.phase"
	AttrProvider   = "offlinestt.provider"
	AttrDispatchID = "offlinestt.dispatch_id"
	AttrInput      = "offlinestt.input"
	AttrReason     = "offlinestt.stop_reason"
)

// StartPhase opens a span for one phase. The returned function ends it,
// recording err when non-nil.
func StartPhase(ctx context.Context, phase string) (context.Context, func(err error)) {
	ctx, span := StartSpan(ctx, "offlinestt."+phase)
	SetSpanAttribute(ctx, AttrPhase, phase)
	return ctx, func(err error) {
		SetSpanError(ctx, err)
		span.End()
	}
}
