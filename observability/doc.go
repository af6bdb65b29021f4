// Package observability provides optional OpenTelemetry tracing of the
// recording and transcription phases.
//
//	shutdown, err := observability.InitTracer(ctx, observability.TracerConfig{
//	    ServiceName: "offlinestt",
//	    Endpoint:    "localhost:4318",
//	})
//	defer shutdown(ctx)
//
//	ctx, end := observability.StartPhase(ctx, observability.PhaseNormalize)
//	err := normalize(ctx)
//	end(err)
//
// With an empty endpoint no exporter is created and spans are no-ops.
package observability
