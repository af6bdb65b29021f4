// Package resilience retries transient failures with exponential backoff.
//
// Only failures that can succeed on a second attempt are retried: a
// transcription sidecar that is still loading its model, a dropped
// connection. Configuration mistakes, missing inputs and operator
// cancellation are returned immediately.
//
//	out, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (Out, error) {
//	    return client.Transcribe(ctx, req)
//	})
package resilience
