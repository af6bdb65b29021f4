// Package component manages resources a command needs for its whole run,
// such as the trace exporter. Components start in registration order and
// stop in reverse order once the command finishes.
package component
