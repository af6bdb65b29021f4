// Package logger provides structured logging for offlinestt using zerolog.
//
// Logs go to stderr by default so that command output on stdout (for
// example the recordings listing) stays pipeable.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.New(&cfg.Logging, "offlinestt").WithComponent("recorder")
//	log.Info("recording started", logger.Fields(logger.FieldPath, path))
package logger
