// Package errors provides the structured error type used across offlinestt.
//
// Every failure that reaches the command line is an *AppError carrying a
// machine-readable code and the process exit code the CLI should return.
// Nothing is retried: a failure is terminal for the invocation it occurs in.
package errors
