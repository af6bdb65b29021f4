package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates the configuration or CLI usage is invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Filesystem errors
const (
	// ErrCodeDirectoryNotFound indicates the recordings or transcripts directory is absent.
	ErrCodeDirectoryNotFound ErrorCode = "DIRECTORY_NOT_FOUND"
	// ErrCodeInputNotFound indicates an explicitly given input file does not exist.
	ErrCodeInputNotFound ErrorCode = "INPUT_NOT_FOUND"
	// ErrCodeNoAudioFiles indicates no accepted audio file was found in a directory.
	ErrCodeNoAudioFiles ErrorCode = "NO_AUDIO_FILES"
)

// External tool errors
const (
	// ErrCodeToolNotFound indicates an external program could not be located.
	ErrCodeToolNotFound ErrorCode = "TOOL_NOT_FOUND"
	// ErrCodeToolFailed indicates an external program exited unsuccessfully.
	ErrCodeToolFailed ErrorCode = "TOOL_FAILED"
)

// Internal errors
const (
	// ErrCodeCanceled indicates the operation was canceled by the operator.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeInternal indicates an unexpected failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Process exit codes returned by the CLI.
const (
	ExitOK            = 0
	ExitFailure       = 1
	ExitInvalidConfig = 2
	ExitMissingDir    = 3
	ExitMissingInput  = 4
	ExitToolNotFound  = 5
	ExitToolFailed    = 6
	ExitCanceled      = 130
)

var exitCodes = map[ErrorCode]int{
	ErrCodeInvalidConfig:     ExitInvalidConfig,
	ErrCodeDirectoryNotFound: ExitMissingDir,
	ErrCodeInputNotFound:     ExitMissingInput,
	ErrCodeNoAudioFiles:      ExitMissingInput,
	ErrCodeToolNotFound:      ExitToolNotFound,
	ErrCodeToolFailed:        ExitToolFailed,
	ErrCodeCanceled:          ExitCanceled,
	ErrCodeInternal:          ExitFailure,
}

// ExitCodeFor returns the process exit code associated with an error code.
func ExitCodeFor(code ErrorCode) int {
	if c, ok := exitCodes[code]; ok {
		return c
	}
	return ExitFailure
}
