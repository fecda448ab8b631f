// Package errors provides structured error handling for sift.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Usage and configuration errors
//   - 2XX: IO errors (discovery, fetch)
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryUsage indicates command-line usage errors.
	CategoryUsage Category = "USAGE"
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but the run can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Usage and configuration errors (100-199)
	ErrCodeUsage         = "ERR_101_USAGE"
	ErrCodeInvalidPath   = "ERR_102_INVALID_PATH"
	ErrCodeConfigInvalid = "ERR_103_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFetch = "ERR_201_CHUNK_FETCH"
	ErrCodeScan  = "ERR_202_SCAN"
	ErrCodeWatch = "ERR_203_WATCH"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	switch code {
	case ErrCodeUsage, ErrCodeInvalidPath:
		return CategoryUsage
	case ErrCodeConfigInvalid:
		return CategoryConfig
	case ErrCodeFetch, ErrCodeScan, ErrCodeWatch:
		return CategoryIO
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
// Fetch and scan faults are per-chunk or per-file; the run continues with
// the remaining work. Everything else aborts before work starts.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeFetch, ErrCodeScan:
		return SeverityError
	case ErrCodeWatch:
		return SeverityWarning
	default:
		return SeverityFatal
	}
}
