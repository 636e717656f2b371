// Package errs provides standardized error types for the tracking service.
// It implements a consistent pattern for error creation, formatting, and
// unwrapping that is used throughout the application.
//
// Each error type follows the same shape:
//   - A sentinel error variable (e.g., ErrObjectNotFound)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method so errors.Is can classify against the sentinel
//
// The tracking-specific taxonomy lives here too: RouteUnavailableError marks
// a failed or empty directions lookup that leaves the order untouched and
// retryable.
package errs
