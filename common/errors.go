// Package common provides shared constants, types, and utilities
// used across the Mullvad Supervisor application.
package common

import "errors"

// Sentinel errors for supervisor operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// Client errors.
	ErrClientNotFound = errors.New("mullvad client not found")
	ErrCommandFailed  = errors.New("client command failed")
	ErrTimeout        = errors.New("operation timed out")
	ErrCancelled      = errors.New("operation cancelled")

	// Update errors.
	ErrUpdateFailed    = errors.New("update failed")
	ErrDownloadFailed  = errors.New("installer download failed")
	ErrInstallerAbsent = errors.New("installer not present on disk")

	// Account errors.
	ErrAccountNotConfigured = errors.New("no account configured")
	ErrTokenNotFound        = errors.New("account token not found")
	ErrCredentialStorage    = errors.New("failed to store credentials")

	// Connection errors.
	ErrNotConnected = errors.New("tunnel not connected")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
