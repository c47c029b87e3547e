// Package common provides shared constants, types, and utilities
// used across the Mullvad Supervisor application.
package common

// TokenStore defines the interface for account token storage.
// Implementations may use the system keyring, encrypted files, etc.
type TokenStore interface {
	// StoreToken saves the account token.
	StoreToken(token string) error
	// Token retrieves the account token.
	Token() (string, error)
	// DeleteToken removes the stored account token.
	DeleteToken() error
}

// Logger defines the interface for structured logging.
type Logger interface {
	// Debug logs a debug message.
	Debug(msg string, args ...interface{})
	// Info logs an informational message.
	Info(msg string, args ...interface{})
	// Warn logs a warning message.
	Warn(msg string, args ...interface{})
	// Error logs an error message.
	Error(msg string, args ...interface{})
}
