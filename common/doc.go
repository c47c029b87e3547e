// Package common provides shared constants, types, utilities, and interfaces
// used throughout the Mullvad Supervisor application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like timeouts, file names, and
//     retry/escalation policy defaults
//   - Errors: Sentinel errors for consistent error handling across packages
//   - Interfaces: Abstractions for token storage and logging
//   - Logger: Structured logging with multiple output destinations
//   - Utils: Common utility functions for file and directory handling
//
// # Usage
//
// Import the package to access shared functionality:
//
//	import "github.com/yllada/mullvad-supervisor/common"
//
//	// Use constants
//	interval := common.PollInterval
//
//	// Use logger
//	common.LogInfo("Tunnel state is %s", state)
//
//	// Check errors
//	if errors.Is(err, common.ErrAccountNotConfigured) {
//	    // Handle missing account
//	}
package common
