// Package utils provides utility functions for the pedagogue library.
//
// This package contains helper functions for various operations including:
//   - Concurrent execution helpers with semaphore control (concurrent.go)
//   - Panic recovery helpers for worker goroutines (recovery.go)
//   - Filename and string helpers for persisted artifacts (helpers.go)
package utils
