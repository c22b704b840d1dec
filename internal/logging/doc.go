// Package logging provides the leveled, fire-and-forget logger used by the
// gallery service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// Lines are handed to a single background writer through a bounded queue.
// Callers never block on log output: when the queue is full the line is
// dropped and counted (see [Dropped]). Call [Flush] before exiting so queued
// lines reach the output.
//
// The log level is configured via the DEBUG or LOG_LEVEL environment
// variables, or explicitly with [SetLevel].
package logging
