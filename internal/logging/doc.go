// Package logging assembles structured slog loggers for the totem-disc tools.
//
// It owns the console and JSON handlers, level and output plumbing, and a
// tee helper the watch daemon uses to mirror console output into a log file.
// Context helpers tag log lines with the device being probed and the daemon
// session. NewNop provides a discarding logger for tests.
package logging
