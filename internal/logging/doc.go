// Package logging builds the slog loggers used across the pipeline.
//
// Two handler formats are supported: a compact console handler for
// interactive use and the stdlib JSON handler for log files. Output fans
// out to stdout plus a log file under the configured log directory.
// Context helpers stamp transcript paths, analysis types, and correlation
// identifiers onto derived loggers.
package logging
