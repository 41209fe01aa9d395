// Package logging provides structured logging for apdefaults.
//
// This package wraps zap logger with convenience functions for the events
// apdefaults reports while loading, patching and saving firmware files.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (hex dumps of the defaults region)
//   - Info: Normal operations (file loaded, header found, file saved)
//   - Warn: Non-fatal issues (skipped manifest targets)
//   - Error: Fatal issues (decode failures, write failures)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Defaults written",
//	    zap.String("path", "arducopter.apj"),
//	    zap.Int("length", 412),
//	)
//
// Domain helpers cover the common events:
//
//	logging.LogContainer("loaded", path, "apj", len(image))
//	logging.LogRegion("found", hdr.Offset, hdr.MaxLength, hdr.Length)
//	logging.LogRawBytes("Defaults region", contents)
//
// # Configuration
//
// Logging is silent unless a level is given, either explicitly or through
// the APDEFAULTS_LOG_LEVEL environment variable:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
