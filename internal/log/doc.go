// Package log provides secure logging built on the standard slog package.
//
// The SecureHandler wraps any slog.Handler and:
//   - masks values of password, secret and token attributes
//   - shortens the user's home directory in paths to "~"
//   - tags records with the comparison run id carried by the context
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	ctx = log.ContextWithRunID(ctx, runID)
//	logger.InfoContext(ctx, "comparing", "base", "/home/alice/a.pdf")
//	// level=INFO msg=comparing run_id=... base=~/a.pdf
package log
