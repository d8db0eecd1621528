// Package log provides packetmap's logging, built on the standard slog
// package with automatic redaction of node credentials.
//
// Packet node logins happen over plain telnet, and the session layer
// logs the command/response traffic verbatim in verbose mode. The
// RedactHandler keeps sysop passwords out of that output:
//   - attributes whose key names a credential ("password", "secret",
//     "token") are masked
//   - registered secret values (the configured node password) are
//     masked wherever they appear inside logged strings, including
//     echoed login lines
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose, log.WithSecret(cfg.TelnetPassword))
//	logger.Info("logging in", "user", cfg.TelnetUser, "password", cfg.TelnetPassword)
//	// => msg="logging in" user=kd9lsv password=***REDACTED***
package log
