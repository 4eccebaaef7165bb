// Package logger provides a thin wrapper around Go's slog package adding
// functional options for configuration and helper attribute constructors.
//
// The package standardises structured logging across the authkit packages by
// exposing a single factory – New – that creates a *slog.Logger configured by
// a set of Option functions:
//
//   - Select an output format (text or json)
//   - Set the minimum log level
//   - Supply default slog.Attr values applied to every record
//
// Helper constructors such as Error, Component, UserID, etc. live in attr.go
// and return commonly-used slog.Attr instances to keep attribute naming
// consistent across the codebase.
//
// # Usage
//
//	import "github.com/clubware/authkit/pkg/logger"
//
//	log := logger.New(
//	    logger.WithFormat(logger.FormatText),
//	    logger.WithLevel(slog.LevelDebug),
//	)
//	log.Info("session restored",
//	    logger.Component("session"),
//	    logger.UserID(user.ID),
//	)
//
// Components accept an injected *slog.Logger and default to Discard(), so
// logging is opt-in for library consumers.
package logger
