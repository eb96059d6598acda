// Package logging provides structured logging utilities for calendar-assistant.
//
// All logging goes through the standard library's slog package. This package
// adds consistent attribute names, root logger construction from
// configuration, and helpers that keep PII and credentials out of logs.
//
// Build the root logger once at startup:
//
//	logger := logging.New(logging.Options{Level: "debug", Format: "json"})
//	slog.SetDefault(logger)
//
// Attach standard attributes:
//
//	logging.WithTool(logger, "create_event").Info("event created",
//	    logging.EventID(ev.ID),
//	    logging.Attendees(ev.Attendees))
//
// With the stdio transport stdout carries the protocol, so the default writer
// is stderr.
package logging
