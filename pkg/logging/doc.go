// Package logging builds the slog loggers used across vcr.
//
// Components take a *slog.Logger through an option or field. A nil logger
// means logging.Nop(). Cassettes and transports log at debug level, so a
// default CLI run stays quiet:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//
// In tests, NewTB routes records through t.Log so they only show up for
// failing or verbose runs.
package logging
