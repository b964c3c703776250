package executor

// graceful.go provides helpers for the warn-and-continue pattern used when a
// merge skips an input.

// Logger is the subset of logging the engines need. It is optional; a nil
// Logger silences the engines.
type Logger interface {
	Warnf(format string, args ...interface{})
	Infof(format string, args ...interface{})
}

// GracefulWarn logs a warning if logger is non-nil.
//
//	if err != nil {
//	    GracefulWarn(m.Logger, "skipping %s: %v", path, err)
//	    continue
//	}
func GracefulWarn(logger Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.Warnf(format, args...)
	}
}

// GracefulInfo logs an info message if logger is non-nil.
func GracefulInfo(logger Logger, format string, args ...interface{}) {
	if logger != nil {
		logger.Infof(format, args...)
	}
}
