package console

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("console: aborted")
	// ErrNoSession is returned by NewEditor without a session.
	ErrNoSession = errors.New("console: session required")
)
