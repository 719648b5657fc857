package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrCheckoutDismissed is returned when the user declines to pay.
	ErrCheckoutDismissed = errors.New("tui: checkout dismissed")
	// ErrNilSession is returned when Run is called without a session.
	ErrNilSession = errors.New("tui: session is nil")
)
