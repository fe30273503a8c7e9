package editor

import "errors"

// ErrSessionClosed is returned for writes to a session that was closed.
var ErrSessionClosed = errors.New("editor session closed")

// ErrNoSession is returned when no note is open for editing.
var ErrNoSession = errors.New("no open editor session")

// ErrCommitNote is logged when a debounced commit fails.
var ErrCommitNote = errors.New("failed to commit note")
