package notes

import "errors"

// ErrNoteNotFound is returned when no note has the requested id.
var ErrNoteNotFound = errors.New("note not found")

// ErrLoadNotes is logged when the store cannot produce the collection.
var ErrLoadNotes = errors.New("failed to load notes")

// ErrPersistNotes is logged when the collection cannot be written back.
var ErrPersistNotes = errors.New("failed to persist notes")

// ErrBadRequest is returned when request parameters are invalid.
var ErrBadRequest = errors.New("bad request")
