package schedule

import "errors"

var (
	ErrNotDeletable    = errors.New("only manual blocks can be deleted")
	ErrEventNotLoaded  = errors.New("event not in loaded calendar")
	ErrOverlap         = errors.New("block overlaps an existing event")
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrStoreUnavailable refuses an edit whose starting state could not be read.
	ErrStoreUnavailable = errors.New("professional store unavailable")
)
