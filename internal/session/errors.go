package session

import "errors"

// Validation failure classes. Every rejected action surfaces one of these
// synchronously with no partial mutation; handlers map them to HTTP
// statuses. Pool exhaustion is deliberately absent: running out of songs
// ends the game by current standings rather than failing a request.
var (
	ErrNotFound           = errors.New("not found")
	ErrBadState           = errors.New("action not allowed in current state")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInsufficientTokens = errors.New("insufficient tokens")
)

// errPoolExhausted is internal to the engine; callers never see it. The
// state machine converts it into a finished game.
var errPoolExhausted = errors.New("song pool exhausted")
