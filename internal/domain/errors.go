package domain

import "errors"

var (
	// ErrNotFound is returned when a game, player, category, or clue does
	// not exist under the given code or ID.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for malformed input, detected before
	// any storage is touched.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidOperation is returned when a precondition fails given the
	// current game state or acting player.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrCodeConflict is returned by stores when a freshly generated join
	// code is already taken; the engine retries with a new code.
	ErrCodeConflict = errors.New("game code already in use")
)
