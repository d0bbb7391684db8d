package leaderboard

import "errors"

// Rejection reasons. Anything else returned by the gate is a store failure.
var (
	ErrUnknownGame     = errors.New("unknown game")
	ErrInvalidSession  = errors.New("invalid session id")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionForeign  = errors.New("session belongs to another client")
	ErrInvalidScore    = errors.New("invalid score")
	ErrInvalidState    = errors.New("invalid game state")
	ErrInvalidName     = errors.New("invalid player name")
	ErrDuplicateScore  = errors.New("duplicate score submission")
)
