package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no game session exists for an ID.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrInsufficientContent indicates the content pool is too small for the
	// requested round/option counts; the game cannot start.
	ErrInsufficientContent = errors.New("not enough content for requested rounds")
	// ErrEmptySession guards against starting a session with zero rounds.
	ErrEmptySession = errors.New("session has no rounds")
	// ErrContentNotFound indicates the content pool could not be loaded.
	ErrContentNotFound = errors.New("content not found")
	// ErrSessionActive is returned when start is called on a session that is
	// already in play.
	ErrSessionActive = errors.New("session already active")
	// ErrNoCurrentRound is returned for answer/advance calls in a phase that
	// has no round to act on.
	ErrNoCurrentRound = errors.New("no current round")
	// ErrSpeechUnavailable indicates the speech collaborator rejected or
	// failed a request; gameplay continues without audio.
	ErrSpeechUnavailable = errors.New("speech capability unavailable")
)
