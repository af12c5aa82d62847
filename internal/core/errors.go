package core

import "errors"

var (
	// ErrSignalUnavailable marks a collaborator timeout or failure.
	// Always recoverable: callers degrade the affected signal instead
	// of aborting the turn.
	ErrSignalUnavailable = errors.New("signal unavailable")

	// ErrInvalidContextItem marks a malformed item rejected at the
	// ingestion boundary.
	ErrInvalidContextItem = errors.New("invalid context item")

	// ErrStateInvariant marks a broken conversation-state invariant.
	// Fatal for the affected session only.
	ErrStateInvariant = errors.New("conversation state invariant violated")

	// ErrSessionClosed is returned for operations on a closed session.
	ErrSessionClosed = errors.New("session closed")
)
