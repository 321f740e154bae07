package assistant

import "errors"

var (
	// ErrBusy is returned by Chat when a previous call is still in flight.
	// The caller recovers locally (e.g. by disabling input); nothing is
	// appended to the conversation.
	ErrBusy = errors.New("assistant: a chat turn is already in progress")

	// ErrEmptyMessage is returned by Chat for input that is empty after
	// trimming.
	ErrEmptyMessage = errors.New("assistant: message is empty")

	// ErrActionNotFound is returned when no action with the given id exists.
	ErrActionNotFound = errors.New("assistant: action not found")

	// ErrActionNotPending is returned when the action exists but is no longer
	// awaiting a decision.
	ErrActionNotPending = errors.New("assistant: action is not pending")
)
