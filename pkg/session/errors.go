package session

import "errors"

// Session package errors.
var (
	// ErrSessionNotFound is returned when a session lookup fails.
	ErrSessionNotFound = errors.New("session: session not found")

	// ErrSessionMismatch is returned when a frame's RemoteSessionId
	// disagrees with the value recorded for the session.
	ErrSessionMismatch = errors.New("session: remote session id mismatch")

	// ErrSessionDisposed is returned by any operation on a session past
	// teardown.
	ErrSessionDisposed = errors.New("session: disposed")

	// ErrUnexpectedMessage is returned when a sub-message arrives in a
	// state that does not accept it, or names an unrecognized sub-type.
	ErrUnexpectedMessage = errors.New("session: unexpected message")

	// ErrInvalidThumbprint is returned when an authentication
	// thumbprint does not match (local nonce, remote nonce).
	ErrInvalidThumbprint = errors.New("session: invalid thumbprint")
)
