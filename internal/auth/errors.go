package auth

import "errors"

var (
	// ErrValidation marks malformed input; the message is safe to
	// return to the client.
	ErrValidation = errors.New("invalid request")
	// ErrInvalidCredentials is the single generic login failure. It
	// never distinguishes an unknown username from a wrong password.
	ErrInvalidCredentials = errors.New("failed to authenticate")
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("username already taken")
	// ErrSessionActive is returned when a login is refused because the
	// user already holds a live session.
	ErrSessionActive = errors.New("session already active")
	// ErrNoSession is returned when a required session cookie resolves
	// to nothing.
	ErrNoSession = errors.New("no active session")
	// ErrTransient marks backend timeouts and outages; the caller may
	// retry.
	ErrTransient = errors.New("backend unavailable")
)
