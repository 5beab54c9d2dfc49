package credentials

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no user exists for a username.
var ErrNotFound = errors.New("user not found")

// ErrExists is returned when registering a username that is taken.
var ErrExists = errors.New("username already exists")

// User is the stored account identity. The password hash travels
// separately so it never leaks through profile serialization.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}
