package session

import "time"

// Profile is the public slice of a user stored inside a session under
// the loggedUser attribute. It never carries the password hash.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Record is one server-side session. A record exists only between a
// successful login and the matching logout or TTL expiry.
type Record struct {
	SessionID  string  `json:"sessionId"`
	UserID     string  `json:"userId"`
	LoggedUser Profile `json:"loggedUser"`

	CreatedAt int64 `json:"createdAt"`
	ExpiresAt int64 `json:"expiresAt"`
}

// Expired reports whether the record's absolute expiry has passed.
func (r *Record) Expired(now time.Time) bool {
	return now.Unix() > r.ExpiresAt
}
