package models

import "time"

// Session binds an opaque identifier to a user until ExpiresAt.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ExpiredAt reports whether the session is no longer valid at now.
// A session is valid only while now is strictly before ExpiresAt.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
