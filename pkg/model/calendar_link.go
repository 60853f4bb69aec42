package model

import "time"

// CalendarLink holds a user's external calendar credential. At most one link
// exists per user; absence means external conflict checking is opt-out for
// that user, which is a valid state rather than an error.
type CalendarLink struct {
	UserID       string    `json:"user_id" bson:"_id"`
	AccessToken  string    `json:"-" bson:"access_token"`
	RefreshToken string    `json:"-" bson:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry" bson:"expiry"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Expired reports whether the credential is unusable at the given instant.
func (l *CalendarLink) Expired(now time.Time) bool {
	return l.Expiry.Before(now)
}

// CalendarStatus is the caller-facing view of a user's link.
type CalendarStatus struct {
	Connected bool       `json:"connected"`
	Expiry    *time.Time `json:"expiry,omitempty"`
}
