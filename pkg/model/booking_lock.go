package model

import "time"

// BookingLock is an advisory lock serializing the check-then-insert sequence
// of admissions for one user. The lock lives in its own collection with a
// unique _id; a duplicate-key insert means another admission for the same
// user is in flight.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
