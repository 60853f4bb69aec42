package model

import "time"

// CalendarEvent is an event as reported by the external calendar provider.
// All-day markers and similar entries come back without concrete instants;
// Start/End stay zero in that case and the event is ignored by conflict
// checking.
type CalendarEvent struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Timed reports whether the event carries concrete start and end instants.
func (e *CalendarEvent) Timed() bool {
	return !e.Start.IsZero() && !e.End.IsZero()
}
