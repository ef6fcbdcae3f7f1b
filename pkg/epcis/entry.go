package epcis

import "time"

// Entry is a persisted identifier and its latest known state
type Entry struct {
	ID             string
	Identifier     string
	ParentID       string
	LastEventID    string
	LastAction     Action
	LastEventTime  time.Time
	Decommissioned bool
}

// IsTopLevel reports whether the entry is not packed into another
func (e *Entry) IsTopLevel() bool {
	return e.ParentID == ""
}
