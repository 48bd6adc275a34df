package entity

import "time"

// Run is a persisted matching result.
type Run struct {
	ID         string
	Records    int
	Report     *Report
	Identities *Identities
	CreatedAt  time.Time
}
