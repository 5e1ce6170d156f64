// Package model contains domain models passed between layers.
package model

import "time"

// OccurrenceRow is one raw flavor occurrence aggregate over a trailing
// window: how many times a flavor appeared at a store.
type OccurrenceRow struct {
	Slug        string // store slug, e.g. "mt-horeb"
	Flavor      string // normalized flavor key, e.g. "caramel-cashew"
	DisplayName string // presentation name, e.g. "Caramel Cashew"
	Count       int    // occurrences within the window
}

// Snapshot is one stored harvest result for a store on a given day.
type Snapshot struct {
	ID         string    // uuid
	Slug       string    // store slug
	Day        string    // capture day, YYYY-MM-DD
	Flavors    []Flavor  // flavors captured for the day
	CapturedAt time.Time // wall-clock capture time
}

// Flavor is a single captured flavor entry.
type Flavor struct {
	Name  string `json:"name"`           // normalized key
	Title string `json:"title"`          // display name
	Date  string `json:"date,omitempty"` // forecast date, YYYY-MM-DD
}

// StoreInfo holds descriptive fields from the store index.
type StoreInfo struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
}
