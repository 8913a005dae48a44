package ebloc

import (
	"time"

	scraper "ebloc-backend/lib/scrapers/ebloc"
)

// Snapshot is one internally consistent result of a refresh cycle: all
// datasets were fetched within the same cycle against the same active
// month. Snapshots are never mutated after publication; a later cycle
// replaces the whole value.
type Snapshot struct {
	Home        scraper.RawMap
	Index       scraper.RawMap
	Receipts    scraper.RawMap
	Months      scraper.MonthList
	ActiveMonth string
	// FetchedAt is the cycle's completion time in the portal's timezone.
	FetchedAt time.Time
}
