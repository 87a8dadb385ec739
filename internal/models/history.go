package models

import "time"

// HistoryEntry records one detected mode transition. Entries are immutable
// after creation and kept newest-first.
type HistoryEntry struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	Mode       Mode      `json:"mode"`
	Color      string    `json:"color"`                 // resolved hex at time of recording
	ChargedKWh *float64  `json:"charged_kwh,omitempty"` // set only when Mode is Off
}
