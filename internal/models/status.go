package models

import "time"

// DeviceStatus is the republished view of the station, owned by the sync
// service. Presentation code reads copies and never mutates it.
type DeviceStatus struct {
	Message     string    `json:"message"` // last human-readable status line
	Color       string    `json:"color"`   // current status color, hex
	Mode        Mode      `json:"mode"`
	CableLocked bool      `json:"cable_locked"`
	UpdatedAt   time.Time `json:"updated_at"`
}
