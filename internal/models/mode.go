package models

import (
	"encoding/json"
	"strings"
)

// Mode is the charging behavior of the station. Codes are part of the
// device wire protocol and must stay stable.
type Mode int

const (
	ModeOff    Mode = 0
	ModeNormal Mode = 1
	ModeSolar  Mode = 2
	ModeSmart  Mode = 3
	ModePause  Mode = 4
)

var modeLabels = map[Mode]string{
	ModeOff:    "Off",
	ModeNormal: "Normal",
	ModeSolar:  "Solar",
	ModeSmart:  "Smart",
	ModePause:  "Pause",
}

// Code returns the device wire code for the mode.
func (m Mode) Code() int { return int(m) }

// Label returns the human-readable display label.
func (m Mode) Label() string {
	if l, ok := modeLabels[m]; ok {
		return l
	}
	return modeLabels[ModeOff]
}

// ModeFromCode maps a device mode code to a Mode. Unknown codes map to Off.
func ModeFromCode(code int) Mode {
	m := Mode(code)
	if _, ok := modeLabels[m]; ok {
		return m
	}
	return ModeOff
}

// ParseMode maps a label (case-insensitive) to a Mode.
// Unknown labels report ok=false and Off.
func ParseMode(label string) (Mode, bool) {
	want := strings.ToLower(strings.TrimSpace(label))
	for m, l := range modeLabels {
		if strings.ToLower(l) == want {
			return m, true
		}
	}
	return ModeOff, false
}

// MarshalJSON encodes the mode as its display label, which is what API
// clients and the persisted history use.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Label())
}

// UnmarshalJSON accepts either a label string or a numeric code.
func (m *Mode) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		if parsed, ok := ParseMode(label); ok {
			*m = parsed
			return nil
		}
		*m = ModeOff
		return nil
	}
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	*m = ModeFromCode(code)
	return nil
}
