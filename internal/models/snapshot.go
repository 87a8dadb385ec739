package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// DeviceSnapshot is one decoded view of the station's /settings response.
// Every field is optional: the firmware omits fields freely depending on
// model and mode, so absence (or a malformed value) is never an error.
type DeviceSnapshot struct {
	ModeLabel       *string  `json:"mode,omitempty"`
	ModeCode        *int     `json:"mode_id,omitempty"`
	OverrideCurrent *int     `json:"override_current,omitempty"`
	CableLocked     *bool    `json:"cablelock,omitempty"`
	ChargedKWh      *float64 `json:"charged_kwh,omitempty"` // meaningful only when mode is Off
	ColorOff        *string  `json:"color_off,omitempty"`
	ColorNormal     *string  `json:"color_normal,omitempty"`
	ColorSolar      *string  `json:"color_solar,omitempty"`
	ColorSmart      *string  `json:"color_smart,omitempty"`
}

// ResolveMode picks the snapshot's mode: the numeric code wins, a numeric
// "mode" field is accepted in place of "mode_id" (older firmware), and the
// label is the fallback. Missing or unrecognized resolves to Off.
func (s *DeviceSnapshot) ResolveMode() Mode {
	if s.ModeCode != nil {
		return ModeFromCode(*s.ModeCode)
	}
	if s.ModeLabel != nil {
		if m, ok := ParseMode(*s.ModeLabel); ok {
			return m
		}
	}
	return ModeOff
}

// UnmarshalJSON decodes field-by-field so that one malformed value does
// not discard the rest of the response. The top-level document must still
// be a JSON object.
func (s *DeviceSnapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// "mode" is a label on current firmware but a bare code on older ones.
	if v, ok := raw["mode"]; ok {
		if label, ok := asString(v); ok {
			s.ModeLabel = &label
		} else if code, ok := asInt(v); ok {
			s.ModeCode = &code
		}
	}
	if v, ok := raw["mode_id"]; ok {
		if code, ok := asInt(v); ok {
			s.ModeCode = &code
		}
	}
	if v, ok := raw["override_current"]; ok {
		if n, ok := asInt(v); ok {
			s.OverrideCurrent = &n
		}
	}
	if v, ok := raw["cablelock"]; ok {
		if b, ok := asFlag(v); ok {
			s.CableLocked = &b
		}
	}
	if v, ok := raw["charged_kwh"]; ok {
		if f, ok := asFloat(v); ok {
			s.ChargedKWh = &f
		}
	}
	s.ColorOff = stringField(raw, "color_off")
	s.ColorNormal = stringField(raw, "color_normal")
	s.ColorSolar = stringField(raw, "color_solar")
	s.ColorSmart = stringField(raw, "color_smart")
	return nil
}

func stringField(raw map[string]json.RawMessage, key string) *string {
	if v, ok := raw[key]; ok {
		if str, ok := asString(v); ok {
			return &str
		}
	}
	return nil
}

func asString(v json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func asInt(v json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(v, &n); err == nil {
		return n, true
	}
	// tolerate quoted numbers
	if s, ok := asString(v); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func asFloat(v json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f, true
	}
	if s, ok := asString(v); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// asFlag accepts 0/1, true/false, or their quoted forms.
func asFlag(v json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b, true
	}
	if n, ok := asInt(v); ok {
		return n != 0, true
	}
	return false, false
}
