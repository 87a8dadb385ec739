// Package color maps charging modes to the LED colors the station reports,
// with fixed fallbacks when the device omits them.
package color

import (
	"strconv"
	"strings"

	"controlling_evse/internal/models"
)

// Per-mode fallback colors, used when a snapshot carries no color field.
const (
	DefaultNormal = "#00FF00"
	DefaultSolar  = "#FFFF00"
	DefaultSmart  = "#0000FF"
	DefaultOff    = "#555555"
)

// ForMode resolves the hex color for a mode from the snapshot's per-mode
// color fields. Pause shares the Off color. Always returns a non-empty hex.
func ForMode(mode models.Mode, snap *models.DeviceSnapshot) string {
	var field *string
	var fallback string
	switch mode {
	case models.ModeNormal:
		field, fallback = snap.ColorNormal, DefaultNormal
	case models.ModeSolar:
		field, fallback = snap.ColorSolar, DefaultSolar
	case models.ModeSmart:
		field, fallback = snap.ColorSmart, DefaultSmart
	default: // Off and Pause share the off color
		field, fallback = snap.ColorOff, DefaultOff
	}
	if field != nil && *field != "" {
		return *field
	}
	return fallback
}

// HexToRGB converts a hex color string to normalized 0..1 channels.
// Non-alphanumeric characters ("#", spaces) are stripped first; anything
// that still fails to parse degrades to black rather than erroring.
func HexToRGB(hex string) (r, g, b float64) {
	var sb strings.Builder
	for _, c := range hex {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			sb.WriteRune(c)
		}
	}
	v, err := strconv.ParseUint(sb.String(), 16, 64)
	if err != nil {
		v = 0
	}
	r = float64((v>>16)&0xFF) / 255.0
	g = float64((v>>8)&0xFF) / 255.0
	b = float64(v&0xFF) / 255.0
	return r, g, b
}
