package models

import (
	"encoding/json"
	"testing"
)

func TestModeFromCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code int
		want Mode
	}{
		{name: "off", code: 0, want: ModeOff},
		{name: "normal", code: 1, want: ModeNormal},
		{name: "solar", code: 2, want: ModeSolar},
		{name: "smart", code: 3, want: ModeSmart},
		{name: "pause", code: 4, want: ModePause},
		{name: "negative falls back to off", code: -1, want: ModeOff},
		{name: "out of range falls back to off", code: 5, want: ModeOff},
		{name: "large falls back to off", code: 1000, want: ModeOff},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ModeFromCode(tc.code); got != tc.want {
				t.Fatalf("ModeFromCode(%d) = %v; want %v", tc.code, got, tc.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		in     string
		want   Mode
		wantOK bool
	}{
		{name: "exact label", in: "Normal", want: ModeNormal, wantOK: true},
		{name: "uppercase", in: "OFF", want: ModeOff, wantOK: true},
		{name: "lowercase", in: "solar", want: ModeSolar, wantOK: true},
		{name: "padded", in: "  Smart ", want: ModeSmart, wantOK: true},
		{name: "pause", in: "pause", want: ModePause, wantOK: true},
		{name: "unknown", in: "turbo", want: ModeOff, wantOK: false},
		{name: "empty", in: "", want: ModeOff, wantOK: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseMode(tc.in)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("ParseMode(%q) = (%v, %v); want (%v, %v)", tc.in, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestModeJSONRoundTrip(t *testing.T) {
	t.Parallel()

	for _, m := range []Mode{ModeOff, ModeNormal, ModeSolar, ModeSmart, ModePause} {
		buf, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("marshal %v: %v", m, err)
		}
		var back Mode
		if err := json.Unmarshal(buf, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", buf, err)
		}
		if back != m {
			t.Fatalf("round trip %v -> %s -> %v", m, buf, back)
		}
	}
}

func TestModeUnmarshalAcceptsCodes(t *testing.T) {
	t.Parallel()

	var m Mode
	if err := json.Unmarshal([]byte(`3`), &m); err != nil {
		t.Fatalf("unmarshal code: %v", err)
	}
	if m != ModeSmart {
		t.Fatalf("expected Smart, got %v", m)
	}
	if err := json.Unmarshal([]byte(`"not-a-mode"`), &m); err != nil {
		t.Fatalf("unknown label should not error: %v", err)
	}
	if m != ModeOff {
		t.Fatalf("unknown label should map to Off, got %v", m)
	}
}
