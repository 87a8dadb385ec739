package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"controlling_evse/internal/models"
	"controlling_evse/internal/service"
)

func TestHistoryList(t *testing.T) {
	energy := 3.42
	hist := &mockHistory{entries: []models.HistoryEntry{
		{ID: "b", RecordedAt: time.Date(2026, 8, 23, 13, 0, 0, 0, time.UTC), Mode: models.ModeOff, Color: "#555555", ChargedKWh: &energy},
		{ID: "a", RecordedAt: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC), Mode: models.ModeNormal, Color: "#00FF00"},
	}}
	r := newTestRouter(&service.Service{History: hist})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/history", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("history status=%d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Count   int                   `json:"count"`
		Entries []models.HistoryEntry `json:"entries"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 2 || len(resp.Entries) != 2 {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp.Entries[0].ID != "b" {
		t.Fatalf("entries must stay newest-first, got %+v", resp.Entries)
	}
	if resp.Entries[0].ChargedKWh == nil || *resp.Entries[0].ChargedKWh != 3.42 {
		t.Fatalf("energy lost in transit: %+v", resp.Entries[0])
	}
	if resp.Entries[1].ChargedKWh != nil {
		t.Fatalf("energy must stay absent for non-off entries")
	}
}

func TestHistoryClear(t *testing.T) {
	hist := &mockHistory{entries: []models.HistoryEntry{{ID: "a"}}}
	r := newTestRouter(&service.Service{History: hist})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/history", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("clear status=%d", w.Code)
	}
	if hist.clearCalls != 1 || len(hist.entries) != 0 {
		t.Fatalf("clear not delegated: calls=%d entries=%d", hist.clearCalls, len(hist.entries))
	}
}
