package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"controlling_evse/internal/models"
	"controlling_evse/internal/service"
)

func postJSON(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBuffer(nil)
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestDeviceStatusAndRefresh(t *testing.T) {
	sy := &mockSync{status: models.DeviceStatus{
		Message:     "Normal at 16A",
		Color:       "#00FF00",
		Mode:        models.ModeNormal,
		CableLocked: false,
	}}
	s := &service.Service{Sync: sy}
	r := newTestRouter(s)

	// GET status
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/device/status", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var st models.DeviceStatus
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if st.Mode != models.ModeNormal || st.Color != "#00FF00" {
		t.Fatalf("unexpected status: %+v", st)
	}

	// POST refresh → 200, calls Refresh and includes state
	w = postJSON(t, r, "/api/v1/device/refresh", "")
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status=%d, body=%s", w.Code, w.Body.String())
	}
	if sy.refreshCalls != 1 {
		t.Fatalf("expected Refresh to be called once, got %d", sy.refreshCalls)
	}
	var resp struct {
		Status string              `json:"status"`
		State  models.DeviceStatus `json:"state"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != statusRefreshed {
		t.Fatalf("expected status %q, got %q", statusRefreshed, resp.Status)
	}
	if resp.State.Message != "Normal at 16A" {
		t.Fatalf("state missing/invalid in response: %+v", resp.State)
	}
}

func TestDeviceRefreshErrorMapping(t *testing.T) {
	// no address → 400
	sy := &mockSync{refreshErr: service.ErrNoDeviceAddress}
	r := newTestRouter(&service.Service{Sync: sy})
	w := postJSON(t, r, "/api/v1/device/refresh", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing address, got %d", w.Code)
	}

	// device failure → 502 with the error message
	sy = &mockSync{refreshErr: errors.New("device returned HTTP 500")}
	r = newTestRouter(&service.Service{Sync: sy})
	w = postJSON(t, r, "/api/v1/device/refresh", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for device failure, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "500") {
		t.Fatalf("expected status code in body, got %s", w.Body.String())
	}
}

func TestDeviceSetMode(t *testing.T) {
	sy := &mockSync{}
	r := newTestRouter(&service.Service{Sync: sy})

	w := postJSON(t, r, "/api/v1/device/mode", `{"mode":"solar"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("mode status=%d, body=%s", w.Code, w.Body.String())
	}
	if sy.setModeCalls != 1 || sy.lastMode != models.ModeSolar {
		t.Fatalf("wrong SetMode call: calls=%d mode=%v", sy.setModeCalls, sy.lastMode)
	}

	// unknown mode → 400, no service call
	w = postJSON(t, r, "/api/v1/device/mode", `{"mode":"turbo"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown mode, got %d", w.Code)
	}
	if sy.setModeCalls != 1 {
		t.Fatalf("service must not be called for unknown mode")
	}

	// missing body → 400
	w = postJSON(t, r, "/api/v1/device/mode", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", w.Code)
	}
}

func TestDeviceSetOverrideCurrent(t *testing.T) {
	sy := &mockSync{}
	r := newTestRouter(&service.Service{Sync: sy})

	w := postJSON(t, r, "/api/v1/device/current", `{"amperes":16}`)
	if w.Code != http.StatusOK {
		t.Fatalf("current status=%d, body=%s", w.Code, w.Body.String())
	}
	if sy.lastAmperes != 16 {
		t.Fatalf("amperes=%d", sy.lastAmperes)
	}

	sy.cmdErr = errors.New("override current must be a positive amperage")
	w = postJSON(t, r, "/api/v1/device/current", `{"amperes":-3}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid amperage, got %d", w.Code)
	}
}

func TestDeviceSetSchedule(t *testing.T) {
	sy := &mockSync{}
	r := newTestRouter(&service.Service{Sync: sy})

	w := postJSON(t, r, "/api/v1/device/schedule", `{"start_time":"2026-08-23T07:30:00Z","mode":"normal"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("schedule status=%d, body=%s", w.Code, w.Body.String())
	}
	want := time.Date(2026, 8, 23, 7, 30, 0, 0, time.UTC)
	if !sy.lastStart.Equal(want) || sy.lastMode != models.ModeNormal {
		t.Fatalf("wrong schedule params: start=%v mode=%v", sy.lastStart, sy.lastMode)
	}

	w = postJSON(t, r, "/api/v1/device/schedule", `{"start_time":"not-a-time","mode":"normal"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad timestamp, got %d", w.Code)
	}
}

func TestDeviceCableLock(t *testing.T) {
	sy := &mockSync{}
	r := newTestRouter(&service.Service{Sync: sy})

	// false must bind as a present value, not as "missing"
	w := postJSON(t, r, "/api/v1/device/cablelock", `{"locked":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("cablelock status=%d, body=%s", w.Code, w.Body.String())
	}
	if sy.lastLocked {
		t.Fatalf("expected locked=false to be passed through")
	}

	w = postJSON(t, r, "/api/v1/device/cablelock", `{"locked":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("cablelock status=%d, body=%s", w.Code, w.Body.String())
	}
	if !sy.lastLocked {
		t.Fatalf("expected locked=true to be passed through")
	}

	w = postJSON(t, r, "/api/v1/device/cablelock", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing flag, got %d", w.Code)
	}
}

func TestDeviceReboot(t *testing.T) {
	sy := &mockSync{}
	r := newTestRouter(&service.Service{Sync: sy})

	w := postJSON(t, r, "/api/v1/device/reboot", "")
	if w.Code != http.StatusOK {
		t.Fatalf("reboot status=%d, body=%s", w.Code, w.Body.String())
	}
	if sy.rebootCalls != 1 {
		t.Fatalf("reboot calls=%d", sy.rebootCalls)
	}
	var resp struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != statusRebooting {
		t.Fatalf("expected %q, got %q", statusRebooting, resp.Status)
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
}
