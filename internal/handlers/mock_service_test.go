package handlers

import (
	"context"
	"sync/atomic"
	"time"

	"controlling_evse/internal/models"
	"controlling_evse/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockSync struct {
	status     models.DeviceStatus
	refreshErr error
	cmdErr     error

	refreshCalls int
	rebootCalls  int
	setModeCalls int
	lastMode     models.Mode
	lastAmperes  int
	lastStart    time.Time
	lastLocked   bool

	updates    chan models.DeviceStatus
	unsubCalls atomic.Int32
}

func (m *mockSync) Status() models.DeviceStatus { return m.status }

func (m *mockSync) Refresh(context.Context) error {
	m.refreshCalls++
	return m.refreshErr
}

func (m *mockSync) SetMode(_ context.Context, mode models.Mode) error {
	m.setModeCalls++
	m.lastMode = mode
	return m.cmdErr
}

func (m *mockSync) SetOverrideCurrent(_ context.Context, amperes int) error {
	m.lastAmperes = amperes
	return m.cmdErr
}

func (m *mockSync) SetSchedule(_ context.Context, start time.Time, mode models.Mode) error {
	m.lastStart = start
	m.lastMode = mode
	return m.cmdErr
}

func (m *mockSync) SetCableLock(_ context.Context, locked bool) error {
	m.lastLocked = locked
	return m.cmdErr
}

func (m *mockSync) Reboot(context.Context) error {
	m.rebootCalls++
	return m.cmdErr
}

func (m *mockSync) Subscribe() chan models.DeviceStatus {
	if m.updates == nil {
		m.updates = make(chan models.DeviceStatus, 8)
	}
	return m.updates
}

func (m *mockSync) Unsubscribe(chan models.DeviceStatus) { m.unsubCalls.Add(1) }

type mockHistory struct {
	entries    []models.HistoryEntry
	clearCalls int
}

func (m *mockHistory) Load(context.Context) {}

func (m *mockHistory) Entries() []models.HistoryEntry { return m.entries }

func (m *mockHistory) Append(_ context.Context, e models.HistoryEntry) {
	m.entries = append([]models.HistoryEntry{e}, m.entries...)
}

func (m *mockHistory) Clear(context.Context) {
	m.clearCalls++
	m.entries = nil
}

type mockPrefs struct {
	addr       string
	mode       models.Mode
	setAddrErr error
}

func (m *mockPrefs) DeviceAddress(context.Context) string { return m.addr }

func (m *mockPrefs) SetDeviceAddress(_ context.Context, addr string) error {
	if m.setAddrErr != nil {
		return m.setAddrErr
	}
	m.addr = addr
	return nil
}

func (m *mockPrefs) DefaultMode(context.Context) models.Mode { return m.mode }

func (m *mockPrefs) SetDefaultMode(_ context.Context, mode models.Mode) error {
	m.mode = mode
	return nil
}

// newTestRouter builds a router over mocked services.
func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, nil)
	return h.InitRoutes()
}
