package service

import (
	"context"
	"time"

	"controlling_evse/internal/device"
	"controlling_evse/internal/logger"
	"controlling_evse/internal/metrics"
	"controlling_evse/internal/models"
	"controlling_evse/internal/notify"
	"controlling_evse/internal/repository"
)

// Transport is the device-facing HTTP client. Satisfied by *device.Client.
type Transport interface {
	Read(ctx context.Context, host string) (*models.DeviceSnapshot, error)
	Apply(ctx context.Context, host string, params []device.Param) (*models.DeviceSnapshot, error)
}

// Sync owns the republished device status and performs all device
// operations. Operations are serialized internally: one in-flight call
// per service, later callers wait.
type Sync interface {
	Status() models.DeviceStatus
	Refresh(ctx context.Context) error
	SetMode(ctx context.Context, mode models.Mode) error
	SetOverrideCurrent(ctx context.Context, amperes int) error
	SetSchedule(ctx context.Context, start time.Time, mode models.Mode) error
	SetCableLock(ctx context.Context, locked bool) error
	Reboot(ctx context.Context) error
	Subscribe() chan models.DeviceStatus
	Unsubscribe(ch chan models.DeviceStatus)
}

// History is the bounded newest-first log of mode transitions.
type History interface {
	Load(ctx context.Context)
	Entries() []models.HistoryEntry
	Append(ctx context.Context, e models.HistoryEntry)
	Clear(ctx context.Context)
}

// Prefs stores the user's preferred device address and default mode.
type Prefs interface {
	DeviceAddress(ctx context.Context) string
	SetDeviceAddress(ctx context.Context, addr string) error
	DefaultMode(ctx context.Context) models.Mode
	SetDefaultMode(ctx context.Context, m models.Mode) error
}

// Poller runs the background refresh loop.
// Stop via context cancellation in main() for graceful shutdown.
type Poller interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Sync
	History
	Prefs
	Poller
}

// NewService wires the repository layer, transport, and side channels into
// concrete services.
func NewService(repos *repository.Repository, transport Transport, notifier notify.Notifier, appMetrics *metrics.AppMetrics, log *logger.Logger) *Service {
	history := NewHistoryService(repos.KV, log)
	prefs := NewPrefsService(repos.KV, log)
	syncSvc := NewSyncService(transport, history, prefs, notifier, appMetrics, log)
	return &Service{
		Sync:    syncSvc,
		History: history,
		Prefs:   prefs,
		Poller:  NewPollerService(syncSvc, log),
	}
}
