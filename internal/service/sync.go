package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"controlling_evse/internal/color"
	"controlling_evse/internal/device"
	"controlling_evse/internal/logger"
	"controlling_evse/internal/metrics"
	"controlling_evse/internal/models"
	"controlling_evse/internal/notify"

	"github.com/google/uuid"
)

var (
	// ErrNoDeviceAddress rejects operations before any network call when
	// no station address is configured.
	ErrNoDeviceAddress = errors.New("no device address configured")

	errInvalidCurrent = errors.New("override current must be a positive amperage")
)

const (
	notificationTitle = "Charging mode changed"

	// The station drops off the network briefly after a reboot command;
	// give it a moment before reading back.
	rebootSettleDelay = time.Second
)

// Command action names, used for metrics labels and logging.
const (
	actionSetMode     = "set_mode"
	actionSetCurrent  = "set_override_current"
	actionSetSchedule = "set_schedule"
	actionCableLock   = "set_cable_lock"
	actionReboot      = "reboot"
)

// SyncService is the single writer of the republished DeviceStatus. It
// orchestrates transport calls, detects mode transitions, appends history
// entries, and fires notifications, at most once per transition.
type SyncService struct {
	transport Transport
	history   History
	prefs     Prefs
	notifier  notify.Notifier
	metrics   *metrics.AppMetrics
	log       *logger.Logger

	// opMu serializes operations: at most one in-flight device call.
	opMu sync.Mutex

	// statusMu guards the status record and the subscriber set.
	statusMu sync.RWMutex
	status   models.DeviceStatus
	subs     map[chan models.DeviceStatus]struct{}
}

func NewSyncService(transport Transport, history History, prefs Prefs, notifier notify.Notifier, appMetrics *metrics.AppMetrics, log *logger.Logger) *SyncService {
	return &SyncService{
		transport: transport,
		history:   history,
		prefs:     prefs,
		notifier:  notifier,
		metrics:   appMetrics,
		log:       log,
		subs:      make(map[chan models.DeviceStatus]struct{}),
	}
}

// Status returns a copy of the current republished status.
func (s *SyncService) Status() models.DeviceStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

// Subscribe registers a status stream. Updates are delivered best-effort:
// a subscriber that falls behind skips intermediate snapshots.
func (s *SyncService) Subscribe() chan models.DeviceStatus {
	ch := make(chan models.DeviceStatus, 8)
	s.statusMu.Lock()
	s.subs[ch] = struct{}{}
	s.statusMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a status stream.
func (s *SyncService) Unsubscribe(ch chan models.DeviceStatus) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
}

// publish applies a mutation to the owned status and fans the new snapshot
// out to subscribers.
func (s *SyncService) publish(mutate func(*models.DeviceStatus)) {
	s.statusMu.Lock()
	mutate(&s.status)
	s.status.UpdatedAt = time.Now().UTC()
	snapshot := s.status
	for ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
		}
	}
	s.statusMu.Unlock()
}

// Refresh reads the station state and runs the observe step. On failure
// only the status message changes; mode, color, and cable lock keep their
// last known values.
func (s *SyncService) Refresh(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *SyncService) refreshLocked(ctx context.Context) error {
	host, err := s.deviceHost(ctx)
	if err != nil {
		return err
	}
	snap, err := s.transport.Read(ctx, host)
	s.metrics.ObserveRefresh(err)
	if err != nil {
		s.publish(func(st *models.DeviceStatus) { st.Message = err.Error() })
		return err
	}
	s.publish(func(st *models.DeviceStatus) { st.Message = "Status updated" })
	s.observe(ctx, snap)
	return nil
}

// SetMode switches the charging mode.
func (s *SyncService) SetMode(ctx context.Context, mode models.Mode) error {
	return s.command(ctx, actionSetMode, []device.Param{
		device.IntParam("mode", mode.Code()),
	})
}

// SetOverrideCurrent overrides the charge current in amperes.
func (s *SyncService) SetOverrideCurrent(ctx context.Context, amperes int) error {
	if amperes <= 0 {
		return errInvalidCurrent
	}
	return s.command(ctx, actionSetCurrent, []device.Param{
		device.IntParam("override_current", amperes),
	})
}

// SetSchedule arms a delayed start at the given time in the given mode.
func (s *SyncService) SetSchedule(ctx context.Context, start time.Time, mode models.Mode) error {
	return s.command(ctx, actionSetSchedule, []device.Param{
		device.TimeParam("starttime", start),
		device.IntParam("mode", mode.Code()),
	})
}

// SetCableLock locks or unlocks the charging cable. The requested state is
// republished immediately (optimistic); a later observe step reconciles it
// against what the device actually reports. The optimistic publish happens
// while the operation lock is still held, so a concurrent refresh cannot
// land between the apply and the publish and then be overwritten.
func (s *SyncService) SetCableLock(ctx context.Context, locked bool) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.commandLocked(ctx, actionCableLock, []device.Param{
		device.FlagParam("cablelock", locked),
	})
	if err != nil {
		return err
	}
	s.publish(func(st *models.DeviceStatus) { st.CableLocked = locked })
	return nil
}

// Reboot restarts the station, waits for it to settle, and refreshes.
func (s *SyncService) Reboot(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	host, err := s.deviceHost(ctx)
	if err != nil {
		return err
	}
	_, err = s.transport.Apply(ctx, host, []device.Param{device.FlagParam("reboot", true)})
	s.metrics.ObserveCommand(actionReboot, err)
	if err != nil {
		s.publish(func(st *models.DeviceStatus) { st.Message = err.Error() })
		return err
	}
	s.publish(func(st *models.DeviceStatus) { st.Message = "Rebooting device" })

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(rebootSettleDelay):
	}
	return s.refreshLocked(ctx)
}

// command applies one settings change and runs the observe step on success.
func (s *SyncService) command(ctx context.Context, action string, params []device.Param) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.commandLocked(ctx, action, params)
}

func (s *SyncService) commandLocked(ctx context.Context, action string, params []device.Param) error {
	host, err := s.deviceHost(ctx)
	if err != nil {
		return err
	}
	snap, err := s.transport.Apply(ctx, host, params)
	s.metrics.ObserveCommand(action, err)
	if err != nil {
		s.publish(func(st *models.DeviceStatus) { st.Message = err.Error() })
		return err
	}
	s.publish(func(st *models.DeviceStatus) { st.Message = commandMessage(snap) })
	s.observe(ctx, snap)
	return nil
}

// observe is the shared post-decode step: republish color and cable lock,
// and react to a mode transition at most once.
func (s *SyncService) observe(ctx context.Context, snap *models.DeviceSnapshot) {
	mode := snap.ResolveMode()
	hexColor := color.ForMode(mode, snap)

	transitioned := false
	s.publish(func(st *models.DeviceStatus) {
		st.Color = hexColor
		if snap.CableLocked != nil {
			st.CableLocked = *snap.CableLocked
		}
		if st.Mode != mode {
			st.Mode = mode
			transitioned = true
		}
	})
	if !transitioned {
		return
	}

	var energy *float64
	if mode == models.ModeOff && snap.ChargedKWh != nil {
		v := *snap.ChargedKWh
		energy = &v
	}
	s.history.Append(ctx, models.HistoryEntry{
		ID:         uuid.NewString(),
		RecordedAt: time.Now().UTC(),
		Mode:       mode,
		Color:      hexColor,
		ChargedKWh: energy,
	})
	s.metrics.ObserveTransition()
	if s.notifier != nil {
		s.notifier.Notify(notificationTitle, mode.Label())
	}
	if s.log != nil {
		s.log.Infow("mode_transition", "mode", mode.Label())
	}
}

// commandMessage combines the reported mode and amperage into the status line.
func commandMessage(snap *models.DeviceSnapshot) string {
	mode := snap.ResolveMode()
	if snap.OverrideCurrent != nil {
		return fmt.Sprintf("%s at %dA", mode.Label(), *snap.OverrideCurrent)
	}
	return mode.Label()
}

func (s *SyncService) deviceHost(ctx context.Context) (string, error) {
	host := s.prefs.DeviceAddress(ctx)
	if host == "" {
		return "", ErrNoDeviceAddress
	}
	return host, nil
}
