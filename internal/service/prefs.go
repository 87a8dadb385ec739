package service

import (
	"context"
	"strconv"
	"strings"

	"controlling_evse/internal/logger"
	"controlling_evse/internal/models"
	"controlling_evse/internal/repository"
)

const (
	deviceAddressKey = "device_address"
	defaultModeKey   = "default_mode"
)

// PrefsService stores user preferences in the KV store. Reads degrade to
// zero values when the store misbehaves; writes surface their error so the
// API can report a failed save.
type PrefsService struct {
	kv  repository.KV
	log *logger.Logger
}

func NewPrefsService(kv repository.KV, log *logger.Logger) *PrefsService {
	return &PrefsService{kv: kv, log: log}
}

// DeviceAddress returns the stored station address, or "" when unset.
func (s *PrefsService) DeviceAddress(ctx context.Context) string {
	value, ok, err := s.kv.Get(ctx, deviceAddressKey)
	if err != nil {
		if s.log != nil {
			s.log.Warnw("prefs_read_failed", "key", deviceAddressKey, "err", err)
		}
		return ""
	}
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func (s *PrefsService) SetDeviceAddress(ctx context.Context, addr string) error {
	return s.kv.Set(ctx, deviceAddressKey, strings.TrimSpace(addr))
}

// DefaultMode returns the stored preferred mode, or Off when unset.
func (s *PrefsService) DefaultMode(ctx context.Context) models.Mode {
	value, ok, err := s.kv.Get(ctx, defaultModeKey)
	if err != nil {
		if s.log != nil {
			s.log.Warnw("prefs_read_failed", "key", defaultModeKey, "err", err)
		}
		return models.ModeOff
	}
	if !ok {
		return models.ModeOff
	}
	code, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return models.ModeOff
	}
	return models.ModeFromCode(code)
}

func (s *PrefsService) SetDefaultMode(ctx context.Context, m models.Mode) error {
	return s.kv.Set(ctx, defaultModeKey, strconv.Itoa(m.Code()))
}
