package service

import (
	"context"
	"encoding/json"
	"sync"

	"controlling_evse/internal/logger"
	"controlling_evse/internal/models"
	"controlling_evse/internal/repository"
)

const (
	// historyKey is the KV slot holding the serialized entry sequence.
	historyKey = "mode_history"

	// historyCap bounds the retained entries; the oldest are trimmed at
	// append time.
	historyCap = 50
)

// HistoryService keeps the in-memory newest-first transition log and
// mirrors every mutation to the KV store. Load/append/clear are atomic
// with respect to each other.
type HistoryService struct {
	kv  repository.KV
	log *logger.Logger

	mu      sync.Mutex
	entries []models.HistoryEntry
}

func NewHistoryService(kv repository.KV, log *logger.Logger) *HistoryService {
	return &HistoryService{kv: kv, log: log}
}

// Load restores the persisted sequence. A missing or corrupt stored value
// yields an empty log; persistence problems are logged, never surfaced.
func (s *HistoryService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(ctx, historyKey)
	if err != nil {
		if s.log != nil {
			s.log.Warnw("history_load_failed", "err", err)
		}
		s.entries = nil
		return
	}
	if !ok || raw == "" {
		s.entries = nil
		return
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		if s.log != nil {
			s.log.Warnw("history_corrupt_discarded", "err", err)
		}
		s.entries = nil
		return
	}
	s.entries = entries
}

// Entries returns a copy of the ordered sequence, newest first.
func (s *HistoryService) Entries() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Append inserts the entry at the front, trims beyond the cap, and
// persists the full sequence.
func (s *HistoryService) Append(ctx context.Context, e models.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append([]models.HistoryEntry{e}, s.entries...)
	if len(s.entries) > historyCap {
		s.entries = s.entries[:historyCap]
	}
	s.persistLocked(ctx)
}

// Clear empties the sequence and persists the empty result.
func (s *HistoryService) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.persistLocked(ctx)
}

func (s *HistoryService) persistLocked(ctx context.Context) {
	buf, err := json.Marshal(s.entries)
	if err != nil {
		if s.log != nil {
			s.log.Warnw("history_marshal_failed", "err", err)
		}
		return
	}
	if err := s.kv.Set(ctx, historyKey, string(buf)); err != nil {
		if s.log != nil {
			s.log.Warnw("history_persist_failed", "err", err)
		}
	}
}
