package service

import (
	"context"
	"errors"
	"time"

	"controlling_evse/internal/logger"
)

// PollerService drives the passive refresh loop. It shares the sync
// service's single-flight guard with user-triggered refreshes, so the two
// never interleave.
type PollerService struct {
	sync Sync
	log  *logger.Logger
}

func NewPollerService(sync Sync, log *logger.Logger) *PollerService {
	return &PollerService{sync: sync, log: log}
}

// Run ticks at the given interval until ctx is canceled.
func (p *PollerService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			err := p.sync.Refresh(ctx)
			switch {
			case err == nil:
			case errors.Is(err, ErrNoDeviceAddress):
				// nothing configured yet; keep ticking quietly
			default:
				if p.log != nil {
					p.log.Debugw("poll_refresh_failed", "err", err)
				}
			}
		}
	}
}
