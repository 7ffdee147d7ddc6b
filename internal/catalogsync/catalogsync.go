// Package catalogsync periodically refreshes a catalog.MemoryCatalog in
// place so a long-lived server process picks up node-definition updates
// without a restart. One-shot CLI invocations never need this package:
// they load the catalog once and exit.
package catalogsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Source fetches the latest catalog snapshot, in the same JSON array
// shape catalog.MemoryCatalog.Replace expects.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Target is the subset of catalog.MemoryCatalog a Syncer needs.
type Target interface {
	Replace(data []byte) error
}

// Syncer wraps robfig/cron to refresh a Target from a Source on a
// schedule.
type Syncer struct {
	cron    *cron.Cron
	source  Source
	target  Target
	entryID cron.EntryID
	mu      sync.Mutex
}

// NewSyncer builds a Syncer. It does not start refreshing until Start
// is called.
func NewSyncer(source Source, target Target) *Syncer {
	return &Syncer{
		cron:   cron.New(cron.WithSeconds()),
		source: source,
		target: target,
	}
}

// Start registers the refresh job on cronExpr (standard robfig/cron
// syntax, e.g. "0 */15 * * * *" for every 15 minutes) and starts the
// scheduler. It runs one refresh immediately before returning so the
// caller doesn't serve a stale snapshot while waiting for the first tick.
func (s *Syncer) Start(ctx context.Context, cronExpr string) error {
	sched, err := cron.ParseStandard(cronExpr)
	if err != nil {
		if sched, err = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(cronExpr); err != nil {
			return fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
		}
	}

	s.refresh(ctx)

	s.mu.Lock()
	s.entryID = s.cron.Schedule(sched, cron.FuncJob(func() {
		s.refresh(ctx)
	}))
	s.mu.Unlock()

	s.cron.Start()
	slog.Info("catalogsync: started", "cron", cronExpr)
	return nil
}

// Stop gracefully stops the refresh scheduler, waiting for any in-flight
// refresh to finish.
func (s *Syncer) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	slog.Info("catalogsync: stopped")
}

func (s *Syncer) refresh(ctx context.Context) {
	data, err := s.source.Fetch(ctx)
	if err != nil {
		slog.Warn("catalogsync: fetch failed", "err", err)
		return
	}
	if err := s.target.Replace(data); err != nil {
		slog.Warn("catalogsync: replace failed", "err", err)
		return
	}
	slog.Info("catalogsync: refreshed catalog", "bytes", len(data))
}
