package database

import (
	"context"
	"sync"
	"time"

	"github.com/pichat-dev/pichat-go-server/internal/event"
	"github.com/pichat-dev/pichat-go-server/internal/logger"
	"github.com/pichat-dev/pichat-go-server/internal/model"
)

// Snapshotter is the registry side of the persistence contract: a copy-out
// of the authenticated records, taken under a read lock only.
type Snapshotter interface {
	Snapshot() []model.IdentityRecord
}

// Syncer periodically writes the registry snapshot to the store. The copy is
// taken first and the store write happens with no registry lock held. It
// registers itself with the shutdown cleaner so a termination signal flushes
// one last time before exit.
type Syncer struct {
	source   Snapshotter
	store    Store
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewSyncer(source Snapshotter, store Store, interval time.Duration) *Syncer {
	return &Syncer{
		source:   source,
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Syncer) Start() {
	go s.run()
	event.NewCleaner().Add(s)
}

func (s *Syncer) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.Flush(); err != nil {
				logger.ErrorF("Failed to sync registry: %v", err)
			}
		case <-s.stop:
			return
		}
	}
}

// Flush writes the current snapshot synchronously.
func (s *Syncer) Flush() error {
	return s.store.SaveSnapshot(s.source.Snapshot())
}

// Invoke implements event.Callable: stop the loop and run the final flush.
func (s *Syncer) Invoke(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	logger.Info("Flushing registry before shutdown")
	return s.Flush()
}
