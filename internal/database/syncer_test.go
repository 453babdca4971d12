package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pichat-dev/pichat-go-server/internal/model"
)

type stubSource struct {
	records []model.IdentityRecord
}

func (s *stubSource) Snapshot() []model.IdentityRecord {
	return s.records
}

type recordingStore struct {
	mu    sync.Mutex
	saves [][]model.IdentityRecord
}

func (r *recordingStore) Load() ([]model.IdentityRecord, error) {
	return nil, nil
}

func (r *recordingStore) SaveSnapshot(records []model.IdentityRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, records)
	return nil
}

func (r *recordingStore) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func TestSyncerFlush(t *testing.T) {
	source := &stubSource{records: testRecords()}
	store := &recordingStore{}
	s := NewSyncer(source, store, time.Hour)

	require.NoError(t, s.Flush())
	require.Equal(t, 1, store.saveCount())
	assert.Len(t, store.saves[0], 2)
}

func TestSyncerPeriodicRun(t *testing.T) {
	source := &stubSource{records: testRecords()}
	store := &recordingStore{}
	s := NewSyncer(source, store, 10*time.Millisecond)

	go s.run()
	defer func() { _ = s.Invoke(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for store.saveCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.GreaterOrEqual(t, store.saveCount(), 2)
}

func TestSyncerInvokeStopsAndFlushes(t *testing.T) {
	source := &stubSource{}
	store := &recordingStore{}
	s := NewSyncer(source, store, time.Hour)

	go s.run()
	require.NoError(t, s.Invoke(context.Background()))
	assert.Equal(t, 1, store.saveCount())

	// Invoking again must not hang on the already-closed stop channel.
	require.NoError(t, s.Invoke(context.Background()))
}
