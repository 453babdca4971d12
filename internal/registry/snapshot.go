package registry

import (
	"github.com/google/uuid"
	"github.com/pichat-dev/pichat-go-server/internal/model"
)

// Snapshot copies out every authenticated record for the persistence layer.
// Anonymous records are never persisted. The copy is deep enough that the
// caller can serialize it without holding any lock.
func (r *Registry) Snapshot() []model.IdentityRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]model.IdentityRecord, 0, len(r.clients))
	for _, cli := range r.clients {
		if !cli.authenticated() {
			continue
		}
		jobs := make([]model.Job, len(cli.jobs))
		copy(jobs, cli.jobs)
		records = append(records, model.IdentityRecord{
			Addr:      cli.addr,
			UID:       cli.uid,
			Jobs:      jobs,
			Login:     cli.login,
			LastCmdAt: cli.lastCmdAt,
			Password:  cli.password,
			Online:    cli.online,
		})
	}
	return records
}

// Load replaces the registry contents with stored records. Online flags are
// force-reset: no live connection can exist at load time, whatever the store
// says.
func (r *Registry) Load(records []model.IdentityRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients = make(map[uuid.UUID]*client, len(records))
	for _, rec := range records {
		jobs := make([]model.Job, len(rec.Jobs))
		copy(jobs, rec.Jobs)
		r.clients[rec.UID] = &client{
			addr:      rec.Addr,
			uid:       rec.UID,
			jobs:      jobs,
			login:     rec.Login,
			password:  rec.Password,
			lastCmdAt: rec.LastCmdAt,
			online:    false,
		}
	}
}
