package registry

import (
	"github.com/google/uuid"
	"github.com/pichat-dev/pichat-go-server/internal/model"
)

// EnqueueJob appends a job to the identity's pending queue. The queue is
// unbounded; delivery order is the enqueue order.
func (r *Registry) EnqueueJob(uid uuid.UUID, job model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cli, ok := r.clients[uid]
	if !ok {
		return model.ErrNoSuchUser
	}
	cli.jobs = append(cli.jobs, job)
	return nil
}

// EnqueueBroadcastJob appends the job to every known identity's queue, the
// sender's own included.
func (r *Registry) EnqueueBroadcastJob(job model.Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cli := range r.clients {
		cli.jobs = append(cli.jobs, job)
	}
}

// DrainJobs atomically takes the identity's whole queue. It returns nil when
// there is nothing pending so callers can skip work without a second lookup.
func (r *Registry) DrainJobs(uid uuid.UUID) []model.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	cli, ok := r.clients[uid]
	if !ok || len(cli.jobs) == 0 {
		return nil
	}
	jobs := cli.jobs
	cli.jobs = nil
	return jobs
}

// ClearJobs drops the identity's pending queue without delivering it.
func (r *Registry) ClearJobs(uid uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cli, ok := r.clients[uid]
	if !ok {
		return false
	}
	cli.jobs = nil
	return true
}
