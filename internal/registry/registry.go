// Package registry owns the directory of every identity known to the server:
// anonymous connections, logged-in users, and offline users waiting to be
// reattached. All lookups and mutations from the command handlers and the
// connection workers funnel through here, guarded by one RWMutex that is
// never held across I/O.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pichat-dev/pichat-go-server/internal/model"
)

// OnlineMark tags connected identities in USERS listings.
const OnlineMark = "*"

type client struct {
	addr      string
	uid       uuid.UUID
	jobs      []model.Job
	login     string
	password  string
	lastCmdAt time.Time
	online    bool
}

func (c *client) authenticated() bool {
	return c.login != ""
}

func (c *client) displayName() string {
	if c.login != "" {
		return c.login
	}
	return c.addr
}

// Registry is the single consistency domain of the server. Records are only
// reachable by uid or login through its methods; no caller ever holds a
// reference into the map.
type Registry struct {
	mu        sync.RWMutex
	clients   map[uuid.UUID]*client
	rateLimit time.Duration
	now       func() time.Time
}

func New(rateLimit time.Duration) *Registry {
	return &Registry{
		clients:   make(map[uuid.UUID]*client),
		rateLimit: rateLimit,
		now:       time.Now,
	}
}

// AddClient creates an ephemeral online record for a freshly accepted
// connection and returns its id.
func (r *Registry) AddClient(addr string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid := uuid.New()
	r.clients[uid] = &client{
		addr:      addr,
		uid:       uid,
		lastCmdAt: r.now(),
		online:    true,
	}
	return uid
}

// Remove deletes a record outright, pending jobs included.
func (r *Registry) Remove(uid uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, uid)
}

// RemoveByLogin deletes the durable record holding login. An offline record
// is deleted outright. An online one is demoted to ephemeral and its queue
// replaced with a single Exit job: the owning worker closes the connection on
// its next drain and the termination path then removes the record, so the
// worker never races a missing entry. Reports whether the login existed.
func (r *Registry) RemoveByLogin(login string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, cli := range r.clients {
		if cli.login != login {
			continue
		}
		if cli.online {
			cli.login = ""
			cli.password = ""
			cli.jobs = []model.Job{model.NewExitJob()}
		} else {
			delete(r.clients, uid)
		}
		return true
	}
	return false
}

func (r *Registry) SetOnlineStatus(uid uuid.UUID, online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cli, ok := r.clients[uid]; ok {
		cli.online = online
	}
}

func (r *Registry) IsAuthenticated(uid uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cli, ok := r.clients[uid]
	return ok && cli.authenticated()
}

// Username returns the login of uid, or false when the identity is unknown or
// still anonymous.
func (r *Registry) Username(uid uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cli, ok := r.clients[uid]
	if !ok || !cli.authenticated() {
		return "", false
	}
	return cli.login, true
}

// Addr returns the current transport address bound to uid.
func (r *Registry) Addr(uid uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cli, ok := r.clients[uid]
	if !ok {
		return "", false
	}
	return cli.addr, true
}

// ResolveLogin maps a login to the id of the record holding it.
func (r *Registry) ResolveLogin(login string) (uuid.UUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for uid, cli := range r.clients {
		if cli.login == login {
			return uid, true
		}
	}
	return uuid.Nil, false
}

// ListDisplayNames returns every known identity's display name, online
// entries first and lexicographically within each group. The caller's own
// entry is tagged "(you)", connected ones carry the online mark.
func (r *Registry) ListDisplayNames(self uuid.UUID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type entry struct {
		name   string
		online bool
		you    bool
	}
	entries := make([]entry, 0, len(r.clients))
	for uid, cli := range r.clients {
		entries = append(entries, entry{name: cli.displayName(), online: cli.online, you: uid == self})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].online != entries[j].online {
			return entries[i].online
		}
		return entries[i].name < entries[j].name
	})

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.name
		if e.you {
			name += " (you)"
		}
		if e.online {
			name += " " + OnlineMark
		}
		names = append(names, name)
	}
	return names
}

// CheckAndUpdateRateLimit enforces the minimum inter-command interval for
// uid. The last-command timestamp only advances when the check passes; a
// rejected command leaves the record untouched.
func (r *Registry) CheckAndUpdateRateLimit(uid uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cli, ok := r.clients[uid]
	if !ok {
		return model.ErrNoSuchUser
	}
	now := r.now()
	if now.Sub(cli.lastCmdAt) < r.rateLimit {
		return model.ErrTooFast
	}
	cli.lastCmdAt = now
	return nil
}
