package registry

import (
	"github.com/google/uuid"
	"github.com/pichat-dev/pichat-go-server/internal/model"
)

// SetLogin runs the login/reattachment state machine for the connection
// identified by uid, currently speaking from addr.
//
// Renaming: an already-authenticated caller changes its own login in place,
// unless some other record holds the name. Claiming: an anonymous caller
// takes an unused name by promoting its ephemeral record. Reattachment: an
// anonymous caller logging into an existing offline name merges into that
// durable record — the durable record adopts the caller's uid and addr and
// keeps its own job queue, while the caller's ephemeral record is discarded.
// A name that is online stays untouchable regardless of password.
func (r *Registry) SetLogin(uid uuid.UUID, addr, login, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cli, ok := r.clients[uid]
	if !ok {
		return model.ErrNoSuchUser
	}

	if cli.authenticated() {
		for other, c := range r.clients {
			if c.login == login && other != uid {
				return model.ErrLoginAlreadyExists
			}
		}
		cli.login = login
		cli.password = password
		cli.online = true
		return nil
	}

	var bound *client
	var boundUID uuid.UUID
	for other, c := range r.clients {
		if c.login == login {
			bound, boundUID = c, other
			break
		}
	}

	if bound == nil {
		// Name is free: promote the ephemeral record in place.
		cli.login = login
		cli.password = password
		cli.online = true
		return nil
	}

	// An online name fails before any password comparison happens.
	if bound.online {
		return model.ErrAlreadyLoggedIn
	}
	if bound.password != password {
		return model.ErrWrongPassword
	}

	// Reattachment: the durable record wins, the newcomer is merged away.
	// It adopts the newcomer's uid so the owning worker keeps a valid id.
	delete(r.clients, uid)
	delete(r.clients, boundUID)
	bound.uid = uid
	bound.addr = addr
	bound.online = true
	r.clients[uid] = bound
	return nil
}
