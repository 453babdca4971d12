// Package api holds the command dispatch table and its handlers. It is the
// only client of the registry: every command a connection worker parses ends
// up in Dispatch, which enforces the command contract (existence, rate limit,
// required arguments) before a handler runs.
package api

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pichat-dev/pichat-go-server/internal/model"
	"github.com/pichat-dev/pichat-go-server/internal/protocol"
	"github.com/pichat-dev/pichat-go-server/internal/registry"
)

const Version = "0.3.2"

// AdminPrefix marks privileged commands. They are hidden from HELP and, for
// anyone but the configured admin, indistinguishable from unknown commands.
const AdminPrefix = "_"

// HandleInfo is what a handler gets to work with: the parsed arguments, the
// caller's identity id and its current socket address.
type HandleInfo struct {
	Args map[string]string
	UID  uuid.UUID
	Addr string
}

type handler func(*API, HandleInfo) (string, error)

type rule struct {
	required []string
	handler  handler
}

// rules is filled in init: help iterates the table to list commands, so a
// composite literal at package level would form an initialization cycle.
var rules map[string]rule

func init() {
	rules = map[string]rule{
		"HELP":     {nil, (*API).help},
		"PING":     {nil, (*API).ping},
		"ECHO":     {[]string{"msg"}, (*API).echo},
		"USERS":    {nil, (*API).users},
		"LOGIN":    {[]string{"username", "password"}, (*API).login},
		"SEND":     {[]string{"username", "msg"}, (*API).sendTo},
		"SNDALL":   {[]string{"msg"}, (*API).sendToAll},
		"EXIT":     {nil, (*API).exit},
		"_DELUSER": {[]string{"username"}, (*API).delUser},
		"_FLUSH":   {[]string{"username"}, (*API).flushUser},
	}
}

type API struct {
	reg        *registry.Registry
	adminLogin string
	now        func() time.Time
}

func New(reg *registry.Registry, adminLogin string) *API {
	return &API{reg: reg, adminLogin: adminLogin, now: time.Now}
}

// Dispatch looks the command up, applies the per-identity rate limit, checks
// required arguments and runs the handler. Privileged commands issued by
// anyone but the admin fall through to the unknown-command error on purpose.
func (a *API) Dispatch(cmd protocol.Command, uid uuid.UUID, addr string) (string, error) {
	name := strings.ToUpper(strings.TrimSpace(cmd.Name))
	r, ok := rules[name]
	if !ok {
		return "", model.ErrUnknownCommand
	}
	if strings.HasPrefix(name, AdminPrefix) && !a.isAdmin(uid) {
		return "", model.ErrUnknownCommand
	}

	if err := a.reg.CheckAndUpdateRateLimit(uid); err != nil {
		return "", err
	}

	for _, argn := range r.required {
		if _, ok := cmd.Args[argn]; !ok {
			return "", &model.WrongArgsError{Required: r.required}
		}
	}

	return r.handler(a, HandleInfo{Args: cmd.Args, UID: uid, Addr: addr})
}

func (a *API) isAdmin(uid uuid.UUID) bool {
	if a.adminLogin == "" {
		return false
	}
	name, ok := a.reg.Username(uid)
	return ok && name == a.adminLogin
}

// senderName is how the caller appears in delivered messages: its login, or
// its address while still anonymous.
func (a *API) senderName(h HandleInfo) string {
	if name, ok := a.reg.Username(h.UID); ok {
		return name
	}
	return h.Addr
}

func (a *API) help(HandleInfo) (string, error) {
	cmds := make([]string, 0, len(rules))
	for name := range rules {
		if strings.HasPrefix(name, AdminPrefix) {
			continue
		}
		cmds = append(cmds, name)
	}
	sort.Strings(cmds)
	return "v. " + Version + " \nAvailable commands: " + strings.Join(cmds, ", "), nil
}

func (a *API) ping(HandleInfo) (string, error) {
	return "", nil
}

func (a *API) echo(h HandleInfo) (string, error) {
	return h.Args["msg"], nil
}

func (a *API) users(h HandleInfo) (string, error) {
	return strings.Join(a.reg.ListDisplayNames(h.UID), "\n"), nil
}

func (a *API) login(h HandleInfo) (string, error) {
	username := h.Args["username"]
	if err := model.ValidateLogin(username); err != nil {
		return "", err
	}
	if err := a.reg.SetLogin(h.UID, h.Addr, username, h.Args["password"]); err != nil {
		return "", err
	}
	return "Now you are " + username, nil
}

func (a *API) sendTo(h HandleInfo) (string, error) {
	if !a.reg.IsAuthenticated(h.UID) {
		return "", model.ErrNotLoggedIn
	}
	receiver, ok := a.reg.ResolveLogin(h.Args["username"])
	if !ok {
		return "", model.ErrNoSuchUser
	}
	date := a.now().Format(protocol.DateFormat)
	job := model.NewMessageJob(date, a.senderName(h), h.Args["msg"])
	if err := a.reg.EnqueueJob(receiver, job); err != nil {
		return "", err
	}
	return "Sent!", nil
}

func (a *API) sendToAll(h HandleInfo) (string, error) {
	if !a.reg.IsAuthenticated(h.UID) {
		return "", model.ErrNotLoggedIn
	}
	date := a.now().Format(protocol.DateFormat)
	job := model.NewMessageJob(date, a.senderName(h)+" (to all)", h.Args["msg"])
	a.reg.EnqueueBroadcastJob(job)
	return "Sent!", nil
}

func (a *API) exit(h HandleInfo) (string, error) {
	if err := a.reg.EnqueueJob(h.UID, model.NewExitJob()); err != nil {
		return "", err
	}
	return "Bye", nil
}

func (a *API) delUser(h HandleInfo) (string, error) {
	if !a.reg.RemoveByLogin(h.Args["username"]) {
		return "", model.ErrNoSuchUser
	}
	return "Deleted " + h.Args["username"], nil
}

func (a *API) flushUser(h HandleInfo) (string, error) {
	receiver, ok := a.reg.ResolveLogin(h.Args["username"])
	if !ok {
		return "", model.ErrNoSuchUser
	}
	a.reg.ClearJobs(receiver)
	return "Flushed " + h.Args["username"], nil
}
