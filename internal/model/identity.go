package model

import (
	"time"

	"github.com/google/uuid"
)

// IdentityRecord is the persisted form of one registry entry. Only identities
// that have authenticated at least once are ever written out; ephemeral ones
// die with their connection. An empty Login means the record is still
// anonymous (logins are 1-20 characters, so the empty string is never valid).
type IdentityRecord struct {
	Addr      string    `json:"addr" bson:"addr"`
	UID       uuid.UUID `json:"uid" bson:"uid"`
	Jobs      []Job     `json:"jobs" bson:"jobs"`
	Login     string    `json:"login" bson:"login"`
	LastCmdAt time.Time `json:"last_cmd_ts" bson:"last_cmd_ts"`
	Password  string    `json:"password" bson:"password"`
	Online    bool      `json:"online" bson:"online"`
}
