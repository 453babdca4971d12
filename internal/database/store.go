package database

import "github.com/pichat-dev/pichat-go-server/internal/model"

const IdentityCollectionName = "identities"

// Store is a durable home for the authenticated subset of the registry. The
// whole snapshot is written each time; identities absent from a snapshot are
// gone for good (administrative deletion).
type Store interface {
	Load() ([]model.IdentityRecord, error)
	SaveSnapshot(records []model.IdentityRecord) error
}
