package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/google/uuid"
	"github.com/pichat-dev/pichat-go-server/internal/logger"
	"github.com/pichat-dev/pichat-go-server/internal/model"
)

// MongoStore keeps one document per authenticated identity, keyed by the
// unique uid index. ConnectDatabase must have run before it is used.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var MgStore *MongoStore

func NewMongoStore() *MongoStore {
	if MgStore == nil {
		MgStore = &MongoStore{client: Client, db: Database}
	}
	return MgStore
}

func (ms *MongoStore) Load() ([]model.IdentityRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	startTime := time.Now()
	cursor, err := ms.db.Collection(IdentityCollectionName).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("database operation failed: %w", err)
	}

	var records []model.IdentityRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode identity records: %w", err)
	}
	logger.DebugF("identity load cost: %v, records: %d", time.Since(startTime), len(records))

	return records, nil
}

func (ms *MongoStore) SaveSnapshot(records []model.IdentityRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), OperationTimeout)
	defer cancel()

	kept := make([]uuid.UUID, 0, len(records))
	for _, record := range records {
		filter := bson.D{{Key: "uid", Value: record.UID}}
		opts := options.Replace().SetUpsert(true)

		if _, err := ms.db.Collection(IdentityCollectionName).ReplaceOne(ctx, filter, record, opts); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return fmt.Errorf("unique key conflicts: %w", err)
			}
			if errors.Is(err, mongo.ErrNoDocuments) {
				return fmt.Errorf("document does not exist: %w", err)
			}
			return fmt.Errorf("database operation failed: %w", err)
		}
		kept = append(kept, record.UID)
	}

	// Identities missing from the snapshot were deleted administratively;
	// prune their documents so they do not come back on the next load.
	filter := bson.D{{Key: "uid", Value: bson.D{{Key: "$nin", Value: kept}}}}
	result, err := ms.db.Collection(IdentityCollectionName).DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("database operation failed: %w", err)
	}
	if result.DeletedCount > 0 {
		logger.InfoF("Snapshot saved: kept=%d, pruned=%d", len(kept), result.DeletedCount)
	}

	return nil
}
