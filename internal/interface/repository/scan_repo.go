package repository

import (
	"context"
	"fmt"
	"time"

	"scantrace-service/internal/domain/entity"
	"scantrace-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoScanRepository implements the ScanRepository interface
type MongoScanRepository struct {
	collection *mongo.Collection
}

// NewMongoScanRepository creates a new MongoDB raw scan repository
func NewMongoScanRepository(db *mongo.Database) repository.ScanRepository {
	collection := db.Collection("raw_scans")

	ctx := context.Background()

	// Index on scanId for fast lookups and uniqueness
	scanIDIndex := mongo.IndexModel{
		Keys:    bson.M{"scanId": 1},
		Options: options.Index().SetUnique(true),
	}

	// Index on fingerprint for cross-device duplicate lookups
	fingerprintIndex := mongo.IndexModel{
		Keys: bson.M{"fingerprint": 1},
	}

	// Compound index for finding unprocessed scans per airport efficiently
	unprocessedIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "airportCode", Value: 1},
			{Key: "processStatus", Value: 1},
			{Key: "capturedAt", Value: 1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		scanIDIndex,
		fingerprintIndex,
		unprocessedIndex,
	})

	return &MongoScanRepository{
		collection: collection,
	}
}

// Save saves a raw scan event
func (r *MongoScanRepository) Save(ctx context.Context, scan *entity.RawScanEvent) error {
	if scan.ProcessStatus == "" {
		scan.ProcessStatus = entity.StatusPending
	}
	if scan.ReceivedAt.IsZero() {
		scan.ReceivedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, scan)
	return err
}

// FindByScanID finds a raw scan by its scan ID
func (r *MongoScanRepository) FindByScanID(ctx context.Context, scanID string) (*entity.RawScanEvent, error) {
	var scan entity.RawScanEvent
	err := r.collection.FindOne(ctx, bson.M{"scanId": scanID}).Decode(&scan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &scan, nil
}

// FindByFingerprint finds the most recent raw scan carrying the fingerprint
func (r *MongoScanRepository) FindByFingerprint(ctx context.Context, fp string) (*entity.RawScanEvent, error) {
	var scan entity.RawScanEvent
	opts := options.FindOne().SetSort(bson.D{{Key: "receivedAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"fingerprint": fp}, opts).Decode(&scan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &scan, nil
}

// FindUnprocessed finds unprocessed scans (PENDING status or empty) for an
// airport, oldest first
func (r *MongoScanRepository) FindUnprocessed(ctx context.Context, airportCode string, limit int) ([]*entity.RawScanEvent, error) {
	filter := bson.M{
		"airportCode": airportCode,
		"$or": []bson.M{
			{"processStatus": ""},
			{"processStatus": entity.StatusPending},
			{"processStatus": bson.M{"$exists": false}},
		},
	}

	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, filter, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "capturedAt", Value: 1}}, // Process oldest first
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var scans []*entity.RawScanEvent
	if err := cursor.All(ctx, &scans); err != nil {
		return nil, err
	}

	return scans, nil
}

// UpdateStatus updates just the status and started time
func (r *MongoScanRepository) UpdateStatus(ctx context.Context, scanID string, status string, startedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"processStatus": status,
		},
	}

	// Only set processStartedAt when moving to PROCESSING
	if status == entity.StatusProcessing && !startedAt.IsZero() {
		update["$set"].(bson.M)["processStartedAt"] = startedAt
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"scanId": scanID},
		update,
	)

	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no scan found with scanId: %s", scanID)
	}

	return nil
}

// UpdateProcessSteps updates the processing steps
func (r *MongoScanRepository) UpdateProcessSteps(ctx context.Context, scanID string, steps entity.ProcessSteps) error {
	update := bson.M{
		"$set": bson.M{
			"processSteps": steps,
		},
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"scanId": scanID},
		update,
	)
	return err
}

// MarkAsProcessed marks a scan as processed with its reconciliation outcome
func (r *MongoScanRepository) MarkAsProcessed(ctx context.Context, scanID string, status string, outcome entity.Outcome, errorDetail string, extractedData map[string]interface{}) error {
	update := bson.M{
		"$set": bson.M{
			"processedAt":   time.Now(),
			"processStatus": status,
			"outcome":       outcome,
		},
	}

	if len(extractedData) > 0 {
		update["$set"].(bson.M)["extractedData"] = extractedData
	}

	if errorDetail != "" {
		update["$set"].(bson.M)["errorDetail"] = errorDetail
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"scanId": scanID},
		update,
	)

	if err != nil {
		return fmt.Errorf("failed to mark as processed: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no scan found with scanId: %s", scanID)
	}

	return nil
}

// ResetProcessingScans resets scans stuck in PROCESSING state back to PENDING
func (r *MongoScanRepository) ResetProcessingScans(ctx context.Context) error {
	// Find scans that have been processing for more than 5 minutes
	staleTime := time.Now().Add(-5 * time.Minute)

	filter := bson.M{
		"processStatus": entity.StatusProcessing,
		"$or": []bson.M{
			{"processStartedAt": bson.M{"$lt": staleTime}},
			{"processStartedAt": bson.M{"$exists": false}},
		},
	}

	update := bson.M{
		"$set": bson.M{
			"processStatus": entity.StatusPending,
			"errorDetail":   "Reset from stale PROCESSING state",
		},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}
