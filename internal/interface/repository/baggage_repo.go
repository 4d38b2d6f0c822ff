package repository

import (
	"context"
	"time"

	"scantrace-service/internal/domain/entity"
	"scantrace-service/internal/domain/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBaggageRepository implements BaggageRepository
type MongoBaggageRepository struct {
	collection *mongo.Collection
}

// NewMongoBaggageRepository creates a new baggage repository
func NewMongoBaggageRepository(db *mongo.Database) repository.BaggageRepository {
	collection := db.Collection("baggage")

	// Create unique index on tagNumber
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"tagNumber": 1},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	// Create index on status for operational queries
	statusIndex := mongo.IndexModel{
		Keys: bson.M{"status": 1},
	}
	collection.Indexes().CreateOne(ctx, statusIndex)

	// Create index on scanHash for duplicate lookups
	hashIndex := mongo.IndexModel{
		Keys: bson.M{"scanHash": 1},
	}
	collection.Indexes().CreateOne(ctx, hashIndex)

	return &MongoBaggageRepository{
		collection: collection,
	}
}

// FindByTagNumber finds a baggage record by tag number
func (r *MongoBaggageRepository) FindByTagNumber(ctx context.Context, tagNumber string) (*entity.Baggage, error) {
	var baggage entity.Baggage
	err := r.collection.FindOne(ctx, bson.M{"tagNumber": tagNumber}).Decode(&baggage)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &baggage, nil
}

// FindByScanHash finds the baggage record last written by the given scan
func (r *MongoBaggageRepository) FindByScanHash(ctx context.Context, scanHash string) (*entity.Baggage, error) {
	var baggage entity.Baggage
	err := r.collection.FindOne(ctx, bson.M{"scanHash": scanHash}).Decode(&baggage)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &baggage, nil
}

// Upsert creates or updates a baggage record
func (r *MongoBaggageRepository) Upsert(ctx context.Context, baggage *entity.Baggage) error {
	baggage.UpdatedAt = time.Now()

	// For new records
	if baggage.ID == "" {
		baggage.ID = uuid.NewString()
		baggage.CreatedAt = baggage.UpdatedAt
	}

	updateDoc := bson.M{
		"tagNumber":           baggage.TagNumber,
		"expectedTag":         baggage.ExpectedTag,
		"airportCode":         baggage.AirportCode,
		"passengerName":       baggage.PassengerName,
		"pnr":                 baggage.PNR,
		"flightNumber":        baggage.FlightNumber,
		"originCode":          baggage.OriginCode,
		"destinationCode":     baggage.DestinationCode,
		"baggageSequence":     baggage.BaggageSequence,
		"baggageCount":        baggage.BaggageCount,
		"status":              baggage.Status,
		"prevStatus":          baggage.PrevStatus,
		"rushReason":          baggage.RushReason,
		"rushNextFlight":      baggage.RushNextFlight,
		"rushDeclaredAt":      baggage.RushDeclaredAt,
		"rushDeclaredBy":      baggage.RushDeclaredBy,
		"checkedAt":           baggage.CheckedAt,
		"checkedBy":           baggage.CheckedBy,
		"arrivedAt":           baggage.ArrivedAt,
		"arrivedBy":           baggage.ArrivedBy,
		"scanHash":            baggage.ScanHash,
		"originalCheckInHash": baggage.OriginalCheckInHash,
		"createdAt":           baggage.CreatedAt,
		"updatedAt":           baggage.UpdatedAt,
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"tagNumber": baggage.TagNumber}

	_, err := r.collection.UpdateOne(
		ctx,
		filter,
		bson.M{"$set": updateDoc},
		opts,
	)
	return err
}
