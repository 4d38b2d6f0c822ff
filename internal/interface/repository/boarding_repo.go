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

// MongoBoardingRepository implements BoardingRepository
type MongoBoardingRepository struct {
	collection *mongo.Collection
}

// NewMongoBoardingRepository creates a new boarding status repository
func NewMongoBoardingRepository(db *mongo.Database) repository.BoardingRepository {
	collection := db.Collection("boarding_status")

	// Create unique index on passengerKey
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"passengerKey": 1},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	// Create index on scanHash for duplicate lookups
	hashIndex := mongo.IndexModel{
		Keys: bson.M{"scanHash": 1},
	}
	collection.Indexes().CreateOne(ctx, hashIndex)

	return &MongoBoardingRepository{
		collection: collection,
	}
}

// FindByPassengerKey finds a boarding status by passenger key
func (r *MongoBoardingRepository) FindByPassengerKey(ctx context.Context, passengerKey string) (*entity.BoardingStatus, error) {
	var status entity.BoardingStatus
	err := r.collection.FindOne(ctx, bson.M{"passengerKey": passengerKey}).Decode(&status)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

// FindByScanHash finds the boarding status last written by the given scan
func (r *MongoBoardingRepository) FindByScanHash(ctx context.Context, scanHash string) (*entity.BoardingStatus, error) {
	var status entity.BoardingStatus
	err := r.collection.FindOne(ctx, bson.M{"scanHash": scanHash}).Decode(&status)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

// Upsert creates or updates a boarding status record
func (r *MongoBoardingRepository) Upsert(ctx context.Context, status *entity.BoardingStatus) error {
	status.UpdatedAt = time.Now()

	// For new records
	if status.ID == "" {
		status.ID = uuid.NewString()
		status.CreatedAt = status.UpdatedAt
	}

	updateDoc := bson.M{
		"passengerKey":     status.PassengerKey,
		"airportCode":      status.AirportCode,
		"fullName":         status.FullName,
		"lastName":         status.LastName,
		"firstName":        status.FirstName,
		"pnr":              status.PNR,
		"flightNumber":     status.FlightNumber,
		"airlineName":      status.AirlineName,
		"flightDateJulian": status.FlightDateJulian,
		"flightDate":       status.FlightDate,
		"departureCode":    status.DepartureCode,
		"arrivalCode":      status.ArrivalCode,
		"seatNumber":       status.SeatNumber,
		"sequenceNumber":   status.SequenceNumber,
		"baggageCount":     status.BaggageCount,
		"confidence":       status.Confidence,
		"boarded":          status.Boarded,
		"boardedAt":        status.BoardedAt,
		"boardedBy":        status.BoardedBy,
		"gate":             status.Gate,
		"scanHash":         status.ScanHash,
		"createdAt":        status.CreatedAt,
		"updatedAt":        status.UpdatedAt,
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"passengerKey": status.PassengerKey}

	_, err := r.collection.UpdateOne(
		ctx,
		filter,
		bson.M{"$set": updateDoc},
		opts,
	)
	return err
}
