package entity

import (
	"time"

	"scantrace-service/pkg/bcbp"
)

// BoardingStatus is the canonical per-passenger record. Keyed by the boarding
// identifier; only the scan fingerprint is retained, never the raw payload.
type BoardingStatus struct {
	ID               string               `bson:"_id,omitempty"`
	PassengerKey     string               `bson:"passengerKey"` // unique index
	AirportCode      string               `bson:"airportCode"`
	FullName         string               `bson:"fullName"`
	LastName         string               `bson:"lastName"`
	FirstName        string               `bson:"firstName"`
	PNR              string               `bson:"pnr"`
	FlightNumber     string               `bson:"flightNumber"`
	AirlineName      string               `bson:"airlineName,omitempty"`
	FlightDateJulian int                  `bson:"flightDateJulian"`
	FlightDate       time.Time            `bson:"flightDate,omitempty"`
	DepartureCode    string               `bson:"departureCode"`
	ArrivalCode      string               `bson:"arrivalCode"`
	SeatNumber       string               `bson:"seatNumber"`
	SequenceNumber   string               `bson:"sequenceNumber"`
	BaggageCount     int                  `bson:"baggageCount"`
	Confidence       bcbp.FieldConfidence `bson:"confidence"`
	Boarded          bool                 `bson:"boarded"`
	BoardedAt        time.Time            `bson:"boardedAt,omitempty"`
	BoardedBy        string               `bson:"boardedBy,omitempty"`
	Gate             string               `bson:"gate"`
	ScanHash         string               `bson:"scanHash"`
	CreatedAt        time.Time            `bson:"createdAt"`
	UpdatedAt        time.Time            `bson:"updatedAt"`
}

// MergeParsed fills sentinel gaps from a newly parsed record without ever
// downgrading a known field back to a sentinel.
func (b *BoardingStatus) MergeParsed(rec *bcbp.ParsedBoardingRecord) bool {
	changed := false

	fill := func(dst *string, dstOK *bool, src string, srcOK bool) {
		if !*dstOK && srcOK {
			*dst = src
			*dstOK = true
			changed = true
		}
	}

	fill(&b.FullName, &b.Confidence.Name, rec.FullName, rec.Confidence.Name)
	if changed {
		b.LastName = rec.LastName
		b.FirstName = rec.FirstName
	}
	fill(&b.PNR, &b.Confidence.PNR, rec.PNR, rec.Confidence.PNR)
	fill(&b.FlightNumber, &b.Confidence.Flight, rec.FlightNumber, rec.Confidence.Flight)
	fill(&b.SeatNumber, &b.Confidence.Seat, rec.SeatNumber, rec.Confidence.Seat)
	fill(&b.SequenceNumber, &b.Confidence.Sequence, rec.SequenceNumber, rec.Confidence.Sequence)

	if !b.Confidence.Route && rec.Confidence.Route {
		b.DepartureCode = rec.DepartureCode
		b.ArrivalCode = rec.ArrivalCode
		b.Confidence.Route = true
		changed = true
	}
	if !b.Confidence.FlightDate && rec.Confidence.FlightDate {
		b.FlightDateJulian = rec.FlightDateJulian
		b.Confidence.FlightDate = true
		changed = true
	}
	if !b.Confidence.BaggageCount && rec.Confidence.BaggageCount {
		b.BaggageCount = rec.BaggageCount
		b.Confidence.BaggageCount = true
		changed = true
	}

	return changed
}
