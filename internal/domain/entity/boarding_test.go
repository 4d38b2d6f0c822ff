package entity

import (
	"testing"

	"scantrace-service/pkg/bcbp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoardingStatusMergeParsedFillsGaps(t *testing.T) {
	status := &BoardingStatus{
		PassengerKey: "E7T5GVL_RAZIOU_KQ0555",
		FullName:     "RAZIOU/MOUSTAPHA",
		PNR:          "E7T5GVL",
		FlightNumber: "KQ0555",
		SeatNumber:   bcbp.NotAvailable,
		Confidence: bcbp.FieldConfidence{
			Name:   true,
			PNR:    true,
			Flight: true,
		},
	}

	rec := &bcbp.ParsedBoardingRecord{
		FullName:         "RAZIOU/MOUSTAPHA",
		PNR:              "E7T5GVL",
		FlightNumber:     "KQ0555",
		DepartureCode:    "FIH",
		ArrivalCode:      "NBO",
		SeatNumber:       "031G",
		FlightDateJulian: 335,
		BaggageCount:     9,
		Confidence: bcbp.FieldConfidence{
			Name:         true,
			PNR:          true,
			Flight:       true,
			Route:        true,
			Seat:         true,
			FlightDate:   true,
			BaggageCount: true,
		},
	}

	require.True(t, status.MergeParsed(rec))
	assert.Equal(t, "031G", status.SeatNumber)
	assert.Equal(t, "FIH", status.DepartureCode)
	assert.Equal(t, "NBO", status.ArrivalCode)
	assert.Equal(t, 335, status.FlightDateJulian)
	assert.Equal(t, 9, status.BaggageCount)
	assert.True(t, status.Confidence.Seat)
	assert.True(t, status.Confidence.Route)
}

func TestBoardingStatusMergeParsedNeverDowngrades(t *testing.T) {
	status := &BoardingStatus{
		SeatNumber: "14C",
		PNR:        "9XKF2T",
		Confidence: bcbp.FieldConfidence{Seat: true, PNR: true},
	}

	// A worse scan of the same pass: everything degraded to sentinels.
	rec := &bcbp.ParsedBoardingRecord{
		FullName:     bcbp.Unknown,
		PNR:          bcbp.Unknown,
		FlightNumber: bcbp.Unknown,
		SeatNumber:   bcbp.NotAvailable,
	}

	assert.False(t, status.MergeParsed(rec))
	assert.Equal(t, "14C", status.SeatNumber)
	assert.Equal(t, "9XKF2T", status.PNR)
}

func TestBoardingStatusMergeParsedNothingNew(t *testing.T) {
	status := &BoardingStatus{
		FullName:     "KABEYA/JEAN",
		PNR:          "9XKF2T",
		FlightNumber: "8Z334",
		SeatNumber:   "14C",
		Confidence: bcbp.FieldConfidence{
			Name: true, PNR: true, Flight: true, Seat: true,
		},
	}

	rec := &bcbp.ParsedBoardingRecord{
		FullName:     "KABEYA/JEAN",
		PNR:          "9XKF2T",
		FlightNumber: "8Z334",
		SeatNumber:   "14C",
		Confidence: bcbp.FieldConfidence{
			Name: true, PNR: true, Flight: true, Seat: true,
		},
	}

	assert.False(t, status.MergeParsed(rec))
}
