package entity

import (
	"fmt"
	"time"

	"scantrace-service/pkg/bcbp"
)

// BaggageStatus is a bag's position in its lifecycle.
type BaggageStatus string

const (
	BaggageChecked   BaggageStatus = "checked"
	BaggageLoaded    BaggageStatus = "loaded"
	BaggageInTransit BaggageStatus = "in_transit"
	BaggageArrived   BaggageStatus = "arrived"
	BaggageDelivered BaggageStatus = "delivered"
	BaggageRush      BaggageStatus = "rush"
	BaggageLost      BaggageStatus = "lost"
)

// Terminal reports whether no further transitions are legal from s.
func (s BaggageStatus) Terminal() bool {
	return s == BaggageDelivered || s == BaggageLost
}

// forwardNext holds the single legal forward step for each linear state.
// Moving backward or skipping a step is a conflict, not a no-op.
var forwardNext = map[BaggageStatus]BaggageStatus{
	BaggageChecked:   BaggageLoaded,
	BaggageLoaded:    BaggageInTransit,
	BaggageInTransit: BaggageArrived,
	BaggageArrived:   BaggageDelivered,
}

// ConflictError reports an illegal lifecycle transition with enough context
// for manual operator resolution.
type ConflictError struct {
	TagNumber string
	Current   BaggageStatus
	Attempted BaggageStatus
	Reason    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("baggage %s: cannot move %s -> %s: %s",
		e.TagNumber, e.Current, e.Attempted, e.Reason)
}

// Baggage is the canonical per-bag record, keyed by tag number.
type Baggage struct {
	ID              string        `bson:"_id,omitempty"`
	TagNumber       string        `bson:"tagNumber"` // unique index
	ExpectedTag     string        `bson:"expectedTag,omitempty"`
	AirportCode     string        `bson:"airportCode"`
	PassengerName   string        `bson:"passengerName"`
	PNR             string        `bson:"pnr"`
	FlightNumber    string        `bson:"flightNumber"`
	OriginCode      string        `bson:"originCode"`
	DestinationCode string        `bson:"destinationCode"`
	BaggageSequence int           `bson:"baggageSequence"`
	BaggageCount    int           `bson:"baggageCount"`
	Status          BaggageStatus `bson:"status"`
	PrevStatus      BaggageStatus `bson:"prevStatus,omitempty"` // restored when a rush is cancelled
	RushReason      string        `bson:"rushReason,omitempty"`
	RushNextFlight  string        `bson:"rushNextFlight,omitempty"`
	RushDeclaredAt  *time.Time    `bson:"rushDeclaredAt,omitempty"`
	RushDeclaredBy  string        `bson:"rushDeclaredBy,omitempty"`
	CheckedAt       time.Time     `bson:"checkedAt"`
	CheckedBy       string        `bson:"checkedBy"`
	ArrivedAt       *time.Time    `bson:"arrivedAt,omitempty"`
	ArrivedBy       string        `bson:"arrivedBy,omitempty"`
	ScanHash        string        `bson:"scanHash"`
	// OriginalCheckInHash keeps the audit link to the first check-in scan
	// across rush re-routes.
	OriginalCheckInHash string    `bson:"originalCheckInHash"`
	CreatedAt           time.Time `bson:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt"`
}

// MergeTag fills sentinel gaps from a newly decoded tag without ever
// downgrading a known field. Lifecycle status is never touched here.
func (b *Baggage) MergeTag(tag *bcbp.ParsedBaggageTag) bool {
	changed := false

	fill := func(dst *string, src string) {
		if (*dst == "" || *dst == bcbp.Unknown) && src != "" && src != bcbp.Unknown {
			*dst = src
			changed = true
		}
	}

	fill(&b.PassengerName, tag.PassengerName)
	fill(&b.PNR, tag.PNR)
	fill(&b.FlightNumber, tag.FlightNumber)
	fill(&b.OriginCode, tag.OriginCode)
	fill(&b.DestinationCode, tag.DestinationCode)

	if b.BaggageSequence == 0 && tag.BaggageSequence > 0 {
		b.BaggageSequence = tag.BaggageSequence
		changed = true
	}
	if b.BaggageCount == 0 && tag.BaggageCount > 0 {
		b.BaggageCount = tag.BaggageCount
		changed = true
	}

	return changed
}

// Transition applies a forward lifecycle move. Rush and lost are declared
// through their own methods, never through Transition.
func (b *Baggage) Transition(to BaggageStatus, userID string, at time.Time) error {
	if b.Status.Terminal() {
		return &ConflictError{TagNumber: b.TagNumber, Current: b.Status, Attempted: to,
			Reason: "record is in a terminal state"}
	}
	if to == BaggageRush || to == BaggageLost {
		return &ConflictError{TagNumber: b.TagNumber, Current: b.Status, Attempted: to,
			Reason: "must be declared explicitly, not scanned into"}
	}
	if b.Status == BaggageRush {
		return &ConflictError{TagNumber: b.TagNumber, Current: b.Status, Attempted: to,
			Reason: "rushed bag must be re-checked onto a new flight first"}
	}
	next, ok := forwardNext[b.Status]
	if !ok || next != to {
		return &ConflictError{TagNumber: b.TagNumber, Current: b.Status, Attempted: to,
			Reason: "only the next forward step is legal"}
	}
	b.Status = to
	if to == BaggageArrived {
		b.ArrivedAt = &at
		b.ArrivedBy = userID
	}
	b.UpdatedAt = at
	return nil
}

// DeclareRush pulls the bag from its scheduled flight. A reason is required;
// the next flight is optional until the bag is re-checked.
func (b *Baggage) DeclareRush(reason, nextFlight, userID string, at time.Time) error {
	if b.Status.Terminal() {
		return &ConflictError{TagNumber: b.TagNumber, Current: b.Status, Attempted: BaggageRush,
			Reason: "record is in a terminal state"}
	}
	if b.Status == BaggageRush {
		return &ConflictError{TagNumber: b.TagNumber, Current: b.Status, Attempted: BaggageRush,
			Reason: "already rushed"}
	}
	if reason == "" {
		return &ConflictError{TagNumber: b.TagNumber, Current: b.Status, Attempted: BaggageRush,
			Reason: "rush declaration requires a reason"}
	}
	b.PrevStatus = b.Status
	b.Status = BaggageRush
	b.RushReason = reason
	b.RushNextFlight = nextFlight
	b.RushDeclaredAt = &at
	b.RushDeclaredBy = userID
	b.UpdatedAt = at
	return nil
}

// CancelRush is the compensating transition for a rush declared in error.
// It restores the prior state; it is not a generic backward move.
func (b *Baggage) CancelRush(at time.Time) error {
	if b.Status != BaggageRush {
		return &ConflictError{TagNumber: b.TagNumber, Current: b.Status, Attempted: b.PrevStatus,
			Reason: "no rush to cancel"}
	}
	b.Status = b.PrevStatus
	b.PrevStatus = ""
	b.RushReason = ""
	b.RushNextFlight = ""
	b.RushDeclaredAt = nil
	b.RushDeclaredBy = ""
	b.UpdatedAt = at
	return nil
}

// ReCheck re-associates a rushed bag with a new flight, re-entering the
// checked/loaded cycle. The original check-in hash is retained for audit.
func (b *Baggage) ReCheck(flightNumber, userID string, at time.Time) error {
	if b.Status != BaggageRush {
		return &ConflictError{TagNumber: b.TagNumber, Current: b.Status, Attempted: BaggageChecked,
			Reason: "only a rushed bag can be re-checked"}
	}
	b.Status = BaggageChecked
	b.PrevStatus = ""
	if flightNumber != "" {
		b.FlightNumber = flightNumber
	} else if b.RushNextFlight != "" {
		b.FlightNumber = b.RushNextFlight
	}
	b.CheckedAt = at
	b.CheckedBy = userID
	b.UpdatedAt = at
	return nil
}

// DeclareLost marks the bag lost. Administrative declaration only, never
// inferred from scan traffic.
func (b *Baggage) DeclareLost(userID string, at time.Time) error {
	if b.Status.Terminal() {
		return &ConflictError{TagNumber: b.TagNumber, Current: b.Status, Attempted: BaggageLost,
			Reason: "record is in a terminal state"}
	}
	b.Status = BaggageLost
	b.UpdatedAt = at
	return nil
}
