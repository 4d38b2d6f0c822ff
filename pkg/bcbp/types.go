package bcbp

// Variant identifies which extraction strategy applies to a raw payload.
type Variant string

const (
	VariantAirCongo Variant = "AIR_CONGO"
	// VariantKenyaAirways exists in the closed variant set but the classifier
	// deliberately routes KQ payloads to the generic extractor, whose looser
	// tolerances fit that carrier's layout. Do not "fix" this by adding a KQ
	// branch to the classifier table.
	VariantKenyaAirways Variant = "KENYA_AIRWAYS"
	VariantEthiopian    Variant = "ETHIOPIAN"
	VariantGeneric      Variant = "GENERIC"
)

// Sentinel values for fields that could not be extracted. Every field of a
// parsed record is either a validated value or one of these, never empty.
const (
	Unknown      = "UNKNOWN"
	NotAvailable = "N/A"
)

// Known 2-character carrier codes with dedicated extraction rules.
const (
	CarrierAirCongo     = "8Z"
	CarrierKenyaAirways = "KQ"
	CarrierEthiopian    = "ET"
)

// FieldConfidence records which fields were actually extracted from the
// payload and which degraded to sentinel values.
type FieldConfidence struct {
	Name         bool `bson:"name" json:"name"`
	PNR          bool `bson:"pnr" json:"pnr"`
	Route        bool `bson:"route" json:"route"`
	Flight       bool `bson:"flight" json:"flight"`
	Seat         bool `bson:"seat" json:"seat"`
	Sequence     bool `bson:"sequence" json:"sequence"`
	FlightDate   bool `bson:"flightDate" json:"flightDate"`
	BaggageCount bool `bson:"baggageCount" json:"baggageCount"`
}

// ParsedBoardingRecord is the structured result of decoding a boarding-pass
// payload. Absent fields carry sentinels rather than empty strings so a
// downstream operator always sees an explicit value.
type ParsedBoardingRecord struct {
	FullName         string          `bson:"fullName" json:"fullName"`
	LastName         string          `bson:"lastName" json:"lastName"`
	FirstName        string          `bson:"firstName" json:"firstName"`
	PNR              string          `bson:"pnr" json:"pnr"`
	FlightNumber     string          `bson:"flightNumber" json:"flightNumber"`
	FlightDateJulian int             `bson:"flightDateJulian" json:"flightDateJulian"` // 1-366, 0 when absent
	DepartureCode    string          `bson:"departureCode" json:"departureCode"`
	ArrivalCode      string          `bson:"arrivalCode" json:"arrivalCode"`
	CabinClass       string          `bson:"cabinClass" json:"cabinClass"`
	SeatNumber       string          `bson:"seatNumber" json:"seatNumber"`
	SequenceNumber   string          `bson:"sequenceNumber" json:"sequenceNumber"`
	BaggageCount     int             `bson:"baggageCount" json:"baggageCount"`
	Structured       bool            `bson:"structured" json:"structured"` // true when the strict layout matched
	Confidence       FieldConfidence `bson:"confidence" json:"confidence"`
}

// ParsedBaggageTag is the structured result of decoding a baggage-tag payload.
type ParsedBaggageTag struct {
	PassengerName   string `bson:"passengerName" json:"passengerName"`
	TagNumber       string `bson:"tagNumber" json:"tagNumber"`
	FlightNumber    string `bson:"flightNumber" json:"flightNumber"`
	PNR             string `bson:"pnr" json:"pnr"`
	OriginCode      string `bson:"originCode" json:"originCode"`
	DestinationCode string `bson:"destinationCode" json:"destinationCode"`
	BaggageSequence int    `bson:"baggageSequence" json:"baggageSequence"`
	BaggageCount    int    `bson:"baggageCount" json:"baggageCount"`
	RawData         string `bson:"rawData" json:"rawData"` // bounded excerpt kept for audit
}

func newBoardingRecord() *ParsedBoardingRecord {
	return &ParsedBoardingRecord{
		FullName:       Unknown,
		LastName:       Unknown,
		FirstName:      Unknown,
		PNR:            Unknown,
		FlightNumber:   Unknown,
		DepartureCode:  Unknown,
		ArrivalCode:    Unknown,
		CabinClass:     NotAvailable,
		SeatNumber:     NotAvailable,
		SequenceNumber: NotAvailable,
	}
}

func newBaggageTag() *ParsedBaggageTag {
	return &ParsedBaggageTag{
		PassengerName:   Unknown,
		TagNumber:       Unknown,
		FlightNumber:    Unknown,
		PNR:             Unknown,
		OriginCode:      Unknown,
		DestinationCode: Unknown,
	}
}
