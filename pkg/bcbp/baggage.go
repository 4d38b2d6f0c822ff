package bcbp

import (
	"regexp"
	"strconv"
	"strings"
)

// maxRawDataLen bounds the audit excerpt kept on a parsed tag.
const maxRawDataLen = 512

var (
	// IATA license-plate tag numbers are ten digits, leading zero for
	// interline tags. The looser rule catches airline-internal stock.
	tagNumberStrict = regexp.MustCompile(`(^|\D)(0\d{9})(\D|$)`)
	tagNumberLoose  = regexp.MustCompile(`(^|\D)(\d{10})(\D|$)`)
	bagSequence     = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)
)

// DecodeBaggageTag extracts a structured record from a baggage-tag payload.
// Anchoring starts from the most reliable fixed tokens (tag number, route)
// and degrades per-field, the same tiering the boarding-pass path uses.
func (d *Decoder) DecodeBaggageTag(payload string) *ParsedBaggageTag {
	tag := newBaggageTag()
	payload = strings.TrimSpace(payload)

	tag.RawData = payload
	if len(tag.RawData) > maxRawDataLen {
		tag.RawData = tag.RawData[:maxRawDataLen]
	}

	if m := tagNumberStrict.FindStringSubmatch(payload); m != nil {
		tag.TagNumber = m[2]
	} else if m := tagNumberLoose.FindStringSubmatch(payload); m != nil {
		tag.TagNumber = m[2]
	}

	var nameEnd int
	if m := bareName.FindStringSubmatchIndex(payload); m != nil {
		tag.PassengerName = strings.Join(strings.Fields(payload[m[2]:m[3]]), " ")
		nameEnd = m[3]
	}

	rec := newBoardingRecord()
	flightEnd := d.extractFlight(rec, payload, VariantGeneric)
	if rec.Confidence.Flight {
		tag.FlightNumber = rec.FlightNumber
	}

	// Route search starts past the name, where a six-letter surname would
	// otherwise be read as two airport codes. Route before PNR for the same
	// reason: a bare route run passes the PNR adjacency check.
	routeEnd := d.extractRoute(rec, payload, nameEnd)
	if rec.Confidence.Route {
		tag.OriginCode = rec.DepartureCode
		tag.DestinationCode = rec.ArrivalCode
	}

	pnrFrom := routeEnd
	if flightEnd > pnrFrom {
		pnrFrom = flightEnd
	}
	d.extractPNR(rec, payload, pnrFrom)
	if !rec.Confidence.PNR {
		d.extractPNR(rec, payload, nameEnd)
	}
	if rec.Confidence.PNR {
		tag.PNR = rec.PNR
	}

	if m := bagSequence.FindStringSubmatch(payload); m != nil {
		if seq, err := strconv.Atoi(m[1]); err == nil {
			tag.BaggageSequence = seq
		}
		if count, err := strconv.Atoi(m[2]); err == nil {
			tag.BaggageCount = count
		}
	}

	if tag.TagNumber == Unknown {
		d.logger.Warn("Baggage tag payload missing tag number", "signatureLength", len(payload))
	}

	return tag
}
