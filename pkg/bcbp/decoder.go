package bcbp

import (
	"regexp"
	"strconv"
	"strings"

	"scantrace-service/pkg/logger"
)

// structuredLayout captures the canonical fixed-width boarding-pass layout in
// a single pass: leg count, name, PNR, route, carrier, flight number, Julian
// date, cabin class, seat and bag count. When this matches it is preferred
// over the heuristic field-by-field path because every field comes out
// validated at once.
var structuredLayout = regexp.MustCompile(
	`^M(\d)([A-Z]+(?:/[A-Z][A-Z ]*?)?)\s+([A-Z0-9]{6,7})\s+([A-Z]{3})([A-Z]{3})([A-Z0-9]{2})\s?(\d{2,4})\s+(\d{3})([A-Z])(\d{1,3}[A-Z])(\d{4})`)

var (
	// The given-name side stops at the first space: a greedy continuation
	// there swallows whatever token follows the name on the pass.
	nameBlock     = regexp.MustCompile(`M\d([A-Z]+(?: [A-Z]+)*/[A-Z]+)`)
	bareName      = regexp.MustCompile(`([A-Z]{2,}(?: [A-Z]+)*/[A-Z]+)`)
	seatToken     = regexp.MustCompile(`(^|\s)(\d{1,3}[A-Z])(\s|$)`)
	sequenceToken = regexp.MustCompile(`\d{3}[A-Z]\d{1,3}[A-Z]\d{3,4}`)
	bagFraction   = regexp.MustCompile(`(\d{1,2})/(\d{1,2})`)
	alnumRun      = regexp.MustCompile(`[A-Z0-9]+`)
	letterRun     = regexp.MustCompile(`[A-Z]+`)
	digitRun      = regexp.MustCompile(`\d+`)

	// A fused known-carrier flight token has the same shape as a 6-char
	// record locator and must never be taken for one.
	carrierFlightToken = regexp.MustCompile(`^(?:8Z|KQ|ET)\d{2,4}$`)
)

// carrierRule extracts a flight number for one carrier's layout. Rules are
// evaluated in order and the first hit wins, so carrier-specific rules must
// stay ahead of the generic fallback. Adding a carrier means adding a row.
type carrierRule struct {
	name      string
	code      string // empty for the generic fallback, which captures its own
	re        *regexp.Regexp
	stripZero bool // Air Congo prints zero-padded flight numbers on some stock
}

var carrierRules = []carrierRule{
	{name: "air-congo", code: CarrierAirCongo, re: regexp.MustCompile(`8Z\s?(\d{2,4})`), stripZero: true},
	{name: "kenya-airways", code: CarrierKenyaAirways, re: regexp.MustCompile(`KQ\s?(\d{2,4})`)},
	{name: "ethiopian", code: CarrierEthiopian, re: regexp.MustCompile(`ET\s?(\d{2,4})`)},
	{name: "generic", re: regexp.MustCompile(`([A-Z]{2})\s?(\d{2,4})`)},
}

// Decoder turns raw boarding-pass payloads into structured records.
type Decoder struct {
	logger logger.Logger
}

// NewDecoder creates a new decoder
func NewDecoder(logger logger.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// Decode extracts a boarding record from a raw payload. It never fails
// outright: fields that cannot be extracted degrade to sentinel values, since
// partial information is strictly better than none for a human operator.
func (d *Decoder) Decode(payload string, variant Variant) *ParsedBoardingRecord {
	rec := newBoardingRecord()
	payload = strings.TrimSpace(payload)

	if m := structuredLayout.FindStringSubmatch(payload); m != nil {
		d.fillStructured(rec, m)
		// The composite sequence token spans date/class/seat groups and is
		// only recoverable by shape.
		if seq := sequenceToken.FindString(payload); seq != "" {
			rec.SequenceNumber = seq
			rec.Confidence.Sequence = true
		}
		d.logger.Debug("Structured layout matched", "pnr", rec.PNR, "flight", rec.FlightNumber)
		return rec
	}

	nameEnd := d.extractName(rec, payload)
	pnrEnd := d.extractPNR(rec, payload, nameEnd)
	routeEnd := d.extractRoute(rec, payload, pnrEnd)
	flightEnd := d.extractFlight(rec, payload, variant)
	if flightEnd < routeEnd {
		flightEnd = routeEnd
	}
	d.extractJulianDay(rec, payload, flightEnd)
	d.extractSeat(rec, payload)
	d.extractSequence(rec, payload)
	d.extractBaggageCount(rec, payload)

	if !rec.Confidence.Name && !rec.Confidence.PNR && !rec.Confidence.Flight {
		d.logger.Warn("Payload yielded no identity fields",
			"variant", variant,
			"payloadLength", len(payload))
	}

	return rec
}

func (d *Decoder) fillStructured(rec *ParsedBoardingRecord, m []string) {
	rec.Structured = true
	d.setName(rec, m[2])
	rec.PNR = m[3]
	rec.DepartureCode = m[4]
	rec.ArrivalCode = m[5]
	// Leading zeros are preserved verbatim in the structured path.
	rec.FlightNumber = m[6] + m[7]
	if day, err := strconv.Atoi(m[8]); err == nil && day >= 1 && day <= 366 {
		rec.FlightDateJulian = day
		rec.Confidence.FlightDate = true
	}
	rec.CabinClass = m[9]
	rec.SeatNumber = m[10]
	if count, err := strconv.Atoi(m[11]); err == nil {
		rec.BaggageCount = count
		rec.Confidence.BaggageCount = true
	}
	rec.Confidence.PNR = true
	rec.Confidence.Route = true
	rec.Confidence.Flight = true
	rec.Confidence.Seat = true
}

func (d *Decoder) setName(rec *ParsedBoardingRecord, raw string) {
	full := strings.Join(strings.Fields(raw), " ")
	rec.FullName = full
	rec.Confidence.Name = true
	if idx := strings.Index(full, "/"); idx >= 0 {
		rec.LastName = full[:idx]
		rec.FirstName = full[idx+1:]
	} else {
		rec.LastName = full
		rec.FirstName = NotAvailable
	}
}

// extractName locates the run of letters, slashes and spaces following the
// format marker. Returns the index just past the name, or 0.
func (d *Decoder) extractName(rec *ParsedBoardingRecord, payload string) int {
	if loc := nameBlock.FindStringSubmatchIndex(payload); loc != nil {
		d.setName(rec, payload[loc[2]:loc[3]])
		return loc[3]
	}
	if loc := bareName.FindStringSubmatchIndex(payload); loc != nil {
		d.setName(rec, payload[loc[2]:loc[3]])
		return loc[3]
	}
	return 0
}

// extractPNR searches alphanumeric runs for a 6-7 character record locator.
// A candidate must be immediately preceded by whitespace and followed by
// whitespace or a fused 3-letter airport code; the adjacency rule is what
// keeps coincidental letter runs inside names from being taken for a PNR.
func (d *Decoder) extractPNR(rec *ParsedBoardingRecord, payload string, from int) int {
	for _, loc := range alnumRun.FindAllStringIndex(payload, -1) {
		if loc[0] < from {
			continue
		}
		if loc[0] > 0 && !isSpace(payload[loc[0]-1]) {
			continue
		}
		run := payload[loc[0]:loc[1]]
		if rec.Confidence.Route && run == rec.DepartureCode+rec.ArrivalCode {
			continue
		}
		if rec.Confidence.Flight && run == rec.FlightNumber {
			continue
		}
		if carrierFlightToken.MatchString(run) {
			continue
		}
		if n := len(run); n == 6 || n == 7 {
			if hasLetter(run) && !allDigits(run) {
				rec.PNR = run
				rec.Confidence.PNR = true
				return loc[1]
			}
			continue
		}
		// Dispersal-offset search: inside a longer run the locator may be
		// fused with the route, e.g. "E7T5GVLFIHNBO". Try 7- then 6-char
		// prefixes whose next three characters look like an airport code.
		for _, width := range []int{7, 6} {
			if len(run) < width+3 {
				continue
			}
			prefix := run[:width]
			next := run[width : width+3]
			if hasLetter(prefix) && !allDigits(prefix) && allLetters(next) {
				rec.PNR = prefix
				rec.Confidence.PNR = true
				return loc[0] + width
			}
		}
	}
	return from
}

// extractRoute takes the first run of exactly six consecutive uppercase
// letters as two adjacent IATA codes. Unknown codes pass through; validating
// them against an airport list is a collaborator's job, not the decoder's.
func (d *Decoder) extractRoute(rec *ParsedBoardingRecord, payload string, from int) int {
	for _, loc := range letterRun.FindAllStringIndex(payload, -1) {
		// A run straddling from is trimmed, not skipped: when the PNR was
		// carved out of a fused run the route letters follow it directly.
		start := loc[0]
		if start < from {
			start = from
		}
		if start >= loc[1] {
			continue
		}
		run := payload[start:loc[1]]
		if len(run) == 6 {
			rec.DepartureCode = run[:3]
			rec.ArrivalCode = run[3:]
			rec.Confidence.Route = true
			return loc[1]
		}
		// Route fused with a known carrier code, e.g. "FIHNBOKQ".
		if len(run) == 8 && isKnownCarrier(run[6:]) {
			rec.DepartureCode = run[:3]
			rec.ArrivalCode = run[3:6]
			rec.Confidence.Route = true
			return start + 6
		}
	}
	return from
}

// extractFlight applies the carrier rule table in priority order; the
// variant's own rule is tried first so a PNR fragment is never misread as a
// flight number by the generic fallback. Internal whitespace between carrier
// and digits is tolerated and removed.
func (d *Decoder) extractFlight(rec *ParsedBoardingRecord, payload string, variant Variant) int {
	for _, rule := range orderedCarrierRules(variant) {
		loc := rule.re.FindStringSubmatchIndex(payload)
		if loc == nil {
			continue
		}
		var code, digits string
		if rule.code != "" {
			code = rule.code
			digits = payload[loc[2]:loc[3]]
		} else {
			code = payload[loc[2]:loc[3]]
			digits = payload[loc[4]:loc[5]]
		}
		if rule.stripZero {
			digits = strings.TrimLeft(digits, "0")
			if digits == "" {
				digits = "0"
			}
		}
		rec.FlightNumber = code + digits
		rec.Confidence.Flight = true
		return loc[1]
	}
	return 0
}

// extractJulianDay finds the first bare 3-digit run in the region where the
// structured layout places the flight date. Only day-of-year range checking
// happens here; year resolution belongs to the caller.
func (d *Decoder) extractJulianDay(rec *ParsedBoardingRecord, payload string, from int) {
	for _, loc := range digitRun.FindAllStringIndex(payload, -1) {
		if loc[0] < from || loc[1]-loc[0] != 3 {
			continue
		}
		day, err := strconv.Atoi(payload[loc[0]:loc[1]])
		if err != nil || day < 1 || day > 366 {
			continue
		}
		rec.FlightDateJulian = day
		rec.Confidence.FlightDate = true
		return
	}
}

func (d *Decoder) extractSeat(rec *ParsedBoardingRecord, payload string) {
	if m := seatToken.FindStringSubmatch(payload); m != nil {
		rec.SeatNumber = m[2]
		rec.Confidence.Seat = true
	}
}

func (d *Decoder) extractSequence(rec *ParsedBoardingRecord, payload string) {
	if seq := sequenceToken.FindString(payload); seq != "" {
		rec.SequenceNumber = seq
		rec.Confidence.Sequence = true
	}
}

func (d *Decoder) extractBaggageCount(rec *ParsedBoardingRecord, payload string) {
	if m := bagFraction.FindStringSubmatch(payload); m != nil {
		if count, err := strconv.Atoi(m[2]); err == nil {
			rec.BaggageCount = count
			rec.Confidence.BaggageCount = true
		}
	}
}

func orderedCarrierRules(variant Variant) []carrierRule {
	var own string
	switch variant {
	case VariantAirCongo:
		own = CarrierAirCongo
	case VariantEthiopian:
		own = CarrierEthiopian
	case VariantKenyaAirways:
		own = CarrierKenyaAirways
	default:
		return carrierRules
	}
	ordered := make([]carrierRule, 0, len(carrierRules))
	for _, rule := range carrierRules {
		if rule.code == own {
			ordered = append(ordered, rule)
		}
	}
	for _, rule := range carrierRules {
		if rule.code != own {
			ordered = append(ordered, rule)
		}
	}
	return ordered
}

func isKnownCarrier(code string) bool {
	for _, rule := range carrierRules {
		if rule.code == code {
			return true
		}
	}
	return false
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func hasLetter(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			return true
		}
	}
	return false
}

func allLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return len(s) > 0
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
