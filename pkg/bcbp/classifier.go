package bcbp

import "regexp"

// Carrier token patterns: carrier code adjacent to a 3-4 digit flight number,
// optional internal spacing.
var (
	airCongoToken     = regexp.MustCompile(`8Z\s?\d{3,4}`)
	kenyaAirwaysToken = regexp.MustCompile(`KQ\s?\d{3,4}`)
	ethiopianToken    = regexp.MustCompile(`ET\s?\d{3,4}`)
)

type classifierRule struct {
	name    string
	match   func(payload string) bool
	variant Variant
}

// Ordered rule table, first match wins. Adding a carrier variant means adding
// a row here, not touching Classify.
var classifierRules = []classifierRule{
	{
		name:    "air-congo-carrier",
		match:   airCongoToken.MatchString,
		variant: VariantAirCongo,
	},
	{
		// Kenya Airways payloads are structurally regular enough for the
		// generic extractor; routing them to GENERIC is policy, not an
		// oversight. See the decoder's carrier priority table.
		name:    "kenya-airways-carrier",
		match:   kenyaAirwaysToken.MatchString,
		variant: VariantGeneric,
	},
	{
		name:    "ethiopian-carrier",
		match:   ethiopianToken.MatchString,
		variant: VariantEthiopian,
	},
}

// Classify selects the decoding strategy for a raw payload. Pure, never
// fails; unmatched input resolves to GENERIC.
func Classify(payload string) Variant {
	for _, rule := range classifierRules {
		if rule.match(payload) {
			return rule.variant
		}
	}
	return VariantGeneric
}
