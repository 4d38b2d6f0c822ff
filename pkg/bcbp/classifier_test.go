package bcbp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Variant
	}{
		{
			name:    "air congo carrier token",
			payload: "M1KABEYA/JEAN PAUL 9XKF2T FIHFBM8Z 0334 120Y014C0056",
			want:    VariantAirCongo,
		},
		{
			name:    "air congo with internal space",
			payload: "KABEYA/JEAN 8Z 0334 FIHFBM",
			want:    VariantAirCongo,
		},
		{
			name:    "ethiopian carrier token",
			payload: "M1TESFAYE/ALMAZ XZ91KQ ADDFIHET 0914 223Y012A0044",
			want:    VariantEthiopian,
		},
		{
			name:    "no carrier token falls through to generic",
			payload: "M1DOE/JOHN ABC123 LOSNBO XX 123",
			want:    VariantGeneric,
		},
		{
			name:    "empty payload",
			payload: "",
			want:    VariantGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.payload))
		})
	}
}

// Kenya Airways payloads carry a dedicated carrier token but are routed to
// the generic extractor on purpose. This test pins that policy.
func TestClassifyKenyaAirwaysRoutesToGeneric(t *testing.T) {
	payload := "M1RAZIOU/MOUSTAPHA    E7T5GVL FIHNBOKQ 0555 335M031G0009 348"
	assert.Equal(t, VariantGeneric, Classify(payload))
}

func TestClassifyFirstRuleWins(t *testing.T) {
	// Both carrier tokens present: the rule table is ordered and the first
	// match decides.
	payload := "8Z 0334 SOMETHING ET 0914"
	assert.Equal(t, VariantAirCongo, Classify(payload))
}
