package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	at := time.Unix(1700000000, 0)

	// djb2 of "AB" is 5862120, 0x5972e8.
	assert.Equal(t, Fingerprint("2_1700000000_5972e8"), New("AB", at))
}

func TestNewDeterministic(t *testing.T) {
	at := time.Unix(1700000000, 500) // sub-second precision must not leak in
	payload := "M1RAZIOU/MOUSTAPHA    E7T5GVL FIHNBOKQ 0555 335M031G0009"

	a := New(payload, at)
	b := New(payload, time.Unix(1700000000, 0))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, New(payload+"X", at))
	assert.NotEqual(t, a, New(payload, at.Add(time.Second)))
}

func TestSignature(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "short payload verbatim", payload: "KQ555", want: "KQ555"},
		{name: "nine chars still verbatim", payload: "123456789", want: "123456789"},
		{name: "ten chars excerpted", payload: "ABCDEFGHIJ", want: "ABCDEFGH...EFGHIJ"},
		{name: "long payload", payload: "M1RAZIOU/MOUSTAPHA E7T5GVL", want: "M1RAZIOU...7T5GVL"},
		{name: "empty", payload: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Signature(tt.payload))
		})
	}
}

func TestBoardingIdentifier(t *testing.T) {
	assert.Equal(t, "E7T5GVL_RAZIOU_KQ0555",
		BoardingIdentifier("E7T5GVL", "RAZIOU/MOUSTAPHA", "KQ0555"))

	// Last name truncates to six characters.
	assert.Equal(t, "ABC123_KIMANI_ET0914",
		BoardingIdentifier("ABC123", "KIMANICHARLES/GRACE", "ET0914"))

	// Case and spacing normalize.
	assert.Equal(t, "ABC123_DOE_KQ100",
		BoardingIdentifier(" abc123 ", "doe/john", "kq 100"))
}
