// Package fingerprint derives compact deduplication identifiers from raw
// scan payloads. The rolling hash is a dedup aid, not an integrity guarantee:
// it identifies "the same scan" across devices without resending the payload,
// and must never be relied on for tamper detection.
package fingerprint

import (
	"fmt"
	"strings"
	"time"
)

// Fingerprint is a tagged dedup identifier, kept distinct from any
// cryptographic hash type so the two are never confused.
type Fingerprint string

func (f Fingerprint) String() string {
	return string(f)
}

const (
	signatureMinLen = 10
	signaturePrefix = 8
	signatureSuffix = 6
	lastNameWidth   = 6
)

// New derives the fingerprint for a payload captured at the given time,
// formatted "{length}_{unixSeconds}_{hashHex}". The timestamp second comes
// from the caller so the function stays deterministic.
func New(payload string, capturedAt time.Time) Fingerprint {
	return Fingerprint(fmt.Sprintf("%d_%d_%x", len(payload), capturedAt.Unix(), rollingHash(payload)))
}

// rollingHash is the djb2 multiply-and-add loop, O(len(payload)).
func rollingHash(payload string) uint32 {
	var h uint32 = 5381
	for i := 0; i < len(payload); i++ {
		h = h*33 + uint32(payload[i])
	}
	return h
}

// Signature returns a human-auditable excerpt: payloads under ten characters
// come back unmodified, longer ones as "{first8}...{last6}".
func Signature(payload string) string {
	if len(payload) < signatureMinLen {
		return payload
	}
	return payload[:signaturePrefix] + "..." + payload[len(payload)-signatureSuffix:]
}

// BoardingIdentifier combines PNR, a truncated last name and flight number
// into a cross-check key independent of the payload fingerprint.
func BoardingIdentifier(pnr, fullName, flightNumber string) string {
	lastName := fullName
	if idx := strings.Index(fullName, "/"); idx >= 0 {
		lastName = fullName[:idx]
	}
	lastName = strings.ToUpper(strings.TrimSpace(lastName))
	if len(lastName) > lastNameWidth {
		lastName = lastName[:lastNameWidth]
	}
	flight := strings.ToUpper(strings.ReplaceAll(flightNumber, " ", ""))
	return fmt.Sprintf("%s_%s_%s", strings.ToUpper(strings.TrimSpace(pnr)), lastName, flight)
}
