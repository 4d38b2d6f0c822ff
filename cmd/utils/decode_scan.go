package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"scantrace-service/pkg/bcbp"
	"scantrace-service/pkg/fingerprint"
	"scantrace-service/pkg/logger"
)

// Debugging helper for field scanner payloads: classifies and decodes a
// payload from argv and prints the extraction plus its dedup identifiers.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: decode_scan <payload> [baggage]")
		os.Exit(1)
	}
	payload := os.Args[1]

	log := logger.NewNopLogger()
	decoder := bcbp.NewDecoder(log)
	now := time.Now()

	fmt.Printf("fingerprint: %s\n", fingerprint.New(payload, now))
	fmt.Printf("signature:   %s\n", fingerprint.Signature(payload))

	if len(os.Args) > 2 && os.Args[2] == "baggage" {
		tag := decoder.DecodeBaggageTag(payload)
		out, _ := json.MarshalIndent(tag, "", "  ")
		fmt.Println(string(out))
		return
	}

	variant := bcbp.Classify(payload)
	fmt.Printf("variant:     %s\n", variant)

	rec := decoder.Decode(payload, variant)
	out, _ := json.MarshalIndent(rec, "", "  ")
	fmt.Println(string(out))
}
