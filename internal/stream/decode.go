// Package stream delivers decoded records from a transport into the
// engine. One message is handled at a time; a bad message is logged and
// skipped, never halting the loop.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"pool-signal-lab/internal/extractor"
)

// Handler processes one decoded record. Errors are per-message and are
// logged by the source without stopping consumption.
type Handler func(ctx context.Context, rec extractor.RawRecord) error

// DecodeRecord turns a JSON payload into a raw record. Numbers are kept
// as json.Number so split 64-bit timestamps survive decoding intact.
func DecodeRecord(payload []byte) (extractor.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var rec map[string]any
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}
