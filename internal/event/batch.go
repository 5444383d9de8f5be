// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package event

import (
	"encoding/json"
	"fmt"
)

// EncodeBatch serializes records as a single JSON array, one object per record.
func EncodeBatch(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	body, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode batch of %d records: %w", len(records), err)
	}
	return body, nil
}

// DecodeBatch parses a JSON array produced by EncodeBatch.
func DecodeBatch(body []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return records, nil
}
