package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/tempo/internal/ir"
)

// marshalSpecs converts the specs of a run to JSON TEXT for storage.
//
// Canonical JSON forbids floats, so specs use encoding/json, whose
// shortest-representation float formatting round-trips float64 exactly.
// Field order follows the struct, which keeps the text stable.
func marshalSpecs(specs []ir.TimelineSpec) (string, error) {
	if specs == nil {
		specs = []ir.TimelineSpec{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // CRITICAL: timeline names and text values are stored verbatim
	if err := enc.Encode(specs); err != nil {
		return "", fmt.Errorf("marshal specs: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalSpecs parses JSON TEXT back to timeline specs.
func unmarshalSpecs(data string) ([]ir.TimelineSpec, error) {
	if data == "" || data == "[]" {
		return []ir.TimelineSpec{}, nil
	}
	var specs []ir.TimelineSpec
	if err := json.Unmarshal([]byte(data), &specs); err != nil {
		return nil, fmt.Errorf("unmarshal specs: %w", err)
	}
	return specs, nil
}
