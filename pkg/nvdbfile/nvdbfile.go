// Package nvdbfile is a minimal line-delimited JSON reader standing in
// for the NVDB tabular/spatial source spec.md §1 places out of scope
// ("reading from NVDB's own file formats or APIs is not addressed").
// Each line is one segment: a hex-encoded WKB geometry plus its
// property map, already sorted by (ROUTE_ID, FROM_MEASURE) as
// spec.md §3 requires of the input stream.
package nvdbfile

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"nvdb2osm/pkg/segment"
)

// record is the on-disk shape of one line.
type record struct {
	GeometryWKBHex string                     `json:"geometry_wkb_hex"`
	Properties     map[string]json.RawMessage `json:"properties"`
}

// Read decodes every line of r into a segment.Raw, calling yield for
// each one in file order. It stops and returns nil as soon as yield
// returns false, matching the range-over-func iterator contract
// pkg/pipeline's Options.Segments expects to be wrapped into.
func Read(r io.Reader, yield func(segment.Raw) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("nvdbfile: line %d: %w", lineNo, err)
		}
		wkb, err := hex.DecodeString(rec.GeometryWKBHex)
		if err != nil {
			return fmt.Errorf("nvdbfile: line %d: decode geometry_wkb_hex: %w", lineNo, err)
		}
		props, err := decodeProperties(rec.Properties)
		if err != nil {
			return fmt.Errorf("nvdbfile: line %d: %w", lineNo, err)
		}
		if !yield(segment.Raw{WKB: wkb, Props: props}) {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("nvdbfile: %w", err)
	}
	return nil
}

// decodeProperties converts raw JSON scalars into segment.Value,
// preserving the JSON type rather than collapsing everything to
// string, so the tag mapper's AsBool/AsFloat coercions see genuine
// numbers and booleans where the source provided them.
func decodeProperties(raw map[string]json.RawMessage) (segment.Properties, error) {
	props := make(segment.Properties, len(raw))
	for key, msg := range raw {
		var v any
		if err := json.Unmarshal(msg, &v); err != nil {
			return nil, fmt.Errorf("property %q: %w", key, err)
		}
		switch val := v.(type) {
		case nil:
			props[key] = segment.Null
		case bool:
			props[key] = segment.Bool(val)
		case float64:
			props[key] = segment.Float(val)
		case string:
			props[key] = segment.String(val)
		default:
			return nil, fmt.Errorf("property %q: unsupported JSON value type %T", key, val)
		}
	}
	return props, nil
}
