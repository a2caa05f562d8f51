// Package segment holds the core's input types: the raw (WKB,
// property map) record the pipeline consumes, and the property-value
// variant (see Value) that keeps the attribute reader's schema-free
// values from leaking Go's dynamic typing into the tag mapper.
package segment

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

// Properties is a segment's attribute map: column name to value.
// Keys are the NVDB column names of spec.md §6 (Motorvag, Vagnr_10370,
// and so on); missing columns are simply absent from the map rather
// than present with a Null value, though both read the same way
// through Properties.Get.
type Properties map[string]Value

// Get returns the value for key, or Null if the column is absent —
// callers never need a second "ok" check, matching the "missing
// values permitted" contract of spec.md §3.
func (p Properties) Get(key string) Value {
	if v, ok := p[key]; ok {
		return v
	}
	return Null
}

// Raw is one input record as it arrives off the stream: WKB-encoded
// geometry plus its property map, in the sort order spec.md §3
// requires (ROUTE_ID asc, FROM_MEASURE asc).
type Raw struct {
	WKB   []byte
	Props Properties
}

// Decoded is a Raw segment with its geometry resolved to a coordinate
// sequence. The mapper and way builder operate on Decoded segments;
// WKB parsing happens exactly once, at the pipeline's intake edge.
type Decoded struct {
	Coords []orb.Point // (lon, lat) pairs, len >= 2
	Props  Properties
}

// ErrUnsupportedGeometry is returned by Decode when the WKB payload is
// not a 2D linestring with at least two vertices — a malformed-WKB
// input error per spec.md §4.3/§7 ("malformed WKB ... causes the whole
// segment to be dropped with a counted warning").
type ErrUnsupportedGeometry struct {
	Reason string
}

func (e *ErrUnsupportedGeometry) Error() string {
	return fmt.Sprintf("unsupported geometry: %s", e.Reason)
}

// Decode parses r.WKB into a coordinate sequence. It accepts only
// LineString geometries (2D, >= 2 vertices); anything else — a point,
// polygon, multi-geometry, or a truncated/unrecognized byte order —
// is reported as ErrUnsupportedGeometry so the caller can count and
// skip it rather than aborting the whole run.
func Decode(r Raw) (Decoded, error) {
	geom, err := wkb.Unmarshal(r.WKB)
	if err != nil {
		return Decoded{}, &ErrUnsupportedGeometry{Reason: err.Error()}
	}
	ls, ok := geom.(orb.LineString)
	if !ok {
		return Decoded{}, &ErrUnsupportedGeometry{Reason: fmt.Sprintf("expected LineString, got %T", geom)}
	}
	if len(ls) < 2 {
		return Decoded{}, &ErrUnsupportedGeometry{Reason: "linestring has fewer than 2 vertices"}
	}
	return Decoded{Coords: ls, Props: r.Props}, nil
}
