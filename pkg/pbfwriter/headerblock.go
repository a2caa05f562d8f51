package pbfwriter

import "math"

// HeaderBBox is the optional bounding box carried in the HeaderBlock,
// given in decimal degrees and encoded as raw nanodegrees (degree *
// 1e9) — a different, fixed-precision
// convention from the granularity-scaled node coordinates (spec.md
// §4.4 notes the header "omits bbox (or computes it from the
// first/last nodes)").
type HeaderBBox struct {
	Left, Right, Top, Bottom float64 // decimal degrees
}

// encodeHeaderBlock assembles the HeaderBlock message: required
// features ("OsmSchema-V0.6", "DenseNodes" — spec.md §4.4/§6), an
// optional bbox, and a writing-program string.
func encodeHeaderBlock(bbox *HeaderBBox, writingProgram string) []byte {
	b := newBuffer()

	if bbox != nil {
		inner := newBuffer()
		inner.putSVarintField(1, degToHeaderNano(bbox.Left))
		inner.putSVarintField(2, degToHeaderNano(bbox.Right))
		inner.putSVarintField(3, degToHeaderNano(bbox.Top))
		inner.putSVarintField(4, degToHeaderNano(bbox.Bottom))
		b.putMessageField(1, inner)
	}

	b.putBytesField(4, []byte("OsmSchema-V0.6"))
	b.putBytesField(4, []byte("DenseNodes"))

	if writingProgram != "" {
		b.putBytesField(16, []byte(writingProgram))
	}

	return b.Bytes()
}

// degToHeaderNano converts decimal degrees to the HeaderBBox's raw
// integer units (nanodegrees, i.e. degree * 1e9), distinct from the
// node coordinate granularity of 100 nanodegrees per unit.
func degToHeaderNano(deg float64) int64 {
	return int64(math.Round(deg * 1e9))
}
