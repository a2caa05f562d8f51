// Package geo provides the small numeric helpers the converter needs
// around coordinate quantization: OSM stores node coordinates as
// nanodegree integers (granularity 100, offsets zero), and the PBF
// encoder's dense-node layout is built from zig-zag-encoded deltas of
// those integers.
package geo

import "math"

// Granularity is the PBF granularity used for all coordinates this
// package emits: units are 100 nanodegrees, i.e. lon/lat * 1e7 rounded
// to the nearest integer.
const Granularity = 100

// QuantizeDegrees rounds a decimal-degree coordinate to its nanodegree
// integer form (OSM convention: multiply by 1e7 and round to nearest).
// Two coordinates that round to the same integer are, by definition,
// the same OSM node.
func QuantizeDegrees(deg float64) int32 {
	return int32(math.Round(deg * 1e7))
}

// DequantizeDegrees converts a nanodegree integer back to decimal
// degrees. Used only for diagnostics; the encoder itself never needs
// to go back to floating point once a coordinate is interned.
func DequantizeDegrees(nano int32) float64 {
	return float64(nano) / 1e7
}

// PackCoord packs a quantized (lon, lat) pair into a single int64 key
// suitable for hashing in the node interner. lon occupies the high
// 32 bits, lat the low 32 bits.
func PackCoord(lon, lat int32) int64 {
	return int64(uint64(uint32(lon))<<32 | uint64(uint32(lat)))
}

// UnpackCoord reverses PackCoord.
func UnpackCoord(key int64) (lon, lat int32) {
	return int32(uint32(key >> 32)), int32(uint32(key))
}

// ZigZag encodes a signed 64-bit integer into its zig-zag unsigned
// form, the convention protobuf (and therefore OSM PBF) uses for
// delta-encoded signed fields: 0, -1, 1, -2, 2, ... -> 0, 1, 2, 3, 4...
func ZigZag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// UnZigZag reverses ZigZag.
func UnZigZag(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// BoundingBox accumulates the minimum bounding rectangle of a stream
// of nanodegree coordinates. pbfwriter.Encoder does not use it: the
// encoder keeps its own accumulator for Bounds() and writes the
// HeaderBlock without a bbox.
type BoundingBox struct {
	MinLon, MinLat int32
	MaxLon, MaxLat int32
	seen           bool
}

// Extend folds a quantized coordinate into the accumulator.
func (b *BoundingBox) Extend(lon, lat int32) {
	if !b.seen {
		b.MinLon, b.MaxLon = lon, lon
		b.MinLat, b.MaxLat = lat, lat
		b.seen = true
		return
	}
	if lon < b.MinLon {
		b.MinLon = lon
	}
	if lon > b.MaxLon {
		b.MaxLon = lon
	}
	if lat < b.MinLat {
		b.MinLat = lat
	}
	if lat > b.MaxLat {
		b.MaxLat = lat
	}
}

// Empty reports whether no coordinate has been accumulated yet.
func (b *BoundingBox) Empty() bool {
	return !b.seen
}
