package pbfwriter

// Low-level protobuf wire-format primitives. OSM PBF is, at the byte
// level, ordinary length-delimited protobuf messages (fileformat.proto
// and osmformat.proto); no third-party package in the corpus writes
// this format (paulmach/osm/osmpbf and github.com/qedus/osmpbf only
// decode it), so the wire encoding is hand-rolled here the same way
// the teacher hand-rolls its own binary container in
// pkg/graph/binary.go — explicit, low-level, and directly testable.

// wireType identifies a protobuf field's on-wire encoding.
type wireType byte

const (
	wireVarint wireType = 0
	wireLen    wireType = 2
)

// buffer is a small append-only byte builder used by every message
// encoder in this package; it exists so call sites read like
// "write field 1, write field 2, ..." instead of juggling io.Writer
// errors for something that can never fail.
type buffer struct {
	b []byte
}

func newBuffer() *buffer { return &buffer{} }

func (w *buffer) Bytes() []byte { return w.b }

func (w *buffer) Len() int { return len(w.b) }

// putUvarint appends v as a protobuf varint.
func (w *buffer) putUvarint(v uint64) {
	for v >= 0x80 {
		w.b = append(w.b, byte(v)|0x80)
		v >>= 7
	}
	w.b = append(w.b, byte(v))
}

// putTag appends a field tag: (fieldNumber << 3) | wireType.
func (w *buffer) putTag(fieldNumber int, wt wireType) {
	w.putUvarint(uint64(fieldNumber)<<3 | uint64(wt))
}

// putVarintField writes a (tag, varint) pair for field fieldNumber.
func (w *buffer) putVarintField(fieldNumber int, v uint64) {
	w.putTag(fieldNumber, wireVarint)
	w.putUvarint(v)
}

// putSVarintField writes a (tag, zigzag varint) pair — used for
// signed fields (sint32/sint64 in the .proto).
func (w *buffer) putSVarintField(fieldNumber int, v int64) {
	w.putTag(fieldNumber, wireVarint)
	w.putUvarint(zigZag(v))
}

// putBytesField writes a (tag, length, bytes) triple for a length-
// delimited field (string/bytes/embedded message).
func (w *buffer) putBytesField(fieldNumber int, data []byte) {
	w.putTag(fieldNumber, wireLen)
	w.putUvarint(uint64(len(data)))
	w.b = append(w.b, data...)
}

// putMessageField writes an embedded message, given its already-
// encoded bytes.
func (w *buffer) putMessageField(fieldNumber int, msg *buffer) {
	w.putBytesField(fieldNumber, msg.Bytes())
}

func zigZag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// putPackedVarints writes a packed repeated varint field: one tag,
// one length prefix, then the varints back to back with no further
// tags — the encoding DenseNodes/Way use for id/lat/lon/refs deltas
// and keys_vals arrays.
func (w *buffer) putPackedVarints(fieldNumber int, values []uint64) {
	inner := newBuffer()
	for _, v := range values {
		inner.putUvarint(v)
	}
	w.putMessageField(fieldNumber, inner)
}

// putPackedSVarints is putPackedVarints for signed (zig-zag) values.
func (w *buffer) putPackedSVarints(fieldNumber int, values []int64) {
	inner := newBuffer()
	for _, v := range values {
		inner.putUvarint(zigZag(v))
	}
	w.putMessageField(fieldNumber, inner)
}
