package pbfwriter

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"testing"
)

// minimal read-side helpers, used only by these tests to verify what
// Encoder wrote without requiring a full protobuf decoder.

type fileBlock struct {
	blobType string
	payload  []byte
}

func readFileBlocks(t *testing.T, data []byte) []fileBlock {
	t.Helper()
	var blocks []fileBlock
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		var lenPrefix [4]byte
		if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
			t.Fatalf("read blobheader length: %v", err)
		}
		hdrLen := binary.BigEndian.Uint32(lenPrefix[:])
		hdrBytes := make([]byte, hdrLen)
		if _, err := io.ReadFull(r, hdrBytes); err != nil {
			t.Fatalf("read blobheader: %v", err)
		}
		blobType, datasize := decodeBlobHeader(t, hdrBytes)
		blobBytes := make([]byte, datasize)
		if _, err := io.ReadFull(r, blobBytes); err != nil {
			t.Fatalf("read blob: %v", err)
		}
		payload := decodeBlob(t, blobBytes)
		blocks = append(blocks, fileBlock{blobType: blobType, payload: payload})
	}
	return blocks
}

func decodeBlobHeader(t *testing.T, b []byte) (blobType string, datasize uint64) {
	t.Helper()
	for len(b) > 0 {
		tag, n := decodeUvarint(b)
		b = b[n:]
		field := tag >> 3
		wt := wireType(tag & 0x7)
		switch {
		case field == 1 && wt == wireLen:
			l, n := decodeUvarint(b)
			b = b[n:]
			blobType = string(b[:l])
			b = b[l:]
		case field == 3 && wt == wireVarint:
			v, n := decodeUvarint(b)
			b = b[n:]
			datasize = v
		default:
			t.Fatalf("unexpected field %d in BlobHeader", field)
		}
	}
	return blobType, datasize
}

func decodeBlob(t *testing.T, b []byte) []byte {
	t.Helper()
	var raw []byte
	var zlibData []byte
	for len(b) > 0 {
		tag, n := decodeUvarint(b)
		b = b[n:]
		field := tag >> 3
		wt := wireType(tag & 0x7)
		switch {
		case wt == wireLen:
			l, n := decodeUvarint(b)
			b = b[n:]
			data := b[:l]
			b = b[l:]
			switch field {
			case 1:
				raw = data
			case 3:
				zlibData = data
			}
		case wt == wireVarint:
			_, n := decodeUvarint(b)
			b = b[n:]
		default:
			t.Fatalf("unexpected wiretype in Blob")
		}
	}
	if raw != nil {
		return raw
	}
	zr, err := zlib.NewReader(bytes.NewReader(zlibData))
	if err != nil {
		t.Fatalf("zlib.NewReader: %v", err)
	}
	out, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("zlib read: %v", err)
	}
	return out
}

// decodeMessage splits a protobuf message into field -> list of raw
// value bytes (for wireLen) or list of values (for wireVarint),
// sufficient for the flat messages this package emits.
type decodedMsg struct {
	varints map[int][]uint64
	lens    map[int][][]byte
}

func decodeMessage(t *testing.T, b []byte) decodedMsg {
	t.Helper()
	m := decodedMsg{varints: map[int][]uint64{}, lens: map[int][][]byte{}}
	for len(b) > 0 {
		tag, n := decodeUvarint(b)
		b = b[n:]
		field := int(tag >> 3)
		wt := wireType(tag & 0x7)
		switch wt {
		case wireVarint:
			v, n := decodeUvarint(b)
			b = b[n:]
			m.varints[field] = append(m.varints[field], v)
		case wireLen:
			l, n := decodeUvarint(b)
			b = b[n:]
			m.lens[field] = append(m.lens[field], b[:l])
			b = b[l:]
		default:
			t.Fatalf("unsupported wiretype %d", wt)
		}
	}
	return m
}

func decodePackedSVarints(t *testing.T, b []byte) []int64 {
	t.Helper()
	var out []int64
	for len(b) > 0 {
		v, n := decodeUvarint(b)
		b = b[n:]
		out = append(out, int64(v>>1)^-int64(v&1))
	}
	return out
}

func decodePackedVarints(t *testing.T, b []byte) []uint64 {
	t.Helper()
	var out []uint64
	for len(b) > 0 {
		v, n := decodeUvarint(b)
		b = b[n:]
		out = append(out, v)
	}
	return out
}

func TestEncoderRoundTripSingleWay(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.WriteHeader("nvdb2osm-test"); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}

	nodes := []Node{
		{ID: 1, LonNano: 170_000_000, LatNano: 620_000_000},
		{ID: 2, LonNano: 170_100_000, LatNano: 620_050_000},
	}
	for _, n := range nodes {
		if err := enc.PutNode(n); err != nil {
			t.Fatalf("PutNode: %v", err)
		}
	}

	known := map[int64]bool{1: true, 2: true}
	way := Way{
		ID:       1,
		NodeRefs: []int64{1, 2},
		Tags:     []TagPair{{"highway", "motorway"}, {"ref", "E4"}},
	}
	if err := enc.PutWay(way, func(id int64) bool { return known[id] }); err != nil {
		t.Fatalf("PutWay: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	blocks := readFileBlocks(t, buf.Bytes())
	if len(blocks) != 3 {
		t.Fatalf("got %d fileblocks, want 3 (header, nodes, ways)", len(blocks))
	}
	if blocks[0].blobType != "OSMHeader" {
		t.Fatalf("first block type = %q, want OSMHeader", blocks[0].blobType)
	}
	if blocks[1].blobType != "OSMData" || blocks[2].blobType != "OSMData" {
		t.Fatalf("data block types = %q, %q", blocks[1].blobType, blocks[2].blobType)
	}

	// Decode the node PrimitiveBlock.
	nodeBlock := decodeMessage(t, blocks[1].payload)
	groups := nodeBlock.lens[2]
	if len(groups) != 1 {
		t.Fatalf("node block: %d groups, want 1", len(groups))
	}
	group := decodeMessage(t, groups[0])
	denseMsgs := group.lens[2]
	if len(denseMsgs) != 1 {
		t.Fatalf("expected 1 DenseNodes message")
	}
	dense := decodeMessage(t, denseMsgs[0])
	ids := decodePackedSVarints(t, dense.lens[1][0])
	lats := decodePackedSVarints(t, dense.lens[8][0])
	lons := decodePackedSVarints(t, dense.lens[9][0])

	gotIDs := cumsum(ids)
	gotLats := cumsum(lats)
	gotLons := cumsum(lons)
	wantIDs := []int64{1, 2}
	wantLats := []int64{620_000_000, 620_050_000}
	wantLons := []int64{170_000_000, 170_100_000}
	if !int64SliceEqual(gotIDs, wantIDs) {
		t.Errorf("decoded node ids = %v, want %v", gotIDs, wantIDs)
	}
	if !int64SliceEqual(gotLats, wantLats) {
		t.Errorf("decoded lats = %v, want %v", gotLats, wantLats)
	}
	if !int64SliceEqual(gotLons, wantLons) {
		t.Errorf("decoded lons = %v, want %v", gotLons, wantLons)
	}

	// Decode the way PrimitiveBlock.
	wayBlock := decodeMessage(t, blocks[2].payload)
	stMsgs := wayBlock.lens[1]
	if len(stMsgs) != 1 {
		t.Fatalf("expected 1 StringTable message")
	}
	st := decodeMessage(t, stMsgs[0])
	strs := st.lens[1]
	wayGroups := wayBlock.lens[2]
	group2 := decodeMessage(t, wayGroups[0])
	wayMsgs := group2.lens[3]
	if len(wayMsgs) != 1 {
		t.Fatalf("expected 1 way message, got %d", len(wayMsgs))
	}
	wmsg := decodeMessage(t, wayMsgs[0])
	if wmsg.varints[1][0] != 1 {
		t.Errorf("way id = %d, want 1", wmsg.varints[1][0])
	}
	refs := cumsum(decodePackedSVarints(t, wmsg.lens[8][0]))
	if !int64SliceEqual(refs, []int64{1, 2}) {
		t.Errorf("way node refs = %v, want [1 2]", refs)
	}
	keys := decodePackedVarints(t, wmsg.lens[2][0])
	vals := decodePackedVarints(t, wmsg.lens[3][0])
	if len(keys) != 2 || len(vals) != 2 {
		t.Fatalf("expected 2 tags, got %d keys %d vals", len(keys), len(vals))
	}
	gotTags := map[string]string{
		string(strs[keys[0]]): string(strs[vals[0]]),
		string(strs[keys[1]]): string(strs[vals[1]]),
	}
	if gotTags["highway"] != "motorway" || gotTags["ref"] != "E4" {
		t.Errorf("decoded tags = %v", gotTags)
	}
}

func TestEncoderPanicsOnNonIncreasingNodeID(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on non-increasing node id")
		}
	}()
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	_ = enc.PutNode(Node{ID: 2})
	_ = enc.PutNode(Node{ID: 1})
}

func TestEncoderPanicsOnUnknownNodeRef(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on way referencing unknown node")
		}
	}()
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	_ = enc.PutNode(Node{ID: 1})
	_ = enc.PutWay(Way{ID: 1, NodeRefs: []int64{1, 99}}, func(id int64) bool { return id == 1 })
}

func TestEncoderPanicsOnTooFewNodeRefs(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on way with <2 node refs")
		}
	}()
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	_ = enc.PutWay(Way{ID: 1, NodeRefs: []int64{1}}, nil)
}

func cumsum(deltas []int64) []int64 {
	out := make([]int64, len(deltas))
	var acc int64
	for i, d := range deltas {
		acc += d
		out[i] = acc
	}
	return out
}

func int64SliceEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
