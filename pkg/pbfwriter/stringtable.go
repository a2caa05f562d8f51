package pbfwriter

// stringTable is a per-fileblock append-only interned string list.
// Index 0 is reserved for the empty string, as required by the OSM
// PBF StringTable message: every PrimitiveBlock carries its own table,
// and all tag keys/values/user names in that block are represented by
// index into it rather than by raw bytes.
type stringTable struct {
	index  map[string]uint32
	values []string
}

func newStringTable() *stringTable {
	return &stringTable{
		index:  map[string]uint32{"": 0},
		values: []string{""},
	}
}

// intern returns s's index, assigning a new one on first occurrence.
func (t *stringTable) intern(s string) uint32 {
	if i, ok := t.index[s]; ok {
		return i
	}
	i := uint32(len(t.values))
	t.index[s] = i
	t.values = append(t.values, s)
	return i
}

// encode serializes the StringTable message: a repeated bytes field
// (field 1) holding every interned string in index order.
func (t *stringTable) encode() *buffer {
	b := newBuffer()
	for _, s := range t.values {
		b.putBytesField(1, []byte(s))
	}
	return b
}
