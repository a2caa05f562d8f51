package partition

import (
	"nvdb2osm/pkg/segment"
	"nvdb2osm/pkg/tagmap"
)

// AdminCodeRouter resolves a segment's municipality code (NVDB
// Kommu_141, read via tagmap.AdminCode) to the chunk index responsible
// for it — the administrative-code slicing mode SPEC_FULL.md §5
// promises alongside bbox slicing. Unlike BBoxRouter's geometric
// lookup, admin codes partition the country exactly (every segment
// carries at most one municipality), so a plain map is enough; no
// spatial index is warranted.
type AdminCodeRouter struct {
	chunkOf map[string]int
}

// NewAdminCodeRouter builds a router from an explicit code->chunk-index
// assignment, e.g. grouping several municipality codes onto the same
// chunk to balance chunk sizes.
func NewAdminCodeRouter(chunkOf map[string]int) *AdminCodeRouter {
	return &AdminCodeRouter{chunkOf: chunkOf}
}

// ChunkFor returns the chunk index assigned to props's municipality
// code, and false if the segment carries no recognized code or the
// code has no chunk assignment — callers should route such segments
// to a designated overflow chunk rather than dropping them.
func (r *AdminCodeRouter) ChunkFor(props segment.Properties) (int, bool) {
	code, ok := tagmap.AdminCode(props)
	if !ok {
		return 0, false
	}
	idx, ok := r.chunkOf[code]
	return idx, ok
}
