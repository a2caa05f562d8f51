package tagmap

import "github.com/paulmach/osm"

// builder accumulates OSM tags in rule-cascade order. Using a plain
// append-only slice (rather than a map) keeps the mapper's output a
// deterministic function of its input, per spec.md §3: two segments
// with identical property maps must produce byte-identical tag lists.
type builder struct {
	tags osm.Tags
	seen map[string]bool
}

func newBuilder() *builder {
	return &builder{seen: make(map[string]bool)}
}

// set appends key=value, skipping it if the key was already set by an
// earlier, higher-priority rule in the cascade (first-wins, matching
// the way-join conflict rule of spec.md §4.3).
func (b *builder) set(key, value string) {
	if value == "" || b.seen[key] {
		return
	}
	b.seen[key] = true
	b.tags = append(b.tags, osm.Tag{Key: key, Value: value})
}

func (b *builder) has(key string) bool {
	return b.seen[key]
}

func (b *builder) build() osm.Tags {
	return b.tags
}
