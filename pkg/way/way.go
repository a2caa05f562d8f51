// Package way implements the Way Builder & Simplifier of spec.md §4.3:
// it streams mapped segments in, decides which consecutive segments
// may be merged into a single OSM way under the active join policy,
// and emits finished ways once a join is no longer possible.
//
// Grounded on the teacher's pkg/graph/builder.go Build function: the
// same "collect, sort-by-key, accumulate" shape, but run incrementally
// over a stream rather than materializing the whole edge list first,
// since the pipeline never holds every segment in memory at once.
package way

import (
	"hash/fnv"
	"sort"
	"strings"

	"github.com/paulmach/osm"

	"nvdb2osm/pkg/tagmap"
)

// Policy selects which segments are eligible to join into one way,
// per spec.md §4.3's policy table.
type Policy int

const (
	// PolicyRefname joins segments sharing ref, name, highway and tag
	// fingerprint, subject to endpoint continuity.
	PolicyRefname Policy = iota
	// PolicyConnected joins segments whose full tag set (including
	// name/ref) matches exactly, subject to endpoint continuity.
	PolicyConnected
	// PolicyRoute joins segments sharing the same route id, subject to
	// endpoint continuity; tags are unioned, first segment wins ties.
	PolicyRoute
)

// maxWayNodes caps a single way at 2000 nodes (spec.md §4.3), matching
// the conventional OSM way-size limit so downstream consumers never
// see an oversized way.
const maxWayNodes = 2000

// Finished is a completed way ready for the PBF Encoder.
type Finished struct {
	NodeIDs []int64
	Tags    osm.Tags
}

// Builder accumulates segments into joined ways under one Policy.
type Builder struct {
	policy   Policy
	open     map[string]*openWay
	finished []Finished
}

type openWay struct {
	nodeIDs []int64
	tags    osm.Tags
	tagSeen map[string]bool
}

// New creates a Builder for the given join policy.
func New(policy Policy) *Builder {
	return &Builder{
		policy: policy,
		open:   make(map[string]*openWay),
	}
}

// Add appends one mapped segment's node chain to the builder. nodeIDs
// must have length >= 2 and contain no immediately-adjacent duplicate
// ids — both are enforced upstream by the pipeline, which collapses
// consecutive ids that quantize to the same point and then drops any
// segment left with a single node, before a segment ever reaches the
// way builder (spec.md §4.3 construction step 1).
func (b *Builder) Add(nodeIDs []int64, key tagmap.WayKey, tags osm.Tags) {
	groupKey := b.groupKey(key, tags)

	if isClosedRing(nodeIDs) {
		// A self-loop segment is a complete way on its own — spec.md
		// §4.3: "a segment whose endpoints coincide is never joined to
		// another segment, in either direction." Any chain open under
		// this key is unaffected and stays open for the next segment.
		w := newOpenWay(nodeIDs, tags)
		b.finished = append(b.finished, Finished{NodeIDs: w.nodeIDs, Tags: w.tags})
		return
	}

	if existing, ok := b.open[groupKey]; ok && b.canJoin(existing, nodeIDs) {
		b.join(existing, nodeIDs, tags)
		if len(existing.nodeIDs) >= maxWayNodes {
			b.close(groupKey, existing)
		}
		return
	}

	// No compatible open way: close whatever was open under this key
	// (its chain has ended, e.g. reversed-direction adjacency) and
	// start a fresh one.
	if existing, ok := b.open[groupKey]; ok {
		b.close(groupKey, existing)
	}
	b.open[groupKey] = newOpenWay(nodeIDs, tags)
}

// Finalize flushes every still-open way and returns every finished way
// produced so far, in the order they were closed.
func (b *Builder) Finalize() []Finished {
	keys := make([]string, 0, len(b.open))
	for k := range b.open {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.close(k, b.open[k])
	}
	return b.finished
}

func newOpenWay(nodeIDs []int64, tags osm.Tags) *openWay {
	w := &openWay{
		nodeIDs: append([]int64(nil), nodeIDs...),
		tagSeen: make(map[string]bool, len(tags)),
	}
	for _, t := range tags {
		w.tagSeen[t.Key] = true
		w.tags = append(w.tags, t)
	}
	return w
}

// canJoin reports whether nodeIDs can extend an open way: the new
// segment's first node must equal the way's current last node (forward
// continuity). A segment that instead abuts the way in reverse is
// rejected rather than silently flipped, per spec.md §4.3 — reversed
// adjacency starts a new way instead of joining.
func (b *Builder) canJoin(w *openWay, nodeIDs []int64) bool {
	if len(w.nodeIDs) >= maxWayNodes {
		return false
	}
	last := w.nodeIDs[len(w.nodeIDs)-1]
	return nodeIDs[0] == last
}

func (b *Builder) join(w *openWay, nodeIDs []int64, tags osm.Tags) {
	w.nodeIDs = append(w.nodeIDs, nodeIDs[1:]...)
	if b.policy == PolicyRoute {
		// Union with first-wins: only add keys the way doesn't already
		// carry (spec.md §4.3's route policy).
		for _, t := range tags {
			if w.tagSeen[t.Key] {
				continue
			}
			w.tagSeen[t.Key] = true
			w.tags = append(w.tags, t)
		}
	}
}

func (b *Builder) close(groupKey string, w *openWay) {
	b.finished = append(b.finished, Finished{NodeIDs: w.nodeIDs, Tags: w.tags})
	delete(b.open, groupKey)
}

func isClosedRing(nodeIDs []int64) bool {
	return len(nodeIDs) >= 2 && nodeIDs[0] == nodeIDs[len(nodeIDs)-1]
}

// groupKey computes the join-eligibility key for the active policy.
func (b *Builder) groupKey(key tagmap.WayKey, tags osm.Tags) string {
	switch b.policy {
	case PolicyRefname:
		return strings.Join([]string{key.Ref, key.Name, key.Highway, uint64ToKey(key.Fingerprint)}, "\x1f")
	case PolicyConnected:
		return uint64ToKey(fullFingerprint(tags))
	case PolicyRoute:
		return key.RouteID
	default:
		return uint64ToKey(key.Fingerprint)
	}
}

// fullFingerprint hashes every tag, including name/ref — unlike
// tagmap.WayKey.Fingerprint, which excludes them for the refname/route
// policies' own, coarser-grained comparisons.
func fullFingerprint(tags osm.Tags) uint64 {
	pairs := make([]string, 0, len(tags))
	for _, t := range tags {
		pairs = append(pairs, t.Key+"="+t.Value)
	}
	sort.Strings(pairs)

	h := fnv.New64a()
	h.Write([]byte(strings.Join(pairs, "\x1f")))
	return h.Sum64()
}

func uint64ToKey(v uint64) string {
	const hex = "0123456789abcdef"
	b := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		b[i] = hex[v&0xf]
		v >>= 4
	}
	return string(b)
}
