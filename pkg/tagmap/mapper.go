// Package tagmap implements the Attribute->Tag Mapper of spec.md §4.1:
// a pure function from one segment's NVDB property map to the OSM
// tags it should carry, plus the join key the Way Simplifier uses to
// decide which segments may be merged into a single way.
//
// Grounded on the teacher's pkg/osm/parser.go, whose isCarAccessible
// and directionFlags functions inspect a handful of raw OSM tags to
// derive routing properties; this package generalizes that
// tag-inspection style into the full NVDB rule cascade of spec.md §6,
// run in the opposite direction (raw columns in, OSM tags out).
package tagmap

import (
	"hash/fnv"
	"sort"
	"strings"

	"github.com/paulmach/osm"

	"nvdb2osm/pkg/segment"
)

// WayKey is the join key two segments must agree on (subject to the
// active SimplifyMethod's extra rules) before the Way Simplifier will
// consider merging them into one way, per spec.md §4.3.
type WayKey struct {
	Ref         string
	Name        string
	Highway     string
	RouteID     string
	Fingerprint uint64
}

// Result is one segment's mapped output.
type Result struct {
	Tags osm.Tags
	Key  WayKey
	Drop bool
}

// Map converts a segment's property map into OSM tags and a join key.
// Drop is true only for segments the mapper determines should not
// appear in the output at all — currently just closed ferry
// connections (spec.md §4.1 item 1, §4.3).
func Map(p segment.Properties) Result {
	if ferry, closed := isFerry(p); ferry {
		if closed {
			return Result{Drop: true}
		}
		b := newBuilder()
		b.set("route", "ferry")
		applyNamesAndRefs(b, p)
		return finish(b, p, "")
	}

	highway := classify(p)
	highway = applyLinkSuffix(highway, p)

	b := newBuilder()
	applyCycleAndMisc(b, p, highway)
	if b.has("highway") {
		// A cycle/pedestrian override (living_street, cycleway) takes
		// precedence over the class cascade's result.
		highway = mustString(b, "highway")
	} else if highway != "" {
		b.set("highway", highway)
	}

	applyAccess(b, p)
	if highway == "motorway" || highway == "motorway_link" {
		// Motorways default to oneway=yes absent an explicit direction
		// restriction (spec.md §8 S1); if applyAccess above already set
		// an explicit oneway, this is a no-op by first-wins.
		b.set("oneway", "yes")
	}
	applyWeightAndSize(b, p)
	applySpeed(b, p)
	applySurface(b, p)
	applyLanes(b, p)
	applyStructures(b, p)
	applyNamesAndRefs(b, p)

	return finish(b, p, highway)
}

// AdminCode returns a segment's municipality code (Kommu_141), the
// administrative-code join key the partition driver's admin-code
// chunking mode groups segments by (spec.md §5). The mapper itself
// never emits it as a tag — it is purely a routing key.
func AdminCode(p segment.Properties) (string, bool) {
	return p.Get(colKommu141).AsString()
}

func mustString(b *builder, key string) string {
	for _, t := range b.tags {
		if t.Key == key {
			return t.Value
		}
	}
	return ""
}

func finish(b *builder, p segment.Properties, highway string) Result {
	tags := b.build()
	ref := mustString(b, "ref")
	name := mustString(b, "name")
	routeID, _ := p.Get(colRouteID).AsString()

	return Result{
		Tags: tags,
		Key: WayKey{
			Ref:         ref,
			Name:        name,
			Highway:     highway,
			RouteID:     routeID,
			Fingerprint: fingerprint(tags),
		},
	}
}

// fingerprint is a stable hash of tags, excluding name/ref (those are
// compared separately as WayKey fields, and the "connected"/"route"
// join policies treat them differently — see spec.md §4.3's table).
func fingerprint(tags osm.Tags) uint64 {
	pairs := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Key == "name" || t.Key == "ref" {
			continue
		}
		pairs = append(pairs, t.Key+"="+t.Value)
	}
	sort.Strings(pairs)

	h := fnv.New64a()
	h.Write([]byte(strings.Join(pairs, "\x1f")))
	return h.Sum64()
}
