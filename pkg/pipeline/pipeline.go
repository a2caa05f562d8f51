// Package pipeline is the core entry point of spec.md §6: the single
// callable that turns an ordered stream of NVDB segments into an
// OSM PBF file. It orchestrates, in order, the Attribute->Tag Mapper
// (pkg/tagmap), the Node Interner (pkg/node), the Way Simplifier
// (pkg/way) and the PBF Encoder (pkg/pbfwriter).
//
// The teacher inlines this exact kind of orchestration directly in
// cmd/preprocess/main.go's Step 1..5 sequence; here it is pulled out
// into a package function because spec.md §6 requires a callable API
// both a CLI and the concurrent partition driver (pkg/partition) can
// invoke, one chunk at a time.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/paulmach/osm"

	"nvdb2osm/pkg/diag"
	"nvdb2osm/pkg/node"
	"nvdb2osm/pkg/pbfwriter"
	"nvdb2osm/pkg/segment"
	"nvdb2osm/pkg/tagmap"
	"nvdb2osm/pkg/way"
)

// Options configures one Run, matching spec.md §6's core entry-point
// parameter table.
type Options struct {
	// Segments yields every input segment in (ROUTE_ID, FROM_MEASURE)
	// order; Run stops early if yield returns false.
	Segments func(yield func(segment.Raw) bool)

	// OutputPath is the .osm.pbf file Run writes.
	OutputPath string

	// SimplifyMethod selects the Way Simplifier's join policy.
	SimplifyMethod way.Policy

	// NodeIDStart and WayIDStart set the first id this run assigns,
	// enabling collision-free id bands across concurrent chunks
	// (spec.md §5/§9).
	NodeIDStart int64
	WayIDStart  int64

	// WritingProgram is recorded in the PBF HeaderBlock.
	WritingProgram string
}

// Result reports what one Run produced.
type Result struct {
	SegmentsRead    int
	SegmentsDropped int
	NodesWritten    uint64
	WaysWritten     uint64
	Warnings        *diag.Aggregator
}

// Run executes the full mapper -> interner -> way builder -> encoder
// pipeline over opts.Segments and writes opts.OutputPath.
func Run(ctx context.Context, opts Options) (Result, error) {
	warnings := diag.New()
	interner := node.New(opts.NodeIDStart)
	builder := way.New(opts.SimplifyMethod)

	segmentsRead := 0
	segmentsDropped := 0

	var iterErr error
	opts.Segments(func(raw segment.Raw) bool {
		if err := ctx.Err(); err != nil {
			iterErr = err
			return false
		}
		segmentsRead++

		decoded, err := segment.Decode(raw)
		if err != nil {
			warnings.Record(diag.MalformedWKB, err.Error())
			segmentsDropped++
			return true
		}

		nodeIDs := make([]int64, 0, len(decoded.Coords))
		for _, pt := range decoded.Coords {
			nodeIDs = append(nodeIDs, interner.Intern(pt[0], pt[1]))
		}
		nodeIDs = collapseAdjacentDuplicates(nodeIDs)
		if isZeroLength(nodeIDs) {
			warnings.Record(diag.ZeroLengthSegment, fmt.Sprintf("node %d", nodeIDs[0]))
			segmentsDropped++
			return true
		}

		mapped := tagmap.Map(decoded.Props)
		if mapped.Drop {
			warnings.Record(diag.ClosedFerry, fmt.Sprintf("node %d", nodeIDs[0]))
			segmentsDropped++
			return true
		}

		builder.Add(nodeIDs, mapped.Key, mapped.Tags)
		return true
	})
	if iterErr != nil {
		return Result{}, fmt.Errorf("pipeline: segment stream: %w", iterErr)
	}

	finishedWays := builder.Finalize()

	f, err := os.Create(opts.OutputPath)
	if err != nil {
		return Result{}, fmt.Errorf("pipeline: create output: %w", err)
	}
	defer f.Close()

	enc := pbfwriter.NewEncoder(f)
	if err := enc.WriteHeader(opts.WritingProgram); err != nil {
		return Result{}, fmt.Errorf("pipeline: write header: %w", err)
	}

	for _, n := range interner.Nodes() {
		if err := enc.PutNode(pbfwriter.Node{ID: n.ID, LonNano: n.Lon, LatNano: n.Lat}); err != nil {
			return Result{}, fmt.Errorf("pipeline: write node: %w", err)
		}
	}

	wayID := opts.WayIDStart
	for _, w := range finishedWays {
		pw := pbfwriter.Way{
			ID:       wayID,
			NodeRefs: w.NodeIDs,
			Tags:     toTagPairs(w.Tags),
		}
		if err := enc.PutWay(pw, interner.Has); err != nil {
			return Result{}, fmt.Errorf("pipeline: write way: %w", err)
		}
		wayID++
	}

	if err := enc.Close(); err != nil {
		return Result{}, fmt.Errorf("pipeline: close encoder: %w", err)
	}

	nodesWritten, waysWritten := enc.Counts()
	return Result{
		SegmentsRead:    segmentsRead,
		SegmentsDropped: segmentsDropped,
		NodesWritten:    nodesWritten,
		WaysWritten:     waysWritten,
		Warnings:        warnings,
	}, nil
}

// collapseAdjacentDuplicates drops a node id that repeats its
// immediate predecessor — the normal case of two consecutive vertices
// quantizing to the same nanodegree grid point (spec.md §3/§4.3
// construction step 1), not an error condition. A way referencing the
// same node twice in a row is rejected by the PBF encoder's invariant,
// so this must run before any node ids reach the way builder.
func collapseAdjacentDuplicates(nodeIDs []int64) []int64 {
	out := nodeIDs[:0:0]
	for i, id := range nodeIDs {
		if i == 0 || id != nodeIDs[i-1] {
			out = append(out, id)
		}
	}
	return out
}

// isZeroLength reports whether every vertex in a segment interned to
// the same node id — a degenerate, zero-length segment that spec.md
// §9's open-questions resolution says to drop rather than encode as a
// single-node way. Called after collapseAdjacentDuplicates, so a
// single remaining id is the only way this can still be true.
func isZeroLength(nodeIDs []int64) bool {
	for _, id := range nodeIDs[1:] {
		if id != nodeIDs[0] {
			return false
		}
	}
	return true
}

func toTagPairs(tags osm.Tags) []pbfwriter.TagPair {
	out := make([]pbfwriter.TagPair, len(tags))
	for i, t := range tags {
		out[i] = pbfwriter.TagPair{Key: t.Key, Value: t.Value}
	}
	return out
}
