package pipeline

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"nvdb2osm/pkg/segment"
	"nvdb2osm/pkg/way"
)

// lineStringWKB builds a little-endian WKB LineString from (lon, lat)
// pairs, mirroring the byte layout segment.Decode expects.
func lineStringWKB(coords [][2]float64) []byte {
	var buf bytes.Buffer
	buf.WriteByte(1) // little endian
	binary.Write(&buf, binary.LittleEndian, uint32(2))
	binary.Write(&buf, binary.LittleEndian, uint32(len(coords)))
	for _, c := range coords {
		binary.Write(&buf, binary.LittleEndian, math.Float64bits(c[0]))
		binary.Write(&buf, binary.LittleEndian, math.Float64bits(c[1]))
	}
	return buf.Bytes()
}

func segments(raws ...segment.Raw) func(yield func(segment.Raw) bool) {
	return func(yield func(segment.Raw) bool) {
		for _, r := range raws {
			if !yield(r) {
				return
			}
		}
	}
}

func findTag(tags osm.Tags, key string) (string, bool) {
	for _, t := range tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

func TestS1SingleMotorwaySegment(t *testing.T) {
	raw := segment.Raw{
		WKB: lineStringWKB([][2]float64{{17.0, 62.0}, {17.01, 62.005}}),
		Props: segment.Properties{
			"Motorvag":     segment.Bool(true),
			"Vagnr_10370":  segment.String("E4"),
		},
	}
	out := filepath.Join(t.TempDir(), "s1.osm.pbf")
	res, err := Run(context.Background(), Options{
		Segments:      segments(raw),
		OutputPath:    out,
		SimplifyMethod: way.PolicyRefname,
		NodeIDStart:   1,
		WayIDStart:    1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.NodesWritten != 2 || res.WaysWritten != 1 {
		t.Fatalf("nodes=%d ways=%d, want 2 and 1", res.NodesWritten, res.WaysWritten)
	}

	nodes, ways := decodePBF(t, out)
	if len(nodes) != 2 || len(ways) != 1 {
		t.Fatalf("decoded nodes=%d ways=%d", len(nodes), len(ways))
	}
	w := ways[0]
	if v, _ := findTag(w.Tags, "highway"); v != "motorway" {
		t.Errorf("highway = %q, want motorway", v)
	}
	if v, _ := findTag(w.Tags, "ref"); v != "E4" {
		t.Errorf("ref = %q, want E4", v)
	}
	if v, _ := findTag(w.Tags, "oneway"); v != "yes" {
		t.Errorf("oneway = %q, want yes", v)
	}
}

func TestS2TwoColinearSegmentsJoinUnderRefname(t *testing.T) {
	shared := [2]float64{17.01, 62.005}
	a := segment.Raw{
		WKB: lineStringWKB([][2]float64{{17.0, 62.0}, {shared[0], shared[1]}}),
		Props: segment.Properties{
			"Motorvag":    segment.Bool(true),
			"Vagnr_10370": segment.String("E4"),
			"ROUTE_ID":    segment.String("R1"),
		},
	}
	b := segment.Raw{
		WKB: lineStringWKB([][2]float64{{shared[0], shared[1]}, {17.02, 62.01}}),
		Props: segment.Properties{
			"Motorvag":    segment.Bool(true),
			"Vagnr_10370": segment.String("E4"),
			"ROUTE_ID":    segment.String("R1"),
		},
	}
	out := filepath.Join(t.TempDir(), "s2.osm.pbf")
	res, err := Run(context.Background(), Options{
		Segments:       segments(a, b),
		OutputPath:     out,
		SimplifyMethod: way.PolicyRefname,
		NodeIDStart:    1,
		WayIDStart:     1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.NodesWritten != 3 {
		t.Errorf("nodes = %d, want 3", res.NodesWritten)
	}
	if res.WaysWritten != 1 {
		t.Errorf("ways = %d, want 1", res.WaysWritten)
	}
	_, ways := decodePBF(t, out)
	if len(ways) != 1 || len(ways[0].Nodes) != 3 {
		t.Fatalf("way node count = %v, want 3 refs", ways)
	}
}

func TestS3TagMismatchBlocksJoin(t *testing.T) {
	shared := [2]float64{17.01, 62.005}
	a := segment.Raw{
		WKB: lineStringWKB([][2]float64{{17.0, 62.0}, {shared[0], shared[1]}}),
		Props: segment.Properties{
			"Motorvag":    segment.Bool(true),
			"Vagnr_10370": segment.String("E4"),
		},
	}
	b := segment.Raw{
		WKB: lineStringWKB([][2]float64{{shared[0], shared[1]}, {17.02, 62.01}}),
		Props: segment.Properties{
			"Motorvag":    segment.Bool(true),
			"Vagnr_10370": segment.String("E45"),
		},
	}
	out := filepath.Join(t.TempDir(), "s3.osm.pbf")
	res, err := Run(context.Background(), Options{
		Segments:       segments(a, b),
		OutputPath:     out,
		SimplifyMethod: way.PolicyRefname,
		NodeIDStart:    1,
		WayIDStart:     1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.NodesWritten != 3 {
		t.Errorf("nodes = %d, want 3 (shared point deduplicated)", res.NodesWritten)
	}
	if res.WaysWritten != 2 {
		t.Errorf("ways = %d, want 2", res.WaysWritten)
	}
}

func TestS4BridgeWithLayer(t *testing.T) {
	raw := segment.Raw{
		WKB: lineStringWKB([][2]float64{{17.0, 62.0}, {17.01, 62.005}}),
		Props: segment.Properties{
			"Konst_190": segment.String("bro"),
			"Namn_193":  segment.String("Ölandsbron"),
		},
	}
	out := filepath.Join(t.TempDir(), "s4.osm.pbf")
	_, err := Run(context.Background(), Options{
		Segments:       segments(raw),
		OutputPath:     out,
		SimplifyMethod: way.PolicyRefname,
		NodeIDStart:    1,
		WayIDStart:     1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	_, ways := decodePBF(t, out)
	w := ways[0]
	if v, _ := findTag(w.Tags, "bridge"); v != "yes" {
		t.Errorf("bridge = %q, want yes", v)
	}
	if v, _ := findTag(w.Tags, "layer"); v != "1" {
		t.Errorf("layer = %q, want 1", v)
	}
	if v, _ := findTag(w.Tags, "bridge:name"); v != "Ölandsbron" {
		t.Errorf("bridge:name = %q, want Ölandsbron", v)
	}
}

func TestS5ReverseOneway(t *testing.T) {
	raw := segment.Raw{
		WKB:   lineStringWKB([][2]float64{{17.0, 62.0}, {17.01, 62.005}}),
		Props: segment.Properties{"B_ForbjudenFardriktning": segment.Bool(true)},
	}
	out := filepath.Join(t.TempDir(), "s5.osm.pbf")
	_, err := Run(context.Background(), Options{
		Segments:       segments(raw),
		OutputPath:     out,
		SimplifyMethod: way.PolicyRefname,
		NodeIDStart:    1,
		WayIDStart:     1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	_, ways := decodePBF(t, out)
	if v, _ := findTag(ways[0].Tags, "oneway"); v != "-1" {
		t.Errorf("oneway = %q, want -1", v)
	}
}

func TestS6Ferry(t *testing.T) {
	raw := segment.Raw{
		WKB:   lineStringWKB([][2]float64{{17.0, 62.0}, {17.01, 62.005}}),
		Props: segment.Properties{"Farjeled": segment.Bool(true)},
	}
	out := filepath.Join(t.TempDir(), "s6.osm.pbf")
	_, err := Run(context.Background(), Options{
		Segments:       segments(raw),
		OutputPath:     out,
		SimplifyMethod: way.PolicyRefname,
		NodeIDStart:    1,
		WayIDStart:     1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	_, ways := decodePBF(t, out)
	if v, _ := findTag(ways[0].Tags, "route"); v != "ferry" {
		t.Errorf("route = %q, want ferry", v)
	}
	if _, ok := findTag(ways[0].Tags, "highway"); ok {
		t.Error("a ferry way must carry no highway key")
	}
}

// TestS7RoundTrip decodes the pipeline's own output with the teacher's
// primary OSM dependency, verifying node coordinates, way refs and
// tags survive the PBF round trip exactly (spec.md §8 S7).
func TestS7RoundTrip(t *testing.T) {
	a := segment.Raw{
		WKB: lineStringWKB([][2]float64{{17.0, 62.0}, {17.01, 62.005}, {17.02, 62.01}}),
		Props: segment.Properties{
			"Klass_181":   segment.Int(7),
			"Namn_130":    segment.String("Storgatan"),
			"Hogst_36":    segment.Int(50),
		},
	}
	out := filepath.Join(t.TempDir(), "s7.osm.pbf")
	res, err := Run(context.Background(), Options{
		Segments:       segments(a),
		OutputPath:     out,
		SimplifyMethod: way.PolicyRefname,
		NodeIDStart:    1,
		WayIDStart:     1,
		WritingProgram: "nvdb2osm-test",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	nodes, ways := decodePBF(t, out)
	if uint64(len(nodes)) != res.NodesWritten {
		t.Errorf("decoded %d nodes, encoder reported %d", len(nodes), res.NodesWritten)
	}
	if uint64(len(ways)) != res.WaysWritten {
		t.Errorf("decoded %d ways, encoder reported %d", len(ways), res.WaysWritten)
	}
	gotLon := nodes[0].Lon
	gotLat := nodes[0].Lat
	if math.Abs(gotLon-17.0) > 1e-6 || math.Abs(gotLat-62.0) > 1e-6 {
		t.Errorf("first node = (%v, %v), want (17.0, 62.0)", gotLon, gotLat)
	}
	if v, _ := findTag(ways[0].Tags, "name"); v != "Storgatan" {
		t.Errorf("name = %q, want Storgatan", v)
	}
	if v, _ := findTag(ways[0].Tags, "maxspeed"); v != "50" {
		t.Errorf("maxspeed = %q, want 50", v)
	}
}

// TestCollapsesCoincidentInteriorVertex covers spec.md §4.3
// construction step 1: a segment whose interior vertices quantize to
// the same nanodegree point is a normal occurrence, not an error. The
// middle two vertices here are byte-for-byte identical decimal
// coordinates, so they intern to the same node id; the pipeline must
// collapse that immediate duplicate before the way reaches the
// encoder rather than panicking on its consecutive-duplicate-ref
// invariant.
func TestCollapsesCoincidentInteriorVertex(t *testing.T) {
	raw := segment.Raw{
		WKB: lineStringWKB([][2]float64{
			{17.0, 62.0},
			{17.005, 62.002},
			{17.005, 62.002},
			{17.01, 62.005},
		}),
		Props: segment.Properties{"Klass_181": segment.Int(7)},
	}
	out := filepath.Join(t.TempDir(), "collapse.osm.pbf")
	res, err := Run(context.Background(), Options{
		Segments:       segments(raw),
		OutputPath:     out,
		SimplifyMethod: way.PolicyRefname,
		NodeIDStart:    1,
		WayIDStart:     1,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.NodesWritten != 3 {
		t.Errorf("NodesWritten = %d, want 3 (duplicate interior vertex collapsed)", res.NodesWritten)
	}
	_, ways := decodePBF(t, out)
	if len(ways) != 1 || len(ways[0].Nodes) != 3 {
		t.Fatalf("got ways %+v, want exactly one way with 3 node refs", ways)
	}
}

type decodedNode struct {
	ID       osm.NodeID
	Lon, Lat float64
}

type decodedWay struct {
	Nodes []osm.NodeID
	Tags  osm.Tags
}

func decodePBF(t *testing.T, path string) ([]decodedNode, []decodedWay) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 1)
	defer scanner.Close()

	var nodes []decodedNode
	var ways []decodedWay
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			nodes = append(nodes, decodedNode{ID: o.ID, Lon: o.Lon, Lat: o.Lat})
		case *osm.Way:
			var refs []osm.NodeID
			for _, wn := range o.Nodes {
				refs = append(refs, wn.ID)
			}
			ways = append(ways, decodedWay{Nodes: refs, Tags: o.Tags})
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan %s: %v", path, err)
	}
	return nodes, ways
}
