// Command pbfverify reads back a .osm.pbf file produced by nvdb2osm
// and reports node/way counts and a sample of way tags, as an
// independent round-trip check on top of github.com/paulmach/osm
// rather than this module's own encoder — grounded on the teacher's
// cmd/visualize role as its secondary, inspection-only binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

func main() {
	input := flag.String("input", "", "Path to the .osm.pbf file to inspect")
	sampleWays := flag.Int("sample-ways", 5, "Number of ways to print tags for")
	tagKey := flag.String("tag", "", "If set, print a count of ways per value of this tag key")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: pbfverify --input <file.osm.pbf> [--sample-ways N] [--tag highway]")
		os.Exit(1)
	}

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 1)
	defer scanner.Close()

	var nodeCount, wayCount int
	var firstNodeID, lastNodeID int64
	var firstWayID, lastWayID int64
	var sampled []*osm.Way
	tagCounts := map[string]int{}

	for scanner.Scan() {
		switch obj := scanner.Object().(type) {
		case *osm.Node:
			if nodeCount == 0 {
				firstNodeID = int64(obj.ID)
			}
			lastNodeID = int64(obj.ID)
			nodeCount++
		case *osm.Way:
			if wayCount == 0 {
				firstWayID = int64(obj.ID)
			}
			lastWayID = int64(obj.ID)
			wayCount++
			if len(sampled) < *sampleWays {
				sampled = append(sampled, obj)
			}
			if *tagKey != "" {
				if v, ok := findTag(obj.Tags, *tagKey); ok {
					tagCounts[v]++
				} else {
					tagCounts["(absent)"]++
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed scanning PBF: %v", err)
	}

	fmt.Printf("Nodes: %d (ids %d..%d)\n", nodeCount, firstNodeID, lastNodeID)
	fmt.Printf("Ways:  %d (ids %d..%d)\n", wayCount, firstWayID, lastWayID)

	if len(sampled) > 0 {
		fmt.Println("\nSample ways:")
		for _, w := range sampled {
			fmt.Printf("  way %d: %d nodes, tags=%s\n", w.ID, len(w.Nodes), formatTags(w.Tags))
		}
	}

	if *tagKey != "" {
		fmt.Printf("\nWays by %q:\n", *tagKey)
		values := make([]string, 0, len(tagCounts))
		for v := range tagCounts {
			values = append(values, v)
		}
		sort.Strings(values)
		for _, v := range values {
			fmt.Printf("  %-20s %d\n", v, tagCounts[v])
		}
	}
}

func formatTags(tags osm.Tags) string {
	pairs := make([]string, len(tags))
	for i, t := range tags {
		pairs[i] = fmt.Sprintf("%s=%s", t.Key, t.Value)
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

func findTag(tags osm.Tags, key string) (string, bool) {
	for _, t := range tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}
