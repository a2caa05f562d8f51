// Command nvdb2osm converts an NVDB segment export into an OSM PBF
// file. It is the CLI front end of pkg/pipeline (a single run over
// the whole input; it does not use pkg/partition), grounded on the teacher's cmd/preprocess
// main: flag-based configuration, Step N log.Printf narration, and a
// time.Since timing report at the end.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"nvdb2osm/pkg/nvdbfile"
	"nvdb2osm/pkg/pipeline"
	"nvdb2osm/pkg/segment"
	"nvdb2osm/pkg/way"
)

func main() {
	input := flag.String("input", "", "Path to a line-delimited NVDB segment export (JSON lines)")
	output := flag.String("output", "out.osm.pbf", "Output .osm.pbf file path")
	method := flag.String("simplify-method", "refname", "Way join policy: refname, connected, or route")
	nodeIDStart := flag.Int64("node-id-start", 1, "First node id this run assigns")
	wayIDStart := flag.Int64("way-id-start", 1, "First way id this run assigns")
	writingProgram := flag.String("writing-program", "nvdb2osm", "Value for the PBF header's writingprogram field")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: nvdb2osm --input <segments.jsonl> [--output out.osm.pbf] [--simplify-method refname|connected|route]")
		os.Exit(1)
	}

	policy, err := parsePolicy(*method)
	if err != nil {
		log.Fatalf("Invalid -simplify-method: %v", err)
	}

	start := time.Now()

	// Step 1: Open the input stream.
	log.Printf("Opening %s...", *input)
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	// Step 2: Run the core pipeline.
	log.Println("Converting segments...")
	result, err := pipeline.Run(context.Background(), pipeline.Options{
		Segments: func(yield func(segment.Raw) bool) {
			if err := nvdbfile.Read(f, yield); err != nil {
				log.Fatalf("Failed reading segments: %v", err)
			}
		},
		OutputPath:     *output,
		SimplifyMethod: policy,
		NodeIDStart:    *nodeIDStart,
		WayIDStart:     *wayIDStart,
		WritingProgram: *writingProgram,
	})
	if err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}
	log.Printf("Converted %d segments (%d dropped) into %d nodes, %d ways",
		result.SegmentsRead, result.SegmentsDropped, result.NodesWritten, result.WaysWritten)
	log.Printf("Warnings: %s", result.Warnings.Report())

	info, _ := os.Stat(*output)
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f MB)", elapsed.Round(time.Millisecond), *output, float64(info.Size())/(1024*1024))
}

func parsePolicy(name string) (way.Policy, error) {
	switch name {
	case "refname":
		return way.PolicyRefname, nil
	case "connected":
		return way.PolicyConnected, nil
	case "route":
		return way.PolicyRoute, nil
	default:
		return 0, fmt.Errorf("unknown simplify-method %q (want refname, connected, or route)", name)
	}
}
