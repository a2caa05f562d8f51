// Package partition implements the driver contract of spec.md §5/§9:
// slicing an ordered segment stream into independently processable
// chunks, each with its own exclusive node/way id band, running
// pkg/pipeline over them concurrently, and splicing the resulting
// per-chunk .osm.pbf files into one combined output.
//
// Grounded on the teacher's cmd/server concurrency idiom
// (pkg/api/server.go's semaphore channel + error-channel/select
// shutdown race) generalized from "bound concurrent HTTP handlers" to
// "bound concurrent pipeline runs", and on the other_examples PBF
// decoder's (f42c7399_maguro-pbf) bounded-channel worker-pool shape.
package partition

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"nvdb2osm/pkg/diag"
	"nvdb2osm/pkg/pbfwriter"
	"nvdb2osm/pkg/pipeline"
)

// idBandWidth is the exclusive id-space width spec.md §5/§9 assigns to
// each chunk: 10^7 ids, wide enough that no realistic chunk exhausts
// its band before the next chunk's ids begin.
const idBandWidth = 10_000_000

// Chunk is one independently processable slice of the segment stream,
// already bounded to its own node/way id band.
type Chunk struct {
	// Index determines both the chunk's id band and its position in
	// the final spliced output (ascending Index order).
	Index int
	pipeline.Options
}

// Assign builds a Chunk from opts, deriving NodeIDStart/WayIDStart
// from index (every other field is left as the caller set it) so two
// chunks built with different indices can never collide regardless of
// how many ids either one actually consumes.
func Assign(index int, opts pipeline.Options) Chunk {
	opts.NodeIDStart = 1 + int64(index)*idBandWidth
	opts.WayIDStart = 1 + int64(index)*idBandWidth
	return Chunk{Index: index, Options: opts}
}

// Result aggregates every chunk's pipeline.Result plus the path to the
// final combined .osm.pbf file.
type Result struct {
	OutputPath      string
	SegmentsRead    int
	SegmentsDropped int
	NodesWritten    uint64
	WaysWritten     uint64
	Warnings        *diag.Aggregator
}

// Run processes every chunk concurrently (bounded by workers, which
// defaults to runtime.GOMAXPROCS(0) when <= 0) and splices the chunk
// outputs into outputPath in ascending chunk-index order.
func Run(ctx context.Context, chunks []Chunk, outputPath string, workers int) (Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	tmpDir, err := os.MkdirTemp(filepath.Dir(outputPath), "nvdb2osm-chunk-*")
	if err != nil {
		return Result{}, fmt.Errorf("partition: create chunk tempdir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	type outcome struct {
		index int
		path  string
		res   pipeline.Result
		err   error
	}

	sem := make(chan struct{}, workers)
	outcomes := make(chan outcome, len(chunks))

	for _, c := range chunks {
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			path := filepath.Join(tmpDir, fmt.Sprintf("chunk-%06d.osm.pbf", c.Index))
			opts := c.Options
			opts.OutputPath = path
			res, err := pipeline.Run(ctx, opts)
			outcomes <- outcome{index: c.Index, path: path, res: res, err: err}
		}()
	}

	results := make(map[int]outcome, len(chunks))
	var firstErr error
	for range chunks {
		o := <-outcomes
		if o.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("partition: chunk %d: %w", o.index, o.err)
		}
		results[o.index] = o
	}
	if firstErr != nil {
		return Result{}, firstErr
	}

	indices := make([]int, 0, len(results))
	for idx := range results {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	total := Result{OutputPath: outputPath, Warnings: diag.New()}
	chunkPaths := make([]string, 0, len(indices))
	chunkResults := make([]pipeline.Result, 0, len(indices))
	for _, idx := range indices {
		o := results[idx]
		chunkPaths = append(chunkPaths, o.path)
		chunkResults = append(chunkResults, o.res)
		total.SegmentsRead += o.res.SegmentsRead
		total.SegmentsDropped += o.res.SegmentsDropped
		total.NodesWritten += o.res.NodesWritten
		total.WaysWritten += o.res.WaysWritten
		if o.res.Warnings != nil {
			total.Warnings.Merge(o.res.Warnings)
		}
	}

	if err := splice(chunkPaths, chunkResults, outputPath); err != nil {
		return Result{}, err
	}
	return total, nil
}

// splice concatenates every chunk file's node fileblocks, in chunk
// order, followed by every chunk's way fileblocks, in chunk order,
// behind a single combined header — a byte-level operation, never a
// protobuf re-encode (spec.md §5 determinism).
func splice(chunkPaths []string, chunkResults []pipeline.Result, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("partition: create combined output: %w", err)
	}
	defer out.Close()

	var nodeBlocks, wayBlocks [][]byte
	var headerBlock []byte

	for i, path := range chunkPaths {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("partition: open chunk %d: %w", i, err)
		}
		blocks, err := pbfwriter.ReadFileBlocks(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("partition: read chunk %d fileblocks: %w", i, err)
		}
		if len(blocks) == 0 {
			continue
		}
		if headerBlock == nil {
			headerBlock = blocks[0]
		}
		data := blocks[1:]
		nNodeBlocks := pbfwriter.BlockCount(chunkResults[i].NodesWritten)
		if nNodeBlocks > len(data) {
			nNodeBlocks = len(data)
		}
		nodeBlocks = append(nodeBlocks, data[:nNodeBlocks]...)
		wayBlocks = append(wayBlocks, data[nNodeBlocks:]...)
	}

	if headerBlock == nil {
		return fmt.Errorf("partition: no chunks produced any fileblocks")
	}
	for _, block := range append(append([][]byte{headerBlock}, nodeBlocks...), wayBlocks...) {
		if _, err := out.Write(block); err != nil {
			return fmt.Errorf("partition: write combined output: %w", err)
		}
	}
	return nil
}
