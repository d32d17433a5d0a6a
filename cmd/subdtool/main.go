// subdtool is a CLI utility for inspecting and refining Catmull-Clark
// subdivision cages.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/meshkit/subdiv/internal/logger"
	"github.com/meshkit/subdiv/internal/parallel"
	"github.com/meshkit/subdiv/pkg/cage"
	"github.com/meshkit/subdiv/pkg/formats"
	"github.com/meshkit/subdiv/pkg/geom"
	"github.com/meshkit/subdiv/pkg/subd"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := logger.Init("info", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "refine":
		cmdRefine(args)
	case "convert":
		cmdConvert(args)
	case "check":
		cmdCheck(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`subdtool - Catmull-Clark subdivision cage utility

Usage:
  subdtool <command> [options]

Commands:
  info <mesh>               Show cage counts and per-depth sizes
  refine <mesh>             Refine the cage and report timings
  convert <input> <output>  Convert between OBJ and CCM by extension
  check <mesh>              Audit halfedge and crease invariants

Examples:
  subdtool info cube.ccm
  subdtool refine -depth 3 -out cube_d3.obj cube.obj
  subdtool convert cube.obj cube.ccm
  subdtool check -depth 2 cube.ccm`)
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	depth := fs.Int("depth", 3, "Depth to tabulate counts through")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: subdtool info [-depth N] <mesh>")
		os.Exit(1)
	}
	if err := runInfo(fs.Arg(0), int32(*depth)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInfo(path string, depth int32) error {
	if depth < 0 {
		return fmt.Errorf("depth must not be negative, got %d", depth)
	}

	m, err := formats.LoadCage(path)
	if err != nil {
		return err
	}

	boundary := 0
	for h := int32(0); h < m.HalfedgeCount(); h++ {
		if m.HalfedgeTwinID(h) < 0 {
			boundary++
		}
	}
	sharpCount := 0
	var maxSharp float32
	for e := int32(0); e < m.EdgeCount(); e++ {
		if s := m.CreaseSharpness(e); s > 0 {
			sharpCount++
			maxSharp = max(maxSharp, s)
		}
	}

	fmt.Printf("Mesh:      %s\n", path)
	fmt.Printf("Vertices:  %d  UVs: %d\n", m.VertexCount(), m.UvCount())
	fmt.Printf("Halfedges: %d  Edges: %d  Faces: %d\n", m.HalfedgeCount(), m.EdgeCount(), m.FaceCount())
	fmt.Printf("Boundary halfedges: %d\n", boundary)
	if sharpCount > 0 {
		fmt.Printf("Sharp edges: %d (max sharpness %.2f)\n", sharpCount, maxSharp)
	} else {
		fmt.Println("Sharp edges: none")
	}

	fmt.Println()
	fmt.Println("Counts by depth:")
	fmt.Printf("  %5s %12s %12s %12s %12s\n", "depth", "vertices", "edges", "faces", "halfedges")
	for d := int32(0); d <= depth; d++ {
		fmt.Printf("  %5d %12d %12d %12d %12d\n",
			d, m.VertexCountAtDepth(d), m.EdgeCountAtDepth(d),
			m.FaceCountAtDepth(d), m.HalfedgeCountAtDepth(d))
	}

	// refined storage is 16 bytes per halfedge, 12 per crease and vertex
	bytes := 16*int64(subd.CumulativeHalfedgeCountAtDepth(m, depth)) +
		12*int64(subd.CumulativeCreaseCountAtDepth(m, depth)) +
		12*int64(subd.CumulativeVertexCountAtDepth(m, depth))
	fmt.Printf("\nRefined storage through depth %d: %.2f MB\n", depth, float64(bytes)/(1024*1024))
	return nil
}

func cmdRefine(args []string) {
	fs := flag.NewFlagSet("refine", flag.ExitOnError)
	depth := fs.Int("depth", 3, "Subdivision depth")
	out := fs.String("out", "", "Write the refined level as an OBJ file")
	workers := fs.Int("workers", 0, "Refinement worker goroutines (0 = all CPUs)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: subdtool refine [-depth N] [-out file.obj] [-workers N] <mesh>")
		os.Exit(1)
	}
	if err := runRefine(fs.Arg(0), *out, int32(*depth), *workers); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runRefine refines the cage to depth and optionally writes that level as
// an OBJ. Depth 0 is the cage itself: nothing to refine, -out exports it
// as loaded.
func runRefine(path, out string, depth int32, workers int) error {
	if depth < 0 {
		return fmt.Errorf("depth must not be negative, got %d", depth)
	}

	m, err := formats.LoadCage(path)
	if err != nil {
		return err
	}

	if depth == 0 {
		fmt.Printf("Level 0: %d vertices, %d edges, %d faces\n",
			m.VertexCount(), m.EdgeCount(), m.FaceCount())
		if out != "" {
			return writeLevel(out, formats.CageOBJ(m))
		}
		return nil
	}

	if workers > 0 {
		parallel.SetWorkers(workers)
	}

	s := subd.New(m, depth)
	start := time.Now()
	s.Refine()
	elapsed := time.Since(start)

	logger.Info("refined",
		zap.Int32("depth", depth),
		zap.Duration("elapsed", elapsed),
		zap.Int32("vertices", m.VertexCountAtDepth(depth)),
		zap.Int32("faces", m.FaceCountAtDepth(depth)),
		zap.Int("workers", parallel.Workers()))

	fmt.Printf("Refined %s to depth %d in %v\n", path, depth, elapsed)
	fmt.Printf("Level %d: %d vertices, %d edges, %d faces\n",
		depth, m.VertexCountAtDepth(depth), m.EdgeCountAtDepth(depth), m.FaceCountAtDepth(depth))

	if out != "" {
		return writeLevel(out, levelOBJ(s, depth))
	}
	return nil
}

func writeLevel(path string, obj *formats.OBJ) error {
	if err := formats.WriteOBJFile(path, obj); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Printf("Wrote %s (%d vertices, %d faces)\n", path, len(obj.Positions), len(obj.Faces))
	return nil
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: subdtool convert <input> <output>")
		os.Exit(1)
	}
	if err := runConvert(fs.Arg(0), fs.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runConvert(in, out string) error {
	m, err := formats.LoadCage(in)
	if err != nil {
		return err
	}

	if err := formats.SaveCage(out, m); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s (%d vertices, %d edges, %d faces)\n",
		in, out, m.VertexCount(), m.EdgeCount(), m.FaceCount())
	return nil
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	depth := fs.Int("depth", 2, "Depth to audit the edge resolver through")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: subdtool check [-depth N] <mesh>")
		os.Exit(1)
	}
	if err := runCheck(fs.Arg(0), int32(*depth)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runCheck audits the cage and, for depth >= 1, the refined edge resolver.
func runCheck(path string, depth int32) error {
	if depth < 0 {
		return fmt.Errorf("depth must not be negative, got %d", depth)
	}

	m, err := formats.LoadCage(path)
	if err != nil {
		return err
	}

	violations := checkHalfedges(m)
	violations += checkMaps(m)
	violations += checkCreases(m)
	violations += checkResolver(m, depth)

	if violations > 0 {
		return fmt.Errorf("%s: %d violations", path, violations)
	}
	fmt.Printf("%s: OK\n", path)
	return nil
}

// checkHalfedges audits twin involution and face cycle closure.
func checkHalfedges(m *cage.Mesh) int {
	violations := 0
	for h := int32(0); h < m.HalfedgeCount(); h++ {
		if t := m.HalfedgeTwinID(h); t >= 0 {
			if t == h || m.HalfedgeTwinID(t) != h {
				logger.Warn("twin not involutive", zap.Int32("halfedge", h), zap.Int32("twin", t))
				violations++
			}
			if m.HalfedgeEdgeID(t) != m.HalfedgeEdgeID(h) {
				logger.Warn("twin on different edge", zap.Int32("halfedge", h), zap.Int32("twin", t))
				violations++
			}
			if m.HalfedgeVertexID(t) != m.HalfedgeVertexID(m.HalfedgeNextID(h)) {
				logger.Warn("twin origin mismatch", zap.Int32("halfedge", h), zap.Int32("twin", t))
				violations++
			}
		}
		if m.HalfedgeNextID(m.HalfedgePrevID(h)) != h || m.HalfedgePrevID(m.HalfedgeNextID(h)) != h {
			logger.Warn("next/prev not inverse", zap.Int32("halfedge", h))
			violations++
		}
		if m.HalfedgeFaceID(m.HalfedgeNextID(h)) != m.HalfedgeFaceID(h) {
			logger.Warn("face cycle leaves face", zap.Int32("halfedge", h))
			violations++
		}
	}
	return violations
}

// checkMaps audits the vertex, edge and face jump tables.
func checkMaps(m *cage.Mesh) int {
	violations := 0
	for v := int32(0); v < m.VertexCount(); v++ {
		h := m.VertexToHalfedgeID(v)
		if h >= 0 && m.HalfedgeVertexID(h) != v {
			logger.Warn("vertex map points elsewhere", zap.Int32("vertex", v), zap.Int32("halfedge", h))
			violations++
		}
	}
	for e := int32(0); e < m.EdgeCount(); e++ {
		h := m.EdgeToHalfedgeID(e)
		if m.HalfedgeEdgeID(h) != e {
			logger.Warn("edge map points elsewhere", zap.Int32("edge", e), zap.Int32("halfedge", h))
			violations++
			continue
		}
		if t := m.HalfedgeTwinID(h); t >= 0 && t < h {
			logger.Warn("edge map not at lowest halfedge", zap.Int32("edge", e), zap.Int32("halfedge", h))
			violations++
		}
	}
	for f := int32(0); f < m.FaceCount(); f++ {
		h := m.FaceToHalfedgeID(f)
		if m.HalfedgeFaceID(h) != f {
			logger.Warn("face map points elsewhere", zap.Int32("face", f), zap.Int32("halfedge", h))
			violations++
		}
	}
	return violations
}

// checkCreases audits chain links on sharp edges.
func checkCreases(m *cage.Mesh) int {
	violations := 0
	for e := int32(0); e < m.CreaseCount(); e++ {
		next, prev := m.CreaseNextID(e), m.CreasePrevID(e)
		if next < 0 || next >= m.CreaseCount() || prev < 0 || prev >= m.CreaseCount() {
			logger.Warn("crease link out of range", zap.Int32("edge", e))
			violations++
		}
	}
	return violations
}

// checkResolver spot-checks the edge-to-halfedge resolver against the
// refined halfedge records.
func checkResolver(m *cage.Mesh, depth int32) int {
	if depth < 1 {
		return 0
	}
	s := subd.New(m, depth)
	s.RefineHalfedges()

	violations := 0
	for d := int32(1); d <= depth; d++ {
		edgeCount := m.EdgeCountAtDepth(d)
		// sample large levels instead of walking every edge
		stride := int32(1)
		if edgeCount > 1<<16 {
			stride = edgeCount >> 16
		}
		for e := int32(0); e < edgeCount; e += stride {
			h := s.EdgeToHalfedgeID(e, d)
			if h < 0 || h >= m.HalfedgeCountAtDepth(d) || s.HalfedgeEdgeID(h, d) != e {
				logger.Warn("resolver disagrees with refined records",
					zap.Int32("edge", e), zap.Int32("depth", d), zap.Int32("halfedge", h))
				violations++
			}
		}
	}
	return violations
}

// levelOBJ exports one refined level (depth >= 1) as a quad mesh. Corner
// UVs are deduplicated by their packed words, so seams survive the round
// trip.
func levelOBJ(s *subd.Subd, depth int32) *formats.OBJ {
	m := s.Cage()

	obj := &formats.OBJ{
		Positions: make([]mgl32.Vec3, m.VertexCountAtDepth(depth)),
		Faces:     make([]formats.OBJFace, 0, m.FaceCountAtDepth(depth)),
	}
	for v := range obj.Positions {
		obj.Positions[v] = s.VertexPoint(int32(v), depth)
	}

	withUVs := m.UvCount() > 0
	uvIndex := make(map[int32]int32)
	for f := int32(0); f < m.FaceCountAtDepth(depth); f++ {
		face := formats.OBJFace{Vertices: make([]int32, 0, 4)}
		if withUVs {
			face.UVs = make([]int32, 0, 4)
		}
		for i := int32(0); i < 4; i++ {
			h := subd.QuadFaceToHalfedgeID(f) + i
			face.Vertices = append(face.Vertices, s.HalfedgeVertexID(h, depth))
			if withUVs {
				uv := s.HalfedgeVertexUv(h, depth)
				word := geom.EncodeUV(uv)
				id, ok := uvIndex[word]
				if !ok {
					id = int32(len(obj.UVs))
					uvIndex[word] = id
					obj.UVs = append(obj.UVs, uv)
				}
				face.UVs = append(face.UVs, id)
			}
		}
		obj.Faces = append(obj.Faces, face)
	}
	return obj
}
