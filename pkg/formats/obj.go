package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshkit/subdiv/pkg/cage"
)

// OBJ format errors.
var (
	ErrOBJBadFace    = errors.New("malformed OBJ face")
	ErrOBJIndexRange = errors.New("OBJ index out of range")
)

// OBJFace is one polygon as indexed corner lists. UVs is nil when the
// face carries no texture coordinates.
type OBJFace struct {
	Vertices []int32
	UVs      []int32
}

// OBJ holds the attributes of a Wavefront OBJ file that matter to a
// control cage: positions, texture coordinates and polygon faces.
// Normals are parsed past but not kept; subdivision derives its own.
type OBJ struct {
	Positions []mgl32.Vec3
	UVs       []mgl32.Vec2
	Faces     []OBJFace
}

// ParseOBJ parses a Wavefront OBJ mesh from raw bytes. Corner references
// accept the v, v/vt, v//vn and v/vt/vn forms, and negative indices
// count back from the elements read so far.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			p, err := parseOBJVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			obj.Positions = append(obj.Positions, p)
		case "vt":
			uv, err := parseOBJVec2(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			obj.UVs = append(obj.UVs, uv)
		case "f":
			face, err := parseOBJFace(fields[1:], int32(len(obj.Positions)), int32(len(obj.UVs)))
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			obj.Faces = append(obj.Faces, face)
		}
		// vn, o, g, s, usemtl, mtllib and friends pass through
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return obj, nil
}

func parseOBJVec3(fields []string) (mgl32.Vec3, error) {
	if len(fields) < 3 {
		return mgl32.Vec3{}, fmt.Errorf("vertex has %d coordinates, want 3", len(fields))
	}
	var p mgl32.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec3{}, fmt.Errorf("bad coordinate %q", fields[i])
		}
		p[i] = float32(f)
	}
	return p, nil
}

func parseOBJVec2(fields []string) (mgl32.Vec2, error) {
	// a third texture coordinate is legal and ignored
	if len(fields) < 2 {
		return mgl32.Vec2{}, fmt.Errorf("texture coordinate has %d components, want 2", len(fields))
	}
	var uv mgl32.Vec2
	for i := 0; i < 2; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return mgl32.Vec2{}, fmt.Errorf("bad coordinate %q", fields[i])
		}
		uv[i] = float32(f)
	}
	return uv, nil
}

func parseOBJFace(corners []string, positionCount, uvCount int32) (OBJFace, error) {
	if len(corners) < 3 {
		return OBJFace{}, fmt.Errorf("%w: %d corners", ErrOBJBadFace, len(corners))
	}
	face := OBJFace{Vertices: make([]int32, 0, len(corners))}
	for i, corner := range corners {
		parts := strings.Split(corner, "/")
		if len(parts) > 3 {
			return OBJFace{}, fmt.Errorf("%w: corner %q", ErrOBJBadFace, corner)
		}
		v, err := resolveOBJIndex(parts[0], positionCount)
		if err != nil {
			return OBJFace{}, fmt.Errorf("vertex %w", err)
		}
		face.Vertices = append(face.Vertices, v)

		hasUV := len(parts) >= 2 && parts[1] != ""
		if i == 0 && hasUV {
			face.UVs = make([]int32, 0, len(corners))
		}
		if hasUV != (face.UVs != nil) {
			return OBJFace{}, fmt.Errorf("%w: mixed textured and untextured corners", ErrOBJBadFace)
		}
		if hasUV {
			uv, err := resolveOBJIndex(parts[1], uvCount)
			if err != nil {
				return OBJFace{}, fmt.Errorf("uv %w", err)
			}
			face.UVs = append(face.UVs, uv)
		}
	}
	return face, nil
}

// resolveOBJIndex turns a 1-based or negative relative OBJ index into a
// 0-based id against the elements read so far.
func resolveOBJIndex(field string, count int32) (int32, error) {
	n, err := strconv.ParseInt(field, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrOBJIndexRange, field)
	}
	idx := int32(n)
	switch {
	case idx > 0:
		idx--
	case idx < 0:
		idx += count
	default:
		return 0, fmt.Errorf("%w: index 0", ErrOBJIndexRange)
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: %d of %d", ErrOBJIndexRange, n, count)
	}
	return idx, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseOBJ(data)
}

// WriteOBJ writes the mesh in Wavefront OBJ text form with 1-based
// indices.
func WriteOBJ(w io.Writer, o *OBJ) error {
	bw := bufio.NewWriter(w)
	for _, p := range o.Positions {
		if _, err := fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2]); err != nil {
			return err
		}
	}
	for _, uv := range o.UVs {
		if _, err := fmt.Fprintf(bw, "vt %g %g\n", uv[0], uv[1]); err != nil {
			return err
		}
	}
	for _, f := range o.Faces {
		if _, err := bw.WriteString("f"); err != nil {
			return err
		}
		for i, v := range f.Vertices {
			var err error
			if f.UVs != nil {
				_, err = fmt.Fprintf(bw, " %d/%d", v+1, f.UVs[i]+1)
			} else {
				_, err = fmt.Fprintf(bw, " %d", v+1)
			}
			if err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteOBJFile writes the mesh as an OBJ file on disk.
func WriteOBJFile(path string, o *OBJ) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteOBJ(f, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SharpEdge marks a cage edge semi-sharp when building from an OBJ,
// which has no crease notion of its own.
type SharpEdge struct {
	V0, V1    int32
	Sharpness float32
}

// BuildCage assembles a control cage from parsed OBJ attributes and an
// optional set of sharp edges.
func BuildCage(o *OBJ, sharp []SharpEdge) (*cage.Mesh, error) {
	b := cage.NewBuilder()
	for _, p := range o.Positions {
		b.AddVertex(p)
	}
	for _, uv := range o.UVs {
		b.AddUV(uv)
	}
	for i, f := range o.Faces {
		if err := b.AddFace(f.Vertices, f.UVs); err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
	}
	for _, se := range sharp {
		if err := b.SetEdgeSharpness(se.V0, se.V1, se.Sharpness); err != nil {
			return nil, err
		}
	}
	if len(sharp) > 0 {
		b.LinkCreaseChains()
	}
	return b.Build()
}
