// Package formats reads and writes the mesh containers around the
// subdivision core: Wavefront OBJ for interchange and the CCM binary
// snapshot of a control cage.
package formats

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshkit/subdiv/pkg/cage"
)

// LoadCage reads a control cage from an OBJ or CCM file by extension.
func LoadCage(path string) (*cage.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		obj, err := ParseOBJFile(path)
		if err != nil {
			return nil, err
		}
		return BuildCage(obj, nil)
	case ".ccm":
		return ParseCCMFile(path)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", path)
	}
}

// SaveCage writes a control cage as an OBJ or CCM file by extension.
// The OBJ side keeps the n-gon faces and corner UV ids; crease data only
// survives in CCM.
func SaveCage(path string, m *cage.Mesh) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return WriteOBJFile(path, CageOBJ(m))
	case ".ccm":
		return WriteCCMFile(path, m)
	default:
		return fmt.Errorf("unsupported mesh format: %s", path)
	}
}

// CageOBJ exports the control cage as OBJ attributes, walking each face
// cycle for its corner lists.
func CageOBJ(m *cage.Mesh) *OBJ {
	obj := &OBJ{
		Positions: append([]mgl32.Vec3(nil), m.VertexPoints...),
		Faces:     make([]OBJFace, 0, m.FaceCount()),
	}
	withUVs := m.UvCount() > 0
	if withUVs {
		obj.UVs = append([]mgl32.Vec2(nil), m.Uvs...)
	}
	for f := int32(0); f < m.FaceCount(); f++ {
		face := OBJFace{}
		if withUVs {
			face.UVs = []int32{}
		}
		first := m.FaceToHalfedgeID(f)
		for h := first; ; {
			face.Vertices = append(face.Vertices, m.HalfedgeVertexID(h))
			if withUVs {
				face.UVs = append(face.UVs, m.HalfedgeUvID(h))
			}
			if h = m.HalfedgeNextID(h); h == first {
				break
			}
		}
		obj.Faces = append(obj.Faces, face)
	}
	return obj
}
