package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/meshkit/subdiv/pkg/cage"
)

// CCM format errors.
var (
	ErrInvalidCCMMagic       = errors.New("invalid CCM magic: expected 'CCM'")
	ErrUnsupportedCCMVersion = errors.New("unsupported CCM version")
	ErrTruncatedCCMData      = errors.New("truncated CCM data")
)

const (
	ccmMagic   = "CCM"
	ccmVersion = '1'

	// halfedge records are 7 int32 fields, creases a float32 and 2 int32
	ccmHalfedgeSize = 28
	ccmCreaseSize   = 12
)

// ParseCCM parses a CCM cage snapshot from raw bytes.
//
// The layout after the 4-byte magic+version is five little-endian int32
// counts (vertices, UVs, halfedges, edges, faces) followed by the flat
// arrays in storage order: vertex, edge and face maps, halfedge records,
// crease records, positions, UVs.
func ParseCCM(data []byte) (*cage.Mesh, error) {
	if len(data) < 24 {
		return nil, ErrTruncatedCCMData
	}
	if string(data[0:3]) != ccmMagic {
		return nil, ErrInvalidCCMMagic
	}
	if data[3] != ccmVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCCMVersion, data[3])
	}

	r := bytes.NewReader(data[4:])
	var vertexCount, uvCount, halfedgeCount, edgeCount, faceCount int32
	for _, count := range []*int32{&vertexCount, &uvCount, &halfedgeCount, &edgeCount, &faceCount} {
		if err := binary.Read(r, binary.LittleEndian, count); err != nil {
			return nil, fmt.Errorf("%w: reading counts", ErrTruncatedCCMData)
		}
	}
	if vertexCount < 0 || uvCount < 0 || halfedgeCount < 0 || edgeCount < 0 || faceCount < 0 {
		return nil, fmt.Errorf("invalid CCM counts: %d vertices, %d uvs, %d halfedges, %d edges, %d faces",
			vertexCount, uvCount, halfedgeCount, edgeCount, faceCount)
	}

	// the payload size is fully determined by the counts, so truncation
	// and allocation bombs are caught before anything is allocated
	payload := 4*(int64(vertexCount)+int64(edgeCount)+int64(faceCount)) +
		ccmHalfedgeSize*int64(halfedgeCount) +
		ccmCreaseSize*int64(edgeCount) +
		12*int64(vertexCount) +
		8*int64(uvCount)
	if int64(len(data)) < 24+payload {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrTruncatedCCMData, len(data), 24+payload)
	}

	m := cage.New(vertexCount, uvCount, halfedgeCount, edgeCount, faceCount)
	sections := []struct {
		name string
		data any
	}{
		{"vertex map", m.VertexToHalfedge},
		{"edge map", m.EdgeToHalfedge},
		{"face map", m.FaceToHalfedge},
		{"halfedges", m.Halfedges},
		{"creases", m.Creases},
		{"positions", m.VertexPoints},
		{"uvs", m.Uvs},
	}
	for _, s := range sections {
		if err := binary.Read(r, binary.LittleEndian, s.data); err != nil {
			return nil, fmt.Errorf("%w: reading %s", ErrTruncatedCCMData, s.name)
		}
	}

	if err := validateCCM(m); err != nil {
		return nil, err
	}
	return m, nil
}

// validateCCM bounds-checks every stored id so the accessors can index
// without guards.
func validateCCM(m *cage.Mesh) error {
	halfedgeCount := m.HalfedgeCount()
	for v, h := range m.VertexToHalfedge {
		if h >= halfedgeCount {
			return fmt.Errorf("invalid CCM vertex map: vertex %d points at halfedge %d of %d", v, h, halfedgeCount)
		}
	}
	for e, h := range m.EdgeToHalfedge {
		if h < 0 || h >= halfedgeCount {
			return fmt.Errorf("invalid CCM edge map: edge %d points at halfedge %d of %d", e, h, halfedgeCount)
		}
	}
	for f, h := range m.FaceToHalfedge {
		if h < 0 || h >= halfedgeCount {
			return fmt.Errorf("invalid CCM face map: face %d points at halfedge %d of %d", f, h, halfedgeCount)
		}
	}
	for i, he := range m.Halfedges {
		switch {
		case he.Twin >= halfedgeCount,
			he.Next < 0 || he.Next >= halfedgeCount,
			he.Prev < 0 || he.Prev >= halfedgeCount,
			he.Face < 0 || he.Face >= m.FaceCount(),
			he.Edge < 0 || he.Edge >= m.EdgeCount(),
			he.Vert < 0 || he.Vert >= m.VertexCount(),
			he.UV >= m.UvCount():
			return fmt.Errorf("invalid CCM halfedge %d: link out of range", i)
		}
	}
	for i, cr := range m.Creases {
		if cr.Next < 0 || cr.Next >= m.EdgeCount() || cr.Prev < 0 || cr.Prev >= m.EdgeCount() {
			return fmt.Errorf("invalid CCM crease %d: link out of range", i)
		}
	}
	return nil
}

// ParseCCMFile parses a CCM file from disk.
func ParseCCMFile(path string) (*cage.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCCM(data)
}

// WriteCCM writes the cage as a CCM snapshot.
func WriteCCM(w io.Writer, m *cage.Mesh) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(ccmMagic); err != nil {
		return err
	}
	if err := bw.WriteByte(ccmVersion); err != nil {
		return err
	}
	counts := []int32{m.VertexCount(), m.UvCount(), m.HalfedgeCount(), m.EdgeCount(), m.FaceCount()}
	if err := binary.Write(bw, binary.LittleEndian, counts); err != nil {
		return err
	}
	for _, section := range []any{
		m.VertexToHalfedge, m.EdgeToHalfedge, m.FaceToHalfedge,
		m.Halfedges, m.Creases, m.VertexPoints, m.Uvs,
	} {
		if err := binary.Write(bw, binary.LittleEndian, section); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCCMFile writes the cage as a CCM file on disk.
func WriteCCMFile(path string, m *cage.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCCM(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
