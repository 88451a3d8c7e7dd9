// Package mesh provides the triangle-mesh container consumed and produced
// by the decimation engine.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Mesh errors.
var (
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrIndexOutOfRange         = errors.New("index out of range")
	ErrAttributeLengthMismatch = errors.New("attribute array length does not match vertex count")
)

// MaxUVChannels is the number of UV channel slots a mesh carries.
const MaxUVChannels = 4

// UVChannel holds the texture coordinates of one UV set. At most one of the
// slices is non-nil; the element width (2, 3 or 4 components) is whichever
// slice is populated.
type UVChannel struct {
	UV2 []mgl32.Vec2
	UV3 []mgl32.Vec3
	UV4 []mgl32.Vec4
}

// Present reports whether the channel holds any coordinates.
func (c UVChannel) Present() bool {
	return c.UV2 != nil || c.UV3 != nil || c.UV4 != nil
}

// Len returns the number of coordinates in the channel.
func (c UVChannel) Len() int {
	switch {
	case c.UV2 != nil:
		return len(c.UV2)
	case c.UV3 != nil:
		return len(c.UV3)
	case c.UV4 != nil:
		return len(c.UV4)
	}
	return 0
}

// Mesh is an indexed triangle mesh with one index stream per sub-mesh and
// optional per-vertex attribute arrays. Attribute arrays, when present, are
// parallel to Vertices.
type Mesh struct {
	Vertices []mgl64.Vec3
	Indices  [][]int

	Normals     []mgl32.Vec3
	Tangents    []mgl32.Vec4
	Colors      []mgl32.Vec4
	UV          [MaxUVChannels]UVChannel
	BoneWeights []BoneWeight
}

// New creates a mesh from vertex positions and per-sub-mesh index streams.
func New(vertices []mgl64.Vec3, indices [][]int) *Mesh {
	return &Mesh{Vertices: vertices, Indices: indices}
}

// SubMeshCount returns the number of sub-meshes.
func (m *Mesh) SubMeshCount() int {
	return len(m.Indices)
}

// SubMesh returns the index stream of sub-mesh k.
func (m *Mesh) SubMesh(k int) ([]int, error) {
	if k < 0 || k >= len(m.Indices) {
		return nil, fmt.Errorf("sub-mesh %d of %d: %w", k, len(m.Indices), ErrIndexOutOfRange)
	}
	return m.Indices[k], nil
}

// TriangleCount returns the total triangle count over all sub-meshes.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, stream := range m.Indices {
		n += len(stream) / 3
	}
	return n
}

// Validate checks index streams and attribute array lengths. Index problems
// and attribute length mismatches are both hard errors here; the engine is
// more forgiving about attributes and drops mismatched arrays instead.
func (m *Mesh) Validate() error {
	if m == nil {
		return fmt.Errorf("nil mesh: %w", ErrInvalidArgument)
	}
	vertexCount := len(m.Vertices)
	for si, stream := range m.Indices {
		if len(stream)%3 != 0 {
			return fmt.Errorf("sub-mesh %d index count %d is not a multiple of 3: %w",
				si, len(stream), ErrInvalidArgument)
		}
		for _, idx := range stream {
			if idx < 0 || idx >= vertexCount {
				return fmt.Errorf("sub-mesh %d references vertex %d of %d: %w",
					si, idx, vertexCount, ErrIndexOutOfRange)
			}
		}
	}
	if m.Normals != nil && len(m.Normals) != vertexCount {
		return fmt.Errorf("normals: %w", ErrAttributeLengthMismatch)
	}
	if m.Tangents != nil && len(m.Tangents) != vertexCount {
		return fmt.Errorf("tangents: %w", ErrAttributeLengthMismatch)
	}
	if m.Colors != nil && len(m.Colors) != vertexCount {
		return fmt.Errorf("colors: %w", ErrAttributeLengthMismatch)
	}
	if m.BoneWeights != nil && len(m.BoneWeights) != vertexCount {
		return fmt.Errorf("bone weights: %w", ErrAttributeLengthMismatch)
	}
	for ch := 0; ch < MaxUVChannels; ch++ {
		if m.UV[ch].Present() && m.UV[ch].Len() != vertexCount {
			return fmt.Errorf("uv channel %d: %w", ch, ErrAttributeLengthMismatch)
		}
	}
	return nil
}
