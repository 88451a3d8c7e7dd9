package simplify

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshkit/decimate/pkg/mesh"
)

// compactMesh drops tombstones and packs the vertex and attribute arrays to
// their live size. Each surviving corner first adopts its attribute-vertex
// index as the canonical position index, so attribute seams become distinct
// output vertices.
func (s *Simplifier) compactMesh() {
	for i := range s.tris {
		t := &s.tris[i]
		if t.deleted {
			continue
		}
		for j := 0; j < 3; j++ {
			if t.va[j] != t.v[j] {
				s.verts[t.va[j]].p = s.verts[t.v[j]].p
				t.v[j] = t.va[j]
			}
		}
	}
	s.compactTriangles()

	for i := range s.verts {
		s.verts[i].tcount = 0
	}
	for i := range s.tris {
		t := &s.tris[i]
		for j := 0; j < 3; j++ {
			s.verts[t.v[j]].tcount = 1
		}
	}

	dst := 0
	for i := range s.verts {
		if s.verts[i].tcount == 0 {
			continue
		}
		s.verts[i].tstart = dst
		s.verts[dst].p = s.verts[i].p
		if s.normals != nil {
			s.normals[dst] = s.normals[i]
		}
		if s.tangents != nil {
			s.tangents[dst] = s.tangents[i]
		}
		if s.colors != nil {
			s.colors[dst] = s.colors[i]
		}
		if s.bones != nil {
			s.bones[dst] = s.bones[i]
		}
		for ch := 0; ch < mesh.MaxUVChannels; ch++ {
			if s.uv2[ch] != nil {
				s.uv2[ch][dst] = s.uv2[ch][i]
			}
			if s.uv3[ch] != nil {
				s.uv3[ch][dst] = s.uv3[ch][i]
			}
			if s.uv4[ch] != nil {
				s.uv4[ch][dst] = s.uv4[ch][i]
			}
		}
		dst++
	}

	for i := range s.tris {
		t := &s.tris[i]
		for j := 0; j < 3; j++ {
			t.v[j] = s.verts[t.v[j]].tstart
			t.va[j] = t.v[j]
		}
	}

	s.verts = s.verts[:dst]
	if s.normals != nil {
		s.normals = s.normals[:dst]
	}
	if s.tangents != nil {
		s.tangents = s.tangents[:dst]
	}
	if s.colors != nil {
		s.colors = s.colors[:dst]
	}
	if s.bones != nil {
		s.bones = s.bones[:dst]
	}
	for ch := 0; ch < mesh.MaxUVChannels; ch++ {
		if s.uv2[ch] != nil {
			s.uv2[ch] = s.uv2[ch][:dst]
		}
		if s.uv3[ch] != nil {
			s.uv3[ch] = s.uv3[ch][:dst]
		}
		if s.uv4[ch] != nil {
			s.uv4[ch] = s.uv4[ch][:dst]
		}
	}
	s.remainingVerts = dst
}

// ToMesh compacts the working state and emits a clean mesh. Triangles are
// grouped by sub-mesh tag; the order of first encounter within a sub-mesh
// is preserved, the order across collapses is not.
func (s *Simplifier) ToMesh() *mesh.Mesh {
	s.compactMesh()

	vertices := make([]mgl64.Vec3, len(s.verts))
	for i := range s.verts {
		vertices[i] = s.verts[i].p
	}
	indices := make([][]int, s.subMeshCount)
	for i := range indices {
		indices[i] = []int{}
	}
	for i := range s.tris {
		t := &s.tris[i]
		indices[t.sub] = append(indices[t.sub], t.v[0], t.v[1], t.v[2])
	}

	out := mesh.New(vertices, indices)
	if s.normals != nil {
		out.Normals = append([]mgl32.Vec3(nil), s.normals...)
	}
	if s.tangents != nil {
		out.Tangents = append([]mgl32.Vec4(nil), s.tangents...)
	}
	if s.colors != nil {
		out.Colors = append([]mgl32.Vec4(nil), s.colors...)
	}
	if s.bones != nil {
		out.BoneWeights = append([]mesh.BoneWeight(nil), s.bones...)
	}
	for ch := 0; ch < mesh.MaxUVChannels; ch++ {
		if s.uv2[ch] != nil {
			out.UV[ch].UV2 = append([]mgl32.Vec2(nil), s.uv2[ch]...)
		}
		if s.uv3[ch] != nil {
			out.UV[ch].UV3 = append([]mgl32.Vec3(nil), s.uv3[ch]...)
		}
		if s.uv4[ch] != nil {
			out.UV[ch].UV4 = append([]mgl32.Vec4(nil), s.uv4[ch]...)
		}
	}
	return out
}
