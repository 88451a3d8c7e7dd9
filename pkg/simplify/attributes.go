package simplify

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/meshkit/decimate/pkg/mesh"
)

// moveAttributes copies the attribute record at src over the one at dst.
// Used when the collapse lands on the second endpoint, whose attributes
// win outright.
func (s *Simplifier) moveAttributes(dst, src int) {
	if s.normals != nil {
		s.normals[dst] = s.normals[src]
	}
	if s.tangents != nil {
		s.tangents[dst] = s.tangents[src]
	}
	if s.colors != nil {
		s.colors[dst] = s.colors[src]
	}
	if s.bones != nil {
		s.bones[dst] = s.bones[src]
	}
	for ch := 0; ch < mesh.MaxUVChannels; ch++ {
		if s.uv2[ch] != nil {
			s.uv2[ch][dst] = s.uv2[ch][src]
		}
		if s.uv3[ch] != nil {
			s.uv3[ch][dst] = s.uv3[ch][src]
		}
		if s.uv4[ch] != nil {
			s.uv4[ch][dst] = s.uv4[ch][src]
		}
	}
}

// mergeAttributes averages the attribute records at dst and src into dst.
// Bone weights merge by summed weight per bone id instead of a plain mean.
func (s *Simplifier) mergeAttributes(dst, src int) {
	if s.normals != nil {
		s.normals[dst] = mean3(s.normals[dst], s.normals[src])
	}
	if s.tangents != nil {
		s.tangents[dst] = mean4(s.tangents[dst], s.tangents[src])
	}
	if s.colors != nil {
		s.colors[dst] = mean4(s.colors[dst], s.colors[src])
	}
	if s.bones != nil {
		s.bones[dst] = mesh.MergeBoneWeights(s.bones[dst], s.bones[src])
	}
	for ch := 0; ch < mesh.MaxUVChannels; ch++ {
		if s.uv2[ch] != nil {
			s.uv2[ch][dst] = mean2(s.uv2[ch][dst], s.uv2[ch][src])
		}
		if s.uv3[ch] != nil {
			s.uv3[ch][dst] = mean3(s.uv3[ch][dst], s.uv3[ch][src])
		}
		if s.uv4[ch] != nil {
			s.uv4[ch][dst] = mean4(s.uv4[ch][dst], s.uv4[ch][src])
		}
	}
}

func mean2(a, b mgl32.Vec2) mgl32.Vec2 { return a.Add(b).Mul(0.5) }
func mean3(a, b mgl32.Vec3) mgl32.Vec3 { return a.Add(b).Mul(0.5) }
func mean4(a, b mgl32.Vec4) mgl32.Vec4 { return a.Add(b).Mul(0.5) }
