// Package simplify reduces the triangle count of a mesh with iterative
// quadric-error edge collapses, after Garland & Heckbert's error metric and
// Forstmann's fast-quadric traversal.
package simplify

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshkit/decimate/pkg/mesh"
)

// Engine errors.
var (
	ErrUnsupportedAlgorithm = errors.New("unsupported simplification algorithm")
	ErrInternal             = errors.New("internal invariant violation")
)

// Options configures a Simplifier.
type Options struct {
	// Aggressiveness is the exponent of the per-pass error threshold
	// schedule. Higher values raise every pass's threshold, so more edges
	// qualify per pass.
	Aggressiveness float64

	// PreserveBorders forbids collapsing any edge with a border endpoint.
	PreserveBorders bool

	// EnableSmartLink merges coincident border vertices during the initial
	// analysis, closing cracks between components that share geometry but
	// not indices.
	EnableSmartLink bool

	// KeepLinkedVertices is the legacy alternative to smart linking: skip
	// every collapse touching a vertex that shares its position with
	// another. Only honored when EnableSmartLink is off.
	KeepLinkedVertices bool

	// VertexLinkDistanceSqr is the squared distance under which two border
	// vertices are considered coincident by smart linking.
	VertexLinkDistanceSqr float64

	// MaxVertexCount is an extra stop condition: decimation stops only once
	// the triangle target is met and the remaining vertex count is below
	// it. Zero means no vertex limit.
	MaxVertexCount int

	// Verbose emits per-pass progress through the package log sink.
	Verbose bool
}

// DefaultOptions returns the recommended configuration.
func DefaultOptions() Options {
	return Options{
		Aggressiveness:        7.0,
		EnableSmartLink:       true,
		VertexLinkDistanceSqr: math.Nextafter(1, 2) - 1,
	}
}

// vertexData is the working state of one position-vertex. tstart/tcount
// window the shared refs array.
type vertexData struct {
	p      mgl64.Vec3
	tstart int
	tcount int
	q      quadric
	border bool
	linked bool
}

// triangle is the unit of deletion. v holds position-vertex indices, va the
// attribute-vertex indices, which diverge from v across attribute seams.
// err caches the three edge errors and their minimum.
type triangle struct {
	v       [3]int
	va      [3]int
	sub     int
	n       mgl64.Vec3
	err     [4]float64
	deleted bool
	dirty   bool
}

// ref is one (triangle, corner) incidence entry.
type ref struct {
	tid     int
	tvertex int
}

// ProgressFunc observes the engine before each pass. target is -1 in
// lossless mode. The callback must not mutate the engine.
type ProgressFunc func(iteration, originalTris, currentTris, targetTris int)

// Simplifier is the decimation engine. Initialize, DecimateTo or
// DecimateLossless, and ToMesh must be called in order from one goroutine.
type Simplifier struct {
	opts     Options
	progress ProgressFunc

	verts []vertexData
	tris  []triangle
	refs  []ref

	normals  []mgl32.Vec3
	tangents []mgl32.Vec4
	colors   []mgl32.Vec4
	bones    []mesh.BoneWeight
	uv2      [mesh.MaxUVChannels][]mgl32.Vec2
	uv3      [mesh.MaxUVChannels][]mgl32.Vec3
	uv4      [mesh.MaxUVChannels][]mgl32.Vec4

	subMeshCount   int
	originalTris   int
	remainingVerts int
	initialized    bool
}

// New creates a Simplifier with the given options.
func New(opts Options) *Simplifier {
	return &Simplifier{opts: opts}
}

// NewAlgorithm creates a Simplifier by algorithm selector. "fast-quadric"
// (or empty) is the only recognized algorithm.
func NewAlgorithm(name string, opts Options) (*Simplifier, error) {
	switch name {
	case "", "fast-quadric":
		return New(opts), nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnsupportedAlgorithm)
	}
}

// OnProgress installs the progress callback. The last callback set wins;
// nil clears it.
func (s *Simplifier) OnProgress(fn ProgressFunc) {
	s.progress = fn
}

// Initialize loads the mesh into the engine's working state. Index-stream
// problems are hard errors and leave the engine untouched. Attribute arrays
// whose length does not match the vertex count are dropped with a warning.
func (s *Simplifier) Initialize(m *mesh.Mesh) error {
	if m == nil {
		return fmt.Errorf("nil mesh: %w", mesh.ErrInvalidArgument)
	}
	vertexCount := len(m.Vertices)
	triangleCount := 0
	for si, stream := range m.Indices {
		if len(stream)%3 != 0 {
			return fmt.Errorf("sub-mesh %d index count %d is not a multiple of 3: %w",
				si, len(stream), mesh.ErrInvalidArgument)
		}
		for _, idx := range stream {
			if idx < 0 || idx >= vertexCount {
				return fmt.Errorf("sub-mesh %d references vertex %d of %d: %w",
					si, idx, vertexCount, mesh.ErrIndexOutOfRange)
			}
		}
		triangleCount += len(stream) / 3
	}

	s.verts = make([]vertexData, vertexCount)
	for i, p := range m.Vertices {
		s.verts[i].p = p
	}
	s.tris = make([]triangle, 0, triangleCount)
	for si, stream := range m.Indices {
		for i := 0; i+2 < len(stream); i += 3 {
			v := [3]int{stream[i], stream[i+1], stream[i+2]}
			s.tris = append(s.tris, triangle{v: v, va: v, sub: si})
		}
	}
	s.refs = s.refs[:0]
	s.subMeshCount = len(m.Indices)
	s.originalTris = triangleCount
	s.remainingVerts = vertexCount

	s.normals = ingestAttribute("normals", m.Normals, vertexCount)
	s.tangents = ingestAttribute("tangents", m.Tangents, vertexCount)
	s.colors = ingestAttribute("colors", m.Colors, vertexCount)
	s.bones = ingestAttribute("bone weights", m.BoneWeights, vertexCount)
	for ch := 0; ch < mesh.MaxUVChannels; ch++ {
		s.uv2[ch] = ingestAttribute("uv", m.UV[ch].UV2, vertexCount)
		s.uv3[ch] = ingestAttribute("uv", m.UV[ch].UV3, vertexCount)
		s.uv4[ch] = ingestAttribute("uv", m.UV[ch].UV4, vertexCount)
	}
	s.initialized = true
	return nil
}

// ingestAttribute copies an attribute array into working storage, dropping
// it with a warning when its length does not match the vertex count.
func ingestAttribute[T any](name string, src []T, vertexCount int) []T {
	if src == nil {
		return nil
	}
	if len(src) != vertexCount {
		logSink().Warnw("dropping attribute array",
			"attribute", name, "length", len(src), "vertices", vertexCount)
		return nil
	}
	dst := make([]T, vertexCount)
	copy(dst, src)
	return dst
}

// grow returns s with length n, reusing capacity when possible.
func grow[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}

// normalizeSafe returns the unit vector of v, or the zero vector when v has
// zero length.
func normalizeSafe(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

func (s *Simplifier) maxVertexCount() int {
	if s.opts.MaxVertexCount <= 0 {
		return math.MaxInt
	}
	return s.opts.MaxVertexCount
}

func (s *Simplifier) reportProgress(iteration, current, target int) {
	if s.progress != nil {
		s.progress(iteration, s.originalTris, current, target)
	}
	if s.opts.Verbose {
		logSink().Infow("decimation pass",
			"iteration", iteration,
			"original", s.originalTris,
			"current", current,
			"target", target)
	}
}
