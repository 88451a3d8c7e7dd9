package simplify

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshkit/decimate/pkg/mesh"
)

const (
	// maxIterations caps the target-mode outer loop.
	maxIterations = 100
	// maxLosslessIterations caps the lossless fixpoint loop.
	maxLosslessIterations = 9999
	// losslessThreshold admits only collapses with effectively zero error.
	losslessThreshold = 1e-3
)

// collapseTarget classifies where the optimal collapse point came from,
// which drives how attributes are combined.
type collapseTarget int

const (
	collapseMidpoint collapseTarget = iota
	collapseEndpoint0
	collapseEndpoint1
)

// DecimateTo collapses edges until at most target triangles remain and the
// vertex budget is met, or the iteration cap is hit. target is clamped to
// the current triangle count; a negative target is an error.
func (s *Simplifier) DecimateTo(target int) error {
	if !s.initialized {
		return fmt.Errorf("no mesh loaded: %w", mesh.ErrInvalidArgument)
	}
	if target < 0 {
		return fmt.Errorf("target triangle count %d: %w", target, mesh.ErrInvalidArgument)
	}

	startCount := s.liveTriangles()
	if target > startCount {
		target = startCount
	}
	deletedTris := 0
	var deleted0, deleted1 []bool

	for iteration := 0; iteration < maxIterations; iteration++ {
		live := startCount - deletedTris
		s.reportProgress(iteration, live, target)
		if live <= target && s.remainingVerts < s.maxVertexCount() {
			break
		}
		if iteration%5 == 0 {
			s.updateMesh(iteration)
		}
		for i := range s.tris {
			s.tris[i].dirty = false
		}
		threshold := 1e-9 * math.Pow(float64(iteration+3), s.opts.Aggressiveness)
		s.removePass(target, startCount, threshold, &deletedTris, &deleted0, &deleted1)
	}
	return nil
}

// DecimateLossless repeatedly collapses zero-error edges until a pass
// removes nothing. The adjacency is rebuilt every pass.
func (s *Simplifier) DecimateLossless() error {
	if !s.initialized {
		return fmt.Errorf("no mesh loaded: %w", mesh.ErrInvalidArgument)
	}

	live := s.liveTriangles()
	var deleted0, deleted1 []bool

	for iteration := 0; iteration < maxLosslessIterations; iteration++ {
		s.reportProgress(iteration, live, -1)
		s.updateMesh(iteration)
		for i := range s.tris {
			s.tris[i].dirty = false
		}
		deletedTris := 0
		s.removePass(0, live, losslessThreshold, &deletedTris, &deleted0, &deleted1)
		if deletedTris <= 0 {
			break
		}
		live -= deletedTris
	}
	return nil
}

func (s *Simplifier) liveTriangles() int {
	n := 0
	for i := range s.tris {
		if !s.tris[i].deleted {
			n++
		}
	}
	return n
}

// removePass sweeps all triangles in storage order and commits every
// qualifying, non-flipping collapse under the threshold. For each triangle
// the edges are tried in order and the first collapse wins.
func (s *Simplifier) removePass(target, startCount int, threshold float64, deletedTris *int, deleted0, deleted1 *[]bool) {
	for ti := range s.tris {
		t := &s.tris[ti]
		if t.deleted || t.dirty || t.err[3] > threshold {
			continue
		}
		for j := 0; j < 3; j++ {
			if t.err[j] > threshold {
				continue
			}
			i0 := t.v[j]
			i1 := t.v[(j+1)%3]
			v0 := &s.verts[i0]
			v1 := &s.verts[i1]

			// Collapsing across a border/interior boundary would drag the
			// border inwards.
			if v0.border != v1.border {
				continue
			}
			if s.opts.PreserveBorders && v0.border {
				continue
			}
			if !s.opts.EnableSmartLink && s.opts.KeepLinkedVertices &&
				(v0.linked || v1.linked) {
				continue
			}

			_, p, tgt := s.calculateError(i0, i1)
			*deleted0 = grow(*deleted0, v0.tcount)
			*deleted1 = grow(*deleted1, v1.tcount)
			if s.flipped(p, i1, v0, *deleted0) {
				continue
			}
			if s.flipped(p, i0, v1, *deleted1) {
				continue
			}

			ia0 := t.va[j]
			ia1 := t.va[(j+1)%3]
			if tgt == collapseEndpoint1 {
				s.moveAttributes(ia0, ia1)
			} else {
				s.mergeAttributes(ia0, ia1)
			}

			v0.p = p
			v0.q = v0.q.add(v1.q)
			tstart := len(s.refs)
			s.updateTriangles(i0, ia0, v0, *deleted0, deletedTris)
			s.updateTriangles(i0, ia0, v1, *deleted1, deletedTris)

			tcount := len(s.refs) - tstart
			if tcount <= v0.tcount {
				// The new incidence list fits the old window; reuse it.
				if tcount > 0 {
					copy(s.refs[v0.tstart:], s.refs[tstart:tstart+tcount])
				}
				s.refs = s.refs[:tstart]
			} else {
				v0.tstart = tstart
			}
			v0.tcount = tcount
			s.remainingVerts--
			break
		}
		if startCount-*deletedTris <= target && s.remainingVerts < s.maxVertexCount() {
			break
		}
	}
}

// calculateError evaluates the summed quadric of an edge's endpoints and
// returns the minimal error, the collapse point and its classification.
// When the quadric is invertible and the edge is interior the point solves
// the quadric directly; otherwise the best of the two endpoints and the
// midpoint wins, ties preferring the midpoint.
func (s *Simplifier) calculateError(i0, i1 int) (float64, mgl64.Vec3, collapseTarget) {
	v0 := &s.verts[i0]
	v1 := &s.verts[i1]
	q := v0.q.add(v1.q)

	det := q.det(0, 1, 2, 1, 4, 5, 2, 5, 7)
	if det != 0 && !v0.border && !v1.border {
		p := mgl64.Vec3{
			-1 / det * q.det(1, 2, 3, 4, 5, 6, 5, 7, 8),
			1 / det * q.det(0, 2, 3, 1, 5, 6, 2, 7, 8),
			-1 / det * q.det(0, 1, 3, 1, 4, 6, 2, 5, 8),
		}
		return q.eval(p[0], p[1], p[2]), p, collapseMidpoint
	}

	p0 := v0.p
	p1 := v1.p
	mid := p0.Add(p1).Mul(0.5)
	e0 := q.eval(p0[0], p0[1], p0[2])
	e1 := q.eval(p1[0], p1[1], p1[2])
	em := q.eval(mid[0], mid[1], mid[2])
	if em <= e0 && em <= e1 {
		return em, mid, collapseMidpoint
	}
	if e0 <= e1 {
		return e0, p0, collapseEndpoint0
	}
	return e1, p1, collapseEndpoint1
}

// flipped reports whether relocating v's corners to p would flip or
// degenerate any incident triangle that survives the collapse. Triangles
// shared with the other endpoint i1 are recorded in deleted instead; the
// collapse removes them.
func (s *Simplifier) flipped(p mgl64.Vec3, i1 int, v *vertexData, deleted []bool) bool {
	for k := 0; k < v.tcount; k++ {
		r := s.refs[v.tstart+k]
		t := &s.tris[r.tid]
		if t.deleted {
			continue
		}
		id1 := t.v[(r.tvertex+1)%3]
		id2 := t.v[(r.tvertex+2)%3]
		if id1 == i1 || id2 == i1 {
			deleted[k] = true
			continue
		}
		d1 := normalizeSafe(s.verts[id1].p.Sub(p))
		d2 := normalizeSafe(s.verts[id2].p.Sub(p))
		if math.Abs(d1.Dot(d2)) > 0.999 {
			return true
		}
		n := normalizeSafe(d1.Cross(d2))
		deleted[k] = false
		// A zero normal dots to 0 here and counts as flipped.
		if n.Dot(t.n) < 0.2 {
			return true
		}
	}
	return false
}

// updateTriangles relocates v's surviving incident triangles to the new
// vertex i0 and attribute slot ia0, deletes the ones tombstoned by the
// flip scan, refreshes their edge errors and appends their refs at the
// tail of the refs array.
func (s *Simplifier) updateTriangles(i0, ia0 int, v *vertexData, deleted []bool, deletedTris *int) {
	for k := 0; k < v.tcount; k++ {
		r := s.refs[v.tstart+k]
		t := &s.tris[r.tid]
		if t.deleted {
			continue
		}
		if deleted[k] {
			t.deleted = true
			*deletedTris++
			continue
		}
		t.v[r.tvertex] = i0
		t.va[r.tvertex] = ia0
		t.dirty = true
		minErr := 0.0
		for j := 0; j < 3; j++ {
			t.err[j], _, _ = s.calculateError(t.v[j], t.v[(j+1)%3])
			if j == 0 || t.err[j] < minErr {
				minErr = t.err[j]
			}
		}
		t.err[3] = minErr
		s.refs = append(s.refs, r)
	}
}
