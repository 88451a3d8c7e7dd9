package simplify

// updateMesh refreshes the working state between passes: tombstoned
// triangles are compacted away and the vertex-to-triangle refs rebuilt.
// On the first pass it additionally classifies borders, applies vertex
// linking and seeds the per-vertex quadrics and per-triangle edge errors.
func (s *Simplifier) updateMesh(iteration int) {
	if iteration > 0 {
		s.compactTriangles()
	}
	s.updateReferences()
	if iteration == 0 {
		s.classifyBorders()
		if s.opts.EnableSmartLink {
			s.smartLink()
			s.updateReferences()
		} else if s.opts.KeepLinkedVertices {
			s.markLinked()
		}
		s.initQuadrics()
	}
}

// compactTriangles drops tombstoned triangles in place, preserving order.
func (s *Simplifier) compactTriangles() {
	dst := 0
	for i := range s.tris {
		if s.tris[i].deleted {
			continue
		}
		if dst != i {
			s.tris[dst] = s.tris[i]
		}
		dst++
	}
	s.tris = s.tris[:dst]
}

// updateReferences repartitions the flat refs array into per-vertex
// (tstart, tcount) windows.
func (s *Simplifier) updateReferences() {
	for i := range s.verts {
		s.verts[i].tstart = 0
		s.verts[i].tcount = 0
	}
	for i := range s.tris {
		t := &s.tris[i]
		if t.deleted {
			continue
		}
		for j := 0; j < 3; j++ {
			s.verts[t.v[j]].tcount++
		}
	}
	offset := 0
	for i := range s.verts {
		s.verts[i].tstart = offset
		offset += s.verts[i].tcount
		s.verts[i].tcount = 0
	}
	s.refs = grow(s.refs, offset)
	for i := range s.tris {
		t := &s.tris[i]
		if t.deleted {
			continue
		}
		for j := 0; j < 3; j++ {
			v := &s.verts[t.v[j]]
			s.refs[v.tstart+v.tcount] = ref{tid: i, tvertex: j}
			v.tcount++
		}
	}
}

// classifyBorders marks every vertex that lies on an edge belonging to
// exactly one triangle. Neighbour co-occurrence counts are gathered per
// vertex over its incident triangles.
func (s *Simplifier) classifyBorders() {
	var vcount []int
	var vids []int
	for i := range s.verts {
		s.verts[i].border = false
	}
	for i := range s.verts {
		v := &s.verts[i]
		vcount = vcount[:0]
		vids = vids[:0]
		for j := 0; j < v.tcount; j++ {
			t := &s.tris[s.refs[v.tstart+j].tid]
			for k := 0; k < 3; k++ {
				id := t.v[k]
				if id == i {
					continue
				}
				found := false
				for ofs := range vids {
					if vids[ofs] == id {
						vcount[ofs]++
						found = true
						break
					}
				}
				if !found {
					vcount = append(vcount, 1)
					vids = append(vids, id)
				}
			}
		}
		for j := range vcount {
			if vcount[j] == 1 {
				s.verts[vids[j]].border = true
			}
		}
	}
}

// smartLink merges border vertices whose positions coincide within the
// configured squared distance. Every triangle corner referencing the
// consumed vertex is redirected to the kept one; attribute indices are left
// alone so seams survive. Callers rebuild the refs afterwards.
func (s *Simplifier) smartLink() {
	var borderVerts []int
	for i := range s.verts {
		if s.verts[i].border {
			borderVerts = append(borderVerts, i)
		}
	}
	consumed := make(map[int]int) // consumed vertex -> kept vertex
	for ai := 0; ai < len(borderVerts); ai++ {
		a := borderVerts[ai]
		if _, ok := consumed[a]; ok {
			continue
		}
		for bi := ai + 1; bi < len(borderVerts); bi++ {
			b := borderVerts[bi]
			if _, ok := consumed[b]; ok {
				continue
			}
			d := s.verts[a].p.Sub(s.verts[b].p)
			if d.Dot(d) > s.opts.VertexLinkDistanceSqr {
				continue
			}
			consumed[b] = a
			s.verts[a].border = false
			s.verts[b].border = false
		}
	}
	if len(consumed) == 0 {
		return
	}
	for i := range s.tris {
		t := &s.tris[i]
		for j := 0; j < 3; j++ {
			if kept, ok := consumed[t.v[j]]; ok {
				t.v[j] = kept
			}
		}
	}
	s.remainingVerts -= len(consumed)
}

// markLinked tags vertices sharing a position with another vertex. Legacy
// alternative to smart linking: tagged vertices are simply never collapsed.
func (s *Simplifier) markLinked() {
	seen := make(map[[3]float64]int, len(s.verts))
	for i := range s.verts {
		key := [3]float64{s.verts[i].p[0], s.verts[i].p[1], s.verts[i].p[2]}
		if first, ok := seen[key]; ok {
			s.verts[first].linked = true
			s.verts[i].linked = true
		} else {
			seen[key] = i
		}
	}
}

// initQuadrics accumulates each vertex's plane quadric from its incident
// triangles, then caches every triangle's edge errors.
func (s *Simplifier) initQuadrics() {
	for i := range s.verts {
		s.verts[i].q = quadric{}
	}
	for i := range s.tris {
		t := &s.tris[i]
		if t.deleted {
			continue
		}
		p0 := s.verts[t.v[0]].p
		p1 := s.verts[t.v[1]].p
		p2 := s.verts[t.v[2]].p
		n := normalizeSafe(p1.Sub(p0).Cross(p2.Sub(p0)))
		t.n = n
		q := quadricFromPlane(n[0], n[1], n[2], -n.Dot(p0))
		for j := 0; j < 3; j++ {
			vq := &s.verts[t.v[j]].q
			*vq = vq.add(q)
		}
	}
	for i := range s.tris {
		t := &s.tris[i]
		if t.deleted {
			continue
		}
		minErr := 0.0
		for j := 0; j < 3; j++ {
			t.err[j], _, _ = s.calculateError(t.v[j], t.v[(j+1)%3])
			if j == 0 || t.err[j] < minErr {
				minErr = t.err[j]
			}
		}
		t.err[3] = minErr
	}
}
