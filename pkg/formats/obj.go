// Package formats provides mesh file format readers and writers.
// Wavefront OBJ is the only format; it feeds the decimation engine and
// writes its results back out.
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshkit/decimate/pkg/mesh"
)

// OBJ format errors.
var (
	ErrMalformedOBJ = errors.New("malformed OBJ data")
	ErrEmptyOBJ     = errors.New("OBJ contains no faces")
)

// OBJInfo carries the OBJ metadata that does not fit the mesh itself:
// object name, material library references and the material bound to each
// sub-mesh. Feeding it back to WriteOBJ keeps material binding across a
// decimate round trip.
type OBJInfo struct {
	Name      string
	MTLLibs   []string
	Materials []string
}

// cornerKey identifies a unique (position, texcoord, normal) tuple.
// Missing components are -1.
type cornerKey struct {
	v, vt, vn int
}

type objParser struct {
	positions []mgl64.Vec3
	texcoords []mgl32.Vec2
	normals   []mgl32.Vec3

	interned map[cornerKey]int
	verts    []mgl64.Vec3
	outUV    []mgl32.Vec2
	outNorm  []mgl32.Vec3
	sawUV    bool
	sawNorm  bool

	submeshOrder []string
	submeshes    map[string][]int
	material     string
	group        string

	info OBJInfo
}

// ParseOBJ reads a Wavefront OBJ stream into a mesh. Faces are
// fan-triangulated, (vertex, texcoord, normal) tuples are interned into
// unique attribute vertices and sub-meshes are keyed by the active
// material (falling back to the active group).
func ParseOBJ(r io.Reader) (*mesh.Mesh, *OBJInfo, error) {
	p := &objParser{
		interned:  make(map[cornerKey]int),
		submeshes: make(map[string][]int),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := p.directive(line); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if len(p.submeshOrder) == 0 {
		return nil, nil, ErrEmptyOBJ
	}

	m := mesh.New(p.verts, make([][]int, 0, len(p.submeshOrder)))
	for _, key := range p.submeshOrder {
		m.Indices = append(m.Indices, p.submeshes[key])
		p.info.Materials = append(p.info.Materials, key)
	}
	if p.sawNorm {
		m.Normals = p.outNorm
	}
	if p.sawUV {
		m.UV[0].UV2 = p.outUV
	}
	return m, &p.info, nil
}

// ParseOBJFile reads an OBJ file from disk.
func ParseOBJFile(path string) (*mesh.Mesh, *OBJInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ParseOBJ(f)
}

func (p *objParser) directive(line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return fmt.Errorf("vertex: %w", err)
		}
		p.positions = append(p.positions, mgl64.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return fmt.Errorf("texcoord: %w", err)
		}
		p.texcoords = append(p.texcoords, mgl32.Vec2{float32(v[0]), float32(v[1])})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return fmt.Errorf("normal: %w", err)
		}
		p.normals = append(p.normals, mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])})
	case "f":
		return p.face(fields[1:])
	case "usemtl":
		if len(fields) > 1 {
			p.material = fields[1]
		}
	case "g":
		if len(fields) > 1 {
			p.group = fields[1]
		}
	case "o":
		if len(fields) > 1 {
			p.info.Name = fields[1]
		}
	case "mtllib":
		p.info.MTLLibs = append(p.info.MTLLibs, fields[1:]...)
	}
	// Unknown directives (s, l, p, ...) are skipped.
	return nil
}

func (p *objParser) face(corners []string) error {
	if len(corners) < 3 {
		return fmt.Errorf("face with %d corners: %w", len(corners), ErrMalformedOBJ)
	}
	idx := make([]int, len(corners))
	for i, c := range corners {
		vi, err := p.corner(c)
		if err != nil {
			return err
		}
		idx[i] = vi
	}

	key := p.material
	if key == "" {
		key = p.group
	}
	if _, ok := p.submeshes[key]; !ok {
		p.submeshOrder = append(p.submeshOrder, key)
	}
	stream := p.submeshes[key]
	for i := 2; i < len(idx); i++ {
		stream = append(stream, idx[0], idx[i-1], idx[i])
	}
	p.submeshes[key] = stream
	return nil
}

// corner resolves one "v", "v/vt", "v//vn" or "v/vt/vn" reference to an
// interned attribute-vertex index.
func (p *objParser) corner(spec string) (int, error) {
	parts := strings.Split(spec, "/")
	if len(parts) > 3 {
		return 0, fmt.Errorf("corner %q: %w", spec, ErrMalformedOBJ)
	}
	key := cornerKey{v: -1, vt: -1, vn: -1}

	var err error
	if key.v, err = resolveIndex(parts[0], len(p.positions)); err != nil {
		return 0, fmt.Errorf("corner %q: %w", spec, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.vt, err = resolveIndex(parts[1], len(p.texcoords)); err != nil {
			return 0, fmt.Errorf("corner %q: %w", spec, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.vn, err = resolveIndex(parts[2], len(p.normals)); err != nil {
			return 0, fmt.Errorf("corner %q: %w", spec, err)
		}
	}

	if vi, ok := p.interned[key]; ok {
		return vi, nil
	}
	vi := len(p.verts)
	p.interned[key] = vi
	p.verts = append(p.verts, p.positions[key.v])
	var uv mgl32.Vec2
	if key.vt >= 0 {
		uv = p.texcoords[key.vt]
		p.sawUV = true
	}
	p.outUV = append(p.outUV, uv)
	var n mgl32.Vec3
	if key.vn >= 0 {
		n = p.normals[key.vn]
		p.sawNorm = true
	}
	p.outNorm = append(p.outNorm, n)
	return vi, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index into a
// 0-based one.
func resolveIndex(s string, poolLen int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("index %q: %w", s, ErrMalformedOBJ)
	}
	switch {
	case n > 0:
		n--
	case n < 0:
		n = poolLen + n
	default:
		return 0, fmt.Errorf("index 0: %w", ErrMalformedOBJ)
	}
	if n < 0 || n >= poolLen {
		return 0, fmt.Errorf("index %s out of range 1..%d: %w", s, poolLen, ErrMalformedOBJ)
	}
	return n, nil
}

func parseFloats(fields []string, min int) ([]float64, error) {
	if len(fields) < min {
		return nil, fmt.Errorf("expected %d components, got %d: %w", min, len(fields), ErrMalformedOBJ)
	}
	out := make([]float64, min)
	for i := 0; i < min; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", fields[i], ErrMalformedOBJ)
		}
		out[i] = v
	}
	return out, nil
}

// WriteOBJ writes a mesh as Wavefront OBJ. info may be nil; when given,
// its materials are bound per sub-mesh and its mtllib references emitted.
func WriteOBJ(w io.Writer, m *mesh.Mesh, info *OBJInfo) error {
	bw := bufio.NewWriter(w)

	if info != nil {
		for _, lib := range info.MTLLibs {
			fmt.Fprintf(bw, "mtllib %s\n", lib)
		}
		if info.Name != "" {
			fmt.Fprintf(bw, "o %s\n", info.Name)
		}
	}

	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v[0], v[1], v[2])
	}
	hasUV := m.UV[0].UV2 != nil
	if hasUV {
		for _, t := range m.UV[0].UV2 {
			fmt.Fprintf(bw, "vt %g %g\n", t[0], t[1])
		}
	}
	hasNormals := m.Normals != nil
	if hasNormals {
		for _, n := range m.Normals {
			fmt.Fprintf(bw, "vn %g %g %g\n", n[0], n[1], n[2])
		}
	}

	for si, stream := range m.Indices {
		if info != nil && si < len(info.Materials) && info.Materials[si] != "" {
			fmt.Fprintf(bw, "usemtl %s\n", info.Materials[si])
		}
		for i := 0; i+2 < len(stream); i += 3 {
			fmt.Fprintf(bw, "f %s %s %s\n",
				objCorner(stream[i]+1, hasUV, hasNormals),
				objCorner(stream[i+1]+1, hasUV, hasNormals),
				objCorner(stream[i+2]+1, hasUV, hasNormals))
		}
	}
	return bw.Flush()
}

// WriteOBJFile writes a mesh to an OBJ file on disk.
func WriteOBJFile(path string, m *mesh.Mesh, info *OBJInfo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteOBJ(f, m, info); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// objCorner formats one face corner. Interned meshes share one index across
// position, texcoord and normal.
func objCorner(i int, hasUV, hasNormals bool) string {
	switch {
	case hasUV && hasNormals:
		return fmt.Sprintf("%d/%d/%d", i, i, i)
	case hasUV:
		return fmt.Sprintf("%d/%d", i, i)
	case hasNormals:
		return fmt.Sprintf("%d//%d", i, i)
	}
	return strconv.Itoa(i)
}
