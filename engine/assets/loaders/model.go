package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/math"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

// ModelLoader reads Wavefront OBJ files into quad meshes.
type ModelLoader struct{}

func (ml *ModelLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mesh, err := ParseObj(f, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &metadata.Resource{
		Name:     name,
		FullPath: path,
		Type:     metadata.ResourceTypeMesh,
		DataSize: uint64(mesh.VertexCount()),
		Data:     mesh,
	}, nil
}

func (ml *ModelLoader) Unload(res *metadata.Resource) error {
	res.Data = nil
	return nil
}

var defaultVertexColour = math.NewVec4(0.55, 0.36, 0.2, 1)

/**
 * @brief Parses the subset of OBJ a quad mesh needs: `v x y z [r g b]`, `f`
 * with three or four corners (`v`, `v/vt`, `v//vn` or `v/vt/vn`, negative
 * indices allowed) and `g`/`o` names, which become quad groups. Other
 * statements are ignored.
 */
func ParseObj(r io.Reader, name string) (*metadata.Mesh, error) {
	mesh := metadata.NewMesh(name)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		ident, val := fields[0], fields[1:]
		switch ident {
		case "v":
			if len(val) != 3 && len(val) != 6 {
				return nil, fmt.Errorf("line %d: vertex needs 3 or 6 values, got %d", lineNo, len(val))
			}
			nums, err := parseFloats(val)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			colour := defaultVertexColour
			if len(nums) == 6 {
				colour = math.NewVec4(nums[3], nums[4], nums[5], 1)
			}
			mesh.AddVertex(math.NewVec3(nums[0], nums[1], nums[2]), colour)
		case "f":
			idx := make([]uint32, len(val))
			for i, s := range val {
				v, err := parseIndex(s, len(mesh.Positions))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx[i] = v
			}
			switch len(idx) {
			case 3:
				mesh.AddTriangle(idx[0], idx[1], idx[2])
			case 4:
				mesh.AddQuad(idx[0], idx[1], idx[2], idx[3])
			default:
				skipped++
			}
		case "g", "o":
			group := strings.Join(val, " ")
			if group == "" {
				group = metadata.DefaultGroupName
			}
			mesh.BeginGroup(group)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	mesh.EndGroups()
	if skipped > 0 {
		core.LogWarn("obj '%s': skipped %d faces that are neither quads nor triangles", name, skipped)
	}
	return mesh, nil
}

func parseFloats(val []string) ([]float32, error) {
	out := make([]float32, len(val))
	for i, s := range val {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", s)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseIndex resolves the position part of a face corner to a zero based index.
func parseIndex(s string, count int) (uint32, error) {
	pos := s
	if i := strings.IndexByte(s, '/'); i >= 0 {
		pos = s[:i]
	}
	n, err := strconv.Atoi(pos)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", s)
	}
	if n < 0 {
		n = count + n + 1
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("face index %q out of range (have %d vertices)", s, count)
	}
	return uint32(n - 1), nil
}

// WriteObj writes the live faces of mesh as OBJ, with vertex colours and one
// group per quad group. Triangles follow the quads in a trailing group.
func WriteObj(w io.Writer, mesh *metadata.Mesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\no %s\n", mesh.Name, mesh.Name)
	for i, p := range mesh.Positions {
		c := mesh.Colours[i]
		fmt.Fprintf(bw, "v %g %g %g %g %g %g\n", p.X, p.Y, p.Z, c.X, c.Y, c.Z)
	}
	current := ""
	for i, q := range mesh.Quads {
		if !metadata.QuadLive(q) {
			continue
		}
		if g := mesh.GroupOfQuad(uint32(i)); g != current {
			current = g
			fmt.Fprintf(bw, "g %s\n", g)
		}
		fmt.Fprintf(bw, "f %d %d %d %d\n", q[0]+1, q[1]+1, q[2]+1, q[3]+1)
	}
	wroteGroup := false
	for _, t := range mesh.Triangles {
		if !metadata.TriangleLive(t) {
			continue
		}
		if !wroteGroup {
			fmt.Fprintf(bw, "g splinters\n")
			wroteGroup = true
		}
		fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}
	return bw.Flush()
}
