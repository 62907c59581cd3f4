package renderer

import (
	"fmt"

	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

// New returns the uploader for the given type.
func New(t RendererType) (Uploader, error) {
	switch t {
	case Memory:
		return NewMemoryUploader(), nil
	case Null:
		return nullUploader{}, nil
	}
	return nil, fmt.Errorf("unknown renderer type %d", t)
}

// ParseRendererType maps a config name onto a RendererType.
func ParseRendererType(name string) (RendererType, error) {
	switch name {
	case "", "memory":
		return Memory, nil
	case "null", "none":
		return Null, nil
	}
	return Memory, fmt.Errorf("unknown renderer '%s'", name)
}

// RangeBytes is the byte size of r in a GPU buffer.
func RangeBytes(r metadata.MeshRange) uint64 {
	switch r.Kind {
	case metadata.RangeVertices:
		return uint64(r.Count) * VertexStride
	case metadata.RangeTriangles:
		return uint64(r.Count) * TriangleStride
	case metadata.RangeQuads:
		return uint64(r.Count) * QuadStride
	}
	return 0
}

/**
 * @brief Drains the dirty ranges of mesh into the uploader.
 *
 * @return The number of ranges uploaded. On error the remaining ranges are
 * put back so the next flush retries them.
 */
func Flush(u Uploader, mesh *metadata.Mesh) (int, error) {
	ranges := mesh.TakeDirty()
	for i, r := range ranges {
		if err := u.UpdateMeshRange(mesh, r); err != nil {
			for _, rest := range ranges[i:] {
				mesh.MarkDirty(rest.Kind, rest.Start, rest.Count)
			}
			core.LogError("upload of %s [%d, +%d) for '%s' failed: %s", r.Kind, r.Start, r.Count, mesh.Name, err.Error())
			return i, fmt.Errorf("flush '%s': %w", mesh.Name, err)
		}
	}
	return len(ranges), nil
}
