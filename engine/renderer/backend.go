package renderer

import (
	"sync"

	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

// Uploader is the boundary to whatever owns the GPU copy of a mesh. It is
// handed every sub-range that changed since the previous flush.
type Uploader interface {
	UpdateMeshRange(mesh *metadata.Mesh, r metadata.MeshRange) error
}

type RendererType uint8

const (
	// Keeps a log of uploads in memory.
	Memory RendererType = iota
	// Discards uploads; previews read the mesh arrays directly.
	Null
)

// Element sizes in bytes as laid out in a GPU buffer.
const (
	VertexStride   uint64 = 12 + 16
	TriangleStride uint64 = 3 * 4
	QuadStride     uint64 = 4 * 4
)

// Upload is one recorded call to a MemoryUploader.
type Upload struct {
	Mesh       string
	Generation uint32
	Range      metadata.MeshRange
	Bytes      uint64
}

// MemoryUploader records uploads instead of sending them anywhere.
type MemoryUploader struct {
	mu      sync.Mutex
	uploads []Upload
	bytes   uint64
}

func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{}
}

func (mu *MemoryUploader) UpdateMeshRange(mesh *metadata.Mesh, r metadata.MeshRange) error {
	mu.mu.Lock()
	defer mu.mu.Unlock()
	size := RangeBytes(r)
	mu.uploads = append(mu.uploads, Upload{
		Mesh:       mesh.Name,
		Generation: mesh.Generation,
		Range:      r,
		Bytes:      size,
	})
	mu.bytes += size
	return nil
}

// Uploads returns a copy of everything recorded so far.
func (mu *MemoryUploader) Uploads() []Upload {
	mu.mu.Lock()
	defer mu.mu.Unlock()
	return append([]Upload(nil), mu.uploads...)
}

// Bytes is the total size of every recorded upload.
func (mu *MemoryUploader) Bytes() uint64 {
	mu.mu.Lock()
	defer mu.mu.Unlock()
	return mu.bytes
}

// Reset forgets the recorded uploads.
func (mu *MemoryUploader) Reset() {
	mu.mu.Lock()
	defer mu.mu.Unlock()
	mu.uploads = nil
	mu.bytes = 0
}

type nullUploader struct{}

func (nullUploader) UpdateMeshRange(*metadata.Mesh, metadata.MeshRange) error { return nil }
