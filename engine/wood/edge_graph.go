package wood

import (
	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

// MaxNeighbors is the adjacency cap per vertex. A quad-mesh plank never needs more:
// two ring neighbours plus one on each adjacent loop.
const MaxNeighbors = 4

// EdgeGraph is the per-vertex adjacency of a quad mesh.
type EdgeGraph struct {
	neighbors [][MaxNeighbors]uint32
	counts    []uint8
	truncated []uint32
	overflow  []bool
}

// NewEdgeGraph registers every quad edge in both directions. Entries past
// MaxNeighbors are dropped; the affected vertices are reported by Truncated.
func NewEdgeGraph(mesh *metadata.Mesh) *EdgeGraph {
	n := mesh.VertexCount()
	g := &EdgeGraph{
		neighbors: make([][MaxNeighbors]uint32, n),
		counts:    make([]uint8, n),
		overflow:  make([]bool, n),
	}
	for _, q := range mesh.Quads {
		if !metadata.QuadLive(q) {
			continue
		}
		for i := 0; i < 4; i++ {
			a, b := q[i], q[(i+1)%4]
			if a >= n || b >= n || a == b {
				continue
			}
			g.register(a, b)
			g.register(b, a)
		}
	}
	if len(g.truncated) > 0 {
		core.LogWarn("edge graph of '%s': %d vertices have more than %d neighbours, extra edges dropped", mesh.Name, len(g.truncated), MaxNeighbors)
	}
	return g
}

func (g *EdgeGraph) register(from, to uint32) {
	c := g.counts[from]
	for i := uint8(0); i < c; i++ {
		if g.neighbors[from][i] == to {
			return
		}
	}
	if c == MaxNeighbors {
		if !g.overflow[from] {
			g.overflow[from] = true
			g.truncated = append(g.truncated, from)
		}
		return
	}
	g.neighbors[from][c] = to
	g.counts[from] = c + 1
}

// Neighbors returns the recorded neighbours of v in registration order.
func (g *EdgeGraph) Neighbors(v uint32) []uint32 {
	if int(v) >= len(g.counts) {
		return nil
	}
	return g.neighbors[v][:g.counts[v]]
}

// Degree is the number of recorded neighbours of v.
func (g *EdgeGraph) Degree(v uint32) int {
	return len(g.Neighbors(v))
}

// IsEndRing reports whether v looks like a corner of a board end loop.
func (g *EdgeGraph) IsEndRing(v uint32) bool {
	return g.Degree(v) == 3
}

// Truncated lists the vertices that lost adjacency entries to the cap.
func (g *EdgeGraph) Truncated() []uint32 {
	return g.truncated
}

func (g *EdgeGraph) VertexCount() int {
	return len(g.counts)
}
