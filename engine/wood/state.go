package wood

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

// WoodState is the structural index of one physical object. It owns the mesh
// arrays exclusively: two states must never wrap the same mesh.
type WoodState struct {
	ID     string
	Mesh   *metadata.Mesh
	Groups []*BoardGroup
	// Rejected keeps the candidates the walker refused, for diagnostics.
	Rejected []*TopologyError
	// Truncated lists vertices whose adjacency overflowed.
	Truncated []uint32
	// Splinters is nil when the config reserves no slots.
	Splinters *SplinterAllocator

	config Config
}

/**
 * @brief Discovers the boards of mesh and reserves the splinter slots in its
 * arrays. Regions that do not look like boards are skipped, never fatal.
 *
 * @param mesh The finished mesh. It is mutated in place from now on.
 * @param cfg Splinter configuration.
 * @return The wood state.
 */
func BuildWoodState(mesh *metadata.Mesh, cfg Config) *WoodState {
	cfg = cfg.normalized()
	ws := &WoodState{
		ID:     core.NewIdentifier(),
		Mesh:   mesh,
		config: cfg,
	}

	graph := NewEdgeGraph(mesh)
	ws.Truncated = append([]uint32(nil), graph.Truncated()...)

	walker := newBoardWalker(mesh, graph)
	for _, seed := range walker.candidates() {
		if !walker.available(seed) {
			continue
		}
		board, err := walker.walk(seed)
		if err != nil {
			var te *TopologyError
			if errors.As(err, &te) {
				ws.Rejected = append(ws.Rejected, te)
			}
			core.LogDebug("wood '%s': %s", mesh.Name, err.Error())
			continue
		}
		ws.addBoard(board)
	}

	if cfg.MaxSplinters > 0 {
		ws.Splinters = newSplinterAllocator(mesh, cfg)
	}

	stats := ws.Stats()
	core.LogInfo("wood '%s' (%s): %d groups, %d boards, %d segments, %d rejected, %d splinter slots",
		mesh.Name, core.ShortIdentifier(ws.ID), stats.Groups, stats.Boards, stats.Segments, stats.Rejected, stats.SplinterSlots)
	return ws
}

func (ws *WoodState) addBoard(board *Board) {
	first := board.Segments[0]
	board.Group = ws.Mesh.GroupOfQuad(uint32(first.BackCap))
	for _, g := range ws.Groups {
		if g.Name == board.Group {
			g.Boards = append(g.Boards, board)
			return
		}
	}
	ws.Groups = append(ws.Groups, &BoardGroup{Name: board.Group, Boards: []*Board{board}})
}

// Config returns the normalized configuration the state was built with.
func (ws *WoodState) Config() Config {
	return ws.config
}

// Segment resolves a reference, reporting false when it is out of range.
func (ws *WoodState) Segment(ref SegmentRef) (*Segment, bool) {
	if ref.Group < 0 || ref.Group >= len(ws.Groups) {
		return nil, false
	}
	boards := ws.Groups[ref.Group].Boards
	if ref.Board < 0 || ref.Board >= len(boards) {
		return nil, false
	}
	segs := boards[ref.Board].Segments
	if ref.Segment < 0 || ref.Segment >= len(segs) {
		return nil, false
	}
	return segs[ref.Segment], true
}

// EachSegment visits every segment in group, board, segment order.
func (ws *WoodState) EachSegment(fn func(ref SegmentRef, seg *Segment)) {
	for g, group := range ws.Groups {
		for b, board := range group.Boards {
			for s, seg := range board.Segments {
				fn(SegmentRef{Group: g, Board: b, Segment: s}, seg)
			}
		}
	}
}

// Group finds a board group by name. Unknown names produce an error wrapping
// core.ErrUnknownGroup, with the closest existing name when one is near.
func (ws *WoodState) Group(name string) (int, *BoardGroup, error) {
	for i, g := range ws.Groups {
		if g.Name == name {
			return i, g, nil
		}
	}

	best, bestDist := "", -1
	for _, g := range ws.Groups {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(g.Name))
		if bestDist < 0 || d < bestDist {
			best, bestDist = g.Name, d
		}
	}
	if bestDist >= 0 && bestDist <= suggestionLimit(len(best)) {
		return -1, nil, fmt.Errorf("%w '%s', did you mean '%s'?", core.ErrUnknownGroup, name, best)
	}
	return -1, nil, fmt.Errorf("%w '%s'", core.ErrUnknownGroup, name)
}

func suggestionLimit(n int) int {
	switch {
	case n <= 3:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}

// Stats summarises a wood state.
type Stats struct {
	Groups        int
	Boards        int
	Segments      int
	Rejected      int
	SplinterSlots int
	FreeSlots     int
}

func (ws *WoodState) Stats() Stats {
	s := Stats{Groups: len(ws.Groups), Rejected: len(ws.Rejected)}
	for _, g := range ws.Groups {
		s.Boards += len(g.Boards)
		for _, b := range g.Boards {
			s.Segments += len(b.Segments)
		}
	}
	if ws.Splinters != nil {
		s.SplinterSlots = ws.Splinters.Capacity()
		s.FreeSlots = ws.Splinters.FreeSlots()
	}
	return s
}
