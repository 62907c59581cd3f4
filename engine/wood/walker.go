package wood

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/math"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

// TopologyError describes a board candidate rejected by the walker.
type TopologyError struct {
	// Seed is the end quad the walk started from.
	Seed int
	// Step is the index of the segment being assembled when the walk failed.
	Step   int
	Reason string
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("board from quad %d rejected at segment %d: %s", e.Seed, e.Step, e.Reason)
}

func (e *TopologyError) Unwrap() error {
	return core.ErrTopologyInvalid
}

// boardWalker discovers boards by growing loops out of end-cap quads. Claims
// made during a walk are tentative until the board completes; a failed walk
// rolls them back so later candidates can reuse the vertices.
type boardWalker struct {
	mesh        *metadata.Mesh
	graph       *EdgeGraph
	vertexQuads [][]int

	claimedVertex []bool
	claimedQuad   []bool
	pendingVertex []uint32
	pendingQuad   []int
}

func newBoardWalker(mesh *metadata.Mesh, graph *EdgeGraph) *boardWalker {
	n := mesh.VertexCount()
	w := &boardWalker{
		mesh:          mesh,
		graph:         graph,
		vertexQuads:   make([][]int, n),
		claimedVertex: make([]bool, n),
		claimedQuad:   make([]bool, len(mesh.Quads)),
	}
	for qi, q := range mesh.Quads {
		if !metadata.QuadLive(q) || !w.inRange(q) {
			continue
		}
		for _, v := range q {
			w.vertexQuads[v] = append(w.vertexQuads[v], qi)
		}
	}
	return w
}

func (w *boardWalker) inRange(q [4]uint32) bool {
	n := w.mesh.VertexCount()
	return q[0] < n && q[1] < n && q[2] < n && q[3] < n
}

// candidates returns every quad whose corners are all end-ring vertices,
// ordered by their sorted vertex tuples.
func (w *boardWalker) candidates() []int {
	var out []int
	for qi, q := range w.mesh.Quads {
		if !metadata.QuadLive(q) || !w.inRange(q) {
			continue
		}
		ok := true
		for _, v := range q {
			if !w.graph.IsEndRing(v) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, qi)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := sortedLoop(w.mesh.Quads[out[i]]), sortedLoop(w.mesh.Quads[out[j]])
		for k := 0; k < 4; k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return out[i] < out[j]
	})
	return out
}

// available reports whether a candidate is still untouched by earlier boards.
func (w *boardWalker) available(qi int) bool {
	if w.claimedQuad[qi] {
		return false
	}
	for _, v := range w.mesh.Quads[qi] {
		if w.claimedVertex[v] {
			return false
		}
	}
	return true
}

func (w *boardWalker) claimVertex(v uint32) {
	w.claimedVertex[v] = true
	w.pendingVertex = append(w.pendingVertex, v)
}

func (w *boardWalker) claimQuad(qi int) {
	w.claimedQuad[qi] = true
	w.pendingQuad = append(w.pendingQuad, qi)
}

func (w *boardWalker) commit() {
	w.pendingVertex = w.pendingVertex[:0]
	w.pendingQuad = w.pendingQuad[:0]
}

func (w *boardWalker) rollback() {
	for _, v := range w.pendingVertex {
		w.claimedVertex[v] = false
	}
	for _, qi := range w.pendingQuad {
		w.claimedQuad[qi] = false
	}
	w.commit()
}

// walk grows a board from the seed quad. It returns either the completed
// board or a *TopologyError; never both.
func (w *boardWalker) walk(seed int) (*Board, error) {
	cur := sortedLoop(w.mesh.Quads[seed])
	for _, v := range cur {
		w.claimVertex(v)
	}

	board := &Board{Extents: math.NewExtents3DEmpty()}
	for step := 0; ; step++ {
		fail := func(format string, args ...interface{}) (*Board, error) {
			w.rollback()
			return nil, &TopologyError{Seed: seed, Step: step, Reason: fmt.Sprintf(format, args...)}
		}

		next, reason := w.nextLoop(cur)
		if reason != "" {
			return fail("%s", reason)
		}

		seg, reason := w.assemble(step, cur, next)
		if reason != "" {
			return fail("%s", reason)
		}
		for _, v := range next {
			w.claimVertex(v)
		}
		for _, owned := range seg.ownedQuads() {
			w.claimQuad(owned[1])
		}

		board.Segments = append(board.Segments, seg)
		board.Extents = board.Extents.Union(seg.Extents)
		if seg.HasFrontCap() {
			break
		}
		cur = next
	}
	w.commit()
	return board, nil
}

// nextLoop pairs every vertex of cur with its single unclaimed neighbour.
func (w *boardWalker) nextLoop(cur Loop) (Loop, string) {
	var next Loop
	seen := make(map[uint32]struct{}, 4)
	open := [4]int{}
	for i, v := range cur {
		for _, nb := range w.graph.Neighbors(v) {
			if w.claimedVertex[nb] {
				continue
			}
			seen[nb] = struct{}{}
			next[i] = nb
			open[i]++
		}
	}
	if len(seen) != 4 {
		return next, fmt.Sprintf("next loop gathered %d vertices, want 4", len(seen))
	}
	for i, c := range open {
		if c != 1 {
			return next, fmt.Sprintf("vertex %d has %d unclaimed neighbours, want 1", cur[i], c)
		}
	}
	return next, ""
}

// assemble classifies the unclaimed quads spanning cur and next into sides and
// caps and measures the resulting segment.
func (w *boardWalker) assemble(step int, cur, next Loop) (*Segment, string) {
	faces := w.facesBetween(cur, next)
	seg := &Segment{
		AftLoop:  cur,
		FwdLoop:  next,
		BackCap:  NoQuad,
		FrontCap: NoQuad,
	}

	sides := 0
	for _, qi := range faces {
		q := w.mesh.Quads[qi]
		inCur, inNext := 0, 0
		for _, v := range q {
			if cur.contains(v) {
				inCur++
			} else {
				inNext++
			}
		}
		slot := -1
		switch {
		case inCur == 4:
			if step != 0 || seg.HasBackCap() {
				return nil, fmt.Sprintf("unexpected cap quad %d inside the aft loop", qi)
			}
			seg.BackCap = qi
			slot = 4
		case inNext == 4:
			if seg.HasFrontCap() {
				return nil, fmt.Sprintf("second front cap quad %d", qi)
			}
			seg.FrontCap = qi
			slot = 5
		case inCur == 2 && inNext == 2:
			if sides == 4 {
				return nil, fmt.Sprintf("more than 4 side quads (extra quad %d)", qi)
			}
			seg.Sides[sides] = qi
			slot = sides
			sides++
		default:
			return nil, fmt.Sprintf("quad %d splits the loops %d/%d", qi, inCur, inNext)
		}
		seg.windings[slot] = encodeWinding(q, cur, next)
	}

	if sides != 4 {
		return nil, fmt.Sprintf("found %d side quads, want 4", sides)
	}
	if step == 0 && !seg.HasBackCap() {
		return nil, "first segment has no back cap"
	}

	seg.Measure = MeasureSegment(w.mesh.Positions, w.mesh.Quads, cur, next, seg.Sides)
	return seg, ""
}

// facesBetween returns, in ascending order, the unclaimed live quads whose
// corners all belong to cur or next.
func (w *boardWalker) facesBetween(cur, next Loop) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, v := range cur {
		for _, qi := range w.vertexQuads[v] {
			if _, ok := seen[qi]; ok || w.claimedQuad[qi] {
				continue
			}
			seen[qi] = struct{}{}
			inside := true
			for _, c := range w.mesh.Quads[qi] {
				if !cur.contains(c) && !next.contains(c) {
					inside = false
					break
				}
			}
			if inside {
				out = append(out, qi)
			}
		}
	}
	// A front cap touches only the next loop.
	for _, v := range next {
		for _, qi := range w.vertexQuads[v] {
			if _, ok := seen[qi]; ok || w.claimedQuad[qi] {
				continue
			}
			seen[qi] = struct{}{}
			inside := true
			for _, c := range w.mesh.Quads[qi] {
				if !next.contains(c) {
					inside = false
					break
				}
			}
			if inside {
				out = append(out, qi)
			}
		}
	}
	sort.Ints(out)
	return out
}

func encodeWinding(q [4]uint32, aft, fwd Loop) winding {
	var w winding
	for i, v := range q {
		for k := 0; k < 4; k++ {
			if aft[k] == v {
				w[i] = uint8(k)
				break
			}
			if fwd[k] == v {
				w[i] = uint8(4 + k)
				break
			}
		}
	}
	return w
}

func sortedLoop(q [4]uint32) Loop {
	l := Loop(q)
	sort.Slice(l[:], func(i, j int) bool { return l[i] < l[j] })
	return l
}
