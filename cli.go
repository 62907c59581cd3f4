package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spaghettifunk/timber/engine"
	"github.com/spaghettifunk/timber/engine/wood"
)

// breakSpec names a segment by group name and indices.
type breakSpec struct {
	Object  string
	Group   string
	Board   int
	Segment int
	Aftward bool
}

type breakList []breakSpec

func (b *breakList) String() string {
	parts := make([]string, len(*b))
	for i, s := range *b {
		parts[i] = fmt.Sprintf("%s:%d:%d", s.Group, s.Board, s.Segment)
	}
	return strings.Join(parts, ",")
}

func (b *breakList) Set(value string) error {
	spec, err := parseBreak(value)
	if err != nil {
		return err
	}
	*b = append(*b, spec)
	return nil
}

// parseBreak reads [object/]group:board:segment[:aft|:fwd]. The aft end is
// splintered unless fwd is given.
func parseBreak(value string) (breakSpec, error) {
	spec := breakSpec{Aftward: true}
	if obj, rest, ok := strings.Cut(value, "/"); ok {
		spec.Object, value = obj, rest
	}
	parts := strings.Split(value, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return spec, fmt.Errorf("break '%s': want group:board:segment[:fwd]", value)
	}
	spec.Group = parts[0]
	var err error
	if spec.Board, err = strconv.Atoi(parts[1]); err != nil {
		return spec, fmt.Errorf("break '%s': board: %w", value, err)
	}
	if spec.Segment, err = strconv.Atoi(parts[2]); err != nil {
		return spec, fmt.Errorf("break '%s': segment: %w", value, err)
	}
	if len(parts) == 4 {
		switch parts[3] {
		case "aft":
		case "fwd":
			spec.Aftward = false
		default:
			return spec, fmt.Errorf("break '%s': end must be aft or fwd", value)
		}
	}
	return spec, nil
}

func (s breakSpec) apply(e *engine.Engine) error {
	objects := e.Objects()
	if len(objects) == 0 {
		return fmt.Errorf("no wood objects loaded")
	}
	obj := objects[0]
	if s.Object != "" {
		if obj = e.Object(s.Object); obj == nil {
			return fmt.Errorf("no wood object '%s'", s.Object)
		}
	}
	g, _, err := obj.State.Group(s.Group)
	if err != nil {
		return err
	}
	ref := wood.SegmentRef{Group: g, Board: s.Board, Segment: s.Segment}
	_, _, err = e.Break(obj.Name, ref, s.Aftward)
	return err
}

// inspect prints the board layout of obj, optionally limited to one group.
func inspect(w io.Writer, obj *engine.WoodObject, group string) error {
	st := obj.State
	stats := st.Stats()
	fmt.Fprintf(w, "%s: %d groups, %d boards, %d segments, %d rejected, %d/%d splinter slots free\n",
		obj.Name, stats.Groups, stats.Boards, stats.Segments, stats.Rejected, stats.FreeSlots, stats.SplinterSlots)
	if len(st.Truncated) > 0 {
		fmt.Fprintf(w, "  truncated vertices: %v\n", st.Truncated)
	}

	groups := st.Groups
	first := 0
	if group != "" {
		g, bg, err := st.Group(group)
		if err != nil {
			return err
		}
		groups, first = []*wood.BoardGroup{bg}, g
	}
	for i, bg := range groups {
		fmt.Fprintf(w, "  %s\n", bg.Name)
		for b, board := range bg.Boards {
			broken := 0
			for s := range board.Segments {
				if obj.Health.Broken(wood.SegmentRef{Group: first + i, Board: b, Segment: s}) {
					broken++
				}
			}
			fmt.Fprintf(w, "    board %d: %d segments, length %.3f, integrity %.2f, %d broken\n",
				b, len(board.Segments), board.Length(), obj.Health.Integrity(first+i, b), broken)
		}
	}
	return nil
}
