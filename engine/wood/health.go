package wood

import (
	"github.com/spaghettifunk/timber/engine/math"
)

// SlotID identifies a splinter slot.
type SlotID int32

// NoSlot means no splinter is attached.
const NoSlot SlotID = -1

// NoNeighbor terminates a SegHealth chain.
const NoNeighbor = -1

// SegHealth is the gameplay state of one segment. Prev and Next index the
// neighbouring records of the same board.
type SegHealth struct {
	Health      float32
	Broken      bool
	Prev        int
	Next        int
	SplinterAft SlotID
	SplinterFwd SlotID
}

type BoardHealth struct {
	Segments []SegHealth
}

type GroupHealth struct {
	Boards []BoardHealth
}

// WoodHealth mirrors the board layout of a WoodState without referencing its
// geometry.
type WoodHealth struct {
	MaxHealth float32
	Groups    []GroupHealth
}

// NewWoodHealth creates one record per segment of ws, all at maxHealth.
func NewWoodHealth(ws *WoodState, maxHealth float32) *WoodHealth {
	if maxHealth <= 0 {
		maxHealth = DefaultMaxHealth
	}
	h := &WoodHealth{
		MaxHealth: maxHealth,
		Groups:    make([]GroupHealth, len(ws.Groups)),
	}
	for g, group := range ws.Groups {
		h.Groups[g].Boards = make([]BoardHealth, len(group.Boards))
		for b, board := range group.Boards {
			segs := make([]SegHealth, len(board.Segments))
			for s := range segs {
				segs[s].Prev = s - 1
				segs[s].Next = s + 1
				if s == len(segs)-1 {
					segs[s].Next = NoNeighbor
				}
			}
			h.Groups[g].Boards[b].Segments = segs
		}
	}
	h.Reset()
	return h
}

// Segment returns the record addressed by ref.
func (h *WoodHealth) Segment(ref SegmentRef) (*SegHealth, bool) {
	if ref.Group < 0 || ref.Group >= len(h.Groups) {
		return nil, false
	}
	boards := h.Groups[ref.Group].Boards
	if ref.Board < 0 || ref.Board >= len(boards) {
		return nil, false
	}
	segs := boards[ref.Board].Segments
	if ref.Segment < 0 || ref.Segment >= len(segs) {
		return nil, false
	}
	return &segs[ref.Segment], true
}

// Damage subtracts amount from the segment's health. It returns true only on
// the call that takes the segment from positive health to zero.
func (h *WoodHealth) Damage(ref SegmentRef, amount float32) bool {
	sh, ok := h.Segment(ref)
	if !ok || sh.Broken || sh.Health <= 0 {
		return false
	}
	sh.Health = math.Clamp(sh.Health-amount, 0, h.MaxHealth)
	return sh.Health == 0
}

// Broken reports whether the referenced segment is broken.
func (h *WoodHealth) Broken(ref SegmentRef) bool {
	sh, ok := h.Segment(ref)
	return ok && sh.Broken
}

// Integrity returns the average health fraction of a board in [0, 1].
func (h *WoodHealth) Integrity(group, board int) float32 {
	if group < 0 || group >= len(h.Groups) || board < 0 || board >= len(h.Groups[group].Boards) {
		return 0
	}
	segs := h.Groups[group].Boards[board].Segments
	if len(segs) == 0 {
		return 0
	}
	total := float32(0)
	for _, s := range segs {
		total += s.Health
	}
	return total / (float32(len(segs)) * h.MaxHealth)
}

// Reset restores every record to full health. Mesh state is untouched.
func (h *WoodHealth) Reset() {
	for g := range h.Groups {
		for b := range h.Groups[g].Boards {
			segs := h.Groups[g].Boards[b].Segments
			for s := range segs {
				segs[s].Health = h.MaxHealth
				segs[s].Broken = false
				segs[s].SplinterAft = NoSlot
				segs[s].SplinterFwd = NoSlot
			}
		}
	}
}
