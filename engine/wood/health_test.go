package wood

import "testing"

func TestHealthLayout(t *testing.T) {
	ws, h := plankState(t, 3, 0)
	if len(h.Groups) != len(ws.Groups) || len(h.Groups[0].Boards) != 1 {
		t.Fatalf("health layout does not mirror the state: %+v", h.Groups)
	}
	segs := h.Groups[0].Boards[0].Segments
	if len(segs) != 3 {
		t.Fatalf("got %d records, want 3", len(segs))
	}
	wantLinks := [][2]int{{NoNeighbor, 1}, {0, 2}, {1, NoNeighbor}}
	for i, s := range segs {
		if s.Prev != wantLinks[i][0] || s.Next != wantLinks[i][1] {
			t.Errorf("record %d links = (%d, %d), want %v", i, s.Prev, s.Next, wantLinks[i])
		}
		if s.Health != DefaultMaxHealth || s.SplinterAft != NoSlot || s.SplinterFwd != NoSlot {
			t.Errorf("record %d = %+v", i, s)
		}
	}
}

func TestDamage(t *testing.T) {
	_, h := plankState(t, 2, 0)
	tests := []struct {
		amount float32
		broke  bool
		health float32
	}{
		{amount: 30, broke: false, health: 70},
		{amount: 0, broke: false, health: 70},
		{amount: 80, broke: true, health: 0},
		{amount: 10, broke: false, health: 0},
	}
	for i, tt := range tests {
		if got := h.Damage(ref(0), tt.amount); got != tt.broke {
			t.Errorf("step %d: Damage(%v) = %v, want %v", i, tt.amount, got, tt.broke)
		}
		if sh, _ := h.Segment(ref(0)); sh.Health != tt.health {
			t.Errorf("step %d: health = %v, want %v", i, sh.Health, tt.health)
		}
	}
	if h.Damage(SegmentRef{Group: 4}, 10) {
		t.Error("damage to an unknown segment reported a break")
	}
	if got := h.Integrity(0, 0); got != 0.5 {
		t.Errorf("Integrity() = %v, want 0.5", got)
	}
	if got := h.Integrity(0, 3); got != 0 {
		t.Errorf("Integrity(unknown) = %v, want 0", got)
	}

	h.Reset()
	if got := h.Integrity(0, 0); got != 1 {
		t.Errorf("Integrity() after reset = %v, want 1", got)
	}
}

func TestNewWoodHealthDefaultsMax(t *testing.T) {
	ws, _ := plankState(t, 1, 0)
	h := NewWoodHealth(ws, -5)
	if h.MaxHealth != DefaultMaxHealth {
		t.Errorf("MaxHealth = %v, want %v", h.MaxHealth, DefaultMaxHealth)
	}
	if _, ok := h.Segment(SegmentRef{Segment: 1}); ok {
		t.Error("out of range segment resolved")
	}
}
