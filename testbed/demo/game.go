package demo

import (
	"fmt"

	"github.com/spaghettifunk/timber/engine"
	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/math"
	"github.com/spaghettifunk/timber/engine/wood"
	"github.com/spaghettifunk/timber/testbed"
)

// Object is the name the demo registers its hull under.
const Object = "hull"

// State drives a hull through random hits every tick.
type State struct {
	Hull        testbed.HullConfig
	HitsPerTick int
	MaxHit      float32
	// RepairEvery repairs the oldest broken segment every n ticks; 0 never repairs.
	RepairEvery int

	Broken   int
	Repaired int

	rng    *math.Random
	refs   []wood.SegmentRef
	broken []wood.SegmentRef
	ticks  int
}

func NewGame(cfg *engine.ApplicationConfig) *engine.Game {
	if cfg == nil {
		cfg = engine.DefaultApplicationConfig()
	}
	state := &State{
		Hull:        testbed.DefaultHull(),
		HitsPerTick: 4,
		MaxHit:      35,
		RepairEvery: 30,
		rng:         math.NewRandom(cfg.Wood.Seed),
	}
	return &engine.Game{
		ApplicationConfig: cfg,
		State:             state,
		FnInitialize:      state.initialize,
		FnUpdate:          state.update,
		FnShutdown:        state.shutdown,
	}
}

func (d *State) initialize(e *engine.Engine) error {
	obj, err := e.AddObject(Object, testbed.NewHullMesh(d.Hull))
	if err != nil {
		return err
	}
	obj.State.EachSegment(func(ref wood.SegmentRef, _ *wood.Segment) {
		d.refs = append(d.refs, ref)
	})
	if len(d.refs) == 0 {
		return fmt.Errorf("demo hull has no boards")
	}
	core.EventRegister(core.EVENT_CODE_SEGMENT_BROKEN, d, d.onBroken)
	return nil
}

func (d *State) update(e *engine.Engine, deltaTime float64) error {
	d.ticks++
	for i := 0; i < d.HitsPerTick; i++ {
		hit := engine.DamageEvent{
			Object:  Object,
			Ref:     d.refs[d.rng.Intn(len(d.refs))],
			Amount:  d.rng.InRange(1, d.MaxHit),
			Aftward: d.rng.Float() < 0.5,
		}
		if err := e.QueueDamage(hit); err != nil {
			core.LogDebug("demo: %s", err.Error())
			break
		}
	}
	if d.RepairEvery > 0 && d.ticks%d.RepairEvery == 0 && len(d.broken) > 0 {
		ref := d.broken[0]
		d.broken = d.broken[1:]
		if err := e.Repair(Object, ref); err != nil {
			return err
		}
		d.Repaired++
	}
	return nil
}

func (d *State) onBroken(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	if data.Data.C[0] != Object {
		return false
	}
	d.Broken++
	d.broken = append(d.broken, wood.SegmentRef{
		Group:   int(data.Data.I32[0]),
		Board:   int(data.Data.I32[1]),
		Segment: int(data.Data.I32[2]),
	})
	return false
}

func (d *State) shutdown() error {
	core.EventUnregister(core.EVENT_CODE_SEGMENT_BROKEN, d)
	core.LogInfo("demo: %d segments broken, %d repaired", d.Broken, d.Repaired)
	return nil
}
