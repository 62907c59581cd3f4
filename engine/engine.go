package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spaghettifunk/timber/engine/assets"
	"github.com/spaghettifunk/timber/engine/containers"
	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/jobs"
	"github.com/spaghettifunk/timber/engine/renderer"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
	"github.com/spaghettifunk/timber/engine/wood"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// WoodObject is one destructible mesh with its structure and gameplay state.
type WoodObject struct {
	Name   string
	State  *wood.WoodState
	Health *wood.WoodHealth
	// Source is the file the mesh was loaded from, empty for generated meshes.
	Source string
}

func (o *WoodObject) Mesh() *metadata.Mesh {
	return o.State.Mesh
}

// DamageEvent is a queued hit against one segment.
type DamageEvent struct {
	Object  string
	Ref     wood.SegmentRef
	Amount  float32
	Aftward bool
}

type firedEvent struct {
	code core.SystemEventCode
	ctx  core.EventContext
}

// TickReport summarises the work of one tick.
type TickReport struct {
	Damaged  int
	Breaks   int
	Repairs  int
	Uploaded int
}

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *ApplicationConfig
	isRunning    bool

	assetManager *assets.AssetManager
	uploader     renderer.Uploader

	mu      sync.Mutex
	objects []*WoodObject
	damage  *containers.RingQueue[DamageEvent]
	repairs int
	// events fired once the lock is released, so listeners may call back in
	pending []firedEvent

	clock    *core.Clock
	metrics  *core.Metrics
	lastTime float64
	ticks    uint64
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	cfg := g.ApplicationConfig
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt, _ := renderer.ParseRendererType(cfg.Renderer)
	u, err := renderer.New(rt)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	queue := cfg.Wood.DamageQueue
	if queue <= 0 {
		queue = DefaultApplicationConfig().Wood.DamageQueue
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       cfg,
		uploader:     u,
		damage:       containers.NewRingQueue[DamageEvent](queue),
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	level, _ := e.config.LogLevel()
	core.SetLogLevel(level)

	if !core.EventInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)

	if e.config.Assets.Watch {
		am, err := assets.NewAssetManager()
		if err != nil {
			return err
		}
		if err := am.Initialize(e.config.Assets.Dir, true); err != nil {
			_ = am.Shutdown()
			return err
		}
		e.assetManager = am
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Config() *ApplicationConfig {
	return e.config
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

// Uploader is the backend dirty ranges are flushed to.
func (e *Engine) Uploader() renderer.Uploader {
	return e.uploader
}

// Assets is the hot reload manager, nil unless [assets] watch is set.
func (e *Engine) Assets() *assets.AssetManager {
	return e.assetManager
}

func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

/**
 * @brief Builds the wood state and health of mesh and registers them under
 * name. The engine owns the mesh from now on.
 *
 * @param name Unique object name.
 * @param mesh The mesh to wrap.
 * @return The new object or an error when the name is taken.
 */
func (e *Engine) AddObject(name string, mesh *metadata.Mesh) (*WoodObject, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.findObject(name) != nil {
		return nil, fmt.Errorf("wood object '%s' already exists", name)
	}
	obj := e.buildObject(name, mesh)
	e.objects = append(e.objects, obj)
	return obj, nil
}

// LoadObject reads an OBJ file and registers it under name.
func (e *Engine) LoadObject(name, path string) (*WoodObject, error) {
	mesh, err := e.loadMesh(path)
	if err != nil {
		return nil, err
	}
	obj, err := e.AddObject(name, mesh)
	if err != nil {
		return nil, err
	}
	obj.Source = path
	return obj, nil
}

// ObjectName is the object name LoadObjects gives the mesh at path.
func ObjectName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

/**
 * @brief Loads several OBJ files in parallel, one object per file, named by
 * ObjectName. Every file that loads is added; the failures are returned
 * together.
 */
func (e *Engine) LoadObjects(paths []string) ([]*WoodObject, error) {
	am := e.assetManager
	if am == nil {
		var err error
		if am, err = assets.NewAssetManager(); err != nil {
			return nil, err
		}
		defer am.Shutdown()
	}

	built := make([]*WoodObject, len(paths))
	work := make([]jobs.Job, 0, len(paths))
	for i, path := range paths {
		i, path := i, path
		work = append(work, jobs.Job{
			Name: path,
			Run: func() error {
				mesh, err := am.LoadMesh(path)
				if err != nil {
					return err
				}
				obj := e.buildObject(ObjectName(path), mesh)
				obj.Source = path
				built[i] = obj
				return nil
			},
		})
	}
	errs := []error{jobs.RunAll(runtime.NumCPU(), work)}

	e.mu.Lock()
	defer e.mu.Unlock()
	var out []*WoodObject
	for _, obj := range built {
		if obj == nil {
			continue
		}
		if e.findObject(obj.Name) != nil {
			errs = append(errs, fmt.Errorf("wood object '%s' already exists", obj.Name))
			continue
		}
		e.objects = append(e.objects, obj)
		out = append(out, obj)
	}
	return out, errors.Join(errs...)
}

// ReplaceObject rebuilds the named object around a new mesh. Queued damage
// aimed at it is dropped since its segment references no longer hold.
func (e *Engine) ReplaceObject(name string, mesh *metadata.Mesh) (*WoodObject, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, o := range e.objects {
		if o.Name != name {
			continue
		}
		obj := e.buildObject(name, mesh)
		obj.Source = o.Source
		e.objects[i] = obj
		e.dropDamage(name)
		return obj, nil
	}
	return nil, fmt.Errorf("%w '%s'", core.ErrUnknownObject, name)
}

func (e *Engine) buildObject(name string, mesh *metadata.Mesh) *WoodObject {
	state := wood.BuildWoodState(mesh, e.config.WoodConfig())
	return &WoodObject{
		Name:   name,
		State:  state,
		Health: wood.NewWoodHealth(state, e.config.Wood.MaxHealth),
	}
}

func (e *Engine) loadMesh(path string) (*metadata.Mesh, error) {
	am := e.assetManager
	if am == nil {
		var err error
		if am, err = assets.NewAssetManager(); err != nil {
			return nil, err
		}
		defer am.Shutdown()
	}
	return am.LoadMesh(path)
}

// Object returns the named object or nil.
func (e *Engine) Object(name string) *WoodObject {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findObject(name)
}

// Objects returns the registered objects in insertion order.
func (e *Engine) Objects() []*WoodObject {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*WoodObject(nil), e.objects...)
}

func (e *Engine) findObject(name string) *WoodObject {
	for _, o := range e.objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// QueueDamage buffers a hit until the next Tick. It is safe to call from any
// goroutine.
func (e *Engine) QueueDamage(ev DamageEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.damage.Enqueue(ev); err != nil {
		return core.ErrDamageQueueFull
	}
	return nil
}

func (e *Engine) dropDamage(name string) {
	n := e.damage.Len()
	for i := 0; i < n; i++ {
		ev, _ := e.damage.Dequeue()
		if ev.Object != name {
			_ = e.damage.Enqueue(ev)
		}
	}
}

// Break breaks a segment immediately, whatever its health.
func (e *Engine) Break(name string, ref wood.SegmentRef, aftward bool) (wood.SlotID, bool, error) {
	defer e.fireEvents()
	e.mu.Lock()
	defer e.mu.Unlock()
	obj, err := e.resolve(name, ref)
	if err != nil {
		return wood.NoSlot, false, err
	}
	slot, ok := e.breakSegment(obj, ref, aftward)
	return slot, ok, nil
}

// Repair restores a segment immediately.
func (e *Engine) Repair(name string, ref wood.SegmentRef) error {
	defer e.fireEvents()
	e.mu.Lock()
	defer e.mu.Unlock()
	obj, err := e.resolve(name, ref)
	if err != nil {
		return err
	}
	obj.State.RepairSegment(obj.Health, ref)
	e.repairs++

	ctx := core.EventContext{}
	ctx.Data.C[0] = obj.Name
	ctx.Data.I32 = refData(ref)
	e.queueEvent(core.EVENT_CODE_SEGMENT_REPAIRED, ctx)
	return nil
}

func (e *Engine) resolve(name string, ref wood.SegmentRef) (*WoodObject, error) {
	obj := e.findObject(name)
	if obj == nil {
		return nil, fmt.Errorf("%w '%s'", core.ErrUnknownObject, name)
	}
	if _, ok := obj.State.Segment(ref); !ok {
		return nil, fmt.Errorf("object '%s' has no segment %+v", name, ref)
	}
	return obj, nil
}

func (e *Engine) breakSegment(obj *WoodObject, ref wood.SegmentRef, aftward bool) (wood.SlotID, bool) {
	slot, ok := obj.State.BreakSegment(obj.Health, ref, aftward)
	ctx := core.EventContext{}
	ctx.Data.C[0] = obj.Name
	ctx.Data.I32 = refData(ref)
	ctx.Data.I32[3] = int32(slot)
	e.queueEvent(core.EVENT_CODE_SEGMENT_BROKEN, ctx)
	return slot, ok
}

func (e *Engine) queueEvent(code core.SystemEventCode, ctx core.EventContext) {
	e.pending = append(e.pending, firedEvent{code: code, ctx: ctx})
}

func (e *Engine) fireEvents() {
	e.mu.Lock()
	events := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, ev := range events {
		core.EventFire(ev.code, e, ev.ctx)
	}
}

func refData(ref wood.SegmentRef) [4]int32 {
	return [4]int32{int32(ref.Group), int32(ref.Board), int32(ref.Segment), -1}
}

/**
 * @brief Runs one simulation step: applies the queued damage, breaks the
 * segments whose health reached zero and flushes every dirty mesh range to
 * the uploader.
 *
 * @return What the tick did. An upload error stops the flush; the ranges
 * left over are retried on the next tick.
 */
func (e *Engine) Tick() (TickReport, error) {
	start := time.Now()
	defer e.fireEvents()
	e.mu.Lock()
	defer e.mu.Unlock()

	var report TickReport
	for !e.damage.IsEmpty() {
		ev, _ := e.damage.Dequeue()
		obj := e.findObject(ev.Object)
		if obj == nil {
			core.LogWarn("damage for unknown wood object '%s' dropped", ev.Object)
			continue
		}
		report.Damaged++
		if obj.Health.Damage(ev.Ref, ev.Amount) {
			e.breakSegment(obj, ev.Ref, ev.Aftward)
			report.Breaks++
		}
	}
	report.Repairs, e.repairs = e.repairs, 0

	var errs []error
	for _, obj := range e.objects {
		n, err := renderer.Flush(e.uploader, obj.Mesh())
		report.Uploaded += n
		if err != nil {
			errs = append(errs, err)
		}
	}

	e.ticks++
	e.metrics.AddWork(report.Breaks, report.Repairs, report.Uploaded)
	e.metrics.Update(time.Since(start).Seconds())
	return report, errors.Join(errs...)
}

// Reset restores every object to its freshly built state and drops the
// pending damage.
func (e *Engine) Reset() {
	defer e.fireEvents()
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.damage.Len() > 0 {
		_, _ = e.damage.Dequeue()
	}
	for _, obj := range e.objects {
		obj.State.Reset()
		obj.Health.Reset()
	}
	ctx := core.EventContext{}
	ctx.Data.U32[0] = uint32(len(e.objects))
	e.queueEvent(core.EVENT_CODE_WOOD_RESET, ctx)
}

/**
 * @brief Ticks until ctx is cancelled, the quit event fires, or maxTicks ticks
 * have run (0 means no limit). Ticks are paced at the configured tick rate.
 */
func (e *Engine) Run(ctx context.Context, maxTicks uint64) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine not initialized")
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var pace <-chan time.Time
	if e.config.TickRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(e.config.TickRate))
		defer ticker.Stop()
		pace = ticker.C
	}

	var assetEvents <-chan assets.AssetEvent
	if e.assetManager != nil {
		assetEvents = e.assetManager.Events()
	}

	for run := uint64(0); e.running() && (maxTicks == 0 || run < maxTicks); run++ {
		if pace != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-pace:
			}
		} else if ctx.Err() != nil {
			return nil
		}

	drain:
		for {
			select {
			case ev, ok := <-assetEvents:
				if !ok {
					assetEvents = nil
					break drain
				}
				e.onAssetEvent(ev)
			default:
				break drain
			}
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(e, delta); err != nil {
				core.LogError("Game update failed, shutting down: %s", err.Error())
				return err
			}
		}

		report, err := e.Tick()
		if err != nil {
			core.LogWarn("tick %d: %s", e.Ticks(), err.Error())
		}
		if report.Breaks > 0 {
			core.LogDebug("tick %d: %d hits, %d breaks, %d ranges uploaded", e.Ticks(), report.Damaged, report.Breaks, report.Uploaded)
		}
		e.lastTime = currentTime
	}
	return nil
}

func (e *Engine) running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isRunning
}

// onAssetEvent rebuilds the objects loaded from a file that changed on disk.
func (e *Engine) onAssetEvent(ev assets.AssetEvent) {
	if ev.Op != assets.AssetChanged {
		return
	}
	for _, obj := range e.Objects() {
		if obj.Source != ev.Path {
			continue
		}
		mesh, err := e.loadMesh(ev.Path)
		if err != nil {
			core.LogWarn("reload of '%s' from %s failed: %s", obj.Name, ev.Path, err.Error())
			continue
		}
		if _, err := e.ReplaceObject(obj.Name, mesh); err != nil {
			core.LogWarn(err.Error())
			continue
		}
		ctx := core.EventContext{}
		ctx.Data.C[0] = obj.Name
		ctx.Data.C[1] = ev.Path
		core.EventFire(core.EVENT_CODE_MESH_RELOADED, e, ctx)
	}
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.mu.Lock()
	e.isRunning = false
	e.mu.Unlock()

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, e)
	if e.assetManager != nil {
		errs = append(errs, e.assetManager.Shutdown())
	}
	if tps, avg := e.metrics.Tick(); tps > 0 {
		core.LogDebug("engine stopped at %.0f ticks/s, %.3f ms/tick", tps, avg)
	}
	return errors.Join(errs...)
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listener interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.mu.Lock()
		e.isRunning = false
		e.mu.Unlock()
		return true
	}
	return false
}
