/*
timber loads a quad mesh (or builds the demo hull), discovers its boards and
lets you break, repair and preview them from the command line.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spaghettifunk/timber/engine"
	"github.com/spaghettifunk/timber/engine/assets/loaders"
	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/renderer/raster"
	"github.com/spaghettifunk/timber/testbed"
	"github.com/spaghettifunk/timber/testbed/demo"
)

func main() {
	configFile := flag.String("config", "", "Path to a timber.toml file")
	meshFile := flag.String("mesh", "", "Comma separated OBJ meshes to load (default: the procedural demo hull)")
	demoTicks := flag.Uint64("demo", 0, "Run the random damage demo for N ticks")
	reset := flag.Bool("reset", false, "Reset every object after breaking")
	preview := flag.String("preview", "", "Write a preview image (.png or .webp)")
	export := flag.String("export", "", "Write the live faces as an OBJ file")
	group := flag.String("group", "", "Only list the boards of this group")
	watch := flag.Bool("watch", false, "Reload -mesh when it changes on disk until interrupted")
	logLevel := flag.String("log", "", "Log level override (debug, info, warn, error)")
	var breaks breakList
	flag.Var(&breaks, "break", "Break a segment, as group:board:segment[:fwd]. Repeatable")
	flag.Parse()

	cfg := engine.DefaultApplicationConfig()
	if *configFile != "" {
		var err error
		if cfg, err = engine.LoadApplicationConfig(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *watch {
		if *meshFile == "" {
			fmt.Fprintln(os.Stderr, "Error: -watch needs -mesh")
			os.Exit(1)
		}
		cfg.Assets.Watch = true
		first, _, _ := strings.Cut(*meshFile, ",")
		cfg.Assets.Dir = filepath.Dir(first)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var g *engine.Game
	if *demoTicks > 0 {
		g = demo.NewGame(cfg)
	} else {
		g = &engine.Game{
			ApplicationConfig: cfg,
			FnInitialize: func(e *engine.Engine) error {
				if *meshFile == "" {
					_, err := e.AddObject(demo.Object, testbed.NewHullMesh(testbed.DefaultHull()))
					return err
				}
				_, err := e.LoadObjects(strings.Split(*meshFile, ","))
				return err
			},
		}
	}

	e, err := engine.New(g)
	if err != nil {
		core.LogFatal(err.Error())
	}
	if err := e.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}
	registerEventLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, e, options{
		breaks:    breaks,
		demoTicks: *demoTicks,
		watch:     *watch,
		reset:     *reset,
		group:     *group,
		preview:   *preview,
		export:    *export,
	}); err != nil {
		_ = e.Shutdown()
		core.LogFatal(err.Error())
	}
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
}

type options struct {
	breaks    breakList
	demoTicks uint64
	watch     bool
	reset     bool
	group     string
	preview   string
	export    string
}

func run(ctx context.Context, e *engine.Engine, opts options) error {
	for _, b := range opts.breaks {
		if err := b.apply(e); err != nil {
			return err
		}
	}

	switch {
	case opts.demoTicks > 0:
		if err := e.Run(ctx, opts.demoTicks); err != nil {
			return err
		}
	case opts.watch:
		core.LogInfo("watching %s, interrupt to stop", e.Config().Assets.Dir)
		if err := e.Run(ctx, 0); err != nil {
			return err
		}
	}
	if _, err := e.Tick(); err != nil {
		return err
	}

	if opts.reset {
		e.Reset()
		if _, err := e.Tick(); err != nil {
			return err
		}
	}

	for _, obj := range e.Objects() {
		if err := inspect(os.Stdout, obj, opts.group); err != nil {
			return err
		}
	}
	if tps, avg := e.Metrics().Tick(); tps > 0 {
		fmt.Printf("\n%d ticks, %.0f ticks/s, %.3f ms/tick\n", e.Ticks(), tps, avg)
	}

	objects := e.Objects()
	if len(objects) == 0 {
		return nil
	}
	mesh := objects[0].Mesh()
	if opts.preview != "" {
		img, stats := raster.Render(mesh, e.Config().PreviewOptions())
		if err := raster.WriteFile(opts.preview, img); err != nil {
			return err
		}
		core.LogInfo("preview %s: %d quads, %d triangles, %d pixels", opts.preview, stats.Quads, stats.Triangles, stats.Pixels)
	}
	if opts.export != "" {
		f, err := os.Create(opts.export)
		if err != nil {
			return err
		}
		if err := loaders.WriteObj(f, mesh); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		core.LogInfo("exported %s", opts.export)
	}
	return nil
}

func registerEventLogging() {
	core.EventRegister(core.EVENT_CODE_SEGMENT_BROKEN, nil, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		d := data.Data
		core.LogDebug("'%s' segment %d/%d/%d broken, splinter slot %d", d.C[0], d.I32[0], d.I32[1], d.I32[2], d.I32[3])
		return false
	})
	core.EventRegister(core.EVENT_CODE_SEGMENT_REPAIRED, nil, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		d := data.Data
		core.LogDebug("'%s' segment %d/%d/%d repaired", d.C[0], d.I32[0], d.I32[1], d.I32[2])
		return false
	})
	core.EventRegister(core.EVENT_CODE_WOOD_RESET, nil, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		core.LogInfo("reset %d wood objects", data.Data.U32[0])
		return false
	})
	core.EventRegister(core.EVENT_CODE_MESH_RELOADED, nil, func(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
		core.LogInfo("'%s' reloaded from %s", data.Data.C[0], data.Data.C[1])
		return false
	})
}
