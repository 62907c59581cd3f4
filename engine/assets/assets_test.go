package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

const quadObj = "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInitializeIndexesAssets(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "ships"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "ships", "raft.obj"), quadObj)
	writeFile(t, filepath.Join(dir, "timber.toml"), "[log]\nlevel = \"debug\"\n")
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored")

	am, err := NewAssetManager()
	if err != nil {
		t.Fatal(err)
	}
	defer am.Shutdown()
	if err := am.Initialize(dir, false); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	meshes := am.Assets(metadata.ResourceTypeMesh)
	if len(meshes) != 1 || filepath.Base(meshes[0].Path) != "raft.obj" {
		t.Fatalf("mesh assets = %+v", meshes)
	}
	if got := am.Assets(metadata.ResourceTypeConfig); len(got) != 1 {
		t.Errorf("config assets = %+v", got)
	}

	mesh, err := am.LoadMesh(meshes[0].Path)
	if err != nil {
		t.Fatalf("LoadMesh: %v", err)
	}
	if mesh.Name != "raft" || mesh.QuadCount() != 1 {
		t.Errorf("mesh %q has %d quads", mesh.Name, mesh.QuadCount())
	}

	res, err := am.LoadAsset(filepath.Join(dir, "timber.toml"), nil)
	if err != nil || res.Type != metadata.ResourceTypeConfig || res.DataSize == 0 {
		t.Fatalf("LoadAsset(toml) = %+v, %v", res, err)
	}
	if err := am.Unload(res); err != nil || res.Data != nil || res.DataSize != 0 {
		t.Errorf("Unload left %+v, %v", res, err)
	}
	if _, err := am.LoadMesh(filepath.Join(dir, "timber.toml")); err == nil {
		t.Error("LoadMesh accepted a config file")
	}
	if _, err := am.LoadAsset(filepath.Join(dir, "notes.md"), nil); err == nil {
		t.Error("LoadAsset accepted an unknown type")
	}
}

func TestWatchReportsChanges(t *testing.T) {
	dir := t.TempDir()
	am, err := NewAssetManager()
	if err != nil {
		t.Fatal(err)
	}
	defer am.Shutdown()
	if err := am.Initialize(dir, true); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	path := filepath.Join(dir, "deck.obj")
	writeFile(t, path, quadObj)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-am.Events():
			if e.Path == path && e.Op == AssetChanged && e.Type == metadata.ResourceTypeMesh {
				return
			}
		case err := <-am.Errors():
			t.Fatalf("watcher error: %v", err)
		case <-timeout:
			t.Fatal("no change event for deck.obj")
		}
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	tests := []struct {
		name  string
		watch bool
	}{
		{name: "indexing only", watch: false},
		{name: "watching", watch: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			am, err := NewAssetManager()
			if err != nil {
				t.Fatal(err)
			}
			if err := am.Initialize(t.TempDir(), tt.watch); err != nil {
				t.Fatalf("Initialize: %v", err)
			}

			var wg sync.WaitGroup
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := am.Shutdown(); err != nil {
						t.Errorf("Shutdown: %v", err)
					}
				}()
			}
			wg.Wait()

			if err := am.Initialize(t.TempDir(), tt.watch); !errors.Is(err, ErrManagerClosed) {
				t.Errorf("Initialize after Shutdown = %v, want %v", err, ErrManagerClosed)
			}
			select {
			case _, ok := <-am.Events():
				if ok {
					t.Error("event delivered after Shutdown")
				}
			case <-time.After(5 * time.Second):
				t.Error("events channel not closed after Shutdown")
			}
		})
	}
}
