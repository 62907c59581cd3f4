package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/timber/engine/assets/loaders"
	"github.com/spaghettifunk/timber/engine/core"
	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

var ErrManagerClosed = errors.New("asset manager already closed")

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

type AssetOp uint8

const (
	AssetChanged AssetOp = iota
	AssetRemoved
)

// AssetEvent reports a watched asset that changed on disk.
type AssetEvent struct {
	Path string
	Type metadata.ResourceType
	Op   AssetOp
}

type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	watching bool
	events   chan AssetEvent
	errors   chan error
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		events:   make(chan AssetEvent, 16),
		errors:   make(chan error, 4),
		done:     make(chan struct{}),
	}
	am.registerLoader(metadata.ResourceTypeMesh, &loaders.ModelLoader{})
	am.registerLoader(metadata.ResourceTypeConfig, &loaders.TextLoader{Type: metadata.ResourceTypeConfig})
	am.registerLoader(metadata.ResourceTypeText, &loaders.TextLoader{})
	return am, nil
}

/**
 * @brief Indexes every known asset below assetsDir and, when watch is set,
 * starts forwarding file changes on Events.
 */
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	am.mutex.RLock()
	closed := am.isClosed
	am.mutex.RUnlock()
	if closed {
		return ErrManagerClosed
	}
	if err := am.watchRecursive(assetsDir, watch); err != nil {
		return err
	}
	if watch {
		am.mutex.Lock()
		if am.isClosed {
			am.mutex.Unlock()
			return ErrManagerClosed
		}
		start := !am.watching
		am.watching = true
		am.mutex.Unlock()
		if start {
			go am.start()
		}
	}
	am.mutex.RLock()
	indexed := len(am.assets)
	am.mutex.RUnlock()
	core.LogDebug("asset manager indexed %d assets under %s", indexed, assetsDir)
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Assets lists the indexed assets of the given type, sorted by path.
func (am *AssetManager) Assets(t metadata.ResourceType) []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	var out []AssetInfo
	for _, a := range am.assets {
		if a.Type == t {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// LoadAsset loads a file with the loader registered for its type. Paths that
// were never indexed are loaded too, as long as their type is known.
func (am *AssetManager) LoadAsset(path string, params interface{}) (*metadata.Resource, error) {
	assetType := determineAssetType(path)
	loader, ok := am.loaders[assetType]
	if !ok {
		return nil, fmt.Errorf("no loader registered for %s (type %s)", path, assetType)
	}
	res, err := loader.Load(path, params)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{Path: path, Type: assetType, LastLoaded: time.Now()}
	am.mutex.Unlock()
	return res, nil
}

// LoadMesh loads an OBJ file into a mesh.
func (am *AssetManager) LoadMesh(path string) (*metadata.Mesh, error) {
	res, err := am.LoadAsset(path, nil)
	if err != nil {
		return nil, err
	}
	mesh, ok := res.Data.(*metadata.Mesh)
	if !ok {
		return nil, fmt.Errorf("%s is a %s asset, not a mesh", path, res.Type)
	}
	// the caller owns the mesh from here on
	if err := am.Unload(res); err != nil {
		return nil, err
	}
	return mesh, nil
}

// Unload releases the data held by a loaded resource.
func (am *AssetManager) Unload(res *metadata.Resource) error {
	loader, ok := am.loaders[res.Type]
	if !ok {
		return fmt.Errorf("no loader registered for type %s", res.Type)
	}
	return loader.Unload(res)
}

// Events delivers asset changes while watching.
func (am *AssetManager) Events() <-chan AssetEvent {
	return am.events
}

// Errors delivers watcher failures while watching.
func (am *AssetManager) Errors() <-chan error {
	return am.errors
}

// Shutdown stops the watcher. The event channels are closed once it exits.
func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	watching := am.watching
	am.mutex.Unlock()

	if watching {
		close(am.done)
		return nil
	}
	close(am.events)
	close(am.errors)
	return am.fsnotify.Close()
}

func (am *AssetManager) start() {
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, true); err != nil {
						core.LogWarn("cannot watch %s: %s", e.Name, err.Error())
					}
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if t, ok := am.handleFileEvent(e.Name); ok {
					am.emit(AssetEvent{Path: e.Name, Type: t, Op: AssetChanged})
				}
			}
			// Can't stat a deleted path, so drop it from the index and the
			// watch list whatever it was.
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if t, ok := am.removeAsset(e.Name); ok {
					am.emit(AssetEvent{Path: e.Name, Type: t, Op: AssetRemoved})
				}
				_ = am.fsnotify.Remove(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())
			select {
			case am.errors <- err:
			default:
			}

		case <-am.done:
			if err := am.fsnotify.Close(); err != nil {
				core.LogWarn("closing asset watcher: %s", err.Error())
			}
			close(am.events)
			close(am.errors)
			return
		}
	}
}

func (am *AssetManager) emit(e AssetEvent) {
	select {
	case am.events <- e:
	case <-am.done:
	}
}

// watchRecursive indexes every asset under path and, when watch is set, adds
// each directory to the watch list.
func (am *AssetManager) watchRecursive(path string, watch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if watch {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) (metadata.ResourceType, bool) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return assetType, false
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[path] = AssetInfo{
		Path: path,
		Type: assetType,
	}
	return assetType, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) (metadata.ResourceType, bool) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	info, ok := am.assets[path]
	delete(am.assets, path)
	return info.Type, ok
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".obj":
		return metadata.ResourceTypeMesh
	case ".toml":
		return metadata.ResourceTypeConfig
	case ".txt":
		return metadata.ResourceTypeText
	default:
		return metadata.ResourceTypeNone
	}
}
