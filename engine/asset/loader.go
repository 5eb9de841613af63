// package asset implements the glTF 2.0 decoding and import pipeline: GLB
// container framing, document parsing, accessor decoding, mesh and material
// extraction, scene instantiation, and skeleton/animation import.
package asset

import (
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// loaderImpl is the implementation of the Loader interface.
type loaderImpl struct {
	mu sync.RWMutex

	fs         FileSource
	assetCache map[string]*Asset
}

// Loader defines the public-facing interface for loading and caching
// decoded assets. It manages a cache keyed by path (or caller-chosen name
// for streams) so repeated loads of the same file decode once.
type Loader interface {
	// Load decodes a glTF/GLB file and caches the result by path.
	// If the asset is already cached, the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the .gltf or .glb file
	//
	// Returns:
	//   - *Asset: the decoded asset
	//   - error: error if loading fails
	Load(path string) (*Asset, error)

	// LoadReader decodes an asset from a reader stream and caches it by
	// the given name. GLB containers are detected by magic number.
	//
	// Parameters:
	//   - name: the cache key for the loaded asset
	//   - r: the reader providing glTF JSON or GLB data
	//
	// Returns:
	//   - *Asset: the decoded asset
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (*Asset, error)

	// Get retrieves a cached asset by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *Asset: the cached asset or nil
	Get(name string) *Asset

	// Assets returns a copy of the full asset cache.
	//
	// Returns:
	//   - map[string]*Asset: all cached assets keyed by name
	Assets() map[string]*Asset
}

var _ Loader = &loaderImpl{}

// NewLoader creates a new Loader configured with the given options.
//
// Parameters:
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the newly created loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loaderImpl{
		fs:         NewOSFileSource(),
		assetCache: make(map[string]*Asset),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Load decodes a glTF/GLB file without caching. Convenience wrapper for
// one-off loads; callers loading repeatedly should hold a Loader.
//
// Parameters:
//   - path: the file path to the .gltf or .glb file
//
// Returns:
//   - *Asset: the decoded asset
//   - error: error if loading fails
func Load(path string) (*Asset, error) {
	return NewLoader().Load(path)
}

func (l *loaderImpl) Load(path string) (*Asset, error) {
	l.mu.RLock()
	if cached, ok := l.assetCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".gltf" && ext != ".glb" {
		return nil, formatErrf("unsupported model format: %s", ext)
	}

	data, err := l.fs.ReadAll(path)
	if err != nil {
		return nil, ioErr("failed to read file", err)
	}

	a, err := loadAssetBytes(extractModelName(path), data, filepath.Dir(path), l.fs, ext == ".glb")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", path)
	}

	l.mu.Lock()
	l.assetCache[path] = a
	l.mu.Unlock()

	return a, nil
}

func (l *loaderImpl) LoadReader(name string, r io.Reader) (*Asset, error) {
	l.mu.RLock()
	if cached, ok := l.assetCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ioErr("failed to read data", err)
	}

	a, err := loadAssetBytes(name, data, ".", l.fs, isGLB(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load from reader %q", name)
	}

	l.mu.Lock()
	l.assetCache[name] = a
	l.mu.Unlock()

	return a, nil
}

func (l *loaderImpl) Get(name string) *Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.assetCache[name]
}

func (l *loaderImpl) Assets() map[string]*Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*Asset, len(l.assetCache))
	for k, v := range l.assetCache {
		result[k] = v
	}
	return result
}
