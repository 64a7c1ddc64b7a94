// Package textures caches GPU textures by source so each image is
// uploaded once.
package textures

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"jelly/gpu"
	"jelly/math"
	"jelly/scene"
)

// Manager manages uploaded textures with caching
type Manager struct {
	ctx    *gpu.Context
	logger *slog.Logger

	mu       sync.RWMutex
	textures map[string]*gpu.Texture
	uploads  map[*scene.Texture]*gpu.Texture
}

func NewManager(ctx *gpu.Context) *Manager {
	return &Manager{
		ctx:      ctx,
		logger:   ctx.Logger().With("component", "textures"),
		textures: make(map[string]*gpu.Texture),
		uploads:  make(map[*scene.Texture]*gpu.Texture),
	}
}

func (m *Manager) lookup(key string) (*gpu.Texture, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tex, ok := m.textures[key]
	return tex, ok
}

// cached returns the texture stored under key, creating it with create on
// a miss.
func (m *Manager) cached(key string, create func() (*gpu.Texture, error)) (*gpu.Texture, error) {
	if tex, ok := m.lookup(key); ok {
		return tex, nil
	}
	tex, err := create()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.textures[key]; ok {
		tex.Delete()
		return prev, nil
	}
	m.textures[key] = tex
	m.logger.Debug("texture created", "key", key, "id", tex.ID())
	return tex, nil
}

// Load loads a texture from file, returning the cached version if
// available.
func (m *Manager) Load(path string) (*gpu.Texture, error) {
	return m.cached(path, func() (*gpu.Texture, error) {
		src, err := scene.LoadTexture(path)
		if err != nil {
			return nil, err
		}
		return gpu.NewTextureFromImage(m.ctx, src.Image(), gpu.FilterLinear)
	})
}

// GetOrDefault returns the texture at path, or the white texture when it
// cannot be loaded.
func (m *Manager) GetOrDefault(path string) *gpu.Texture {
	if path != "" {
		tex, err := m.Load(path)
		if err == nil {
			return tex
		}
		m.logger.Warn("texture load failed", "path", path, "err", err)
	}
	tex, err := m.Solid(math.Vec3One)
	if err != nil {
		m.logger.Error("default texture", "err", err)
		return nil
	}
	return tex
}

// Upload returns the GPU copy of a decoded texture, uploading it on first
// use. A nil source yields nil.
func (m *Manager) Upload(src *scene.Texture) (*gpu.Texture, error) {
	if src == nil {
		return nil, nil
	}
	m.mu.RLock()
	tex, ok := m.uploads[src]
	m.mu.RUnlock()
	if ok {
		return tex, nil
	}

	tex, err := gpu.NewTextureFromImage(m.ctx, src.Image(), gpu.FilterLinear)
	if err != nil {
		return nil, fmt.Errorf("upload texture %q: %w", src.Name, err)
	}
	m.mu.Lock()
	m.uploads[src] = tex
	m.mu.Unlock()
	return tex, nil
}

// Solid returns a 1×1 float texture holding c. Solid(math.Vec3Zero) is the
// empty texture bound in place of missing material maps.
func (m *Manager) Solid(c math.Vec3) (*gpu.Texture, error) {
	key := fmt.Sprintf("__solid_%g_%g_%g__", c.X, c.Y, c.Z)
	return m.cached(key, func() (*gpu.Texture, error) {
		return gpu.NewSolidTexture(m.ctx, c)
	})
}

// Checker returns a size×size checkerboard of 8×8 blocks.
func (m *Manager) Checker(size int, c1, c2 color.RGBA) (*gpu.Texture, error) {
	key := fmt.Sprintf("__checker_%d_%v_%v__", size, c1, c2)
	return m.cached(key, func() (*gpu.Texture, error) {
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		block := max(size/8, 1)
		for y := range size {
			for x := range size {
				if (x/block+y/block)%2 == 0 {
					img.SetRGBA(x, y, c1)
				} else {
					img.SetRGBA(x, y, c2)
				}
			}
		}
		return gpu.NewTextureFromImage(m.ctx, img, gpu.FilterNearest)
	})
}

// Len reports how many textures are cached.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.textures) + len(m.uploads)
}

// DestroyAll releases every cached texture.
func (m *Manager) DestroyAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tex := range m.textures {
		tex.Delete()
	}
	for _, tex := range m.uploads {
		tex.Delete()
	}
	m.textures = make(map[string]*gpu.Texture)
	m.uploads = make(map[*scene.Texture]*gpu.Texture)
}
