package textures_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jelly/gpu"
	"jelly/gpu/gputest"
	"jelly/math"
	"jelly/scene"
	"jelly/textures"
)

func newManager(t *testing.T) (*textures.Manager, *gputest.Recorder) {
	t.Helper()
	rec := gputest.NewRecorder()
	ctx := gpu.NewContext(rec, &gputest.Surface{Width: 64, Height: 64}, nil)
	return textures.NewManager(ctx), rec
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tex.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))))
	require.NoError(t, f.Close())
	return path
}

func TestLoadCaches(t *testing.T) {
	m, rec := newManager(t)
	path := writePNG(t, 4, 2)

	a, err := m.Load(path)
	require.NoError(t, err)
	b, err := m.Load(path)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, rec.Count("CreateTexture"))
	desc, ok := rec.TextureDesc(a.ID())
	require.True(t, ok)
	assert.Equal(t, gpu.TextureDesc{Width: 4, Height: 2, Format: gpu.FormatRGBA, Filter: gpu.FilterLinear}, desc)
}

func TestGetOrDefaultFallsBackToWhite(t *testing.T) {
	m, rec := newManager(t)

	tex := m.GetOrDefault(filepath.Join(t.TempDir(), "missing.png"))
	require.NotNil(t, tex)
	white, err := m.Solid(math.Vec3One)
	require.NoError(t, err)
	assert.Same(t, white, tex)
	assert.Same(t, white, m.GetOrDefault(""))
	assert.Equal(t, 1, rec.Count("CreateTexture"))
}

func TestLoadFailureLogsErrKey(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := gpu.NewContext(gputest.NewRecorder(), &gputest.Surface{Width: 64, Height: 64}, logger)
	m := textures.NewManager(ctx)

	m.GetOrDefault(filepath.Join(t.TempDir(), "missing.png"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "texture load failed", entry["msg"])
	assert.Equal(t, "textures", entry["component"])
	assert.Contains(t, entry, "err")
	assert.NotContains(t, entry, "error")
}

func TestSolidIsCachedPerColor(t *testing.T) {
	m, _ := newManager(t)

	empty, err := m.Solid(math.Vec3Zero)
	require.NoError(t, err)
	again, err := m.Solid(math.Vec3Zero)
	require.NoError(t, err)
	hot, err := m.Solid(math.NewVec3(10, 0, 0))
	require.NoError(t, err)

	assert.Same(t, empty, again)
	assert.NotEqual(t, empty.ID(), hot.ID())
	assert.Equal(t, gpu.FormatRGB32F, hot.Format())
	assert.Equal(t, 2, m.Len())
}

func TestUpload(t *testing.T) {
	m, rec := newManager(t)
	src := scene.NewSolidTexture("px", 1, 2, 3, 4)

	a, err := m.Upload(src)
	require.NoError(t, err)
	b, err := m.Upload(src)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, rec.Count("CreateTexture"))

	none, err := m.Upload(nil)
	assert.NoError(t, err)
	assert.Nil(t, none)
}

func TestChecker(t *testing.T) {
	m, rec := newManager(t)
	tex, err := m.Checker(16, color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 255})
	require.NoError(t, err)

	desc, _ := rec.TextureDesc(tex.ID())
	assert.Equal(t, 16, desc.Width)
	assert.Equal(t, gpu.FilterNearest, desc.Filter)
}

func TestDestroyAll(t *testing.T) {
	m, rec := newManager(t)
	_, err := m.Solid(math.Vec3Zero)
	require.NoError(t, err)
	_, err = m.Upload(scene.NewSolidTexture("px", 0, 0, 0, 0))
	require.NoError(t, err)
	require.Equal(t, 2, rec.Live())

	m.DestroyAll()
	assert.Zero(t, rec.Live())
	assert.Zero(t, m.Len())
}
