// Command demo opens a window and renders either a glTF model or a small
// built-in scene through the bloom pipeline.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chewxy/math32"
	"github.com/fsnotify/fsnotify"

	"jelly/core"
	"jelly/gpu"
	"jelly/internal/opengl"
	"jelly/materials"
	"jelly/math"
	"jelly/renderer"
	"jelly/scene"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML renderer config; reloaded on change")
		modelPath  = flag.String("model", "", "glTF, GLB or OBJ file to display")
		width      = flag.Int("width", 1280, "window width")
		height     = flag.Int("height", 720, "window height")
		debug      = flag.Bool("debug", false, "verbose logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger, *configPath, *modelPath, *width, *height); err != nil {
		logger.Error("demo failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath, modelPath string, width, height int) error {
	cfg := renderer.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = renderer.LoadConfig(configPath); err != nil {
			return err
		}
	}
	cfg.Logger = logger

	wcfg := core.DefaultWindowConfig()
	wcfg.Title = "jelly"
	wcfg.Width = width
	wcfg.Height = height
	window, err := core.NewWindow(wcfg)
	if err != nil {
		return err
	}
	defer window.Destroy()

	backend, err := opengl.NewBackend(logger)
	if err != nil {
		return err
	}
	defer backend.Destroy()

	ctx := gpu.NewContext(backend, window, logger)
	r, err := renderer.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	w, h := window.Size()
	camera := scene.NewCamera(math32.Pi/3, float32(w)/float32(h), 0.1, 500)
	camera.SetPitch(-0.35)
	camera.SetZoom(12)

	var sun *scene.Light
	if modelPath != "" {
		if err := loadModel(r, camera, modelPath, logger); err != nil {
			return err
		}
		sun, _ = r.Root().AttachNewLight(scene.LightDirectional)
		sun.SetLocalDirection(math.NewVec3(-0.4, -1, -0.3).Normalize())
	} else {
		if sun, err = buildScene(r); err != nil {
			return err
		}
	}

	reloads := make(chan renderer.Config, 1)
	if configPath != "" {
		watcher, err := watchConfig(configPath, reloads, logger)
		if err != nil {
			logger.Warn("config watch disabled", "err", err)
		} else {
			defer watcher.Close()
		}
	}

	window.SetScrollCallback(func(_, yoff float64) {
		camera.Scroll(float32(yoff))
	})
	window.SetFramebufferSizeCallback(func(fw, fh int) {
		if err := r.Resize(fw, fh); err != nil {
			logger.Error("resize failed", "width", fw, "height", fh, "err", err)
			return
		}
		camera.UpdateAspectRatio(float32(fw), float32(fh))
	})

	dayNight := NewDayNight()
	spaceHeld := false
	lastX, lastY := window.GetCursorPos()
	last := time.Now()
	frames := 0
	fpsTimer := last

	for !window.ShouldClose() {
		window.PollEvents()
		if window.IsKeyPressed(core.KeyEscape) {
			break
		}
		space := window.IsKeyPressed(core.KeySpace)
		if space && !spaceHeld {
			dayNight.Active = !dayNight.Active
		}
		spaceHeld = space

		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		x, y := window.GetCursorPos()
		dx, dy := float32(x-lastX), float32(y-lastY)
		lastX, lastY = x, y
		switch {
		case window.IsMouseButtonPressed(core.MouseButtonLeft):
			camera.Drag(dx, -dy, scene.DragOrbit)
		case window.IsMouseButtonPressed(core.MouseButtonRight):
			camera.Drag(dx, dy, scene.DragZoom)
		}

		select {
		case c := <-reloads:
			c.Logger = logger
			if err := r.ApplyConfig(c); err != nil {
				logger.Error("config rejected", "err", err)
			} else {
				logger.Info("config reloaded", "path", configPath)
			}
		default:
		}

		dayNight.Update(dt)
		dayNight.Apply(r, sun)

		drawClock(r.Overlay(), dayNight)

		r.SetViewMatrix(camera.GetViewMatrix())
		r.SetProjectionMatrix(camera.GetProjectionMatrix())
		r.SetCameraPosition(camera.Position())
		if err := r.Render(); err != nil && !errors.Is(err, renderer.ErrTooManyLights) {
			return err
		}
		window.SwapBuffers()

		frames++
		if since := now.Sub(fpsTimer); since >= time.Second {
			st := r.Stats()
			window.SetTitle(fmt.Sprintf("jelly | %.0f fps | %d draws | %d tris | %s",
				float64(frames)/since.Seconds(), st.GeometryDraws, st.Triangles, dayNight.TimeOfDayStr()))
			frames = 0
			fpsTimer = now
		}
	}
	return nil
}

// drawClock puts a small day/night dial in the top-left corner: a panel,
// a ring and a dot for the sun that turns grey while the cycle is paused.
func drawClock(o *renderer.Overlay, dn *DayNight) {
	const (
		x, y   = 16, 16
		size   = 72
		radius = size/2 - 10
	)
	o.SetColor(0, 0, 0, 0.45)
	o.FillRectangle(x, y, x+size, y+size)
	o.SetColor(1, 1, 1, 0.6)
	o.SetStrokeSize(1)
	o.DrawRectangle(x, y, x+size, y+size)
	o.SetStrokeSize(2)
	o.DrawEllipse(x+size/2, y+size/2, 2*radius, 2*radius)

	// noon at the top, clockwise
	s, c := math32.Sincos(dn.Time * 2 * math32.Pi)
	if dn.Active {
		o.SetColor(1, 0.8, 0.3, 1)
	} else {
		o.SetGray(0.6)
	}
	o.FillEllipse(x+size/2+s*radius, y+size/2-c*radius, 10, 10)
}

func loadModel(r *renderer.Renderer, camera *scene.Camera, path string, logger *slog.Logger) error {
	model, err := scene.LoadModel(path, logger)
	if err != nil {
		return err
	}
	if _, err := r.ImportModel(model, r.Root()); err != nil {
		return err
	}
	if box, ok := model.Bounds(); ok {
		camera.Frame(box)
	}
	logger.Info("model loaded", "path", path,
		"meshes", len(model.Meshes), "materials", len(model.Materials))
	return nil
}

// buildScene lays out a checkered floor, a few lit shapes and a glowing
// orb that feeds the bloom pass. It returns the directional light.
func buildScene(r *renderer.Renderer) (*scene.Light, error) {
	sphere, err := r.AddMesh(scene.NewSphereMesh(24, 32, 0.75))
	if err != nil {
		return nil, err
	}

	torus, err := r.AddMesh(scene.NewTorusMesh(0.9, 0.25, 48, 16))
	if err != nil {
		return nil, err
	}

	floorTex, err := r.Textures().Checker(256,
		color.RGBA{R: 180, G: 180, B: 180, A: 255},
		color.RGBA{R: 70, G: 70, B: 80, A: 255})
	if err != nil {
		return nil, err
	}
	floorMat := materials.NewMaterial("Floor")
	floorMat.Diffuse = math.Vec3One
	floorMat.DiffuseTexture = floorTex
	floorMat.Specular = math.Splat3(0.1)
	floorMat.Shininess = 8

	floor := r.CreateRenderable()
	floor.SetMesh(renderer.MeshQuad)
	floor.SetMaterial(r.AddMaterial(floorMat))
	floor.SetLocalTransform(math.Mat4RotationX(-math32.Pi / 2).
		Mul(math.Mat4Scale(math.NewVec3(20, 1, 20))))

	red := r.AddMaterial(materials.ColorMaterial("Red", math.NewVec3(0.8, 0.15, 0.1)))
	metal := r.AddMaterial(materials.MetalMaterial())
	glow := r.AddMaterial(materials.EmissiveMaterial(4, 2.5, 0.8))

	cube := r.CreateRenderable()
	cube.SetMesh(renderer.MeshCube)
	cube.SetMaterial(red)
	cube.SetLocalTransform(math.Mat4RotationY(0.6).Mul(math.Mat4Translation(math.NewVec3(-2.5, 1, 0))))

	ball := r.CreateRenderable()
	ball.SetMesh(sphere)
	ball.SetMaterial(metal)
	ball.SetLocalTransform(math.Mat4Translation(math.NewVec3(2.5, 0.75, 0)))

	ring := r.CreateRenderable()
	ring.SetMesh(torus)
	ring.SetMaterial(metal)
	ring.SetLocalTransform(math.Mat4RotationX(math32.Pi / 2).Mul(math.Mat4Translation(math.NewVec3(0, 1.2, 1.5))))

	orb := r.CreateRenderable()
	orb.SetMesh(sphere)
	orb.SetMaterial(glow)
	orb.SetLocalTransform(math.Mat4Scale(math.Splat3(0.4)).
		Mul(math.Mat4Translation(math.NewVec3(0, 2.5, -1.5))))
	lamp, _ := orb.AttachNewLight(scene.LightPoint)
	lamp.SetColor(math.NewVec3(4, 2.5, 0.8)).SetAttenuation(1, 0.35, 0.44)

	spot, _ := r.Root().AttachNewLight(scene.LightSpot)
	spot.SetLocalPosition(math.NewVec3(0, 6, 4)).
		SetLocalDirection(math.NewVec3(0, -1, -0.6).Normalize()).
		SetColor(math.NewVec3(0.6, 0.7, 1.0)).
		SetAttenuation(1, 0.09, 0.032).
		SetCutoff(math32.Pi/10, math32.Pi/7)

	sun, _ := r.Root().AttachNewLight(scene.LightDirectional)
	return sun, nil
}

// watchConfig reloads path on every write and hands valid configs to out.
// The parent directory is watched so editors that replace the file are
// still seen.
func watchConfig(path string, out chan renderer.Config, logger *slog.Logger) (*fsnotify.Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				cfg, err := renderer.LoadConfig(abs)
				if err != nil {
					logger.Warn("config reload failed", "path", abs, "err", err)
					continue
				}
				select {
				case out <- cfg:
				default:
					// Drop the stale pending config in favour of this one.
					select {
					case <-out:
					default:
					}
					out <- cfg
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher", "err", err)
			}
		}
	}()
	return watcher, nil
}
