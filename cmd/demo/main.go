// Command demo renders a small scene: a gradient sky on a day/night cycle,
// a grid, a few primitives, a fire emitter and optionally an imported model
// or a YAML scene file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chewxy/math32"

	"solo-engine/core"
	"solo-engine/device"
	"solo-engine/math"
	"solo-engine/renderer"
	"solo-engine/scene"
)

func main() {
	configPath := flag.String("config", "", "YAML or TOML config file")
	modelPath := flag.String("model", "", "glTF, GLB or OBJ model to show")
	scenePath := flag.String("scene", "", "YAML scene file replacing the built-in scene")
	savePath := flag.String("save", "", "write the scene as YAML on exit")
	frames := flag.Int("frames", 0, "stop after this many frames (0 runs until closed)")
	flag.Parse()

	if err := run(*configPath, *modelPath, *scenePath, *savePath, *frames); err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}
}

func run(configPath, modelPath, scenePath, savePath string, frames int) error {
	cfg := core.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = core.LoadConfig(configPath); err != nil {
			return err
		}
	}
	log := core.NewLogger(cfg.LogLevel)

	dev, err := device.New(cfg, device.WithLogger(log))
	if err != nil {
		return err
	}
	defer dev.Destroy()

	r, err := renderer.New(dev, renderer.WithLogger(log), renderer.WithConfig(cfg.Renderer))
	if err != nil {
		return err
	}

	s := scene.NewScene(scene.WithLogger(log))
	var owned []*scene.Model
	defer func() {
		for _, m := range owned {
			m.Release()
		}
	}()

	var cam *scene.OrbitCamera
	var dn *scene.DayNight
	if scenePath != "" {
		f, err := scene.LoadSceneFile(scenePath)
		if err != nil {
			return err
		}
		m, err := f.Build(s, r, filepath.Dir(scenePath))
		if err != nil {
			return err
		}
		owned = append(owned, m)
	} else {
		m, err := buildDefaultScene(s, r)
		if err != nil {
			return err
		}
		owned = append(owned, m)
		dn = scene.NewDayNight()
		dn.Attach(s.Find("Sky"))
	}
	if len(s.Cameras()) == 0 {
		w, h := dev.CanvasSize()
		cam = scene.NewOrbitCamera(math.Vec3{Y: 0.5}, 8, math32.Pi/3, float32(w)/float32(max(h, 1)))
		s.AddCamera(cam.Camera)
	}

	if modelPath != "" {
		m, err := scene.LoadModel(modelPath, r)
		if err != nil {
			return err
		}
		owned = append(owned, m)
		for _, root := range m.Roots {
			s.AddNode(root)
		}
		log.Info("model loaded", "path", modelPath, "meshes", len(m.Meshes), "materials", len(m.Materials))
	}

	var (
		controls *orbitControls
		pick     *picker
	)
	if w := dev.Window(); w != nil {
		if cam != nil {
			controls = newOrbitControls(w, cam)
		}
		p, m, err := newPicker(r, s, log)
		if err != nil {
			return err
		}
		pick = p
		owned = append(owned, m)
	}

	if err := loop(dev, r, s, controls, pick, dn, frames, log); err != nil {
		return err
	}
	if savePath != "" {
		if pick != nil {
			pick.detach()
		}
		return scene.SaveScene(s, savePath)
	}
	return nil
}

func loop(dev *device.Device, r *renderer.Renderer, s *scene.Scene, controls *orbitControls,
	pick *picker, dn *scene.DayNight, frames int, log *slog.Logger) error {
	var (
		count      int
		statsTimer time.Duration
		window     = dev.Window()
	)
	for !dev.ShouldClose() {
		dev.Update()
		dt := dev.TimeDelta()

		if window != nil {
			if window.IsKeyPressed(device.KeyEscape) {
				dev.Close()
			}
			if controls != nil {
				controls.update(window, dt)
			}
			if pick != nil && len(s.Cameras()) > 0 {
				pick.update(window, s.Cameras()[0])
			}
		}

		s.Update(dt)
		if err := s.Frame(r); err != nil {
			return err
		}
		dev.SwapBuffers()

		statsTimer += time.Duration(float64(dt) * float64(time.Second))
		if statsTimer >= time.Second {
			statsTimer = 0
			stats := r.Stats()
			log.Debug("frame", "stats", stats)
			if window != nil {
				title := fmt.Sprintf("Solo | %.0f fps | %d draws", 1/max(dt, 1e-6), stats.DrawCalls)
				if dn != nil {
					title += " | " + dn.TimeOfDay()
				}
				window.SetTitle(title)
			}
		}

		count++
		if frames > 0 && count >= frames {
			break
		}
	}
	log.Info("exiting", "frames", count)
	return nil
}

// buildDefaultScene adds the sky, a grid, a few unlit primitives and a
// fire emitter. The returned model owns their GPU resources.
func buildDefaultScene(s *scene.Scene, r *renderer.Renderer) (*scene.Model, error) {
	f := &scene.SceneFile{
		Version: 1,
		Sky:     &scene.SkyDesc{},
		Nodes: []scene.NodeDesc{
			{Name: "Grid", Mesh: "grid"},
			{Name: "Floor", Mesh: "plane", Position: []float32{0, -0.01, 0}, Color: []float32{0.62, 0.58, 0.52}},
			{Name: "Crate", Mesh: "cube", Position: []float32{-1.5, 0.5, 0}, Color: []float32{0.70, 0.43, 0.30}},
			{Name: "Ball", Mesh: "sphere", Position: []float32{1.5, 0.5, 0}, Color: []float32{0.28, 0.52, 0.72}},
		},
	}
	model, err := f.Build(s, r, ".")
	if err != nil {
		return nil, err
	}

	w, h := r.Device().CanvasSize()
	fire := scene.NewParticleEmitter(512)
	node, err := fire.NewNode(r, "Fire", float32(max(w, h)))
	if err != nil {
		model.Release()
		return nil, err
	}
	node.SetPosition(math.Vec3{Y: 1.0})
	s.AddChild(s.Find("Crate"), node)
	model.Meshes = append(model.Meshes, node.Renderer.Mesh)
	model.Materials = append(model.Materials, node.Renderer.Materials...)

	s.Find("Ball").OnUpdate = func(n *scene.Node, dt float32) {
		n.Rotate(math.Vec3Up, dt)
	}
	return model, nil
}
