package main

//go:generate glslc shaders/scene.vert -o shaders_spv/scene.vert.spv
//go:generate glslc shaders/scene.frag -o shaders_spv/scene.frag.spv
//go:generate glslc shaders/shadow.vert -o shaders_spv/shadow.vert.spv
//go:generate glslc shaders/shadow.frag -o shaders_spv/shadow.frag.spv

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"vulkan_shadow_mapping/config"
	"vulkan_shadow_mapping/model"
	"vulkan_shadow_mapping/renderer"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)
	log.Printf("Starting %s", renderer.PROGRAM_NAME)
	log.Printf("Using GoLang: [%s]", runtime.Version())
	// SDL and with it the Vulkan surface have to stay on the main OS thread
	runtime.LockOSThread()
}

// CAM_STEP is how far one key press moves the camera
const CAM_STEP = 0.5

var camMoves = map[sdl.Keycode]mgl32.Vec3{
	sdl.K_w: {0, 0, -CAM_STEP},
	sdl.K_s: {0, 0, CAM_STEP},
	sdl.K_a: {-CAM_STEP, 0, 0},
	sdl.K_d: {CAM_STEP, 0, 0},
	sdl.K_q: {0, -CAM_STEP, 0},
	sdl.K_e: {0, CAM_STEP, 0},
}

func onIteration(event sdl.Event, c *renderer.Core) {
	switch ev := event.(type) {
	case *sdl.KeyboardEvent:
		if ev.Type == sdl.KEYDOWN {
			if v, ok := camMoves[ev.Keysym.Sym]; ok {
				c.Cam.Move(v)
			}
		}
		if ev.Type == sdl.KEYUP {
			switch ev.Keysym.Sym {
			case sdl.K_p:
				c.Clock.TogglePause()
				log.Printf("Animation paused: %v", c.Clock.Paused())
			case sdl.K_l:
				c.AnimateLight = !c.AnimateLight
				log.Printf("Light orbit: %v", c.AnimateLight)
				if c.AnimateLight && c.Light.OnOrbitAxis() {
					log.Printf("Light at %v sits on the orbit axis and will not move, set light.position off the Y axis to see it orbit", c.Light.Pos)
				}
			case sdl.K_r:
				c.Clock.Reset()
				c.Light.Reset()
				log.Printf("Animation reset")
			}
		}
	}
}

var windowTitle string
var lastTitleUpdate time.Duration
var framesSinceTitleUpdate int

// onDraw shows the frame rate in the window title, refreshed once per second
func onDraw(elapsed time.Duration, c *renderer.Core) {
	framesSinceTitleUpdate++
	dt := elapsed - lastTitleUpdate
	if dt < time.Second {
		return
	}
	fps := float64(framesSinceTitleUpdate) / dt.Seconds()
	c.Win.Win.SetTitle(fmt.Sprintf("%s (%.0f fps)", windowTitle, fps))
	lastTitleUpdate = elapsed
	framesSinceTitleUpdate = 0
}

func main() {
	configPath := flag.String("config", "", "path of a YAML configuration file (default: "+config.DefaultFilename+" if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	windowTitle = cfg.Window.Title

	core, err := renderer.NewRenderCore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize render core: %v", err)
	}
	_, err = core.LoadIntoScene("teapot", cfg.Assets.Teapot, model.RoleCaster)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("Teapot mesh %s not found, casting the shadow with a cube instead", cfg.Assets.Teapot)
		_, err = core.LoadIntoScene("teapot", renderer.BUILTIN_PREFIX+"cube", model.RoleCaster)
	}
	if err != nil {
		log.Fatalf("Failed to load teapot: %v", err)
	}
	if _, err := core.LoadIntoScene("floor", cfg.Assets.Floor, model.RoleReceiver); err != nil {
		log.Fatalf("Failed to load floor: %v", err)
	}

	core.Loop(
		onIteration,
		onDraw,
	)
	core.ClearScene()
	core.Destroy()
}
