// Package viewer runs the simulation in a raylib window.
package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slime/camera"
	"github.com/pthm-cable/slime/game"
	"github.com/pthm-cable/slime/renderer"
	"github.com/pthm-cable/slime/telemetry"
	"github.com/pthm-cable/slime/ui"
)

// Viewer presents a Game: it forwards input, uploads the field once per frame
// and draws it with the HUD.
type Viewer struct {
	game *game.Game

	camera    *camera.Camera
	trail     *renderer.TrailRenderer
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	showPerf  bool

	screenWidth, screenHeight float32
}

// New creates a viewer. Must be called after the raylib window is created.
func New(g *game.Game, screenW, screenH int) *Viewer {
	p := g.Params()

	trail := renderer.NewTrailRenderer()
	trail.Init(p.Width, p.Height)

	return &Viewer{
		game:         g,
		camera:       camera.New(float32(screenW), float32(screenH), float32(p.Width), float32(p.Height)),
		trail:        trail,
		hud:          ui.NewHUD(),
		perfPanel:    ui.NewPerfPanel(int32(screenW)-230, 10),
		screenWidth:  float32(screenW),
		screenHeight: float32(screenH),
	}
}

// Update handles input, advances the game and uploads the field.
func (v *Viewer) Update() error {
	v.handleInput()

	if err := v.game.UpdateHeadless(); err != nil {
		return err
	}
	v.game.RecordFrame()
	v.trail.Upload(v.game.View())
	return nil
}

// Draw renders the current frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	v.trail.Draw(v.camera)
	v.drawUI()

	rl.EndDrawing()
}

func (v *Viewer) drawUI() {
	p := v.game.Params()
	stats := v.game.LastStats()

	v.hud.Draw(ui.HUDData{
		Title:        "Slime",
		Agents:       p.AgentCount,
		Width:        p.Width,
		Height:       p.Height,
		Tick:         v.game.SimTicks(),
		SimTime:      v.game.SimTime(),
		Speed:        v.game.StepsPerUpdate(),
		FPS:          rl.GetFPS(),
		Paused:       v.game.Paused(),
		Zoom:         v.camera.Zoom / v.camera.MinZoom,
		TrailMean:    stats.TrailMean,
		Coverage:     stats.Coverage,
		ScreenWidth:  int32(v.screenWidth),
		ScreenHeight: int32(v.screenHeight),
	})

	if v.showPerf {
		perf := v.game.PerfStats()
		data := ui.PerfPanelData{Total: perf.AvgTick}
		for ph := telemetry.Phase(0); ph < telemetry.NumPhases; ph++ {
			data.Phases = append(data.Phases, ui.PhaseTime{Name: ph.String(), Avg: perf.Phase[ph]})
		}
		v.perfPanel.Draw(data)
	}
}

// Unload frees GPU resources.
func (v *Viewer) Unload() {
	v.trail.Unload()
}
