// Package ui draws the on-screen overlays of the simulation viewer.
package ui

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Agents       int
	Width        int
	Height       int
	Tick         uint64
	SimTime      float64
	Speed        int
	FPS          int32
	Paused       bool
	Zoom         float32
	TrailMean    float64
	Coverage     float64
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct{}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Agents: %d | Field: %dx%d | Zoom: %.1fx", data.Agents, data.Width, data.Height, data.Zoom),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Time: %.1fs | Speed: %dx | FPS: %d", data.Tick, data.SimTime, data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)

	// Status bar along the bottom edge
	gui.StatusBar(
		rl.Rectangle{X: 0, Y: float32(data.ScreenHeight - 24), Width: float32(data.ScreenWidth), Height: 24},
		fmt.Sprintf("trail mean %.4f | coverage %.1f%% | SPACE: Pause | < >: Speed | Wheel: Zoom | Drag: Pan | R: Reset view",
			data.TrailMean, data.Coverage*100),
	)
}

// PhaseTime is one row of the performance panel.
type PhaseTime struct {
	Name string
	Avg  time.Duration
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	Phases []PhaseTime // in tick order
	Total  time.Duration
}

// PerfPanel renders the per-phase timing panel.
type PerfPanel struct {
	x, y int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(data PerfPanelData) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s", data.Total.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, ph := range data.Phases {
		avg := ph.Avg
		pct := float64(0)
		if data.Total > 0 {
			pct = float64(avg) / float64(data.Total) * 100
		}

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", ph.Name, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
