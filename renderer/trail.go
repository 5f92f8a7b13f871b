package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slime/camera"
	"github.com/pthm-cable/slime/systems"
)

// TrailRenderer uploads the trail field into a texture and draws it through the camera.
type TrailRenderer struct {
	trailTex rl.Texture2D
	texW     int
	texH     int
	pixels   []color.RGBA

	// Gain scales field intensity before clamping to 8 bits
	Gain float32

	initialized bool
}

// NewTrailRenderer creates a renderer with unit gain.
func NewTrailRenderer() *TrailRenderer {
	return &TrailRenderer{Gain: 1}
}

// Init creates the texture (must be called after raylib window is created).
// Sampling is bilinear and clamps at the edges.
func (r *TrailRenderer) Init(w, h int) {
	if r.initialized {
		return
	}

	r.texW = w
	r.texH = h
	r.pixels = make([]color.RGBA, w*h)

	img := rl.GenImageColor(w, h, rl.Black)
	r.trailTex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(r.trailTex, rl.FilterBilinear)
	rl.SetTextureWrap(r.trailTex, rl.WrapClamp)
	rl.UnloadImage(img)

	r.initialized = true
}

// Upload converts the field view to pixels and uploads it.
func (r *TrailRenderer) Upload(view systems.FieldView) {
	if !r.initialized {
		r.Init(view.W, view.H)
	}
	if view.Len() != len(r.pixels) {
		return
	}

	for i := range r.pixels {
		c := view.Cell(i)
		r.pixels[i] = color.RGBA{
			R: toByte(c.R * r.Gain),
			G: toByte(c.G * r.Gain),
			B: toByte(c.B * r.Gain),
			A: 255,
		}
	}

	rl.UpdateTexture(r.trailTex, r.pixels)
}

// Draw renders the visible part of the field.
func (r *TrailRenderer) Draw(cam *camera.Camera) {
	if !r.initialized {
		return
	}

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, float32(r.texW))
	maxY = min(maxY, float32(r.texH))

	srcRect := rl.Rectangle{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	sx0, sy0 := cam.WorldToScreen(minX, minY)
	sx1, sy1 := cam.WorldToScreen(maxX, maxY)
	dstRect := rl.Rectangle{X: sx0, Y: sy0, Width: sx1 - sx0, Height: sy1 - sy0}

	rl.DrawTexturePro(r.trailTex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (r *TrailRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.trailTex)
	r.pixels = nil
	r.initialized = false
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
