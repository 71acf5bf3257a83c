//go:build ebiten

package app

import (
	"image/color"
	"time"

	"daisyworld/internal/core"
	"daisyworld/internal/render"
	"daisyworld/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	hudWidth       = 220
	luminosityStep = 0.02
)

type planetControls interface {
	Luminosity() float64
	SetLuminosity(v float64)
	Round() bool
	SetRound(round bool)
	ToggleSpecies(name string) bool
	BoostIfExtinct()
}

type paletteProvider interface {
	Palette() []color.RGBA
}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim      core.Sim
	painter  *render.GridPainter
	hud      *ui.HUD
	overlay  *ui.Overlay
	controls planetControls

	palette []color.RGBA

	scale    int
	paused   bool
	tickOnce bool
	seed     int64
}

// New constructs a Game for the provided simulation.
func New(sim core.Sim, scale int, seed int64) *Game {
	g := &Game{
		sim:     sim,
		painter: render.NewGridPainter(sim.Size().W, sim.Size().H),
		hud:     ui.NewHUD(sim, hudWidth),
		overlay: ui.NewOverlay(sim, scale),
		palette: []color.RGBA{{A: 255}, {R: 255, G: 255, B: 255, A: 255}},
		scale:   scale,
		seed:    seed,
	}
	g.controls, _ = sim.(planetControls)
	if provider, ok := sim.(paletteProvider); ok {
		g.palette = provider.Palette()
	}
	return g
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	g.handleControlKeys()

	if g.overlay != nil {
		g.overlay.Update()
	}
	if g.hud != nil {
		g.hud.Update(g.sim.Size().W * g.scale)
	}

	if (!g.paused) || g.tickOnce {
		g.sim.Step()
		g.tickOnce = false
	}
	return nil
}

func (g *Game) handleControlKeys() {
	if g.controls == nil {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.controls.SetLuminosity(g.controls.Luminosity() - luminosityStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.controls.SetLuminosity(g.controls.Luminosity() + luminosityStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyW) {
		g.controls.ToggleSpecies("white")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.controls.ToggleSpecies("black")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		g.controls.ToggleSpecies("gray")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.controls.SetRound(!g.controls.Round())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		g.controls.BoostIfExtinct()
	}
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.palette, g.scale)
	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
	if g.hud != nil {
		g.hud.Draw(screen, g.sim.Size().W*g.scale, g.scale)
	}
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.WindowSize()
}

// WindowSize reports the pixel size of the view including the HUD panel.
func (g *Game) WindowSize() (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + hudWidth, s.H * g.scale
}
