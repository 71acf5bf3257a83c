//go:build ebiten

package ui

import (
	"fmt"
	"image/color"
	"math"

	"daisyworld/internal/core"
	"daisyworld/internal/sims/daisyworld"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

type planetView interface {
	Time() float64
	Luminosity() float64
	Albedo() float64
	Temperature() float64
	Proportion(s daisyworld.Species) float64
	GroundProportion() float64
	Round() bool
	DisplayBands() []daisyworld.BandCover
	Palette() []color.RGBA
}

// Overlay draws the planet readout and, in round mode, the latitude
// composition bars on top of the simulation view. The L key toggles it.
type Overlay struct {
	sim     core.Sim
	view    planetView
	scale   int
	visible bool
	pixel   *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale, visible: true}
	o.view, _ = sim.(planetView)
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update handles the overlay toggle key.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		o.visible = !o.visible
	}
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.visible || o.view == nil {
		return
	}
	size := o.sim.Size()
	if size.W <= 0 || size.H <= 0 {
		return
	}

	face := basicfont.Face7x13
	lines := []string{
		fmt.Sprintf("t %.1f   lum %.2f   alb %.3f   temp %s",
			o.view.Time(), o.view.Luminosity(), o.view.Albedo(), formatTemp(o.view.Temperature())),
		fmt.Sprintf("white %.3f   black %.3f   gray %.3f   ground %.3f",
			o.view.Proportion(daisyworld.SpeciesWhite),
			o.view.Proportion(daisyworld.SpeciesBlack),
			o.view.Proportion(daisyworld.SpeciesGray),
			o.view.GroundProportion()),
	}

	const (
		pad      = 8
		lineStep = 16
	)
	maxW := 0
	for _, line := range lines {
		if w := text.BoundString(face, line).Dx(); w > maxW {
			maxW = w
		}
	}
	blockH := lineStep*len(lines) + pad
	o.fillRect(screen, 4, 4, float64(maxW+2*pad), float64(blockH), color.RGBA{A: 150})
	for i, line := range lines {
		baseline := 4 + pad + face.Ascent + lineStep*i
		text.Draw(screen, line, face, 4+pad, baseline, color.RGBA{R: 225, G: 225, B: 232, A: 255})
	}

	if o.view.Round() {
		o.drawBands(screen, 4, float64(4+blockH+6))
	}
}

// drawBands paints one horizontal bar per display band, pole first, each
// split by the band's cover composition.
func (o *Overlay) drawBands(screen *ebiten.Image, x, y float64) {
	bands := o.view.DisplayBands()
	palette := o.view.Palette()
	if len(bands) == 0 || len(palette) < 4 {
		return
	}

	const (
		barH = 10.0
		gap  = 4.0
	)
	barW := float64(o.sim.Size().W*o.scale) - 2*x - 2*gap
	if barW < 120 {
		barW = 120
	}
	totalH := gap + float64(len(bands))*(barH+gap)
	o.fillRect(screen, x, y, barW+2*gap, totalH, color.RGBA{A: 150})

	for i, band := range bands {
		top := y + gap + float64(i)*(barH+gap)
		left := x + gap
		// Palette entries follow the display cell values: ground,
		// white, black, gray.
		segments := []struct {
			frac float64
			col  color.RGBA
		}{
			{band.White, palette[1]},
			{band.Black, palette[2]},
			{band.Gray, palette[3]},
			{band.Ground, palette[0]},
		}
		for _, seg := range segments {
			w := seg.frac * barW
			o.fillRect(screen, left, top, w, barH, seg.col)
			left += w
		}
	}
}

func (o *Overlay) fillRect(dst *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	if o.pixel == nil || w <= 0 || h <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	a := float32(col.A) / 255
	op.ColorScale.Scale(float32(col.R)/255*a, float32(col.G)/255*a, float32(col.B)/255*a, a)
	dst.DrawImage(o.pixel, op)
}

func formatTemp(v float64) string {
	if math.IsNaN(v) {
		return "--"
	}
	return fmt.Sprintf("%.1fC", v)
}
