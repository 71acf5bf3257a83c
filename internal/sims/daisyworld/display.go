package daisyworld

import (
	"image/color"
	"math"
)

// Display cell values. The grid shows cover composition: one cell per
// percent of surface in flat mode, one row per display band in round mode.
const (
	cellGround uint8 = iota
	cellWhite
	cellBlack
	cellGray
)

var daisyPalette = []color.RGBA{
	{R: 58, G: 136, B: 66, A: 255},
	{R: 236, G: 236, B: 240, A: 255},
	{R: 28, G: 26, B: 32, A: 255},
	{R: 128, G: 128, B: 134, A: 255},
}

// Palette exposes the color palette used for rendering the daisy world.
func (w *World) Palette() []color.RGBA {
	return daisyPalette
}

func cellFor(s Species) uint8 {
	switch s {
	case SpeciesWhite:
		return cellWhite
	case SpeciesBlack:
		return cellBlack
	case SpeciesGray:
		return cellGray
	default:
		return cellGround
	}
}

func (w *World) rebuildDisplay() {
	if w.round {
		w.rebuildRoundDisplay()
	} else {
		w.rebuildFlatDisplay()
	}
	w.displayStale = false
}

// rebuildFlatDisplay assigns cells to species by rounded proportion and
// places them along a fixed random scatter, so cover changes fill in
// gradually instead of reshuffling the whole grid every step.
func (w *World) rebuildFlatDisplay() {
	counts := cellCounts(len(w.display), func(s Species) float64 { return w.proportions[s] })
	fillCells(w.display, w.scatter, counts)
}

func (w *World) rebuildRoundDisplay() {
	views := w.DisplayBands()
	for row, view := range views {
		if row >= displayGridH {
			break
		}
		rowCells := w.display[row*displayGridW : (row+1)*displayGridW]
		counts := cellCounts(displayGridW, view.cover)
		fillCells(rowCells, w.rowScatter[row], counts)
	}
}

func cellCounts(total int, cover func(Species) float64) [speciesCount]int {
	var counts [speciesCount]int
	remaining := total
	for s := Species(0); s < speciesCount; s++ {
		n := int(math.Round(cover(s) * float64(total)))
		if n < 0 {
			n = 0
		}
		if n > remaining {
			n = remaining
		}
		counts[s] = n
		remaining -= n
	}
	return counts
}

func fillCells(cells []uint8, order []int, counts [speciesCount]int) {
	for i := range cells {
		cells[i] = cellGround
	}
	idx := 0
	for s := Species(0); s < speciesCount; s++ {
		for n := 0; n < counts[s] && idx < len(order); n++ {
			cells[order[idx]] = cellFor(s)
			idx++
		}
	}
}
