package daisyworld

import "math"

// Latitude band layout for round mode. Band 0 sits at the pole and the last
// band at the equator; each display band summarizes bandGroupSize internal
// bands for rendering.
const (
	LatitudeBands    = 90
	DisplayBandCount = 10

	bandGroupSize = LatitudeBands / DisplayBandCount

	minInsolation = 0.6
	maxInsolation = 1.5
)

// BandInsolation returns the insolation multiplier for a latitude band,
// rising linearly from the pole to the equator.
func BandInsolation(band int) float64 {
	if band < 0 {
		band = 0
	}
	if band >= LatitudeBands {
		band = LatitudeBands - 1
	}
	span := (maxInsolation - minInsolation) / float64(LatitudeBands-1)
	return minInsolation + span*float64(band)
}

// BandProportion reports the cover proportion of a species in one latitude
// band. In flat mode the planet-wide proportion is returned.
func (w *World) BandProportion(s Species, band int) float64 {
	if s < 0 || s >= speciesCount {
		return 0
	}
	if !w.round || band < 0 || band >= LatitudeBands {
		return w.proportions[s]
	}
	return w.bands[s][band]
}

// BandTemperature returns the local temperature over a surface with the
// given albedo inside one latitude band. Outside round mode it falls back to
// the flat local temperature.
func (w *World) BandTemperature(band int, albedo float64) float64 {
	if !w.round || band < 0 || band >= LatitudeBands {
		return w.LocalTemperature(albedo)
	}
	w.refresh()
	p := w.cfg.Params
	return p.Conductivity*(BandInsolation(band)*(1-albedo)-(1-w.albedo)) + w.temperature
}

// roundAlbedo folds the per-band surface albedos into a planet albedo. Bands
// are weighted by their insolation so that the Stefan-Boltzmann balance sees
// the flux actually absorbed.
func (w *World) roundAlbedo() float64 {
	absorbed := 0.0
	for i := 0; i < LatitudeBands; i++ {
		surface := 0.0
		cover := 0.0
		for s := Species(0); s < speciesCount; s++ {
			surface += w.bands[s][i] * w.albedoOf(s)
			cover += w.bands[s][i]
		}
		surface += (1 - cover) * w.cfg.Params.GroundAlbedo
		absorbed += BandInsolation(i) * (1 - surface)
	}
	return 1 - absorbed/LatitudeBands
}

func (w *World) updateRound() {
	w.refresh()
	planetTemp := w.temperature
	absorbed := 1 - w.albedo
	p := w.cfg.Params

	// One planet snapshot drives all band deltas for this step.
	var deltas [speciesCount][LatitudeBands]float64
	for i := 0; i < LatitudeBands; i++ {
		insolation := BandInsolation(i)
		ground := 1.0
		for s := Species(0); s < speciesCount; s++ {
			ground -= w.bands[s][i]
		}
		for s := Species(0); s < speciesCount; s++ {
			if !w.enabled(s) {
				continue
			}
			local := p.Conductivity*(insolation*(1-w.albedoOf(s))-absorbed) + planetTemp
			deltas[s][i] = w.bands[s][i] * (w.GrowthFunction(local)*ground - p.DeathRate) * p.StepSize
		}
	}
	for s := Species(0); s < speciesCount; s++ {
		if !w.enabled(s) {
			continue
		}
		for i := 0; i < LatitudeBands; i++ {
			next := w.bands[s][i] + deltas[s][i]
			if next < p.MinProportion {
				next = 0
			}
			w.bands[s][i] = next
		}
	}
}

// BandCover aggregates the surface composition of one display band.
type BandCover struct {
	White  float64
	Black  float64
	Gray   float64
	Ground float64
}

func (b BandCover) cover(s Species) float64 {
	switch s {
	case SpeciesWhite:
		return b.White
	case SpeciesBlack:
		return b.Black
	case SpeciesGray:
		return b.Gray
	default:
		return 0
	}
}

// DisplayBands reduces the latitude bands to DisplayBandCount contiguous
// groups for rendering, pole first. It returns nil in flat mode.
func (w *World) DisplayBands() []BandCover {
	if !w.round {
		return nil
	}
	views := make([]BandCover, DisplayBandCount)
	for g := range views {
		lo := g * bandGroupSize
		hi := lo + bandGroupSize
		white := meanOf(w.bands[SpeciesWhite][lo:hi])
		black := meanOf(w.bands[SpeciesBlack][lo:hi])
		gray := meanOf(w.bands[SpeciesGray][lo:hi])
		views[g] = BandCover{
			White:  white,
			Black:  black,
			Gray:   gray,
			Ground: 1 - white - black - gray,
		}
	}
	return views
}

// LatitudeStats summarizes where a species survives across the latitude
// bands. An extinct species reports the empty range: Min past the last band,
// Max before the first, and a NaN mean.
type LatitudeStats struct {
	Min  int
	Max  int
	Mean float64
}

// LatitudeStatsFor computes occupancy statistics for one species. The mean
// is weighted by population, so it tracks where the species actually lives
// rather than the midpoint of its range.
func (w *World) LatitudeStatsFor(s Species) LatitudeStats {
	stats := LatitudeStats{Min: LatitudeBands, Max: -1, Mean: math.NaN()}
	if s < 0 || s >= speciesCount || !w.round {
		return stats
	}
	weighted := 0.0
	total := 0.0
	for i, p := range w.bands[s] {
		if p <= 0 {
			continue
		}
		if i < stats.Min {
			stats.Min = i
		}
		stats.Max = i
		weighted += float64(i) * p
		total += p
	}
	if total > 0 {
		stats.Mean = weighted / total
	}
	return stats
}
