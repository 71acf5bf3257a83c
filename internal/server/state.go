package server

import (
	"math"

	"daisyworld/internal/sims/daisyworld"
)

// State is the JSON snapshot streamed to clients. Temperatures are pointers
// because non-physical luminosities drive the energy balance to NaN, which
// JSON cannot carry; those fields become null.
type State struct {
	Time        float64                  `json:"time"`
	Steps       int                      `json:"steps"`
	Luminosity  float64                  `json:"luminosity"`
	Albedo      float64                  `json:"albedo"`
	Temperature *float64                 `json:"temperature"`
	Ground      float64                  `json:"ground"`
	Growing     bool                     `json:"growing"`
	Round       bool                     `json:"round"`
	Running     bool                     `json:"running"`
	Species     map[string]SpeciesState  `json:"species"`
	Bands       []BandState              `json:"bands,omitempty"`
	Latitudes   map[string]LatitudeState `json:"latitudes,omitempty"`
}

// SpeciesState describes one daisy variety in the snapshot.
type SpeciesState struct {
	Proportion  float64  `json:"proportion"`
	Enabled     bool     `json:"enabled"`
	Temperature *float64 `json:"temperature"`
	GrowthRate  *float64 `json:"growth_rate"`
}

// BandState is the cover composition of one display band, pole first.
type BandState struct {
	White  float64 `json:"white"`
	Black  float64 `json:"black"`
	Gray   float64 `json:"gray"`
	Ground float64 `json:"ground"`
}

// LatitudeState reports the survival range of one species across the bands.
type LatitudeState struct {
	Min  int      `json:"min"`
	Max  int      `json:"max"`
	Mean *float64 `json:"mean"`
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

var allSpecies = []daisyworld.Species{
	daisyworld.SpeciesWhite,
	daisyworld.SpeciesBlack,
	daisyworld.SpeciesGray,
}

func buildState(w *daisyworld.World, running bool) State {
	st := State{
		Time:        w.Time(),
		Steps:       w.StepCount(),
		Luminosity:  w.Luminosity(),
		Albedo:      w.Albedo(),
		Temperature: nullable(w.Temperature()),
		Ground:      w.GroundProportion(),
		Growing:     w.GrowthEnabled(),
		Round:       w.Round(),
		Running:     running,
		Species:     make(map[string]SpeciesState, len(allSpecies)),
	}
	for _, s := range allSpecies {
		st.Species[s.String()] = SpeciesState{
			Proportion:  w.Proportion(s),
			Enabled:     w.SpeciesEnabled(s),
			Temperature: nullable(w.SpeciesTemperature(s)),
			GrowthRate:  nullable(w.GrowthRate(s)),
		}
	}
	if w.Round() {
		for _, view := range w.DisplayBands() {
			st.Bands = append(st.Bands, BandState{
				White:  view.White,
				Black:  view.Black,
				Gray:   view.Gray,
				Ground: view.Ground,
			})
		}
		st.Latitudes = make(map[string]LatitudeState, len(allSpecies))
		for _, s := range allSpecies {
			stats := w.LatitudeStatsFor(s)
			st.Latitudes[s.String()] = LatitudeState{
				Min:  stats.Min,
				Max:  stats.Max,
				Mean: nullable(stats.Mean),
			}
		}
	}
	return st
}
