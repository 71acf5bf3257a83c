package daisyworld

import (
	"math"

	"daisyworld/internal/core"
)

// Species identifies one daisy variety tracked by the model.
type Species int

const (
	SpeciesWhite Species = iota
	SpeciesBlack
	SpeciesGray

	speciesCount = 3
)

// String returns the lowercase species name.
func (s Species) String() string {
	switch s {
	case SpeciesWhite:
		return "white"
	case SpeciesBlack:
		return "black"
	case SpeciesGray:
		return "gray"
	default:
		return "unknown"
	}
}

// ParseSpecies maps a species name to its identifier.
func ParseSpecies(name string) (Species, bool) {
	switch name {
	case "white":
		return SpeciesWhite, true
	case "black":
		return SpeciesBlack, true
	case "gray":
		return SpeciesGray, true
	default:
		return 0, false
	}
}

// Physical constants of the energy balance, after the 1983 Watson and
// Lovelock model. Flux and Stefan's constant are in erg / (s * cm^2) units.
const (
	fluxConstant   = 917000.0
	stefanConstant = 0.0000567
	celsiusOffset  = 273.0
)

const (
	displayGridW = 10
	displayGridH = 10
)

// World is a zero-dimensional planet whose surface albedo is set by the
// daisy populations growing on it. The optional round mode resolves the
// surface into latitude bands with varying insolation. World implements
// core.Sim; the cell grid is a dashboard view of the cover proportions, not
// a spatial model.
type World struct {
	cfg Config

	proportions [speciesCount]float64
	bands       [speciesCount][]float64
	round       bool
	growing     bool
	steps       int

	// Planet albedo and temperature are cached between mutations; every
	// state change goes through invalidate.
	albedo      float64
	temperature float64
	statsDirty  bool

	display      []uint8
	displayStale bool
	scatter      []int
	rowScatter   [][]int

	rng *core.RNG
}

// New returns a daisyworld simulation using the default configuration.
func New() *World {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig returns a daisyworld world configured from the provided options.
func NewWithConfig(cfg Config) *World {
	w := &World{
		cfg:        cfg,
		display:    make([]uint8, displayGridW*displayGridH),
		rowScatter: make([][]int, displayGridH),
	}
	for s := range w.bands {
		w.bands[s] = make([]float64, LatitudeBands)
	}
	w.Reset(0)
	return w
}

// Name returns the simulation identifier.
func (w *World) Name() string { return "daisyworld" }

// Size reports the display grid dimensions.
func (w *World) Size() core.Size { return core.Size{W: displayGridW, H: displayGridH} }

// Cells exposes the current display buffer.
func (w *World) Cells() []uint8 {
	if w.displayStale {
		w.rebuildDisplay()
	}
	return w.display
}

// Reset rebuilds the initial populations and the deterministic display
// scatter. A zero seed falls back to the configured seed. Tunables changed
// through the setters persist across resets.
func (w *World) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = w.cfg.Seed
	}
	w.rng = core.NewRNG(effective)
	w.steps = 0
	w.growing = true
	w.round = w.cfg.Params.Round

	for s := Species(0); s < speciesCount; s++ {
		start := w.startOf(s)
		if !w.enabled(s) {
			start = 0
		}
		w.proportions[s] = start
		for i := range w.bands[s] {
			w.bands[s][i] = start
		}
	}

	w.scatter = w.rng.Perm(len(w.display))
	for i := range w.rowScatter {
		w.rowScatter[i] = w.rng.Perm(displayGridW)
	}
	w.invalidate()
}

// Step advances the simulation by one update.
func (w *World) Step() { w.Update() }

// Update advances the model by one Euler step of length StepSize. The step
// counter moves even while growth is frozen.
func (w *World) Update() {
	w.steps++
	if !w.growing {
		return
	}
	if w.round {
		w.updateRound()
	} else {
		w.updateFlat()
	}
	w.invalidate()
}

func (w *World) updateFlat() {
	w.refresh()
	albedo := w.albedo
	temp := w.temperature
	ground := w.groundFlat()
	p := w.cfg.Params

	// All deltas come from the same pre-step snapshot.
	var deltas [speciesCount]float64
	for s := Species(0); s < speciesCount; s++ {
		if !w.enabled(s) {
			continue
		}
		local := p.Conductivity*(albedo-w.albedoOf(s)) + temp
		deltas[s] = w.proportions[s] * (w.GrowthFunction(local)*ground - p.DeathRate) * p.StepSize
	}
	for s := Species(0); s < speciesCount; s++ {
		if !w.enabled(s) {
			continue
		}
		next := w.proportions[s] + deltas[s]
		if next < p.MinProportion {
			next = 0
		}
		w.proportions[s] = next
	}
}

// Luminosity returns the dimensionless solar luminosity.
func (w *World) Luminosity() float64 { return w.cfg.Params.Luminosity }

// SetLuminosity changes the solar luminosity. Values are not range-checked;
// non-physical inputs propagate through the temperature equations as NaN.
func (w *World) SetLuminosity(v float64) {
	w.cfg.Params.Luminosity = v
	w.invalidate()
}

// Proportion reports the planet-wide cover proportion of a species. In round
// mode this is the equal-weight mean across the latitude bands.
func (w *World) Proportion(s Species) float64 {
	if s < 0 || s >= speciesCount {
		return 0
	}
	if w.round {
		return meanOf(w.bands[s])
	}
	return w.proportions[s]
}

// SetProportion overwrites the cover proportion of a species, uniformly
// across all bands in round mode. Over-full surfaces are not guarded.
func (w *World) SetProportion(s Species, v float64) {
	if s < 0 || s >= speciesCount {
		return
	}
	w.proportions[s] = v
	for i := range w.bands[s] {
		w.bands[s][i] = v
	}
	w.invalidate()
}

// GroundProportion reports the bare ground share of the surface.
func (w *World) GroundProportion() float64 {
	if w.round {
		total := 1.0
		for s := Species(0); s < speciesCount; s++ {
			total -= meanOf(w.bands[s])
		}
		return total
	}
	return w.groundFlat()
}

func (w *World) groundFlat() float64 {
	total := 1.0
	for s := Species(0); s < speciesCount; s++ {
		total -= w.proportions[s]
	}
	return total
}

// Albedo returns the planet albedo, the cover-weighted mean of the surface
// albedos. In round mode the weighting also accounts for insolation.
func (w *World) Albedo() float64 {
	w.refresh()
	return w.albedo
}

// Temperature returns the global mean temperature in Celsius from the
// Stefan-Boltzmann balance of absorbed flux.
func (w *World) Temperature() float64 {
	w.refresh()
	return w.temperature
}

// LocalTemperature returns the temperature over a surface with the given
// albedo. Darker patches than the planet mean run warmer, lighter ones
// cooler, scaled by the conductivity constant.
func (w *World) LocalTemperature(albedo float64) float64 {
	w.refresh()
	return w.cfg.Params.Conductivity*(w.albedo-albedo) + w.temperature
}

// SpeciesTemperature returns the local temperature over the given species.
func (w *World) SpeciesTemperature(s Species) float64 {
	return w.LocalTemperature(w.albedoOf(s))
}

// GrowthFunction returns the parabolic growth response at a temperature.
// It peaks at 1 at the optimal temperature and goes negative outside the
// viable range.
func (w *World) GrowthFunction(temp float64) float64 {
	p := w.cfg.Params
	diff := p.OptimalTemp - temp
	return 1 - p.GrowthCurvature*diff*diff
}

// GrowthRate returns the current net growth rate of a species per time unit,
// using the planet-mean local temperature.
func (w *World) GrowthRate(s Species) float64 {
	if s < 0 || s >= speciesCount || !w.enabled(s) {
		return 0
	}
	growth := w.GrowthFunction(w.SpeciesTemperature(s))
	return w.Proportion(s) * (growth*w.GroundProportion() - w.cfg.Params.DeathRate)
}

// GrowthEnabled reports whether populations change during updates.
func (w *World) GrowthEnabled() bool { return w.growing }

// SetGrowthEnabled freezes or resumes daisy growth and death. Queries stay
// live while frozen.
func (w *World) SetGrowthEnabled(on bool) { w.growing = on }

// SpeciesEnabled reports whether a species participates in the model.
func (w *World) SpeciesEnabled(s Species) bool { return w.enabled(s) }

// SetSpeciesEnabled toggles a species. Disabling zeroes its population
// immediately, in every band.
func (w *World) SetSpeciesEnabled(s Species, on bool) {
	switch s {
	case SpeciesWhite:
		w.cfg.Params.WhiteEnabled = on
	case SpeciesBlack:
		w.cfg.Params.BlackEnabled = on
	case SpeciesGray:
		w.cfg.Params.GrayEnabled = on
	default:
		return
	}
	if !on {
		w.proportions[s] = 0
		for i := range w.bands[s] {
			w.bands[s][i] = 0
		}
	}
	w.invalidate()
}

// ToggleSpecies flips a species by name and reports the new enabled state.
// Unknown names are ignored and report false.
func (w *World) ToggleSpecies(name string) bool {
	s, ok := ParseSpecies(name)
	if !ok {
		return false
	}
	next := !w.enabled(s)
	w.SetSpeciesEnabled(s, next)
	return next
}

// BoostIfExtinct raises every enabled population below the boost level up to
// exactly that level, per band in round mode. Healthy populations are left
// alone, so repeated boosts are harmless.
func (w *World) BoostIfExtinct() {
	level := w.cfg.Params.BoostLevel
	changed := false
	for s := Species(0); s < speciesCount; s++ {
		if !w.enabled(s) {
			continue
		}
		if w.round {
			for i := range w.bands[s] {
				if w.bands[s][i] < level {
					w.bands[s][i] = level
					changed = true
				}
			}
			continue
		}
		if w.proportions[s] < level {
			w.proportions[s] = level
			changed = true
		}
	}
	if changed {
		w.invalidate()
	}
}

// Round reports whether the latitude-resolved mode is active.
func (w *World) Round() bool { return w.round }

// SetRound switches between the flat and latitude-resolved surface. Entering
// round mode broadcasts the flat proportions to every band; leaving it keeps
// the band means. Switching to the current mode is a no-op.
func (w *World) SetRound(round bool) {
	if round == w.round {
		return
	}
	if round {
		for s := Species(0); s < speciesCount; s++ {
			for i := range w.bands[s] {
				w.bands[s][i] = w.proportions[s]
			}
		}
	} else {
		for s := Species(0); s < speciesCount; s++ {
			w.proportions[s] = meanOf(w.bands[s])
		}
	}
	w.round = round
	w.cfg.Params.Round = round
	w.invalidate()
}

// StepCount returns the number of updates since the last reset.
func (w *World) StepCount() int { return w.steps }

// Time returns the elapsed model time in time units.
func (w *World) Time() float64 { return float64(w.steps) * w.cfg.Params.StepSize }

// UpdatesPerTimeUnit returns how many updates advance the model by one time
// unit at the configured step size.
func (w *World) UpdatesPerTimeUnit() int {
	return int(math.Round(1 / w.cfg.Params.StepSize))
}

func (w *World) invalidate() {
	w.statsDirty = true
	w.displayStale = true
}

func (w *World) refresh() {
	if !w.statsDirty {
		return
	}
	w.albedo = w.computeAlbedo()
	w.temperature = w.blackbodyTemperature(w.albedo)
	w.statsDirty = false
}

func (w *World) computeAlbedo() float64 {
	if w.round {
		return w.roundAlbedo()
	}
	total := w.groundFlat() * w.cfg.Params.GroundAlbedo
	for s := Species(0); s < speciesCount; s++ {
		total += w.proportions[s] * w.albedoOf(s)
	}
	return total
}

func (w *World) blackbodyTemperature(albedo float64) float64 {
	p := w.cfg.Params
	absorbed := fluxConstant * p.Luminosity * (1 - albedo)
	return math.Pow(absorbed/stefanConstant, 0.25) - celsiusOffset
}

func (w *World) albedoOf(s Species) float64 {
	switch s {
	case SpeciesWhite:
		return w.cfg.Params.WhiteAlbedo
	case SpeciesBlack:
		return w.cfg.Params.BlackAlbedo
	case SpeciesGray:
		return w.cfg.Params.GrayAlbedo
	default:
		return w.cfg.Params.GroundAlbedo
	}
}

func (w *World) enabled(s Species) bool {
	switch s {
	case SpeciesWhite:
		return w.cfg.Params.WhiteEnabled
	case SpeciesBlack:
		return w.cfg.Params.BlackEnabled
	case SpeciesGray:
		return w.cfg.Params.GrayEnabled
	default:
		return false
	}
}

func (w *World) startOf(s Species) float64 {
	switch s {
	case SpeciesWhite:
		return w.cfg.Params.StartWhite
	case SpeciesBlack:
		return w.cfg.Params.StartBlack
	case SpeciesGray:
		return w.cfg.Params.StartGray
	default:
		return 0
	}
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func init() {
	core.Register("daisyworld", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		return NewWithConfig(c)
	})
}
