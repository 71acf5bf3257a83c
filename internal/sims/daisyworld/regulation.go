package daisyworld

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// SweepPlan describes a rising luminosity sweep used to probe homeostasis.
type SweepPlan struct {
	MinLuminosity  float64
	MaxLuminosity  float64
	LuminosityStep float64
	// TimePerSetting is how many time units the world stabilizes at each
	// luminosity before it is measured.
	TimePerSetting int
}

// DefaultSweepPlan returns the canonical 0.5 to 1.7 rising sweep.
func DefaultSweepPlan() SweepPlan {
	return SweepPlan{
		MinLuminosity:  0.5,
		MaxLuminosity:  1.7,
		LuminosityStep: 0.01,
		TimePerSetting: 50,
	}
}

func (p SweepPlan) settings() int {
	if p.LuminosityStep <= 0 || p.MaxLuminosity < p.MinLuminosity {
		return 0
	}
	return int(math.Round((p.MaxLuminosity-p.MinLuminosity)/p.LuminosityStep)) + 1
}

// RegulationResult captures how well the daisies regulate the climate over a
// rising luminosity sweep.
type RegulationResult struct {
	// WindowLow and WindowHigh bound the luminosity range in which any
	// daisy cover survived the stabilization period.
	WindowLow  float64
	WindowHigh float64
	// AliveCount is the number of luminosity settings with surviving cover.
	AliveCount int
	// SettingsTested reports the total luminosity settings examined.
	SettingsTested int
	// TempMin and TempMax bound the stabilized planet temperature over the
	// alive settings.
	TempMin float64
	TempMax float64
	// MeanAbsDeviation is the mean absolute distance of the stabilized
	// temperature from the growth optimum, over the alive settings.
	MeanAbsDeviation float64
}

// WindowWidth returns the width of the surviving luminosity window.
func (r RegulationResult) WindowWidth() float64 {
	if r.AliveCount == 0 {
		return 0
	}
	return r.WindowHigh - r.WindowLow
}

// RegulationProfile runs a deterministic rising sweep with the provided
// configuration and returns the survival window and temperature telemetry.
//
// The helper resets the world at the lowest luminosity, then for each
// setting boosts extinct daisies, lets the world stabilize, and measures
// cover and temperature at the end of the setting.
func RegulationProfile(cfg Config, plan SweepPlan) RegulationResult {
	settings := plan.settings()
	if settings == 0 {
		return RegulationResult{}
	}

	cfg.Params.Luminosity = plan.MinLuminosity
	world := NewWithConfig(cfg)
	updatesPerSetting := plan.TimePerSetting * world.UpdatesPerTimeUnit()

	result := RegulationResult{SettingsTested: settings}
	sumDev := 0.0
	for trial := 0; trial < settings; trial++ {
		luminosity := plan.MinLuminosity + plan.LuminosityStep*float64(trial)
		world.SetLuminosity(luminosity)
		world.BoostIfExtinct()
		for i := 0; i < updatesPerSetting; i++ {
			world.Update()
		}

		cover := 0.0
		for s := Species(0); s < speciesCount; s++ {
			cover += world.Proportion(s)
		}
		if cover <= 0 {
			continue
		}
		temp := world.Temperature()
		if result.AliveCount == 0 {
			result.WindowLow = luminosity
			result.TempMin = temp
			result.TempMax = temp
		}
		result.WindowHigh = luminosity
		if temp < result.TempMin {
			result.TempMin = temp
		}
		if temp > result.TempMax {
			result.TempMax = temp
		}
		sumDev += math.Abs(temp - cfg.Params.OptimalTemp)
		result.AliveCount++
	}
	if result.AliveCount > 0 {
		result.MeanAbsDeviation = sumDev / float64(result.AliveCount)
	}
	return result
}

// SweepRecord documents a single improvement encountered while exploring the
// tuning parameter space.
type SweepRecord struct {
	Pass      int
	Parameter string
	Value     string
	Result    RegulationResult
	Params    Params
}

type floatSpec struct {
	name   string
	values []float64
	getter func(Params) float64
	setter func(*Params, float64)
}

// RegulationSweep performs a coarse coordinate-descent search across the
// biological tunables and returns the parameter set with the widest, tightest
// homeostatic window, together with an improvement trace.
func RegulationSweep(base Config, plan SweepPlan, passes, workers int) (Params, RegulationResult, []SweepRecord) {
	if passes <= 0 {
		passes = 1
	}
	if workers <= 0 {
		workers = 1
	}

	currentParams := base.Params
	currentResult := RegulationProfile(applyParams(base, currentParams), plan)

	records := []SweepRecord{{
		Pass:      0,
		Parameter: "baseline",
		Value:     "",
		Result:    currentResult,
		Params:    currentParams,
	}}

	randomSamples := passes * 4
	if randomSamples < 8 {
		randomSamples = 8
	}
	rng := rand.New(rand.NewSource(base.Seed + 0x5f3759df))
	for i := 0; i < randomSamples; i++ {
		candidate := randomizeParams(rng, base.Params)
		res := RegulationProfile(applyParams(base, candidate), plan)
		if betterRegulation(res, currentResult) {
			currentParams = candidate
			currentResult = res
			records = append(records, SweepRecord{
				Pass:      0,
				Parameter: fmt.Sprintf("random#%d", i+1),
				Value:     "",
				Result:    res,
				Params:    candidate,
			})
		}
	}

	specs := []floatSpec{
		{
			name:   "death_rate",
			values: []float64{0.1, 0.2, 0.25, 0.3, 0.35, 0.4, 0.5},
			getter: func(p Params) float64 { return p.DeathRate },
			setter: func(p *Params, v float64) { p.DeathRate = v },
		},
		{
			name:   "conductivity",
			values: []float64{10, 15, 20, 25, 30},
			getter: func(p Params) float64 { return p.Conductivity },
			setter: func(p *Params, v float64) { p.Conductivity = v },
		},
		{
			name:   "growth_curvature",
			values: []float64{0.001, 0.002, 0.003265, 0.005, 0.008},
			getter: func(p Params) float64 { return p.GrowthCurvature },
			setter: func(p *Params, v float64) { p.GrowthCurvature = v },
		},
		{
			name:   "boost_level",
			values: []float64{0.005, 0.01, 0.02, 0.05},
			getter: func(p Params) float64 { return p.BoostLevel },
			setter: func(p *Params, v float64) { p.BoostLevel = v },
		},
	}

	for pass := 1; pass <= passes; pass++ {
		improved := false
		for _, spec := range specs {
			bestParams, bestResult, changed, rec := evaluateFloatSpec(base, currentParams, currentResult, spec, plan, workers, pass)
			if changed {
				currentParams = bestParams
				currentResult = bestResult
				records = append(records, rec...)
				improved = true
			}
		}
		if !improved {
			break
		}
	}

	return currentParams, currentResult, records
}

func evaluateFloatSpec(base Config, params Params, baseline RegulationResult, spec floatSpec, plan SweepPlan, workers, pass int) (Params, RegulationResult, bool, []SweepRecord) {
	bestParams := params
	bestResult := baseline
	changed := false
	records := make([]SweepRecord, 0)

	type candidate struct {
		value  float64
		result RegulationResult
		valid  bool
	}

	candidates := make([]candidate, len(spec.values))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for idx, value := range spec.values {
		if almostEqual(value, spec.getter(params)) {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, v float64) {
			defer wg.Done()
			candidateParams := params
			spec.setter(&candidateParams, v)
			res := RegulationProfile(applyParams(base, candidateParams), plan)
			candidates[i] = candidate{value: v, result: res, valid: true}
			<-sem
		}(idx, value)
	}

	wg.Wait()

	for idx, value := range spec.values {
		cand := candidates[idx]
		if !cand.valid {
			continue
		}
		if betterRegulation(cand.result, bestResult) {
			candidateParams := params
			spec.setter(&candidateParams, value)
			bestParams = candidateParams
			bestResult = cand.result
			changed = true
			records = append(records, SweepRecord{
				Pass:      pass,
				Parameter: spec.name,
				Value:     fmt.Sprintf("%g", value),
				Result:    cand.result,
				Params:    candidateParams,
			})
		}
	}

	return bestParams, bestResult, changed, records
}

// betterRegulation prefers a wider survival window, then a temperature curve
// that hugs the growth optimum more closely.
func betterRegulation(a, b RegulationResult) bool {
	if a.WindowWidth() > b.WindowWidth() {
		return true
	}
	if a.WindowWidth() < b.WindowWidth() {
		return false
	}
	if a.AliveCount != b.AliveCount {
		return a.AliveCount > b.AliveCount
	}
	return a.MeanAbsDeviation < b.MeanAbsDeviation
}

func almostEqual(a, b float64) bool {
	const eps = 1e-9
	return math.Abs(a-b) <= eps
}

func applyParams(base Config, params Params) Config {
	cfg := base
	cfg.Params = params
	return cfg
}

func randomizeParams(rng *rand.Rand, base Params) Params {
	params := base
	params.DeathRate = randomFloatRange(rng, 0.05, 0.6)
	params.Conductivity = randomFloatRange(rng, 5, 40)
	params.GrowthCurvature = randomFloatRange(rng, 0.0005, 0.01)
	params.BoostLevel = randomFloatRange(rng, 0.002, 0.05)
	return params
}

func randomFloatRange(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}
