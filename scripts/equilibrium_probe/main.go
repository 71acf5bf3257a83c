package main

import (
	"fmt"
	"math"

	"daisyworld/internal/sims/daisyworld"
)

type probeParams struct {
	luminosity   float64
	conductivity float64
	deathRate    float64
	startWhite   float64
	startBlack   float64
	round        bool
}

func main() {
	candidates := []probeParams{
		{
			luminosity:   1.0,
			conductivity: 20,
			deathRate:    0.3,
			startWhite:   0.5,
			startBlack:   0.5,
		},
		{
			luminosity:   1.4,
			conductivity: 20,
			deathRate:    0.3,
			startWhite:   0.5,
			startBlack:   0.5,
		},
		{
			luminosity:   1.0,
			conductivity: 10,
			deathRate:    0.3,
			startWhite:   0.5,
			startBlack:   0.5,
		},
		{
			luminosity:   1.0,
			conductivity: 20,
			deathRate:    0.1,
			startWhite:   0.2,
			startBlack:   0.2,
		},
		{
			luminosity:   1.0,
			conductivity: 20,
			deathRate:    0.3,
			startWhite:   0.5,
			startBlack:   0.5,
			round:        true,
		},
	}

	fmt.Printf("evaluating %d parameter combinations\n", len(candidates))
	for _, params := range candidates {
		temp, settled := simulate(params)
		fmt.Printf("temp %.3f vs optimal 22.5 (settled after %.0f time units) with params: lum=%.2f cond=%.0f death=%.2f white0=%.2f black0=%.2f round=%t\n",
			temp, settled, params.luminosity, params.conductivity, params.deathRate,
			params.startWhite, params.startBlack, params.round)
	}
}

func simulate(params probeParams) (float64, float64) {
	cfg := daisyworld.DefaultConfig()
	cfg.Params.Luminosity = params.luminosity
	cfg.Params.Conductivity = params.conductivity
	cfg.Params.DeathRate = params.deathRate
	cfg.Params.StartWhite = params.startWhite
	cfg.Params.StartBlack = params.startBlack
	cfg.Params.Round = params.round

	world := daisyworld.NewWithConfig(cfg)
	world.Reset(0)

	perUnit := world.UpdatesPerTimeUnit()
	maxUnits := 300
	settled := float64(maxUnits)

	prevWhite := world.Proportion(daisyworld.SpeciesWhite)
	prevBlack := world.Proportion(daisyworld.SpeciesBlack)
	for unit := 1; unit <= maxUnits; unit++ {
		for i := 0; i < perUnit; i++ {
			world.Update()
		}
		if unit == 1 {
			fmt.Printf("after one time unit: white %.4f black %.4f temp %.2f\n",
				world.Proportion(daisyworld.SpeciesWhite), world.Proportion(daisyworld.SpeciesBlack), world.Temperature())
		}
		white := world.Proportion(daisyworld.SpeciesWhite)
		black := world.Proportion(daisyworld.SpeciesBlack)
		if math.Abs(white-prevWhite) < 1e-9 && math.Abs(black-prevBlack) < 1e-9 {
			settled = float64(unit)
			break
		}
		prevWhite, prevBlack = white, black
	}

	return world.Temperature(), settled
}
