// Command regulation-tuner searches the daisyworld tunables for settings
// that widen the luminosity window over which the daisies keep the planet
// habitable.
package main

import (
	"flag"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"daisyworld/internal/sims/daisyworld"
)

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	settle := flag.Int("settle", 50, "time units per luminosity setting")
	passes := flag.Int("passes", 3, "coordinate-descent passes to execute")
	workers := flag.Int("workers", runtime.NumCPU(), "parallel candidate evaluations")
	minLum := flag.Float64("min", 0.5, "sweep start luminosity")
	maxLum := flag.Float64("max", 1.7, "sweep end luminosity")
	stepLum := flag.Float64("step", 0.01, "sweep luminosity increment")
	seed := flag.Int64("seed", 1337, "seed used for deterministic simulations")
	manualOnly := flag.Bool("manual", false, "skip sweeping and only evaluate provided overrides")
	var overrides kvList
	flag.Var(&overrides, "set", "parameter override in key=value form (repeatable)")
	flag.Parse()

	cfg := daisyworld.DefaultConfig()
	cfg.Seed = *seed

	for _, kv := range overrides {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		applyOverride(&cfg.Params, parts[0], parts[1])
	}

	plan := daisyworld.SweepPlan{
		MinLuminosity:  *minLum,
		MaxLuminosity:  *maxLum,
		LuminosityStep: *stepLum,
		TimePerSetting: *settle,
	}

	baseline := daisyworld.RegulationProfile(cfg, plan)
	fmt.Printf("Baseline: %s\n", describe(baseline))

	if *manualOnly {
		fmt.Println("Manual evaluation requested; skipping sweep.")
		printParams(cfg.Params)
		return
	}

	params, result, trace := daisyworld.RegulationSweep(cfg, plan, *passes, *workers)

	fmt.Printf("\nBest found: %s\n", describe(result))
	printParams(params)

	if len(trace) > 1 {
		fmt.Println("\nImprovements:")
		for _, rec := range trace[1:] {
			label := rec.Parameter
			if rec.Value != "" {
				label += "=" + rec.Value
			}
			fmt.Printf("  pass %d: %s -> window %.2f, alive %d, mean |T-opt| %.3f\n",
				rec.Pass, label,
				rec.Result.WindowWidth(), rec.Result.AliveCount, rec.Result.MeanAbsDeviation)
		}
	}
}

func describe(r daisyworld.RegulationResult) string {
	if r.AliveCount == 0 {
		return fmt.Sprintf("no survivors over %d settings", r.SettingsTested)
	}
	return fmt.Sprintf("window [%.2f, %.2f] width %.2f, alive %d/%d, temp [%.2f, %.2f] C, mean |T-opt| %.3f",
		r.WindowLow, r.WindowHigh, r.WindowWidth(),
		r.AliveCount, r.SettingsTested,
		r.TempMin, r.TempMax, r.MeanAbsDeviation)
}

func applyOverride(params *daisyworld.Params, key, value string) {
	switch key {
	case "luminosity":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.Luminosity = v
		}
	case "white_albedo":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.WhiteAlbedo = v
		}
	case "black_albedo":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.BlackAlbedo = v
		}
	case "gray_albedo":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.GrayAlbedo = v
		}
	case "ground_albedo":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.GroundAlbedo = v
		}
	case "conductivity":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.Conductivity = v
		}
	case "optimal_temp":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.OptimalTemp = v
		}
	case "growth_curvature":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.GrowthCurvature = v
		}
	case "death_rate":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.DeathRate = v
		}
	case "step_size":
		if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 {
			params.StepSize = v
		}
	case "min_proportion":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.MinProportion = v
		}
	case "boost_level":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.BoostLevel = v
		}
	case "start_white":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.StartWhite = v
		}
	case "start_black":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.StartBlack = v
		}
	case "start_gray":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			params.StartGray = v
		}
	case "white_enabled":
		if v, err := strconv.ParseBool(value); err == nil {
			params.WhiteEnabled = v
		}
	case "black_enabled":
		if v, err := strconv.ParseBool(value); err == nil {
			params.BlackEnabled = v
		}
	case "gray_enabled":
		if v, err := strconv.ParseBool(value); err == nil {
			params.GrayEnabled = v
		}
	case "round":
		if v, err := strconv.ParseBool(value); err == nil {
			params.Round = v
		}
	}
}

func printParams(params daisyworld.Params) {
	fmt.Println("Parameters:")
	fmt.Printf("  luminosity=%g\n", params.Luminosity)
	fmt.Printf("  white_albedo=%g\n", params.WhiteAlbedo)
	fmt.Printf("  black_albedo=%g\n", params.BlackAlbedo)
	fmt.Printf("  gray_albedo=%g\n", params.GrayAlbedo)
	fmt.Printf("  ground_albedo=%g\n", params.GroundAlbedo)
	fmt.Printf("  conductivity=%g\n", params.Conductivity)
	fmt.Printf("  optimal_temp=%g\n", params.OptimalTemp)
	fmt.Printf("  growth_curvature=%g\n", params.GrowthCurvature)
	fmt.Printf("  death_rate=%g\n", params.DeathRate)
	fmt.Printf("  step_size=%g\n", params.StepSize)
	fmt.Printf("  min_proportion=%g\n", params.MinProportion)
	fmt.Printf("  boost_level=%g\n", params.BoostLevel)
	fmt.Printf("  start_white=%g\n", params.StartWhite)
	fmt.Printf("  start_black=%g\n", params.StartBlack)
	fmt.Printf("  start_gray=%g\n", params.StartGray)
	fmt.Printf("  white_enabled=%t\n", params.WhiteEnabled)
	fmt.Printf("  black_enabled=%t\n", params.BlackEnabled)
	fmt.Printf("  gray_enabled=%t\n", params.GrayEnabled)
	fmt.Printf("  round=%t\n", params.Round)
}
