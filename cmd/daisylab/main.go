// Command daisylab runs the canonical daisyworld experiments and writes their
// time series to CSV: a static energy-balance check, constant-luminosity
// growth series, and rising-then-falling luminosity sweeps for each species
// combination.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"daisyworld/internal/datalog"
	"daisyworld/internal/sims/daisyworld"
)

func main() {
	runSel := flag.String("run", "all", "experiments to run: static, series, sweep (comma separated)")
	outDir := flag.String("out", "daisylab_out", "directory for CSV output")
	sweepMin := flag.Float64("sweep-min", 0.5, "sweep start luminosity")
	sweepMax := flag.Float64("sweep-max", 1.7, "sweep end luminosity")
	sweepStep := flag.Float64("sweep-step", 0.01, "sweep luminosity increment")
	settle := flag.Float64("settle", 50, "time units per sweep setting")
	seriesTime := flag.Float64("series-time", 100, "time units per constant-luminosity series")
	round := flag.Bool("round", false, "run the latitude-resolved model")
	flag.Parse()

	if *sweepStep <= 0 {
		log.Fatal("sweep-step must be positive")
	}
	if *sweepMax < *sweepMin {
		log.Fatal("sweep-max must not be below sweep-min")
	}

	selected := map[string]bool{}
	for _, name := range strings.Split(*runSel, ",") {
		selected[strings.TrimSpace(name)] = true
	}
	all := selected["all"]

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("creating %s: %v", *outDir, err)
	}

	if all || selected["static"] {
		runStatic()
	}
	if all || selected["series"] {
		runSeries(*outDir, *seriesTime, *round)
	}
	if all || selected["sweep"] {
		runSweeps(*outDir, *sweepMin, *sweepMax, *sweepStep, *settle, *round)
	}
}

// runStatic prints the frozen-planet energy balance: half white and half
// black cover averages out to bare-ground albedo, with the locals sitting
// symmetrically around the global temperature.
func runStatic() {
	world := daisyworld.New()
	world.SetGrowthEnabled(false)

	fmt.Println("Static check (growth frozen):")
	fmt.Printf("  albedo      %.4f\n", world.Albedo())
	fmt.Printf("  temperature %.4f C\n", world.Temperature())
	fmt.Printf("  black local %.4f C\n", world.SpeciesTemperature(daisyworld.SpeciesBlack))
	fmt.Printf("  white local %.4f C\n", world.SpeciesTemperature(daisyworld.SpeciesWhite))
}

func runSeries(outDir string, timeUnits float64, round bool) {
	scenarios := []struct {
		name  string
		white bool
	}{
		{name: "black_only", white: false},
		{name: "black_white", white: true},
	}
	for _, sc := range scenarios {
		if err := recordSeries(outDir, sc.name, sc.white, timeUnits, round); err != nil {
			log.Fatalf("series %s: %v", sc.name, err)
		}
	}
}

func recordSeries(outDir, name string, white bool, timeUnits float64, round bool) error {
	world := daisyworld.New()
	world.SetSpeciesEnabled(daisyworld.SpeciesWhite, white)
	world.SetRound(round)

	path := filepath.Join(outDir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rec := datalog.NewRecorder(f)
	bindPlanetColumns(rec, world)
	if round {
		bindLatitudeColumns(rec, world)
	}
	rec.SetTimingRepeat(world.UpdatesPerTimeUnit())

	total := int(math.Round(timeUnits * float64(world.UpdatesPerTimeUnit())))
	rec.Record(0)
	for step := 1; step <= total; step++ {
		world.Update()
		rec.Record(step)
	}
	if err := rec.Flush(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

type sweepCombo struct {
	name  string
	black bool
	white bool
}

func runSweeps(outDir string, min, max, step, settle float64, round bool) {
	combos := []sweepCombo{
		{name: "none"},
		{name: "black", black: true},
		{name: "white", white: true},
		{name: "both", black: true, white: true},
	}
	settings := int(math.Round((max-min)/step)) + 1
	fmt.Printf("Sweeping %.2f to %.2f and back (%d settings, %.0f time units each)\n",
		min, max, 2*settings-1, settle)
	for _, combo := range combos {
		if err := recordSweep(outDir, combo, min, step, settings, settle, round); err != nil {
			log.Fatalf("sweep %s: %v", combo.name, err)
		}
	}
}

// recordSweep steps the luminosity up and back down, giving the populations
// settle time units at each setting and a boost beforehand so extinctions on
// the way up do not mask the hysteresis on the way down.
func recordSweep(outDir string, combo sweepCombo, min, step float64, settings int, settle float64, round bool) error {
	world := daisyworld.New()
	world.SetSpeciesEnabled(daisyworld.SpeciesBlack, combo.black)
	world.SetSpeciesEnabled(daisyworld.SpeciesWhite, combo.white)
	world.SetRound(round)

	path := filepath.Join(outDir, "sweep_"+combo.name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rec := datalog.NewRecorder(f)
	bindPlanetColumns(rec, world)
	if round {
		bindLatitudeColumns(rec, world)
	}

	updates := int(math.Round(settle * float64(world.UpdatesPerTimeUnit())))
	row := 0
	runSetting := func(lum float64) {
		world.SetLuminosity(lum)
		world.BoostIfExtinct()
		for i := 0; i < updates; i++ {
			world.Update()
		}
		rec.Record(row)
		row++
	}

	for i := 0; i < settings; i++ {
		runSetting(min + float64(i)*step)
	}
	for i := settings - 2; i >= 0; i-- {
		runSetting(min + float64(i)*step)
	}

	if err := rec.Flush(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func bindPlanetColumns(rec *datalog.Recorder, world *daisyworld.World) {
	rec.AddColumn("t", world.Time)
	rec.AddColumn("L", world.Luminosity)
	rec.AddColumn("a_w", func() float64 { return world.Proportion(daisyworld.SpeciesWhite) })
	rec.AddColumn("a_b", func() float64 { return world.Proportion(daisyworld.SpeciesBlack) })
	rec.AddColumn("a_g", func() float64 { return world.Proportion(daisyworld.SpeciesGray) })
	rec.AddColumn("ground", world.GroundProportion)
	rec.AddColumn("albedo", world.Albedo)
	rec.AddColumn("temp", world.Temperature)
}

func bindLatitudeColumns(rec *datalog.Recorder, world *daisyworld.World) {
	species := []daisyworld.Species{daisyworld.SpeciesWhite, daisyworld.SpeciesBlack, daisyworld.SpeciesGray}
	for _, s := range species {
		if !world.SpeciesEnabled(s) {
			continue
		}
		name := s.String()
		rec.AddColumn(name+"_lat_min", func() float64 { return float64(world.LatitudeStatsFor(s).Min) })
		rec.AddColumn(name+"_lat_mean", func() float64 { return world.LatitudeStatsFor(s).Mean })
		rec.AddColumn(name+"_lat_max", func() float64 { return float64(world.LatitudeStatsFor(s).Max) })
	}
}
