package daisyworld

import (
	"math"
	"testing"
)

func TestBandInsolationRange(t *testing.T) {
	if got := BandInsolation(0); math.Abs(got-0.6) > 1e-12 {
		t.Fatalf("polar band insolation should be 0.6, got %f", got)
	}
	if got := BandInsolation(LatitudeBands - 1); math.Abs(got-1.5) > 1e-12 {
		t.Fatalf("equatorial band insolation should be 1.5, got %f", got)
	}
	for i := 1; i < LatitudeBands; i++ {
		if BandInsolation(i) <= BandInsolation(i-1) {
			t.Fatalf("insolation must rise monotonically toward the equator, flat at band %d", i)
		}
	}
	if got := BandInsolation(-5); got != BandInsolation(0) {
		t.Fatalf("negative bands should clamp to the pole, got %f", got)
	}
	if got := BandInsolation(500); got != BandInsolation(LatitudeBands-1) {
		t.Fatalf("overflowing bands should clamp to the equator, got %f", got)
	}
}

func TestRoundBareGroundAlbedo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.Round = true
	cfg.Params.StartWhite = 0
	cfg.Params.StartBlack = 0

	world := NewWithConfig(cfg)

	// With uniform ground the insolation-weighted albedo reduces to
	// 1 - meanInsolation * (1 - groundAlbedo), with mean insolation 1.05.
	if got := world.Albedo(); math.Abs(got-0.475) > 1e-12 {
		t.Fatalf("round bare planet albedo should be 0.475, got %.12f", got)
	}
	if got := world.Temperature(); math.Abs(got-30.5543) > 1e-3 {
		t.Fatalf("round bare planet should sit near 30.55 C, got %f", got)
	}
}

func TestBandTemperatureGradient(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.Round = true
	cfg.Params.StartWhite = 0
	cfg.Params.StartBlack = 0

	world := NewWithConfig(cfg)

	pole := world.BandTemperature(0, 0.5)
	equator := world.BandTemperature(LatitudeBands-1, 0.5)
	if math.Abs(pole-26.0543) > 1e-3 {
		t.Fatalf("polar ground should sit near 26.05 C, got %f", pole)
	}
	if math.Abs(equator-35.0543) > 1e-3 {
		t.Fatalf("equatorial ground should sit near 35.05 C, got %f", equator)
	}
	// The pole-to-equator spread is conductivity times the insolation span
	// times the co-albedo.
	if got := equator - pole; math.Abs(got-9) > 1e-9 {
		t.Fatalf("expected a 9 C spread across the bands, got %f", got)
	}

	flat := New()
	if got := flat.BandTemperature(30, 0.25); got != flat.LocalTemperature(0.25) {
		t.Fatalf("flat worlds should fall back to the local temperature, got %f", got)
	}
}

func TestRoundEquilibriumSegregatesBands(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.Round = true

	world := NewWithConfig(cfg)
	for i := 0; i < 10000; i++ {
		world.Update()
	}

	white := world.Proportion(SpeciesWhite)
	black := world.Proportion(SpeciesBlack)
	temp := world.Temperature()
	if math.Abs(white-0.3826) > 1e-3 {
		t.Fatalf("round white cover should settle near 0.383, got %f", white)
	}
	if math.Abs(black-0.3049) > 1e-3 {
		t.Fatalf("round black cover should settle near 0.305, got %f", black)
	}
	if math.Abs(temp-21.87) > 0.05 {
		t.Fatalf("round equilibrium should regulate to about 21.87 C, got %f", temp)
	}

	// Black daisies crowd the cold poles, white daisies the hot equator.
	blackStats := world.LatitudeStatsFor(SpeciesBlack)
	whiteStats := world.LatitudeStatsFor(SpeciesWhite)
	if math.Abs(blackStats.Mean-20.30) > 0.5 {
		t.Fatalf("black population should center near band 20, got %f", blackStats.Mean)
	}
	if math.Abs(whiteStats.Mean-63.61) > 0.5 {
		t.Fatalf("white population should center near band 64, got %f", whiteStats.Mean)
	}
	if blackStats.Max != 64 {
		t.Fatalf("black daisies should go extinct past band 64, got max %d", blackStats.Max)
	}
	if got := world.BandProportion(SpeciesBlack, LatitudeBands-1); got != 0 {
		t.Fatalf("equatorial black cover should be exactly zero, got %g", got)
	}
	if got := world.BandProportion(SpeciesBlack, 0); math.Abs(got-0.6934) > 1e-2 {
		t.Fatalf("polar black cover should sit near 0.69, got %f", got)
	}
	if got := world.BandProportion(SpeciesWhite, LatitudeBands-1); math.Abs(got-0.6939) > 1e-2 {
		t.Fatalf("equatorial white cover should sit near 0.69, got %f", got)
	}
}

func TestDisplayBandsSummarizeLatitudes(t *testing.T) {
	flat := New()
	if got := flat.DisplayBands(); got != nil {
		t.Fatalf("flat worlds have no display bands, got %d", len(got))
	}

	cfg := DefaultConfig()
	cfg.Params.Round = true
	world := NewWithConfig(cfg)
	for i := 0; i < 10000; i++ {
		world.Update()
	}

	views := world.DisplayBands()
	if len(views) != DisplayBandCount {
		t.Fatalf("expected %d display bands, got %d", DisplayBandCount, len(views))
	}
	for i, view := range views {
		total := view.White + view.Black + view.Gray + view.Ground
		if math.Abs(total-1) > 1e-9 {
			t.Fatalf("band %d cover should sum to 1, got %f", i, total)
		}
	}
	polar := views[0]
	equatorial := views[DisplayBandCount-1]
	if polar.Black <= polar.White {
		t.Fatalf("polar band should be black dominated, got black %f white %f", polar.Black, polar.White)
	}
	if equatorial.White <= equatorial.Black {
		t.Fatalf("equatorial band should be white dominated, got white %f black %f", equatorial.White, equatorial.Black)
	}
	if math.Abs(polar.Black-0.6926) > 1e-2 {
		t.Fatalf("polar black cover should sit near 0.69, got %f", polar.Black)
	}
}

func TestModeSwitchRoundTrip(t *testing.T) {
	world := New()
	for i := 0; i < 1000; i++ {
		world.Update()
	}
	white := world.Proportion(SpeciesWhite)
	black := world.Proportion(SpeciesBlack)
	if math.Abs(white-0.394459) > 1e-5 || math.Abs(black-0.279751) > 1e-5 {
		t.Fatalf("unexpected flat state before switch: white %f black %f", white, black)
	}

	world.SetRound(true)
	if !world.Round() {
		t.Fatal("round mode should be active")
	}
	// Entering round mode broadcasts the flat cover to every band.
	for _, band := range []int{0, 45, LatitudeBands - 1} {
		if got := world.BandProportion(SpeciesWhite, band); got != white {
			t.Fatalf("band %d should carry the broadcast cover %f, got %f", band, white, got)
		}
	}
	if got := world.Proportion(SpeciesWhite); math.Abs(got-white) > 1e-12 {
		t.Fatalf("aggregate cover should survive the switch, got %.15f want %.15f", got, white)
	}

	world.SetRound(false)
	if world.Round() {
		t.Fatal("flat mode should be active")
	}
	if got := world.Proportion(SpeciesWhite); math.Abs(got-white) > 1e-12 {
		t.Fatalf("cover should survive the round trip, got %.15f want %.15f", got, white)
	}
	if got := world.Proportion(SpeciesBlack); math.Abs(got-black) > 1e-12 {
		t.Fatalf("black cover should survive the round trip, got %.15f want %.15f", got, black)
	}

	// Switching to the current mode is a no-op.
	world.SetRound(false)
	if world.Round() {
		t.Fatal("repeated switch must not flip the mode")
	}
}

func TestLatitudeStatsForExtinctSpecies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.Round = true
	cfg.Params.StartWhite = 0
	cfg.Params.StartBlack = 0

	world := NewWithConfig(cfg)
	stats := world.LatitudeStatsFor(SpeciesWhite)
	if stats.Min != LatitudeBands || stats.Max != -1 {
		t.Fatalf("extinct species should report the empty range, got min %d max %d", stats.Min, stats.Max)
	}
	if !math.IsNaN(stats.Mean) {
		t.Fatalf("extinct species should report a NaN mean, got %f", stats.Mean)
	}

	flat := New()
	flatStats := flat.LatitudeStatsFor(SpeciesWhite)
	if flatStats.Max != -1 || !math.IsNaN(flatStats.Mean) {
		t.Fatal("flat worlds have no latitude stats")
	}
}

func TestBoostIfExtinctPerBand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.Round = true

	world := NewWithConfig(cfg)
	for i := 0; i < 10000; i++ {
		world.Update()
	}
	polarBlack := world.BandProportion(SpeciesBlack, 0)
	if got := world.BandProportion(SpeciesBlack, LatitudeBands-1); got != 0 {
		t.Fatalf("expected equatorial black extinction before boost, got %g", got)
	}

	world.BoostIfExtinct()

	if got := world.BandProportion(SpeciesBlack, LatitudeBands-1); got != 0.01 {
		t.Fatalf("boost should reseed the extinct band to 0.01, got %g", got)
	}
	if got := world.BandProportion(SpeciesBlack, 0); got != polarBlack {
		t.Fatalf("boost must leave healthy bands alone, got %g want %g", got, polarBlack)
	}
	if got := world.LatitudeStatsFor(SpeciesBlack).Max; got != LatitudeBands-1 {
		t.Fatalf("boost should repopulate the full range, got max %d", got)
	}
}

func TestRoundBlackOnlyLivesPoleward(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.Round = true
	cfg.Params.WhiteEnabled = false

	world := NewWithConfig(cfg)
	for i := 0; i < 10000; i++ {
		world.Update()
	}

	if got := world.Proportion(SpeciesBlack); math.Abs(got-0.1413) > 1e-3 {
		t.Fatalf("round black-only cover should settle near 0.141, got %f", got)
	}
	stats := world.LatitudeStatsFor(SpeciesBlack)
	if stats.Max >= 45 {
		t.Fatalf("black daisies alone should survive only poleward of band 45, got max %d", stats.Max)
	}
	if math.Abs(stats.Mean-12.45) > 0.5 {
		t.Fatalf("black population should center near band 12, got %f", stats.Mean)
	}
}
