package daisyworld

import "strconv"

// Params holds the physical tunables of the energy balance model.
type Params struct {
	Luminosity float64

	WhiteAlbedo  float64
	BlackAlbedo  float64
	GrayAlbedo   float64
	GroundAlbedo float64

	Conductivity    float64
	OptimalTemp     float64
	GrowthCurvature float64
	DeathRate       float64

	StepSize      float64
	MinProportion float64
	BoostLevel    float64

	StartWhite float64
	StartBlack float64
	StartGray  float64

	WhiteEnabled bool
	BlackEnabled bool
	GrayEnabled  bool

	Round bool
}

// Config controls the daisyworld simulation setup.
type Config struct {
	Seed int64

	Params Params
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Seed: 1337,
		Params: Params{
			Luminosity:      1.0,
			WhiteAlbedo:     0.75,
			BlackAlbedo:     0.25,
			GrayAlbedo:      0.5,
			GroundAlbedo:    0.5,
			Conductivity:    20,
			OptimalTemp:     22.5,
			GrowthCurvature: 0.003265,
			DeathRate:       0.3,
			StepSize:        0.01,
			MinProportion:   0.001,
			BoostLevel:      0.01,
			StartWhite:      0.5,
			StartBlack:      0.5,
			StartGray:       0,
			WhiteEnabled:    true,
			BlackEnabled:    true,
			GrayEnabled:     false,
			Round:           false,
		},
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	readFloat(cfg, "luminosity", &c.Params.Luminosity)
	readFloat(cfg, "white_albedo", &c.Params.WhiteAlbedo)
	readFloat(cfg, "black_albedo", &c.Params.BlackAlbedo)
	readFloat(cfg, "gray_albedo", &c.Params.GrayAlbedo)
	readFloat(cfg, "ground_albedo", &c.Params.GroundAlbedo)
	readFloat(cfg, "conductivity", &c.Params.Conductivity)
	readFloat(cfg, "optimal_temp", &c.Params.OptimalTemp)
	readFloat(cfg, "growth_curvature", &c.Params.GrowthCurvature)
	readFloat(cfg, "death_rate", &c.Params.DeathRate)
	if v, ok := cfg["step_size"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Params.StepSize = parsed
		}
	}
	readFloat(cfg, "min_proportion", &c.Params.MinProportion)
	readFloat(cfg, "boost_level", &c.Params.BoostLevel)
	readFloat(cfg, "start_white", &c.Params.StartWhite)
	readFloat(cfg, "start_black", &c.Params.StartBlack)
	readFloat(cfg, "start_gray", &c.Params.StartGray)
	readBool(cfg, "white_enabled", &c.Params.WhiteEnabled)
	readBool(cfg, "black_enabled", &c.Params.BlackEnabled)
	readBool(cfg, "gray_enabled", &c.Params.GrayEnabled)
	readBool(cfg, "round", &c.Params.Round)
	return c
}

func readFloat(cfg map[string]string, key string, dst *float64) {
	if v, ok := cfg[key]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func readBool(cfg map[string]string, key string, dst *bool) {
	if v, ok := cfg[key]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}
