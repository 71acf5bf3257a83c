package daisyworld

import (
	"strconv"

	"daisyworld/internal/core"
)

func (w *World) Parameters() core.ParameterSnapshot {
	params := w.cfg.Params
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				int64Param("seed", "Seed", w.cfg.Seed),
				boolParam("round", "Round world", w.round),
				boolParam("growth_enabled", "Growth and death", w.growing),
			},
		},
		{
			Name: "Sun",
			Params: []core.Parameter{
				floatParam("luminosity", "Solar luminosity", params.Luminosity),
			},
		},
		{
			Name: "Surface",
			Params: []core.Parameter{
				floatParam("white_albedo", "White albedo", params.WhiteAlbedo),
				floatParam("black_albedo", "Black albedo", params.BlackAlbedo),
				floatParam("gray_albedo", "Gray albedo", params.GrayAlbedo),
				floatParam("ground_albedo", "Ground albedo", params.GroundAlbedo),
			},
		},
		{
			Name: "Climate",
			Params: []core.Parameter{
				floatParam("conductivity", "Conductivity", params.Conductivity),
				floatParam("optimal_temp", "Optimal temperature", params.OptimalTemp),
				floatParam("growth_curvature", "Growth curvature", params.GrowthCurvature),
			},
		},
		{
			Name: "Daisies",
			Params: []core.Parameter{
				floatParam("death_rate", "Death rate", params.DeathRate),
				floatParam("step_size", "Step size", params.StepSize),
				floatParam("min_proportion", "Extinction floor", params.MinProportion),
				floatParam("boost_level", "Boost level", params.BoostLevel),
				floatParam("start_white", "Start white", params.StartWhite),
				floatParam("start_black", "Start black", params.StartBlack),
				floatParam("start_gray", "Start gray", params.StartGray),
				boolParam("white_enabled", "White enabled", params.WhiteEnabled),
				boolParam("black_enabled", "Black enabled", params.BlackEnabled),
				boolParam("gray_enabled", "Gray enabled", params.GrayEnabled),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the tunables exposed for interactive adjustment.
func (w *World) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "luminosity", Label: "Luminosity", Type: core.ParamTypeFloat, Step: 0.01},
		{Key: "death_rate", Label: "Death rate", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "conductivity", Label: "Conductivity", Type: core.ParamTypeFloat, Step: 1, Min: 0, HasMin: true},
		{Key: "boost_level", Label: "Boost level", Type: core.ParamTypeFloat, Step: 0.005, Min: 0, HasMin: true},
		{Key: "round", Label: "Round world", Type: core.ParamTypeBool},
		{Key: "growth_enabled", Label: "Growth", Type: core.ParamTypeBool},
		{Key: "white_enabled", Label: "White daisies", Type: core.ParamTypeBool},
		{Key: "black_enabled", Label: "Black daisies", Type: core.ParamTypeBool},
		{Key: "gray_enabled", Label: "Gray daisies", Type: core.ParamTypeBool},
	}
}

// SetIntParameter updates integer parameters by key. A changed seed takes
// effect on the next reset.
func (w *World) SetIntParameter(key string, value int) bool {
	switch key {
	case "seed":
		w.cfg.Seed = int64(value)
		return true
	default:
		return false
	}
}

// SetFloatParameter updates floating point parameters by key. Albedos and
// the death rate clamp to [0, 1]; luminosity is deliberately unchecked.
func (w *World) SetFloatParameter(key string, value float64) bool {
	switch key {
	case "luminosity":
		w.SetLuminosity(value)
		return true
	case "white_albedo":
		w.cfg.Params.WhiteAlbedo = clamp01(value)
	case "black_albedo":
		w.cfg.Params.BlackAlbedo = clamp01(value)
	case "gray_albedo":
		w.cfg.Params.GrayAlbedo = clamp01(value)
	case "ground_albedo":
		w.cfg.Params.GroundAlbedo = clamp01(value)
	case "conductivity":
		w.cfg.Params.Conductivity = value
	case "optimal_temp":
		w.cfg.Params.OptimalTemp = value
	case "growth_curvature":
		if value < 0 {
			return false
		}
		w.cfg.Params.GrowthCurvature = value
	case "death_rate":
		w.cfg.Params.DeathRate = clamp01(value)
	case "step_size":
		if value <= 0 {
			return false
		}
		w.cfg.Params.StepSize = value
	case "min_proportion":
		if value < 0 {
			return false
		}
		w.cfg.Params.MinProportion = value
	case "boost_level":
		if value < 0 {
			return false
		}
		w.cfg.Params.BoostLevel = value
	case "start_white":
		w.cfg.Params.StartWhite = clamp01(value)
	case "start_black":
		w.cfg.Params.StartBlack = clamp01(value)
	case "start_gray":
		w.cfg.Params.StartGray = clamp01(value)
	default:
		return false
	}
	w.invalidate()
	return true
}

// SetBoolParameter updates boolean parameters by key.
func (w *World) SetBoolParameter(key string, value bool) bool {
	switch key {
	case "round":
		w.SetRound(value)
		return true
	case "growth_enabled":
		w.SetGrowthEnabled(value)
		return true
	case "white_enabled":
		w.SetSpeciesEnabled(SpeciesWhite, value)
		return true
	case "black_enabled":
		w.SetSpeciesEnabled(SpeciesBlack, value)
		return true
	case "gray_enabled":
		w.SetSpeciesEnabled(SpeciesGray, value)
		return true
	default:
		return false
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}
