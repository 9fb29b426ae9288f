package dynamics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"adhesim/internal/model"
)

// FitEquilibrium fits N(t) = Neq*(1 - exp(-t/tau)) to attached counts, where
// counts[i] is the count after step i+1. Tail statistics cover the last
// quarter of the series.
func FitEquilibrium(counts []int) (model.EquilibriumFit, error) {
	if len(counts) == 0 {
		return model.EquilibriumFit{}, fmt.Errorf("%w: no attachment counts to fit", model.ErrConfiguration)
	}
	obs := make([]float64, len(counts))
	for i, c := range counts {
		obs[i] = float64(c)
	}

	tail := obs[len(obs)-max(len(obs)/4, 1):]
	mean, std := stat.Mean(tail, nil), 0.0
	if len(tail) > 1 {
		std = stat.StdDev(tail, nil)
	}
	fit := model.EquilibriumFit{TailMean: mean, TailStdDev: std}
	if mean == 0 && floats.Max(obs) == 0 {
		return fit, nil
	}

	pred := make([]float64, len(obs))
	curve := func(x []float64) []float64 {
		tau := math.Exp(x[1])
		for i := range pred {
			pred[i] = x[0] * (1 - math.Exp(-float64(i+1)/tau))
		}
		return pred
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			d := floats.Distance(curve(x), obs, 2)
			return d * d
		},
	}
	init := []float64{math.Max(mean, 1), math.Log(riseTime(obs, mean))}
	res, err := optimize.Minimize(problem, init, &optimize.Settings{FuncEvaluations: 20000}, &optimize.NelderMead{})
	// An evaluation limit still leaves the best point found.
	if err != nil && (res == nil || !res.Status.Early()) {
		return fit, fmt.Errorf("fit equilibrium: %w", err)
	}
	fit.Equilibrium = res.X[0]
	fit.Tau = math.Exp(res.X[1])
	return fit, nil
}

// riseTime is the first step reaching 1-1/e of level, the tau estimate used to
// seed the fit.
func riseTime(obs []float64, level float64) float64 {
	target := level * (1 - 1/math.E)
	for i, v := range obs {
		if v >= target {
			return float64(i + 1)
		}
	}
	return float64(len(obs))
}
