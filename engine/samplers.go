package engine

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/makecases/distribution"
)

// sampler draws one variate.
type sampler func() float64

// newSampler validates expr against the generator's domain and returns a closure
// over src. Families gonum does not ship (geom, hyper, igauss, negbin, halfnrm)
// are composed from distuv draws.
func newSampler(expr distribution.Expression, src rand.Source) (sampler, error) {
	info, ok := distribution.Lookup(expr.Name())
	if !ok {
		return nil, fmt.Errorf("%w: unknown distribution %q", ErrParameterRange, expr.Name())
	}
	p := expr.Params()
	if len(p) != info.Arity() {
		return nil, fmt.Errorf("%w: %s requires %d parameters (%v), got %d",
			ErrParameterRange, info.Name, info.Arity(), info.Params, len(p))
	}

	unit := distuv.Uniform{Min: 0, Max: 1, Src: src}

	switch expr.Name() {
	case distribution.Bernoulli:
		if err := check(info, 0, p[0] >= 0 && p[0] <= 1, "must be in [0,1]", p[0]); err != nil {
			return nil, err
		}
		return distuv.Bernoulli{P: p[0], Src: src}.Rand, nil

	case distribution.Beta:
		if err := positiveAll(info, p); err != nil {
			return nil, err
		}
		return distuv.Beta{Alpha: p[0], Beta: p[1], Src: src}.Rand, nil

	case distribution.Binom:
		if err := check(info, 0, isCount(p[0]), "must be a non-negative integer", p[0]); err != nil {
			return nil, err
		}
		if err := check(info, 1, p[1] >= 0 && p[1] <= 1, "must be in [0,1]", p[1]); err != nil {
			return nil, err
		}
		return distuv.Binomial{N: p[0], P: p[1], Src: src}.Rand, nil

	case distribution.Cauchy:
		if err := positiveAt(info, 1, p[1]); err != nil {
			return nil, err
		}
		return distuv.StudentsT{Mu: p[0], Sigma: p[1], Nu: 1, Src: src}.Rand, nil

	case distribution.ChiSq:
		if err := positiveAll(info, p); err != nil {
			return nil, err
		}
		return distuv.ChiSquared{K: p[0], Src: src}.Rand, nil

	case distribution.Exp:
		if err := positiveAll(info, p); err != nil {
			return nil, err
		}
		return distuv.Exponential{Rate: p[0], Src: src}.Rand, nil

	case distribution.F:
		if err := positiveAll(info, p); err != nil {
			return nil, err
		}
		return distuv.F{D1: p[0], D2: p[1], Src: src}.Rand, nil

	case distribution.Gamma:
		if err := positiveAll(info, p); err != nil {
			return nil, err
		}
		return distuv.Gamma{Alpha: p[0], Beta: p[1], Src: src}.Rand, nil

	case distribution.Geom:
		if err := check(info, 0, p[0] > 0 && p[0] <= 1, "must be in (0,1]", p[0]); err != nil {
			return nil, err
		}
		return func() float64 { return geometric(unit, p[0]) }, nil

	case distribution.HalfNrm:
		if err := positiveAt(info, 1, p[1]); err != nil {
			return nil, err
		}
		n := distuv.Normal{Mu: 0, Sigma: p[1], Src: src}
		return func() float64 { return p[0] + math.Abs(n.Rand()) }, nil

	case distribution.Hyper:
		for i := range p {
			if err := check(info, i, isCount(p[i]), "must be a non-negative integer", p[i]); err != nil {
				return nil, err
			}
		}
		if err := check(info, 1, p[1] <= p[0], "must not exceed total", p[1]); err != nil {
			return nil, err
		}
		if err := check(info, 2, p[2] <= p[0], "must not exceed total", p[2]); err != nil {
			return nil, err
		}
		total, sample, hits := int(p[0]), int(p[1]), int(p[2])
		return func() float64 { return hypergeometric(unit, total, sample, hits) }, nil

	case distribution.IGauss:
		if err := positiveAll(info, p); err != nil {
			return nil, err
		}
		n := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
		return func() float64 { return inverseGaussian(n, unit, p[0], p[1]) }, nil

	case distribution.Laplace:
		if err := positiveAt(info, 1, p[1]); err != nil {
			return nil, err
		}
		return distuv.Laplace{Mu: p[0], Scale: p[1], Src: src}.Rand, nil

	case distribution.LNormal:
		if err := positiveAll(info, p); err != nil {
			return nil, err
		}
		return distuv.LogNormal{Mu: math.Log(p[0]), Sigma: p[1], Src: src}.Rand, nil

	case distribution.Logistic:
		if err := positiveAt(info, 1, p[1]); err != nil {
			return nil, err
		}
		l := distuv.Logistic{Mu: p[0], S: p[1]}
		return func() float64 { return l.Quantile(openUnit(unit)) }, nil

	case distribution.NegBin:
		if err := check(info, 0, isCount(p[0]) && p[0] >= 1, "must be an integer >= 1", p[0]); err != nil {
			return nil, err
		}
		if err := check(info, 1, p[1] > 0 && p[1] <= 1, "must be in (0,1]", p[1]); err != nil {
			return nil, err
		}
		threshold := int(p[0])
		return func() float64 {
			var trials float64
			for i := 0; i < threshold; i++ {
				trials += geometric(unit, p[1])
			}
			return trials
		}, nil

	case distribution.Normal:
		if err := positiveAt(info, 1, p[1]); err != nil {
			return nil, err
		}
		return distuv.Normal{Mu: p[0], Sigma: p[1], Src: src}.Rand, nil

	case distribution.Pareto:
		if err := positiveAll(info, p); err != nil {
			return nil, err
		}
		return distuv.Pareto{Xm: p[0], Alpha: p[1], Src: src}.Rand, nil

	case distribution.Poisson:
		if err := positiveAll(info, p); err != nil {
			return nil, err
		}
		return distuv.Poisson{Lambda: p[0], Src: src}.Rand, nil

	case distribution.T:
		if err := positiveAll(info, p); err != nil {
			return nil, err
		}
		return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: p[0], Src: src}.Rand, nil

	case distribution.Triangular:
		return func() float64 { return expr.Inverse(unit.Rand()) }, nil

	case distribution.Uniform:
		if err := check(info, 1, p[0] <= p[1], "must not be below min", p[1]); err != nil {
			return nil, err
		}
		return distuv.Uniform{Min: p[0], Max: p[1], Src: src}.Rand, nil

	case distribution.Weibull:
		if err := positiveAll(info, p); err != nil {
			return nil, err
		}
		return distuv.Weibull{K: p[1], Lambda: p[0], Src: src}.Rand, nil
	}
	return nil, fmt.Errorf("%w: no generator for %q", ErrParameterRange, expr.Name())
}

// check reports parameter idx of info as out of range unless ok.
func check(info distribution.Info, idx int, ok bool, rule string, v float64) error {
	if ok {
		return nil
	}
	return fmt.Errorf("%w: %s %s %s, got %g", ErrParameterRange, info.Name, info.Params[idx], rule, v)
}

func positiveAt(info distribution.Info, idx int, v float64) error {
	return check(info, idx, v > 0, "must be positive", v)
}

func positiveAll(info distribution.Info, p []float64) error {
	for i, v := range p {
		if err := positiveAt(info, i, v); err != nil {
			return err
		}
	}
	return nil
}

func isCount(v float64) bool {
	return v >= 0 && v == math.Trunc(v)
}

// openUnit returns a uniform draw in (0,1).
func openUnit(u distuv.Uniform) float64 {
	for {
		if v := u.Rand(); v > 0 {
			return v
		}
	}
}

// geometric returns the number of Bernoulli(p) trials up to and including the first success.
func geometric(u distuv.Uniform, p float64) float64 {
	if p >= 1 {
		return 1
	}
	return 1 + math.Floor(math.Log(1-u.Rand())/math.Log1p(-p))
}

// hypergeometric counts marked items in a sample drawn without replacement.
func hypergeometric(u distuv.Uniform, total, sample, hits int) float64 {
	var got int
	remaining, marked := total, hits
	for i := 0; i < sample && remaining > 0; i++ {
		if u.Rand()*float64(remaining) < float64(marked) {
			got++
			marked--
		}
		remaining--
	}
	return float64(got)
}

// inverseGaussian uses the Michael, Schucany and Haas transformation.
func inverseGaussian(n distuv.Normal, u distuv.Uniform, mu, lambda float64) float64 {
	z := n.Rand()
	y := z * z
	x := mu + mu*mu*y/(2*lambda) - mu/(2*lambda)*math.Sqrt(4*mu*lambda*y+mu*mu*y*y)
	if u.Rand() <= mu/(mu+x) {
		return x
	}
	return mu * mu / x
}
