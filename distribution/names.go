package distribution

import (
	"fmt"
	"sort"
	"strings"

	"github.com/katalvlaran/makecases"
)

// Name identifies a generator family. The set is closed; see Names.
type Name string

// Generator families.
const (
	Bernoulli  Name = "bernoulli"
	Beta       Name = "beta"
	Binom      Name = "binom"
	Cauchy     Name = "cauchy"
	ChiSq      Name = "chisq"
	Exp        Name = "exp"
	F          Name = "f"
	Gamma      Name = "gamma"
	Geom       Name = "geom"
	HalfNrm    Name = "halfnrm"
	Hyper      Name = "hyper"
	IGauss     Name = "igauss"
	Laplace    Name = "laplace"
	LNormal    Name = "lnormal"
	Logistic   Name = "logistic"
	NegBin     Name = "negbin"
	Normal     Name = "normal"
	Pareto     Name = "pareto"
	Poisson    Name = "poisson"
	T          Name = "t"
	Triangular Name = "triangular"
	Uniform    Name = "uniform"
	Weibull    Name = "weibull"
)

// Info documents a generator family: its parameter names in order and a short description.
type Info struct {
	Name        Name
	Params      []string
	Description string
}

// Arity is the number of parameters the family takes.
func (i Info) Arity() int { return len(i.Params) }

var catalog = map[Name]Info{
	Bernoulli:  {Bernoulli, []string{"p"}, "1 with probability p, else 0"},
	Beta:       {Beta, []string{"shape1", "shape2"}, "beta on [0,1]"},
	Binom:      {Binom, []string{"n", "p"}, "successes in n trials"},
	Cauchy:     {Cauchy, []string{"location", "scale"}, "Cauchy (Lorentz)"},
	ChiSq:      {ChiSq, []string{"df"}, "chi-square"},
	Exp:        {Exp, []string{"rate"}, "exponential with mean 1/rate"},
	F:          {F, []string{"df1", "df2"}, "F ratio"},
	Gamma:      {Gamma, []string{"shape", "rate"}, "gamma with mean shape/rate"},
	Geom:       {Geom, []string{"p"}, "trials until the first success"},
	HalfNrm:    {HalfNrm, []string{"location", "sd"}, "location + |N(0, sd)|"},
	Hyper:      {Hyper, []string{"total", "sample", "hits"}, "hits drawn without replacement"},
	IGauss:     {IGauss, []string{"mean", "shape"}, "inverse Gaussian (Wald)"},
	Laplace:    {Laplace, []string{"mean", "scale"}, "double exponential"},
	LNormal:    {LNormal, []string{"a", "b"}, "exp(N(ln a, b))"},
	Logistic:   {Logistic, []string{"mean", "scale"}, "logistic"},
	NegBin:     {NegBin, []string{"threshold", "p"}, "trials until threshold successes"},
	Normal:     {Normal, []string{"mean", "sd"}, "Gaussian"},
	Pareto:     {Pareto, []string{"threshold", "shape"}, "Pareto type I"},
	Poisson:    {Poisson, []string{"mean"}, "Poisson counts"},
	T:          {T, []string{"df"}, "Student's t"},
	Triangular: {Triangular, []string{"a", "b", "c"}, "triangular on [a,b] with mode c"},
	Uniform:    {Uniform, []string{"min", "max"}, "continuous uniform"},
	Weibull:    {Weibull, []string{"scale", "shape"}, "Weibull"},
}

// Names returns every family name in alphabetical order.
func Names() []Name {
	out := make([]Name, 0, len(catalog))
	for n := range catalog {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Lookup returns the Info for a family.
func Lookup(n Name) (Info, bool) {
	info, ok := catalog[n]
	return info, ok
}

// ParseName resolves a family name case-insensitively.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := catalog[n]; !ok {
		return "", fmt.Errorf("%w: unknown distribution %q", makecases.ErrInvalidParameters, s)
	}
	return n, nil
}

// Valid reports whether n is a member of the closed set.
func (n Name) Valid() bool {
	_, ok := catalog[n]
	return ok
}

// String returns the lower-case family name.
func (n Name) String() string { return string(n) }
