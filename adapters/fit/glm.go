package fit

import (
	"context"
	"fmt"
	"math"
	"strings"

	"modelrank/domain/core"
	"modelrank/domain/dataset"
	"modelrank/ports"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Family identifies a GLM error distribution with its canonical link
type Family string

const (
	FamilyPoisson  Family = "poisson"  // log link, counts
	FamilyBinomial Family = "binomial" // logit link, 0/1 outcomes
)

const (
	irlsMaxIter = 50
	irlsTol     = 1e-8
)

// GLMFitter fits a generalized linear model by iteratively reweighted least
// squares under the family's canonical link.
type GLMFitter struct {
	family     Family
	response   string
	predictors []string
}

// NewPoisson creates a Poisson (log link) GLM fitter
func NewPoisson(response string, predictors ...string) *GLMFitter {
	return &GLMFitter{family: FamilyPoisson, response: response, predictors: predictors}
}

// NewLogistic creates a binomial (logit link) GLM fitter
func NewLogistic(response string, predictors ...string) *GLMFitter {
	return &GLMFitter{family: FamilyBinomial, response: response, predictors: predictors}
}

// Spec returns the formula label including the family
func (f *GLMFitter) Spec() string {
	rhs := "1"
	if len(f.predictors) > 0 {
		rhs = strings.Join(f.predictors, " + ")
	}
	return fmt.Sprintf("%s ~ %s [%s]", f.response, rhs, f.family)
}

// GLMFit is a fitted generalized linear model
type GLMFit struct {
	spec         string
	family       Family
	coefficients []Coefficient
	logLik       float64
	deviance     float64
	n            int
	iterations   int
}

func (m *GLMFit) Name() string           { return m.spec }
func (m *GLMFit) LogLikelihood() float64 { return m.logLik }
func (m *GLMFit) NumObservations() int   { return m.n }

// NumParameters counts the linear coefficients. Poisson and binomial have a
// fixed dispersion, so no variance parameter is added.
func (m *GLMFit) NumParameters() int { return len(m.coefficients) }

// Coefficients returns the estimated terms in design order
func (m *GLMFit) Coefficients() []Coefficient { return m.coefficients }

// Deviance returns the residual deviance
func (m *GLMFit) Deviance() float64 { return m.deviance }

// Iterations returns how many IRLS steps were taken
func (m *GLMFit) Iterations() int { return m.iterations }

// Fit estimates the model on the frame's complete cases
func (f *GLMFitter) Fit(ctx context.Context, frame *dataset.Frame) (ports.FittedModel, error) {
	cols := append([]string{f.response}, f.predictors...)
	cc, err := frame.CompleteCases(cols...)
	if err != nil {
		return nil, core.NewFitError(f.Spec(), err)
	}

	y, design, err := buildDesign(cc, f.response, f.predictors)
	if err != nil {
		return nil, err
	}
	if err := f.validateResponse(y); err != nil {
		return nil, err
	}

	n, p := design.Dims()
	if n < p+2 {
		return nil, fmt.Errorf("%w: %d rows for %d parameters in %s", core.ErrInsufficientData, n, p, f.Spec())
	}

	mu := f.initialMu(y)
	eta := make([]float64, n)
	for i := range mu {
		eta[i] = f.link(mu[i])
	}

	beta := mat.NewVecDense(p, nil)
	w := make([]float64, n)
	z := make([]float64, n)
	devOld := math.Inf(1)
	iterations := 0

	for iter := 0; iter < irlsMaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iterations = iter + 1

		// Working weights and working response for the canonical link:
		// W = Var(mu), z = eta + (y - mu)/Var(mu)
		for i := 0; i < n; i++ {
			v := f.variance(mu[i])
			if v < 1e-10 {
				v = 1e-10
			}
			w[i] = v
			z[i] = eta[i] + (y[i]-mu[i])/v
		}

		if err := solveWeighted(design, w, z, beta); err != nil {
			return nil, fmt.Errorf("%w in %s: %v", core.ErrSingularDesign, f.Spec(), err)
		}

		etaVec := mat.NewVecDense(n, nil)
		etaVec.MulVec(design, beta)
		for i := 0; i < n; i++ {
			eta[i] = etaVec.AtVec(i)
			mu[i] = f.invLink(eta[i])
		}

		dev := f.devianceOf(y, mu)
		if math.Abs(dev-devOld)/(math.Abs(dev)+0.1) < irlsTol {
			devOld = dev
			break
		}
		devOld = dev
		if iter == irlsMaxIter-1 {
			return nil, fmt.Errorf("%w: %s after %d IRLS iterations", core.ErrFitNotConverged, f.Spec(), irlsMaxIter)
		}
	}

	coefficients, err := f.inference(design, beta, w, p)
	if err != nil {
		return nil, err
	}

	return &GLMFit{
		spec:         f.Spec(),
		family:       f.family,
		coefficients: coefficients,
		logLik:       f.logLikOf(y, mu),
		deviance:     devOld,
		n:            n,
		iterations:   iterations,
	}, nil
}

func (f *GLMFitter) validateResponse(y []float64) error {
	for _, v := range y {
		switch f.family {
		case FamilyPoisson:
			if v < 0 || v != math.Trunc(v) {
				return core.NewFitError(f.Spec(), fmt.Errorf("poisson response must be a non-negative count, got %v", v))
			}
		case FamilyBinomial:
			if v != 0 && v != 1 {
				return core.NewFitError(f.Spec(), fmt.Errorf("binomial response must be 0/1, got %v", v))
			}
		}
	}
	return nil
}

func (f *GLMFitter) initialMu(y []float64) []float64 {
	mu := make([]float64, len(y))
	for i, v := range y {
		switch f.family {
		case FamilyPoisson:
			mu[i] = v + 0.5
		case FamilyBinomial:
			mu[i] = (v + 0.5) / 2
		}
	}
	return mu
}

func (f *GLMFitter) link(mu float64) float64 {
	switch f.family {
	case FamilyBinomial:
		return math.Log(mu / (1 - mu))
	default:
		return math.Log(mu)
	}
}

func (f *GLMFitter) invLink(eta float64) float64 {
	switch f.family {
	case FamilyBinomial:
		return 1 / (1 + math.Exp(-eta))
	default:
		return math.Exp(eta)
	}
}

func (f *GLMFitter) variance(mu float64) float64 {
	switch f.family {
	case FamilyBinomial:
		return mu * (1 - mu)
	default:
		return mu
	}
}

func (f *GLMFitter) devianceOf(y, mu []float64) float64 {
	dev := 0.0
	for i := range y {
		switch f.family {
		case FamilyPoisson:
			if y[i] > 0 {
				dev += 2 * (y[i]*math.Log(y[i]/mu[i]) - (y[i] - mu[i]))
			} else {
				dev += 2 * mu[i]
			}
		case FamilyBinomial:
			if y[i] > 0.5 {
				dev += -2 * math.Log(mu[i])
			} else {
				dev += -2 * math.Log(1-mu[i])
			}
		}
	}
	return dev
}

func (f *GLMFitter) logLikOf(y, mu []float64) float64 {
	ll := 0.0
	for i := range y {
		switch f.family {
		case FamilyPoisson:
			lg, _ := math.Lgamma(y[i] + 1)
			ll += y[i]*math.Log(mu[i]) - mu[i] - lg
		case FamilyBinomial:
			if y[i] > 0.5 {
				ll += math.Log(mu[i])
			} else {
				ll += math.Log(1 - mu[i])
			}
		}
	}
	return ll
}

// inference computes Wald standard errors and z-tests from the final
// weighted information matrix (X' W X)^-1
func (f *GLMFitter) inference(design *mat.Dense, beta *mat.VecDense, w []float64, p int) ([]Coefficient, error) {
	n, _ := design.Dims()
	weighted := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			weighted.Set(i, j, design.At(i, j)*w[i])
		}
	}
	var info mat.Dense
	info.Mul(design.T(), weighted)
	var infoInv mat.Dense
	if err := infoInv.Inverse(&info); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSingularDesign, err)
	}

	norm := distuv.UnitNormal
	terms := append([]string{"(Intercept)"}, f.predictors...)
	coefficients := make([]Coefficient, p)
	for j := 0; j < p; j++ {
		se := math.Sqrt(infoInv.At(j, j))
		est := beta.AtVec(j)
		zVal := 0.0
		pVal := 1.0
		if se > 0 {
			zVal = est / se
			pVal = 2 * (1 - norm.CDF(math.Abs(zVal)))
		}
		coefficients[j] = Coefficient{
			Term:     terms[j],
			Estimate: est,
			StdErr:   se,
			TValue:   zVal,
			PValue:   pVal,
		}
	}
	return coefficients, nil
}

// solveWeighted solves the weighted least squares step by scaling rows with
// sqrt(w) and factorizing with QR
func solveWeighted(design *mat.Dense, w, z []float64, beta *mat.VecDense) error {
	n, p := design.Dims()
	scaled := mat.NewDense(n, p, nil)
	target := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		sw := math.Sqrt(w[i])
		for j := 0; j < p; j++ {
			scaled.Set(i, j, design.At(i, j)*sw)
		}
		target.SetVec(i, z[i]*sw)
	}

	var qr mat.QR
	qr.Factorize(scaled)
	return qr.SolveVecTo(beta, false, target)
}
