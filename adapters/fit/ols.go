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

// OLSFitter fits an ordinary least squares regression of a response on a set
// of predictor columns, with an intercept. An empty predictor list fits the
// intercept-only null model.
type OLSFitter struct {
	response   string
	predictors []string
}

// NewOLS creates an OLS fitter for response ~ predictors
func NewOLS(response string, predictors ...string) *OLSFitter {
	return &OLSFitter{response: response, predictors: predictors}
}

// Spec returns the formula label
func (f *OLSFitter) Spec() string {
	if len(f.predictors) == 0 {
		return f.response + " ~ 1"
	}
	return f.response + " ~ " + strings.Join(f.predictors, " + ")
}

// Coefficient holds one estimated term with its inference summary
type Coefficient struct {
	Term     string  `json:"term"`
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_err"`
	TValue   float64 `json:"t_value"`
	PValue   float64 `json:"p_value"`
}

// OLSFit is a fitted linear model. It satisfies ports.FittedModel: the
// parameter count includes the residual variance, which maximum likelihood
// estimates alongside the coefficients.
type OLSFit struct {
	spec         string
	coefficients []Coefficient
	logLik       float64
	n            int
	rss          float64
	rSquared     float64
}

func (m *OLSFit) Name() string           { return m.spec }
func (m *OLSFit) LogLikelihood() float64 { return m.logLik }
func (m *OLSFit) NumObservations() int   { return m.n }

// NumParameters counts the coefficients plus the estimated residual variance
func (m *OLSFit) NumParameters() int { return len(m.coefficients) + 1 }

// Coefficients returns the estimated terms in design order
func (m *OLSFit) Coefficients() []Coefficient { return m.coefficients }

// RSquared returns the coefficient of determination
func (m *OLSFit) RSquared() float64 { return m.rSquared }

// RSS returns the residual sum of squares
func (m *OLSFit) RSS() float64 { return m.rss }

// Fit estimates the model on the frame's complete cases
func (f *OLSFitter) Fit(ctx context.Context, frame *dataset.Frame) (ports.FittedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cols := append([]string{f.response}, f.predictors...)
	cc, err := frame.CompleteCases(cols...)
	if err != nil {
		return nil, core.NewFitError(f.Spec(), err)
	}

	y, design, err := buildDesign(cc, f.response, f.predictors)
	if err != nil {
		return nil, err
	}

	n, p := design.Dims()
	if n < p+2 {
		return nil, fmt.Errorf("%w: %d rows for %d parameters in %s", core.ErrInsufficientData, n, p, f.Spec())
	}

	// Least squares via QR. A rank-deficient design (collinear predictors,
	// constant column duplicated with the intercept) fails the solve.
	var beta mat.VecDense
	var qr mat.QR
	qr.Factorize(design)
	yVec := mat.NewVecDense(n, y)
	if err := qr.SolveVecTo(&beta, false, yVec); err != nil {
		return nil, fmt.Errorf("%w in %s: %v", core.ErrSingularDesign, f.Spec(), err)
	}

	// Residuals and fit quality
	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(design, &beta)
	rss := 0.0
	meanY := 0.0
	for i := 0; i < n; i++ {
		meanY += y[i]
	}
	meanY /= float64(n)
	tss := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		rss += r * r
		d := y[i] - meanY
		tss += d * d
	}

	rSquared := 0.0
	if tss > 0 {
		rSquared = 1 - rss/tss
	}

	// Gaussian log-likelihood at the MLE variance sigma^2 = RSS/n:
	// ll = -n/2 * (ln(2*pi) + ln(sigma^2) + 1)
	nf := float64(n)
	sigma2 := rss / nf
	var logLik float64
	if sigma2 <= 0 {
		// Perfect fit. The Gaussian likelihood degenerates; report +Inf and
		// let the ranking engine's non-finite policy decide.
		logLik = math.Inf(1)
	} else {
		logLik = -0.5 * nf * (math.Log(2*math.Pi) + math.Log(sigma2) + 1)
	}

	coefficients, err := olsInference(design, &beta, rss, n, p, f.predictors)
	if err != nil {
		return nil, err
	}

	return &OLSFit{
		spec:         f.Spec(),
		coefficients: coefficients,
		logLik:       logLik,
		n:            n,
		rss:          rss,
		rSquared:     rSquared,
	}, nil
}

// olsInference computes standard errors, t-statistics and p-values for the
// coefficients using the unbiased variance estimate RSS/(n-p).
func olsInference(design *mat.Dense, beta *mat.VecDense, rss float64, n, p int, predictors []string) ([]Coefficient, error) {
	var xtx mat.Dense
	xtx.Mul(design.T(), design)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSingularDesign, err)
	}

	df := n - p
	s2 := rss / float64(df)
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}

	terms := append([]string{"(Intercept)"}, predictors...)
	coefficients := make([]Coefficient, p)
	for j := 0; j < p; j++ {
		se := math.Sqrt(s2 * xtxInv.At(j, j))
		est := beta.AtVec(j)
		tVal := 0.0
		pVal := 1.0
		if se > 0 {
			tVal = est / se
			pVal = 2 * (1 - tDist.CDF(math.Abs(tVal)))
		}
		coefficients[j] = Coefficient{
			Term:     terms[j],
			Estimate: est,
			StdErr:   se,
			TValue:   tVal,
			PValue:   pVal,
		}
	}
	return coefficients, nil
}

// buildDesign assembles the response vector and the design matrix with a
// leading intercept column
func buildDesign(frame *dataset.Frame, response string, predictors []string) ([]float64, *mat.Dense, error) {
	y, err := frame.Column(response)
	if err != nil {
		return nil, nil, err
	}
	n := len(y)
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: no complete cases for response %q", core.ErrInsufficientData, response)
	}

	p := len(predictors) + 1
	design := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
	}
	for j, name := range predictors {
		col, err := frame.Column(name)
		if err != nil {
			return nil, nil, err
		}
		for i := 0; i < n; i++ {
			design.Set(i, j+1, col[i])
		}
	}
	return y, design, nil
}
