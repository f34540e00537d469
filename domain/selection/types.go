package selection

import (
	"fmt"
	"math"
	"strings"

	"modelrank/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// Criterion identifies the information criterion used for a comparison
type Criterion string

const (
	CriterionAIC  Criterion = "aic"
	CriterionAICc Criterion = "aicc"
	CriterionBIC  Criterion = "bic"
)

// ParseCriterion parses a string into a Criterion
func ParseCriterion(s string) (Criterion, error) {
	switch Criterion(strings.ToLower(strings.TrimSpace(s))) {
	case CriterionAIC:
		return CriterionAIC, nil
	case CriterionAICc:
		return CriterionAICc, nil
	case CriterionBIC:
		return CriterionBIC, nil
	case "":
		return CriterionAIC, nil
	default:
		return "", fmt.Errorf("unknown criterion %q", s)
	}
}

// Candidate is an immutable fit summary for one already-fitted model.
// INVARIANTS:
// - NumParameters >= 1 (every model estimates at least one free parameter)
// - NumObservations > 0
// - All candidates in one comparison set were fit to the identical
//   observation set (same rows, same response). The ranking engine checks
//   NumObservations agreement as a cheap partial safeguard; identical rows
//   remain the caller's responsibility.
type Candidate struct {
	ID              core.ModelID `json:"id"`
	Name            string       `json:"name"`
	LogLikelihood   float64      `json:"log_likelihood"`
	NumParameters   int          `json:"num_parameters"`
	NumObservations int          `json:"num_observations"`
}

// Validate checks the structural invariants of a candidate record
func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Name) == "" && c.ID.String() == "" {
		return NewCandidateError(c.Name, "candidate needs a name or id")
	}
	if c.NumParameters < 1 {
		return NewCandidateError(c.Label(), fmt.Sprintf("num_parameters must be >= 1, got %d", c.NumParameters))
	}
	if c.NumObservations < 1 {
		return NewCandidateError(c.Label(), fmt.Sprintf("num_observations must be >= 1, got %d", c.NumObservations))
	}
	return nil
}

// Label returns the human-facing identifier for the candidate
func (c Candidate) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID.String()
}

// FiniteLogLikelihood reports whether the log-likelihood is usable.
// Non-converged fits commonly surface as NaN or +/-Inf.
func (c Candidate) FiniteLogLikelihood() bool {
	return !math.IsNaN(c.LogLikelihood) && !math.IsInf(c.LogLikelihood, 0)
}

// SmallSample reports whether the observations-per-parameter ratio is low
// enough that the small-sample correction (AICc) is recommended.
func (c Candidate) SmallSample() bool {
	return float64(c.NumObservations)/float64(c.NumParameters) < SmallSampleRatio
}

// SmallSampleRatio is the n/k threshold below which AICc is recommended
const SmallSampleRatio = 40.0

// CriterionRow is one candidate scored under a single criterion.
// Derived, recomputed whenever the candidate set changes; never persisted
// on its own.
type CriterionRow struct {
	ModelID         core.ModelID `json:"model_id"`
	Name            string       `json:"name"`
	LogLikelihood   float64      `json:"log_likelihood"`
	NumParameters   int          `json:"num_parameters"`
	NumObservations int          `json:"num_observations"`
	Criterion       Criterion    `json:"criterion"`
	Value           float64      `json:"value"`
}

// TableRow is a ranked criterion row with relative-support measures.
// INVARIANTS:
// - Delta >= 0, with exactly the top-ranked row at Delta == 0
// - Weight in [0,1]; weights over a table sum to 1 within tolerance
// - EvidenceRatio >= 1 (weight of the best model over this row's weight)
type TableRow struct {
	Rank             int          `json:"rank"`
	ModelID          core.ModelID `json:"model_id"`
	Name             string       `json:"name"`
	LogLikelihood    float64      `json:"log_likelihood"`
	NumParameters    int          `json:"num_parameters"`
	Criterion        Criterion    `json:"criterion"`
	Value            float64      `json:"value"`
	Delta            float64      `json:"delta"`
	RelLikelihood    float64      `json:"rel_likelihood"`
	Weight           float64      `json:"weight"`
	EvidenceRatio    float64      `json:"evidence_ratio"`
	CumulativeWeight float64      `json:"cumulative_weight"`
}

// WarningCode represents structured warning types attached to a table
type WarningCode string

const (
	WarningNonFiniteLogLik WarningCode = "NON_FINITE_LOG_LIKELIHOOD" // excluded fit (NaN/Inf, likely non-converged)
	WarningSmallSample     WarningCode = "SMALL_SAMPLE"              // n/k < 40 but plain AIC requested
)

// Warning is a non-fatal finding recorded during table construction
type Warning struct {
	Code    WarningCode  `json:"code"`
	ModelID core.ModelID `json:"model_id,omitempty"`
	Message string       `json:"message"`
}

// ExcludedRow records a candidate dropped from the ranking and why
type ExcludedRow struct {
	ModelID core.ModelID `json:"model_id"`
	Name    string       `json:"name"`
	Reason  WarningCode  `json:"reason"`
}

// Table is the derived comparison table. It is a pure function of the
// candidate set and options; recomputing from the same inputs yields
// identical rows.
type Table struct {
	Criterion       Criterion                  `json:"criterion"`
	NumObservations int                        `json:"num_observations"`
	Rows            []TableRow                 `json:"rows"`
	Excluded        []ExcludedRow              `json:"excluded,omitempty"`
	Warnings        []Warning                  `json:"warnings,omitempty"`
	Fingerprint     core.ComparisonFingerprint `json:"fingerprint"`
}

// Best returns the top-ranked row
func (t Table) Best() TableRow {
	return t.Rows[0]
}

// Row looks up a row by model label
func (t Table) Row(name string) (TableRow, bool) {
	for _, row := range t.Rows {
		if row.Name == name {
			return row, true
		}
	}
	return TableRow{}, false
}

// NonFinitePolicy decides what happens when a candidate's log-likelihood is
// NaN or infinite (typically a non-converged fit).
type NonFinitePolicy string

const (
	// FailOnNonFinite rejects the whole comparison. Default: a silent
	// partial ranking is easy to misread as a complete one.
	FailOnNonFinite NonFinitePolicy = "fail"
	// ExcludeNonFinite drops offending candidates and records them on the
	// table with a warning.
	ExcludeNonFinite NonFinitePolicy = "exclude"
)

// Options configures table construction
type Options struct {
	// Criterion selects AIC, AICc or BIC. Empty means AIC.
	Criterion Criterion
	// NonFinite selects the non-finite log-likelihood policy. Empty means fail.
	NonFinite NonFinitePolicy
	// SkipObservationCheck disables the num_observations agreement safeguard.
	// Callers who resample or pool fits may legitimately need this; the
	// identical-rows precondition is then entirely on them.
	SkipObservationCheck bool
}

func (o Options) criterion() Criterion {
	if o.Criterion == "" {
		return CriterionAIC
	}
	return o.Criterion
}

func (o Options) nonFinite() NonFinitePolicy {
	if o.NonFinite == "" {
		return FailOnNonFinite
	}
	return o.NonFinite
}
