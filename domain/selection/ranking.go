package selection

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"modelrank/domain/core"
)

// RankRows orders criterion rows ascending by value (stable, ties keep
// insertion order) and derives relative-support measures:
//
//	delta_i  = value_i - min(value)
//	L_i      = exp(-0.5 * delta_i)
//	weight_i = L_i / sum(L)
//
// Guarantees: weights sum to 1 within floating-point tolerance, the top row
// has delta 0 and the maximal weight, and weights are invariant under a
// constant shift of all values (the normalization is a ratio).
func RankRows(rows []CriterionRow) ([]TableRow, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyCandidateSet
	}

	criterion := rows[0].Criterion
	for _, row := range rows[1:] {
		if row.Criterion != criterion {
			return nil, NewMixedCriterionError(criterion, row.Criterion)
		}
	}

	ordered := make([]CriterionRow, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Value < ordered[j].Value
	})

	best := ordered[0].Value

	// Unnormalized relative likelihoods. Deltas are bounded below by 0, so
	// every term is in (0, 1] and the sum is at least 1.
	relLik := make([]float64, len(ordered))
	sum := 0.0
	for i, row := range ordered {
		relLik[i] = math.Exp(-0.5 * (row.Value - best))
		sum += relLik[i]
	}

	ranked := make([]TableRow, len(ordered))
	bestWeight := relLik[0] / sum
	cumulative := 0.0
	for i, row := range ordered {
		weight := relLik[i] / sum
		cumulative += weight
		ranked[i] = TableRow{
			Rank:             i + 1,
			ModelID:          row.ModelID,
			Name:             row.Name,
			LogLikelihood:    row.LogLikelihood,
			NumParameters:    row.NumParameters,
			Criterion:        row.Criterion,
			Value:            row.Value,
			Delta:            row.Value - best,
			RelLikelihood:    relLik[i],
			Weight:           weight,
			EvidenceRatio:    bestWeight / weight,
			CumulativeWeight: cumulative,
		}
	}

	return ranked, nil
}

// Rank builds the full comparison table for a candidate set.
// It is a pure function of its inputs: no shared state, no I/O, identical
// rows on every recomputation.
func Rank(candidates []Candidate, opts Options) (*Table, error) {
	if len(candidates) == 0 {
		return nil, ErrEmptyCandidateSet
	}

	criterion := opts.criterion()

	table := &Table{Criterion: criterion}

	// Observation-count agreement is a cheap partial safeguard for the
	// identical-observation-set precondition. It cannot prove the rows were
	// the same, only catch the obvious violation.
	if !opts.SkipObservationCheck {
		want := candidates[0].NumObservations
		for _, c := range candidates[1:] {
			if c.NumObservations != want {
				return nil, NewDatasetMismatchError(c.Label(), want, c.NumObservations)
			}
		}
	}
	table.NumObservations = candidates[0].NumObservations

	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.FiniteLogLikelihood() {
			kept = append(kept, c)
			continue
		}
		switch opts.nonFinite() {
		case ExcludeNonFinite:
			table.Excluded = append(table.Excluded, ExcludedRow{
				ModelID: c.ID,
				Name:    c.Name,
				Reason:  WarningNonFiniteLogLik,
			})
			table.Warnings = append(table.Warnings, Warning{
				Code:    WarningNonFiniteLogLik,
				ModelID: c.ID,
				Message: fmt.Sprintf("candidate %q excluded: log-likelihood %v (non-converged fit?)", c.Label(), c.LogLikelihood),
			})
		default:
			return nil, NewNonFiniteError(c.Label(), c.LogLikelihood)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: all candidates had non-finite log-likelihoods", ErrEmptyCandidateSet)
	}

	// Advisory only: plain AIC with a low n/k ratio is a common mistake in
	// small ecological datasets.
	if criterion == CriterionAIC {
		for _, c := range kept {
			if c.SmallSample() {
				table.Warnings = append(table.Warnings, Warning{
					Code:    WarningSmallSample,
					ModelID: c.ID,
					Message: fmt.Sprintf("candidate %q has n/k = %.1f < %.0f; AICc recommended", c.Label(), float64(c.NumObservations)/float64(c.NumParameters), SmallSampleRatio),
				})
			}
		}
	}

	rows := make([]CriterionRow, 0, len(kept))
	for _, c := range kept {
		row, err := ComputeRow(c, criterion)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	ranked, err := RankRows(rows)
	if err != nil {
		return nil, err
	}
	table.Rows = ranked
	table.Fingerprint = computeFingerprint(criterion, ranked)

	return table, nil
}

// ConfidenceSet returns the smallest leading slice of the ranking whose
// cumulative weight reaches the given level (e.g. 0.95).
func ConfidenceSet(t *Table, level float64) ([]TableRow, error) {
	if level <= 0 || level > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidConfidenceLevel, level)
	}
	for i, row := range t.Rows {
		if row.CumulativeWeight >= level-1e-12 {
			set := make([]TableRow, i+1)
			copy(set, t.Rows[:i+1])
			return set, nil
		}
	}
	// Cumulative weight of the full table is 1 up to rounding, so this is
	// only reachable through accumulated floating-point loss.
	set := make([]TableRow, len(t.Rows))
	copy(set, t.Rows)
	return set, nil
}

// computeFingerprint derives a deterministic fingerprint for a ranked table
func computeFingerprint(criterion Criterion, rows []TableRow) core.ComparisonFingerprint {
	var data strings.Builder
	data.WriteString(string(criterion))
	for _, row := range rows {
		data.WriteString(fmt.Sprintf("|%s-%s-%.9f-%.9f", row.ModelID, row.Name, row.Value, row.Weight))
	}
	return core.NewComparisonFingerprint([]byte(data.String()))
}
