package selection

import (
	"errors"
	"math"
	"testing"
)

// fiveNestedModels is the worked comparison used across the ranking tests:
// five nested regression models fit to the same 200 observations.
func fiveNestedModels() []Candidate {
	lls := []float64{-340.1, -338.5, -338.4, -345.0, -360.2}
	ks := []int{6, 4, 2, 2, 1}

	candidates := make([]Candidate, len(lls))
	names := []string{"m1", "m2", "m3", "m4", "m5"}
	for i := range lls {
		candidates[i] = Candidate{
			Name:            names[i],
			LogLikelihood:   lls[i],
			NumParameters:   ks[i],
			NumObservations: 200,
		}
	}
	return candidates
}

func TestRank_FiveNestedModels(t *testing.T) {
	table, err := Rank(fiveNestedModels(), Options{Criterion: CriterionAIC})
	if err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}

	// Exact AIC values from the log-likelihoods and parameter counts
	wantAIC := map[string]float64{
		"m1": 692.2, "m2": 685.0, "m3": 680.8, "m4": 694.0, "m5": 722.4,
	}
	for name, want := range wantAIC {
		row, ok := table.Row(name)
		if !ok {
			t.Fatalf("model %s missing from table", name)
		}
		if math.Abs(row.Value-want) > 1e-9 {
			t.Errorf("AIC(%s) = %v, want %v", name, row.Value, want)
		}
	}

	// Ascending order: m3 (680.8), m2 (685.0), m1 (692.2), m4 (694.0), m5 (722.4)
	wantOrder := []string{"m3", "m2", "m1", "m4", "m5"}
	for i, name := range wantOrder {
		if table.Rows[i].Name != name {
			t.Errorf("rank %d = %s, want %s", i+1, table.Rows[i].Name, name)
		}
	}

	// The best-supported model has delta 0 and dominates the weights
	best := table.Best()
	if best.Delta != 0 {
		t.Errorf("best delta = %v, want 0", best.Delta)
	}
	if best.Weight < 0.85 {
		t.Errorf("best weight = %v, expected dominant (> 0.85)", best.Weight)
	}

	sum := 0.0
	for _, row := range table.Rows {
		sum += row.Weight
		if row.Weight < 0 || row.Weight > 1 {
			t.Errorf("weight out of [0,1]: %v", row.Weight)
		}
		if row.Delta < 0 {
			t.Errorf("negative delta: %v", row.Delta)
		}
		if row.Weight > best.Weight+1e-12 {
			t.Errorf("row %s weight %v exceeds best weight %v", row.Name, row.Weight, best.Weight)
		}
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum to %v, want 1.0 +/- 1e-9", sum)
	}

	t.Logf("best=%s delta=%.1f weight=%.4f", best.Name, best.Delta, best.Weight)
}

func TestRank_BestValueIsMinimum(t *testing.T) {
	table, err := Rank(fiveNestedModels(), Options{})
	if err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}

	min := math.Inf(1)
	for _, row := range table.Rows {
		if row.Value < min {
			min = row.Value
		}
	}
	if table.Best().Value != min {
		t.Errorf("top row value %v != min %v", table.Best().Value, min)
	}
}

func TestRank_Idempotence(t *testing.T) {
	candidates := fiveNestedModels()

	first, err := Rank(candidates, Options{Criterion: CriterionAICc})
	if err != nil {
		t.Fatalf("first Rank error: %v", err)
	}
	second, err := Rank(candidates, Options{Criterion: CriterionAICc})
	if err != nil {
		t.Fatalf("second Rank error: %v", err)
	}

	if len(first.Rows) != len(second.Rows) {
		t.Fatalf("row counts differ: %d vs %d", len(first.Rows), len(second.Rows))
	}
	for i := range first.Rows {
		if first.Rows[i] != second.Rows[i] {
			t.Errorf("row %d differs between recomputations:\n%+v\n%+v", i, first.Rows[i], second.Rows[i])
		}
	}
	if first.Fingerprint != second.Fingerprint {
		t.Errorf("fingerprints differ: %s vs %s", first.Fingerprint, second.Fingerprint)
	}
}

func TestRank_ShiftInvariance(t *testing.T) {
	// Adding the same constant to every log-likelihood shifts all criterion
	// values equally and must leave the normalized weights unchanged.
	base := fiveNestedModels()
	shifted := make([]Candidate, len(base))
	copy(shifted, base)
	for i := range shifted {
		shifted[i].LogLikelihood += 17.3
	}

	baseTable, err := Rank(base, Options{})
	if err != nil {
		t.Fatalf("Rank(base) error: %v", err)
	}
	shiftTable, err := Rank(shifted, Options{})
	if err != nil {
		t.Fatalf("Rank(shifted) error: %v", err)
	}

	for i := range baseTable.Rows {
		dw := math.Abs(baseTable.Rows[i].Weight - shiftTable.Rows[i].Weight)
		if dw > 1e-9 {
			t.Errorf("weight %d changed under shift: %v vs %v", i, baseTable.Rows[i].Weight, shiftTable.Rows[i].Weight)
		}
		dv := (shiftTable.Rows[i].Value - baseTable.Rows[i].Value) - (-2 * 17.3)
		if math.Abs(dv) > 1e-9 {
			t.Errorf("value %d did not shift by -2c: got change %v", i, shiftTable.Rows[i].Value-baseTable.Rows[i].Value)
		}
	}
}

func TestRank_SingleCandidate(t *testing.T) {
	table, err := Rank([]Candidate{{
		Name: "only", LogLikelihood: -42.0, NumParameters: 2, NumObservations: 50,
	}}, Options{})
	if err != nil {
		t.Fatalf("Rank returned error: %v", err)
	}

	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table.Rows))
	}
	row := table.Rows[0]
	if row.Delta != 0 {
		t.Errorf("delta = %v, want 0", row.Delta)
	}
	if row.Weight != 1.0 {
		t.Errorf("weight = %v, want 1.0", row.Weight)
	}
	if row.EvidenceRatio != 1.0 {
		t.Errorf("evidence ratio = %v, want 1.0", row.EvidenceRatio)
	}
}

func TestRank_EmptySet(t *testing.T) {
	if _, err := Rank(nil, Options{}); !errors.Is(err, ErrEmptyCandidateSet) {
		t.Errorf("expected ErrEmptyCandidateSet, got %v", err)
	}
}

func TestRankRows_MixedCriterion(t *testing.T) {
	rows := []CriterionRow{
		{Name: "a", Criterion: CriterionAIC, Value: 100},
		{Name: "b", Criterion: CriterionAICc, Value: 101},
	}
	if _, err := RankRows(rows); !errors.Is(err, ErrMixedCriterion) {
		t.Errorf("expected ErrMixedCriterion, got %v", err)
	}
}

func TestRankRows_StableTieOrder(t *testing.T) {
	rows := []CriterionRow{
		{Name: "first", Criterion: CriterionAIC, Value: 100},
		{Name: "second", Criterion: CriterionAIC, Value: 100},
		{Name: "third", Criterion: CriterionAIC, Value: 100},
	}
	ranked, err := RankRows(rows)
	if err != nil {
		t.Fatalf("RankRows error: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if ranked[i].Name != want {
			t.Errorf("tie rank %d = %s, want insertion order %s", i+1, ranked[i].Name, want)
		}
	}
}

func TestRank_DatasetMismatchSafeguard(t *testing.T) {
	candidates := []Candidate{
		{Name: "a", LogLikelihood: -10, NumParameters: 1, NumObservations: 100},
		{Name: "b", LogLikelihood: -11, NumParameters: 2, NumObservations: 90},
	}

	if _, err := Rank(candidates, Options{}); !errors.Is(err, ErrDatasetMismatch) {
		t.Errorf("expected ErrDatasetMismatch, got %v", err)
	}

	// The safeguard is a recommendation, not a mandate; it can be disabled.
	if _, err := Rank(candidates, Options{SkipObservationCheck: true}); err != nil {
		t.Errorf("Rank with SkipObservationCheck should succeed, got %v", err)
	}
}

func TestRank_NonFinitePolicies(t *testing.T) {
	candidates := []Candidate{
		{Name: "ok", LogLikelihood: -10, NumParameters: 1, NumObservations: 100},
		{Name: "bad", LogLikelihood: math.NaN(), NumParameters: 2, NumObservations: 100},
	}

	// Default policy fails the whole comparison
	if _, err := Rank(candidates, Options{}); !errors.Is(err, ErrNonFiniteLogLikelihood) {
		t.Errorf("expected ErrNonFiniteLogLikelihood under default policy, got %v", err)
	}

	// Exclusion policy drops the offender and records it
	table, err := Rank(candidates, Options{NonFinite: ExcludeNonFinite})
	if err != nil {
		t.Fatalf("Rank with ExcludeNonFinite error: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0].Name != "ok" {
		t.Errorf("expected single ranked row 'ok', got %+v", table.Rows)
	}
	if len(table.Excluded) != 1 || table.Excluded[0].Reason != WarningNonFiniteLogLik {
		t.Errorf("expected one excluded row with non-finite reason, got %+v", table.Excluded)
	}
	if len(table.Warnings) == 0 {
		t.Error("expected a warning for the excluded candidate")
	}
	if table.Rows[0].Weight != 1.0 {
		t.Errorf("sole survivor weight = %v, want 1.0", table.Rows[0].Weight)
	}

	// All candidates non-finite: nothing left to rank
	allBad := []Candidate{
		{Name: "x", LogLikelihood: math.Inf(-1), NumParameters: 1, NumObservations: 100},
	}
	if _, err := Rank(allBad, Options{NonFinite: ExcludeNonFinite}); !errors.Is(err, ErrEmptyCandidateSet) {
		t.Errorf("expected ErrEmptyCandidateSet when all excluded, got %v", err)
	}
}

func TestRank_SmallSampleWarning(t *testing.T) {
	candidates := []Candidate{
		{Name: "a", LogLikelihood: -10, NumParameters: 5, NumObservations: 60}, // n/k = 12
		{Name: "b", LogLikelihood: -12, NumParameters: 1, NumObservations: 60},
	}

	table, err := Rank(candidates, Options{Criterion: CriterionAIC})
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}

	found := false
	for _, w := range table.Warnings {
		if w.Code == WarningSmallSample {
			found = true
		}
	}
	if !found {
		t.Error("expected SMALL_SAMPLE warning for n/k < 40 under plain AIC")
	}

	// AICc requested: no advisory needed
	table, err = Rank(candidates, Options{Criterion: CriterionAICc})
	if err != nil {
		t.Fatalf("Rank(AICc) error: %v", err)
	}
	for _, w := range table.Warnings {
		if w.Code == WarningSmallSample {
			t.Errorf("unexpected small-sample warning under AICc: %+v", w)
		}
	}
}

func TestRank_CumulativeWeightsMonotonic(t *testing.T) {
	table, err := Rank(fiveNestedModels(), Options{})
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}

	prev := 0.0
	for _, row := range table.Rows {
		if row.CumulativeWeight < prev {
			t.Errorf("cumulative weight decreased: %v -> %v", prev, row.CumulativeWeight)
		}
		prev = row.CumulativeWeight
	}
	if math.Abs(prev-1.0) > 1e-9 {
		t.Errorf("final cumulative weight = %v, want 1.0", prev)
	}
}

func TestConfidenceSet(t *testing.T) {
	table, err := Rank(fiveNestedModels(), Options{})
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}

	// The best model dominates this comparison, so a 0.5 set is just the top row
	set, err := ConfidenceSet(table, 0.5)
	if err != nil {
		t.Fatalf("ConfidenceSet error: %v", err)
	}
	if len(set) != 1 || set[0].Name != "m3" {
		t.Errorf("0.5 confidence set = %v, want [m3]", names(set))
	}

	// Level 1.0 returns the full table
	set, err = ConfidenceSet(table, 1.0)
	if err != nil {
		t.Fatalf("ConfidenceSet error: %v", err)
	}
	if len(set) != len(table.Rows) {
		t.Errorf("1.0 confidence set has %d rows, want %d", len(set), len(table.Rows))
	}

	if _, err := ConfidenceSet(table, 0); !errors.Is(err, ErrInvalidConfidenceLevel) {
		t.Errorf("expected ErrInvalidConfidenceLevel for 0, got %v", err)
	}
	if _, err := ConfidenceSet(table, 1.5); !errors.Is(err, ErrInvalidConfidenceLevel) {
		t.Errorf("expected ErrInvalidConfidenceLevel for 1.5, got %v", err)
	}
}

func names(rows []TableRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}
