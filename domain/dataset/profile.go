package dataset

import (
	"math"

	"github.com/montanaflynn/stats"
)

// ColumnProfile summarizes one column for dataset inspection
type ColumnProfile struct {
	Name         string  `json:"name"`
	SampleSize   int     `json:"sample_size"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Median       float64 `json:"median"`
	Q25          float64 `json:"q25"`
	Q75          float64 `json:"q75"`
	MissingRatio float64 `json:"missing_ratio"`
}

// ProfileColumn computes summary statistics for a named column.
// NaN cells count toward the missing ratio and are dropped from the summaries.
func (f *Frame) ProfileColumn(name string) (ColumnProfile, error) {
	values, err := f.Column(name)
	if err != nil {
		return ColumnProfile{}, err
	}

	clean := make([]float64, 0, len(values))
	missing := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			missing++
			continue
		}
		clean = append(clean, v)
	}

	profile := ColumnProfile{
		Name:       name,
		SampleSize: len(clean),
	}
	if len(values) > 0 {
		profile.MissingRatio = float64(missing) / float64(len(values))
	}
	if len(clean) == 0 {
		return profile, nil
	}

	profile.Mean, _ = stats.Mean(clean)
	profile.StdDev, _ = stats.StandardDeviation(clean)
	profile.Min, _ = stats.Min(clean)
	profile.Max, _ = stats.Max(clean)
	profile.Median, _ = stats.Median(clean)
	profile.Q25, _ = stats.Percentile(clean, 25)
	profile.Q75, _ = stats.Percentile(clean, 75)

	return profile, nil
}

// Profile computes profiles for every column in declaration order
func (f *Frame) Profile() ([]ColumnProfile, error) {
	profiles := make([]ColumnProfile, 0, len(f.Names))
	for _, name := range f.Names {
		p, err := f.ProfileColumn(name)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
