package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"modelrank/adapters/excel"
	"modelrank/adapters/fit"
	"modelrank/app"
	"modelrank/domain/core"
	"modelrank/domain/dataset"
	"modelrank/domain/selection"
	"modelrank/internal/render"
	"modelrank/internal/testkit"
	"modelrank/ports"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "modelrank",
		Short: "Information-criterion model comparison from the command line",
	}

	rootCmd.AddCommand(
		newRankCmd(),
		newSweepCmd(),
		newProfileCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRankCmd() *cobra.Command {
	var criterion string
	var excludeNonFinite bool

	cmd := &cobra.Command{
		Use:   "rank [candidates.json]",
		Short: "Rank pre-fitted candidates from a JSON file",
		Long: `Rank a candidate set of fit summaries by an information criterion.

The input file is a JSON array of objects with name, log_likelihood,
num_parameters and num_observations fields.

Example: modelrank rank candidates.json --criterion aicc`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := readCandidates(args[0])
			if err != nil {
				return err
			}

			crit, err := selection.ParseCriterion(criterion)
			if err != nil {
				return err
			}
			opts := selection.Options{Criterion: crit}
			if excludeNonFinite {
				opts.NonFinite = selection.ExcludeNonFinite
			}

			table, err := selection.Rank(candidates, opts)
			if err != nil {
				return err
			}
			fmt.Print(render.Markdown("", table))
			return nil
		},
	}

	cmd.Flags().StringVar(&criterion, "criterion", "aicc", "Criterion: aic, aicc or bic")
	cmd.Flags().BoolVar(&excludeNonFinite, "exclude-non-finite", false, "Exclude candidates with non-finite log-likelihoods instead of failing")

	return cmd
}

func newSweepCmd() *cobra.Command {
	var criterion string
	var workers int

	cmd := &cobra.Command{
		Use:   "sweep [dataset.csv|dataset.xlsx] [spec...]",
		Short: "Fit a candidate family against a dataset and rank it",
		Long: `Fit every candidate specification against the dataset, then rank the
fits by an information criterion. Specifications use formula syntax with
an optional family suffix:

  "biomass ~ rainfall + grazing"
  "richness ~ rainfall [poisson]"
  "occupancy ~ biomass [binomial]"

Example: modelrank sweep survey.csv "biomass ~ 1" "biomass ~ rainfall"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := excel.NewDataReader(args[0]).ReadFrame()
			if err != nil {
				return err
			}

			fitters := make([]ports.ModelFitter, 0, len(args)-1)
			for _, spec := range args[1:] {
				fitter, err := parseSpec(spec)
				if err != nil {
					return err
				}
				fitters = append(fitters, fitter)
			}

			crit, err := selection.ParseCriterion(criterion)
			if err != nil {
				return err
			}

			return runSweep(cmd.Context(), frame, fitters, selection.Options{Criterion: crit}, workers)
		},
	}

	cmd.Flags().StringVar(&criterion, "criterion", "aicc", "Criterion: aic, aicc or bic")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent model fits")

	return cmd
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile [dataset.csv|dataset.xlsx]",
		Short: "Print summary statistics for every dataset column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := excel.NewDataReader(args[0]).ReadFrame()
			if err != nil {
				return err
			}
			profiles, err := frame.Profile()
			if err != nil {
				return err
			}

			fmt.Printf("%s: %d rows, %d columns\n\n", frame.Source, frame.RowCount(), frame.ColumnCount())
			fmt.Printf("%-20s %8s %10s %10s %10s %10s %8s\n",
				"column", "n", "mean", "sd", "min", "max", "missing")
			for _, p := range profiles {
				fmt.Printf("%-20s %8d %10.4g %10.4g %10.4g %10.4g %7.1f%%\n",
					p.Name, p.SampleSize, p.Mean, p.StdDev, p.Min, p.Max, p.MissingRatio*100)
			}
			return nil
		},
	}

	return cmd
}

func newDemoCmd() *cobra.Command {
	var seed int64
	var rows int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a sweep over a synthetic grassland survey",
		Long: `Generate a deterministic synthetic grassland survey and rank a small
family of biomass models against it. Useful for a first look at the
comparison output without bringing your own data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			frame := testkit.NewGenerator(seed).GrasslandSurvey(rows)
			fitters := []ports.ModelFitter{
				fit.NewOLS("biomass"),
				fit.NewOLS("biomass", "rainfall"),
				fit.NewOLS("biomass", "grazing"),
				fit.NewOLS("biomass", "rainfall", "grazing"),
				fit.NewOLS("biomass", "rainfall", "grazing", "soil_n"),
			}
			return runSweep(cmd.Context(), frame, fitters, selection.Options{Criterion: selection.CriterionAICc}, 4)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the synthetic survey")
	cmd.Flags().IntVar(&rows, "rows", 200, "Number of survey rows to generate")

	return cmd
}

func runSweep(ctx context.Context, frame *dataset.Frame, fitters []ports.ModelFitter, opts selection.Options, workers int) error {
	comparisons := app.NewComparisonService(nil, nil)
	sweeps := app.NewSweepService(comparisons, workers, nil)

	result, err := sweeps.RunSweep(ctx, app.SweepRequest{
		Frame:   frame,
		Fitters: fitters,
		Options: opts,
	})
	if err != nil {
		return err
	}

	fmt.Print(render.Markdown(result.Comparison.Label, result.Comparison.Table))
	for _, failure := range result.FitFailures {
		fmt.Fprintf(os.Stderr, "fit failed: %s: %s\n", failure.Spec, failure.Error)
	}
	return nil
}

func readCandidates(path string) ([]selection.Candidate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var payload []struct {
		Name            string  `json:"name"`
		LogLikelihood   float64 `json:"log_likelihood"`
		NumParameters   int     `json:"num_parameters"`
		NumObservations int     `json:"num_observations"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	candidates := make([]selection.Candidate, 0, len(payload))
	for _, p := range payload {
		candidates = append(candidates, selection.Candidate{
			ID:              core.ModelID(core.NewID()),
			Name:            p.Name,
			LogLikelihood:   p.LogLikelihood,
			NumParameters:   p.NumParameters,
			NumObservations: p.NumObservations,
		})
	}
	return candidates, nil
}

// parseSpec turns "y ~ x1 + x2 [family]" into a fitter. A missing family
// suffix means gaussian OLS.
func parseSpec(spec string) (ports.ModelFitter, error) {
	family := ""
	formula := strings.TrimSpace(spec)
	if idx := strings.LastIndex(formula, "["); idx >= 0 && strings.HasSuffix(formula, "]") {
		family = strings.TrimSpace(formula[idx+1 : len(formula)-1])
		formula = strings.TrimSpace(formula[:idx])
	}

	parts := strings.SplitN(formula, "~", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid specification %q (expected \"response ~ predictors\")", spec)
	}
	response := strings.TrimSpace(parts[0])
	if response == "" {
		return nil, fmt.Errorf("invalid specification %q: empty response", spec)
	}

	var predictors []string
	for _, term := range strings.Split(parts[1], "+") {
		term = strings.TrimSpace(term)
		if term == "" || term == "1" {
			continue
		}
		predictors = append(predictors, term)
	}

	switch family {
	case "", "gaussian":
		return fit.NewOLS(response, predictors...), nil
	case "poisson":
		return fit.NewPoisson(response, predictors...), nil
	case "binomial":
		return fit.NewLogistic(response, predictors...), nil
	default:
		return nil, fmt.Errorf("unknown family %q in %q", family, spec)
	}
}
