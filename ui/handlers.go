package ui

import (
	"errors"
	"net/http"
	"strconv"

	"modelrank/adapters/fit"
	"modelrank/app"
	"modelrank/domain/core"
	"modelrank/domain/dataset"
	"modelrank/domain/selection"
	"modelrank/internal/render"
	"modelrank/ports"

	"github.com/gin-gonic/gin"
)

// comparisonRequest is the JSON body for POST /api/comparisons
type comparisonRequest struct {
	Label      string             `json:"label"`
	Criterion  string             `json:"criterion"`
	NonFinite  string             `json:"non_finite_policy"`
	SkipObsChk bool               `json:"skip_observation_check"`
	Persist    bool               `json:"persist"`
	Candidates []candidatePayload `json:"candidates" binding:"required"`
}

type candidatePayload struct {
	Name            string  `json:"name" binding:"required"`
	LogLikelihood   float64 `json:"log_likelihood"`
	NumParameters   int     `json:"num_parameters"`
	NumObservations int     `json:"num_observations"`
}

func (s *Server) handleCreateComparison(c *gin.Context) {
	var req comparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	criterion, err := selection.ParseCriterion(req.Criterion)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	candidates := make([]selection.Candidate, 0, len(req.Candidates))
	for _, p := range req.Candidates {
		candidates = append(candidates, selection.Candidate{
			ID:              core.ModelID(core.NewID()),
			Name:            p.Name,
			LogLikelihood:   p.LogLikelihood,
			NumParameters:   p.NumParameters,
			NumObservations: p.NumObservations,
		})
	}

	record, err := s.comparisons.Compare(c.Request.Context(), app.CompareRequest{
		Label:      req.Label,
		Candidates: candidates,
		Options: selection.Options{
			Criterion:            criterion,
			NonFinite:            selection.NonFinitePolicy(req.NonFinite),
			SkipObservationCheck: req.SkipObsChk,
		},
		Persist: req.Persist,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (s *Server) handleGetComparison(c *gin.Context) {
	id, err := core.ParseComparisonID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := s.comparisons.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) handleListComparisons(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.comparisons.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comparisons": records, "count": len(records)})
}

func (s *Server) handleComparisonReport(c *gin.Context) {
	id, err := core.ParseComparisonID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := s.comparisons.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	md := render.Markdown(record.Label, record.Table)
	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", render.HTML(md))
}

func (s *Server) handleConfidenceSet(c *gin.Context) {
	id, err := core.ParseComparisonID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	level := s.cfg.Ranking.ConfidenceLevel
	if raw := c.Query("level"); raw != "" {
		level, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid level: " + raw})
			return
		}
	}

	record, err := s.comparisons.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	set, err := selection.ConfidenceSet(record.Table, level)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"level": level, "models": set})
}

// sweepRequest is the JSON body for POST /api/sweeps. The dataset is loaded
// server-side; candidates are formula specifications against its columns.
type sweepRequest struct {
	Label      string             `json:"label"`
	Criterion  string             `json:"criterion"`
	Persist    bool               `json:"persist"`
	Candidates []modelSpecPayload `json:"candidates" binding:"required"`
}

type modelSpecPayload struct {
	Response   string   `json:"response" binding:"required"`
	Predictors []string `json:"predictors"`
	Family     string   `json:"family"` // "", "gaussian", "poisson", "binomial"
}

func (s *Server) handleRunSweep(c *gin.Context) {
	var req sweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	frame, err := s.loadDataset()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	criterion, err := selection.ParseCriterion(req.Criterion)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fitters := make([]ports.ModelFitter, 0, len(req.Candidates))
	for _, spec := range req.Candidates {
		fitter, err := buildFitter(spec)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fitters = append(fitters, fitter)
	}

	result, err := s.sweeps.RunSweep(c.Request.Context(), app.SweepRequest{
		Label:   req.Label,
		Frame:   frame,
		Fitters: fitters,
		Options: selection.Options{Criterion: criterion},
		Persist: req.Persist,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func buildFitter(spec modelSpecPayload) (ports.ModelFitter, error) {
	switch spec.Family {
	case "", "gaussian":
		return fit.NewOLS(spec.Response, spec.Predictors...), nil
	case "poisson":
		return fit.NewPoisson(spec.Response, spec.Predictors...), nil
	case "binomial":
		return fit.NewLogistic(spec.Response, spec.Predictors...), nil
	default:
		return nil, errors.New("unknown family " + spec.Family)
	}
}

func (s *Server) loadDataset() (*dataset.Frame, error) {
	if s.datasets == nil {
		return nil, errors.New("no dataset configured (set DATASET_FILE)")
	}
	return s.datasets.ReadFrame()
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, selection.ErrInvalidConfidenceLevel):
		return http.StatusBadRequest
	case selection.IsComparisonError(err),
		selection.IsDomainError(err),
		errors.Is(err, selection.ErrInvalidCandidate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
