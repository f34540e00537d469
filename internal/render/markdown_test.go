package render

import (
	"strings"
	"testing"

	"modelrank/domain/selection"
)

func sampleTable(t *testing.T) *selection.Table {
	t.Helper()
	table, err := selection.Rank([]selection.Candidate{
		{Name: "richness ~ rainfall", LogLikelihood: -120.4, NumParameters: 3, NumObservations: 80},
		{Name: "richness ~ 1", LogLikelihood: -131.9, NumParameters: 2, NumObservations: 80},
	}, selection.Options{Criterion: selection.CriterionAICc})
	if err != nil {
		t.Fatalf("Rank error: %v", err)
	}
	return table
}

func TestMarkdown_ContainsRankedRows(t *testing.T) {
	md := Markdown("Grassland richness", sampleTable(t))

	if !strings.Contains(md, "# Grassland richness") {
		t.Error("missing title")
	}
	if !strings.Contains(md, "AICC") {
		t.Error("missing criterion header")
	}
	if !strings.Contains(md, "richness ~ rainfall") || !strings.Contains(md, "richness ~ 1") {
		t.Error("missing model rows")
	}
	if !strings.Contains(md, "Fingerprint:") {
		t.Error("missing fingerprint line")
	}

	// Best model appears before the null model
	if strings.Index(md, "richness ~ rainfall") > strings.Index(md, "richness ~ 1") {
		t.Error("rows not in rank order")
	}
}

func TestMarkdown_DefaultTitle(t *testing.T) {
	md := Markdown("", sampleTable(t))
	if !strings.Contains(md, "# Model comparison") {
		t.Error("expected default title")
	}
}

func TestHTML_RendersTable(t *testing.T) {
	out := string(HTML(Markdown("cmp", sampleTable(t))))
	if !strings.Contains(out, "<table>") {
		t.Error("expected an HTML table")
	}
	if !strings.Contains(out, "<h1") {
		t.Error("expected an HTML heading")
	}
}
