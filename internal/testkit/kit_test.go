package testkit

import (
	"testing"
)

func TestGrasslandSurvey_Deterministic(t *testing.T) {
	a := NewGenerator(7).GrasslandSurvey(50)
	b := NewGenerator(7).GrasslandSurvey(50)

	if a.Fingerprint != b.Fingerprint {
		t.Error("same seed should produce identical frame shape")
	}

	ra, _ := a.Column("richness")
	rb, _ := b.Column("richness")
	for i := range ra {
		if ra[i] != rb[i] {
			t.Fatalf("row %d differs between identical seeds: %v vs %v", i, ra[i], rb[i])
		}
	}
}

func TestGrasslandSurvey_Shape(t *testing.T) {
	frame := NewGenerator(1).GrasslandSurvey(120)

	if frame.RowCount() != 120 {
		t.Errorf("rows = %d, want 120", frame.RowCount())
	}
	for _, name := range []string{"rainfall", "soil_n", "grazing", "biomass", "richness", "occupancy"} {
		if _, err := frame.Column(name); err != nil {
			t.Errorf("missing column %s: %v", name, err)
		}
	}

	grazing, _ := frame.Column("grazing")
	occupancy, _ := frame.Column("occupancy")
	for i := range grazing {
		if grazing[i] != 0 && grazing[i] != 1 {
			t.Fatalf("grazing[%d] = %v, want 0/1", i, grazing[i])
		}
		if occupancy[i] != 0 && occupancy[i] != 1 {
			t.Fatalf("occupancy[%d] = %v, want 0/1", i, occupancy[i])
		}
	}

	richness, _ := frame.Column("richness")
	for i, v := range richness {
		if v < 0 || v != float64(int(v)) {
			t.Fatalf("richness[%d] = %v, want a non-negative count", i, v)
		}
	}
}
