package param

import (
	"math"
	"testing"

	"github.com/hpwxf/nestedKriging/internal/errs"
	"github.com/hpwxf/nestedKriging/internal/kernel"
)

func TestNewScalingFactors(t *testing.T) {
	b, err := New(2, []float64{2, 4}, 1.5, "matern5_2", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := math.Sqrt(5)
	if math.Abs(b.ScalingFactors[0]-c/2) > 1e-12 {
		t.Errorf("scaling[0] = %v, want %v", b.ScalingFactors[0], c/2)
	}
	if math.Abs(b.ScalingFactors[1]-c/4) > 1e-12 {
		t.Errorf("scaling[1] = %v, want %v", b.ScalingFactors[1], c/4)
	}
}

func TestNewPowExpLength(t *testing.T) {
	_, err := New(2, []float64{1, 1}, 1, "powexp", nil)
	if err == nil {
		t.Fatalf("expected error for short powexp param vector")
	}
	b, err := New(2, []float64{1, 1, 1.5, 1.8}, 1, "powexp", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, s := range b.ScalingFactors {
		if s != 1 {
			t.Errorf("powexp scaling factor = %v, want 1 (rescaling disabled)", s)
		}
	}
}

func TestNewUnknownKernelFallsBackToExp(t *testing.T) {
	var w errs.Warnings
	b, err := New(1, []float64{1}, 1, "bogus", &w)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if b.Kind != kernel.Exp {
		t.Errorf("kind = %v, want Exp", b.Kind)
	}
	if len(w.Drain()) != 1 {
		t.Errorf("expected one warning for unknown kernel tag")
	}
}

func TestNewRejectsNonPositiveVariance(t *testing.T) {
	if _, err := New(1, []float64{1}, 0, "exp", nil); err == nil {
		t.Fatalf("expected error for zero variance")
	}
}

func TestNewRejectsNonPositiveLengthscale(t *testing.T) {
	if _, err := New(1, []float64{0}, 1, "exp", nil); err == nil {
		t.Fatalf("expected error for zero lengthscale")
	}
}

func TestInverseVariance(t *testing.T) {
	b, err := New(1, []float64{1}, 2, "exp", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if math.Abs(b.InverseVariance-0.5) > 1e-9 {
		t.Errorf("inverse variance = %v, want 0.5", b.InverseVariance)
	}
}
