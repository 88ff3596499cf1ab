package kernel

import (
	"math"
	"testing"
)

func TestParseFallback(t *testing.T) {
	if _, ok := Parse("bogus"); ok {
		t.Fatalf("expected unknown tag to report ok=false")
	}
	kind, ok := Parse("bogus")
	if kind != Exp {
		t.Errorf("fallback kind = %v, want Exp", kind)
	}
	if ok {
		t.Errorf("ok = true for unknown tag")
	}
}

func TestCorrAtZeroDistanceIsOne(t *testing.T) {
	x := []float64{0.3, -1.2, 2.5}
	for _, kind := range []Kind{Exp, Gauss, Matern3_2, Matern5_2, WhiteNoise} {
		k := New(kind, nil, nil)
		got := k.Corr(x, x)
		if math.Abs(got-1) > 1e-12 {
			t.Errorf("%v: corr(x,x) = %v, want 1", kind, got)
		}
	}
}

func TestPowExpAtZeroDistanceIsOne(t *testing.T) {
	k := New(PowExp, []float64{1, 2}, []float64{1.5, 1.8})
	x := []float64{1, 1}
	if got := k.Corr(x, x); math.Abs(got-1) > 1e-12 {
		t.Errorf("corr(x,x) = %v, want 1", got)
	}
}

func TestScalingConstants(t *testing.T) {
	cases := []struct {
		kind Kind
		want float64
	}{
		{Exp, 1},
		{Gauss, math.Sqrt2 / 2},
		{Matern3_2, math.Sqrt(3)},
		{Matern5_2, math.Sqrt(5)},
		{WhiteNoise, 1},
	}
	for _, c := range cases {
		k := New(c.kind, nil, nil)
		if got := k.ScalingConstant(); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("%v: scaling constant = %v, want %v", c.kind, got, c.want)
		}
		if !k.Rescaled() {
			t.Errorf("%v: expected Rescaled() true", c.kind)
		}
	}
	if New(PowExp, []float64{1}, []float64{1}).Rescaled() {
		t.Errorf("powexp: expected Rescaled() false")
	}
}

func TestWhiteNoiseThreshold(t *testing.T) {
	k := New(WhiteNoise, nil, nil)
	if got := k.Corr([]float64{0}, []float64{1e-16}); got != 1 {
		t.Errorf("below threshold: got %v, want 1", got)
	}
	if got := k.Corr([]float64{0}, []float64{1e-10}); got != 0 {
		t.Errorf("above threshold: got %v, want 0", got)
	}
}

func TestMatern52MonotoneDecay(t *testing.T) {
	k := New(Matern5_2, nil, nil)
	near := k.Corr([]float64{0}, []float64{0.1})
	far := k.Corr([]float64{0}, []float64{1.0})
	if !(near > far) {
		t.Errorf("expected correlation to decay with distance: near=%v far=%v", near, far)
	}
}
