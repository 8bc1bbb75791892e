package sky

import (
	"math"
	"testing"
)

func TestColorIndex(t *testing.T) {
	tests := []struct {
		kelvin float32
		want   int
	}{
		{500, 0},
		{1000, 0},
		{1099, 0},
		{1100, 1},
		{5800, 48},
		{40900, 399},
		{1e6, 399},
		{float32(math.Inf(1)), 399},
	}
	for _, tt := range tests {
		if got := Index(tt.kelvin); got != tt.want {
			t.Errorf("Index(%v) = %d, want %d", tt.kelvin, got, tt.want)
		}
	}
}

func TestColorLookupUnknownIsWhite(t *testing.T) {
	table := NewColorTable()
	for _, k := range []float32{0, -100, float32(math.NaN())} {
		if got := table.Lookup(k); got != White {
			t.Errorf("Lookup(%v) = %v, want white", k, got)
		}
	}
}

func TestColorTableNormalized(t *testing.T) {
	table := NewColorTable()
	for i, c := range table {
		m := max(c[0], c[1], c[2])
		if math.Abs(float64(m)-1) > 1e-6 {
			t.Fatalf("entry %d = %v: largest channel is %v, want 1", i, c, m)
		}
		for ch := range 3 {
			if c[ch] < 0 {
				t.Fatalf("entry %d has negative channel %v", i, c)
			}
		}
	}
}

func TestBlackbodyHue(t *testing.T) {
	cool := BlackbodyRGB(2000)
	if !(cool[0] > cool[2]) {
		t.Errorf("2000 K should be red-dominant, got %v", cool)
	}
	hot := BlackbodyRGB(20000)
	if !(hot[2] > hot[0]) {
		t.Errorf("20000 K should be blue-dominant, got %v", hot)
	}
	if got := BlackbodyRGB(6500); got[0] < 0.8 || got[1] < 0.8 || got[2] < 0.8 {
		t.Errorf("6500 K should be near white, got %v", got)
	}
}
