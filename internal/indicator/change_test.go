package indicator

import (
	"math"
	"testing"
)

func TestPctChange(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   float64
		nan    bool
	}{
		{"gain", []float64{10, 12, 15}, 50, false},
		{"loss", []float64{20, 18, 15}, -25, false},
		{"flat", []float64{5, 6, 5}, 0, false},
		{"zero first", []float64{0, 1, 2}, 0, true},
		{"single", []float64{10}, 0, true},
		{"empty", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PctChange(tt.prices)
			if tt.nan {
				if !math.IsNaN(got) {
					t.Errorf("expected NaN, got %f", got)
				}
				return
			}
			if !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("PctChange = %f, want %f", got, tt.want)
			}
		})
	}
}
