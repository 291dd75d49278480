package indicator

import (
	"math"
	"testing"
)

func TestRSI_Length(t *testing.T) {
	prices := wave(40)
	rsi := RSI(prices, 14)
	if len(rsi) != len(prices)-14 {
		t.Fatalf("expected %d values, got %d", len(prices)-14, len(rsi))
	}
}

func TestRSI_NotEnoughData(t *testing.T) {
	prices := make([]float64, 14)
	if len(RSI(prices, 14)) != 0 {
		t.Error("expected empty slice with period prices")
	}
	if !math.IsNaN(LastRSI(prices, 14)) {
		t.Error("expected NaN for insufficient data")
	}
}

func TestRSI_MonotonicSeries(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	flat := make([]float64, 30)
	for i := range up {
		up[i] = 10 + float64(i)
		down[i] = 100 - float64(i)
		flat[i] = 42
	}

	if got := LastRSI(up, 14); got != 100 {
		t.Errorf("rising series RSI = %f, want 100", got)
	}
	if got := LastRSI(down, 14); got != 0 {
		t.Errorf("falling series RSI = %f, want 0", got)
	}
	if got := LastRSI(flat, 14); got != 50 {
		t.Errorf("flat series RSI = %f, want 50", got)
	}
}

func TestRSI_KnownSeed(t *testing.T) {
	// changes +1,-1 alternating over period 2: avgGain = avgLoss = 0.5
	prices := []float64{10, 11, 10}
	rsi := RSI(prices, 2)
	if len(rsi) != 1 {
		t.Fatalf("expected 1 value, got %d", len(rsi))
	}
	if !almostEqual(rsi[0], 50, 1e-9) {
		t.Errorf("rsi = %f, want 50", rsi[0])
	}
}

func TestRSI_ZeroAverages(t *testing.T) {
	riseThenFlat := make([]float64, 30)
	for i := range riseThenFlat {
		riseThenFlat[i] = 10 + math.Min(float64(i), 5)
	}

	tests := []struct {
		name   string
		prices []float64
		period int
		want   float64
	}{
		{"no movement at all", []float64{7, 7, 7, 7}, 3, 50},
		{"gains without losses", []float64{7, 8, 9, 10}, 3, 100},
		{"gains then flat keeps zero loss", riseThenFlat, 14, 100},
		{"losses without gains", []float64{10, 9, 8, 7}, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LastRSI(tt.prices, tt.period); got != tt.want {
				t.Errorf("LastRSI() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestRSI_SeedIsSimpleAverage(t *testing.T) {
	// changes +2,-1,+1: avgGain = 1, avgLoss = 1/3, rs = 3, rsi = 75
	prices := []float64{10, 12, 11, 12}
	rsi := RSI(prices, 3)
	if len(rsi) != 1 {
		t.Fatalf("expected 1 value, got %d", len(rsi))
	}
	if !almostEqual(rsi[0], 75, 1e-9) {
		t.Errorf("rsi = %f, want 75", rsi[0])
	}
}

func TestRSI_Range(t *testing.T) {
	for _, v := range RSI(wave(120), 14) {
		if v < 0 || v > 100 {
			t.Fatalf("RSI out of range: %f", v)
		}
	}
}

// wave returns a noisy oscillating price path above zero
func wave(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 20 + 3*math.Sin(float64(i)/4) + 0.5*math.Cos(float64(i)*1.7) + float64(i)*0.05
	}
	return prices
}
