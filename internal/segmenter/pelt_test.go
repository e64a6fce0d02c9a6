package segmenter

import "testing"

func stepSignal(levels []float64, lengths []int) []float64 {
	var signal []float64
	for i, level := range levels {
		for j := 0; j < lengths[i]; j++ {
			signal = append(signal, level)
		}
	}
	return signal
}

func TestChangePointsFindsStep(t *testing.T) {
	signal := stepSignal([]float64{0.1, 0.9}, []int{40, 40})
	breaks := ChangePoints(signal, Config{MinSize: 5, Penalty: 0.3})
	if len(breaks) != 1 {
		t.Fatalf("expected exactly one breakpoint, got %v", breaks)
	}
	if breaks[0] < 38 || breaks[0] > 42 {
		t.Errorf("breakpoint at %d, want near 40", breaks[0])
	}
}

func TestChangePointsFindsMultipleSteps(t *testing.T) {
	signal := stepSignal([]float64{0.1, 0.8, 0.1}, []int{30, 20, 30})
	breaks := ChangePoints(signal, Config{MinSize: 5, Penalty: 0.3})
	if len(breaks) != 2 {
		t.Fatalf("expected two breakpoints, got %v", breaks)
	}
	if breaks[0] < 28 || breaks[0] > 32 || breaks[1] < 48 || breaks[1] > 52 {
		t.Errorf("breakpoints %v, want near 30 and 50", breaks)
	}
}

func TestChangePointsConstantSignal(t *testing.T) {
	if breaks := ChangePoints(stepSignal([]float64{0.5}, []int{60}), Config{}); len(breaks) != 0 {
		t.Errorf("constant signal should not split, got %v", breaks)
	}
}

func TestChangePointsRespectsMinSize(t *testing.T) {
	signal := stepSignal([]float64{0.1, 0.9, 0.1}, []int{20, 2, 20})
	breaks := ChangePoints(signal, Config{MinSize: 5, Penalty: 0.3})
	for i := 1; i < len(breaks); i++ {
		if breaks[i]-breaks[i-1] < 5 {
			t.Fatalf("segments shorter than MinSize: %v", breaks)
		}
	}
	prev := 0
	for _, b := range breaks {
		if b-prev < 5 {
			t.Fatalf("segment [%d,%d) shorter than MinSize", prev, b)
		}
		prev = b
	}
}

func TestChangePointsShortSignal(t *testing.T) {
	if breaks := ChangePoints([]float64{0.1, 0.9, 0.1}, Config{MinSize: 5}); breaks != nil {
		t.Errorf("sub-minimum signal should yield nil, got %v", breaks)
	}
}

func TestHigherPenaltyMeansFewerBreaks(t *testing.T) {
	signal := stepSignal([]float64{0.1, 0.6, 0.2, 0.8}, []int{25, 25, 25, 25})
	loose := ChangePoints(signal, Config{MinSize: 5, Penalty: 0.1})
	tight := ChangePoints(signal, Config{MinSize: 5, Penalty: 5})
	if len(tight) > len(loose) {
		t.Errorf("penalty 5 found %d breaks, penalty 0.1 found %d", len(tight), len(loose))
	}
}

func TestThresholdCrossings(t *testing.T) {
	signal := []float64{0.1, 0.2, 0.6, 0.7, 0.3, 0.1, 0.8}
	breaks := ThresholdCrossings(signal, 0.4)
	want := []int{2, 4, 6}
	if len(breaks) != len(want) {
		t.Fatalf("crossings = %v, want %v", breaks, want)
	}
	for i := range want {
		if breaks[i] != want[i] {
			t.Fatalf("crossings = %v, want %v", breaks, want)
		}
	}
	if breaks := ThresholdCrossings([]float64{0.9}, 0.4); breaks != nil {
		t.Errorf("single sample should yield nil, got %v", breaks)
	}
}

func TestGradientPeaks(t *testing.T) {
	signal := make([]float64, 60)
	for i := 30; i < 60; i++ {
		signal[i] = 1
	}
	breaks := GradientPeaks(signal)
	if len(breaks) != 1 {
		t.Fatalf("expected one peak, got %v", breaks)
	}
	if breaks[0] != 30 {
		t.Errorf("peak at %d, want 30", breaks[0])
	}
	if breaks := GradientPeaks(make([]float64, 40)); breaks != nil {
		t.Errorf("flat signal should yield nil, got %v", breaks)
	}
}

func TestGradientPeaksSpacing(t *testing.T) {
	signal := make([]float64, 40)
	for i := 10; i < 40; i++ {
		signal[i] = 1
	}
	signal[12] = 0 // second steep edge 2 samples after the first
	signal[13] = 1
	breaks := GradientPeaks(signal)
	for i := 1; i < len(breaks); i++ {
		if breaks[i]-breaks[i-1] <= 5 {
			t.Fatalf("breakpoints closer than spacing floor: %v", breaks)
		}
	}
}
