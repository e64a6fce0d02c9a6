package detect

import (
	"math"
	"testing"

	"podsweep/internal/audiosig"
	"podsweep/internal/textsig"
)

func TestNormalizeMode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{ModeFast, ModeFast},
		{ModeBalanced, ModeBalanced},
		{ModeAccurate, ModeAccurate},
		{"", ModeBalanced},
		{"turbo", ModeBalanced},
	}
	for _, tc := range cases {
		if got := NormalizeMode(tc.in); got != tc.want {
			t.Errorf("NormalizeMode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestModeWeightsSumToOne(t *testing.T) {
	for mode, weights := range modeWeights {
		total := 0.0
		for _, w := range weights {
			total += w
		}
		if math.Abs(total-1.0) > 1e-9 {
			t.Errorf("mode %s weights sum to %f, want 1.0", mode, total)
		}
	}
}

func TestSignalVectorAlignment(t *testing.T) {
	axis := []float64{0, 1, 2, 3}
	vector := NewSignalVector(axis)

	vector.Add("long", []float64{1, 2, 3, 4, 5, 6})
	vector.Add("short", []float64{9, 8})
	vector.Add("empty", nil)

	long := vector.Channel("long")
	if len(long) != len(axis) {
		t.Fatalf("long channel length = %d, want %d", len(long), len(axis))
	}
	if long[3] != 4 {
		t.Errorf("long channel truncated wrong: got %v", long)
	}

	short := vector.Channel("short")
	if len(short) != len(axis) {
		t.Fatalf("short channel length = %d, want %d", len(short), len(axis))
	}
	if short[0] != 9 || short[2] != 0 || short[3] != 0 {
		t.Errorf("short channel not zero-padded at tail: got %v", short)
	}

	if vector.HasChannel("empty") {
		t.Error("empty channel should not be stored")
	}
	if got := vector.ChannelCount(); got != 2 {
		t.Errorf("ChannelCount = %d, want 2", got)
	}
}

func TestFusedRenormalizesOverPresentChannels(t *testing.T) {
	axis := []float64{0, 1, 2, 3}
	vector := NewSignalVector(axis)
	vector.Add(audiosig.ChannelEnergy, []float64{0, 1, 0, 1})

	// Only one of the balanced channels is present; its min-max normalized
	// values should come through at full scale after renormalization.
	fused := vector.Fused(modeWeights[ModeBalanced])
	if fused == nil {
		t.Fatal("Fused returned nil with one weighted channel present")
	}
	want := []float64{0, 1, 0, 1}
	for i := range want {
		if math.Abs(fused[i]-want[i]) > 1e-9 {
			t.Errorf("fused[%d] = %f, want %f", i, fused[i], want[i])
		}
	}
}

func TestFusedNilWhenNoWeightedChannel(t *testing.T) {
	vector := NewSignalVector([]float64{0, 1, 2})
	vector.Add("unweighted", []float64{1, 2, 3})
	if fused := vector.Fused(modeWeights[ModeFast]); fused != nil {
		t.Errorf("Fused = %v, want nil when no weighted channel present", fused)
	}
}

func TestFusedFlatChannelNotRescaled(t *testing.T) {
	vector := NewSignalVector([]float64{0, 1, 2})
	vector.Add(textsig.ChannelKeyword, []float64{0.5, 0.5, 0.5})
	fused := vector.Fused(map[string]float64{textsig.ChannelKeyword: 1.0})
	for i, v := range fused {
		if math.Abs(v-0.5) > 1e-9 {
			t.Errorf("fused[%d] = %f, want 0.5 for a flat channel", i, v)
		}
	}
}

func TestFusedCombinesWeightedChannels(t *testing.T) {
	vector := NewSignalVector([]float64{0, 1})
	vector.Add("a", []float64{0, 1})
	vector.Add("b", []float64{1, 0})
	fused := vector.Fused(map[string]float64{"a": 0.75, "b": 0.25})
	if math.Abs(fused[0]-0.25) > 1e-9 || math.Abs(fused[1]-0.75) > 1e-9 {
		t.Errorf("fused = %v, want [0.25 0.75]", fused)
	}
}
