package duration

import "testing"

func TestEstimateSpeedSumsToTarget(t *testing.T) {
	stats := []StateStat{
		{Mean: 5.3, Var: 1},
		{Mean: 5.3, Var: 1},
		{Mean: 5.3, Var: 1},
	}

	durs, err := EstimateSpeed(stats, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if Total(durs) != 16 { // round(15.9) == 16
		t.Fatalf("got total %d, want 16", Total(durs))
	}
	for _, d := range durs {
		if d < 1 {
			t.Fatalf("got duration %d, want >=1", d)
		}
	}
}

func TestEstimateSpeedHalvesDuration(t *testing.T) {
	stats := []StateStat{{Mean: 10, Var: 1}, {Mean: 10, Var: 1}}

	durs, err := EstimateSpeed(stats, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	if Total(durs) != 10 {
		t.Fatalf("got total %d, want 10", Total(durs))
	}
}

func TestEstimateSpeedRejectsNonPositiveSpeed(t *testing.T) {
	if _, err := EstimateSpeed([]StateStat{{Mean: 1}}, 0); err == nil {
		t.Fatal("expected error for non-positive speed")
	}
}

func TestEstimateAlignmentProportional(t *testing.T) {
	spans := []LabelSpan{
		{
			StartSamples: 0,
			EndSamples:   2400,
			States: []StateStat{
				{Mean: 1}, {Mean: 1}, {Mean: 2},
			},
		},
	}

	durs, err := EstimateAlignment(spans, 240)
	if err != nil {
		t.Fatal(err)
	}
	if Total(durs) != 10 {
		t.Fatalf("got total %d, want 10", Total(durs))
	}
	if durs[2] < durs[0] {
		t.Fatalf("expected state 2 (double weight) to get at least as many frames as state 0, got %v", durs)
	}
}

func TestEstimateAlignmentRejectsBadSpan(t *testing.T) {
	spans := []LabelSpan{{StartSamples: 100, EndSamples: 50, States: []StateStat{{Mean: 1}}}}
	if _, err := EstimateAlignment(spans, 240); err == nil {
		t.Fatal("expected error for end <= start")
	}
}

func TestAllocateMinimumOne(t *testing.T) {
	out := allocate([]float64{0.1, 0.1, 0.1}, 3, 1)
	for _, v := range out {
		if v != 1 {
			t.Fatalf("got %v, want all 1s", out)
		}
	}
}
