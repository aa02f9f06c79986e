package triage

import "testing"

func TestLevelOrdering(t *testing.T) {
	ordered := []Level{
		Fine,
		TimedOut,
		AbnormalExit,
		DidNotFinish,
		DecidedToExit,
		MallocError,
		NewAssertOrCrash,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Errorf("%v should order below %v", ordered[i-1], ordered[i])
		}
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{Fine, "fine"},
		{TimedOut, "timed-out"},
		{AbnormalExit, "abnormal-exit"},
		{DidNotFinish, "did-not-finish"},
		{DecidedToExit, "decided-to-exit"},
		{MallocError, "malloc-error"},
		{NewAssertOrCrash, "new-assert-or-crash"},
		{Level(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel_Name(t *testing.T) {
	got, err := ParseLevel("malloc-error")
	if err != nil {
		t.Fatalf("ParseLevel: %v", err)
	}
	if got != MallocError {
		t.Errorf("ParseLevel(malloc-error) = %v, want malloc-error", got)
	}
}

func TestParseLevel_Numeric(t *testing.T) {
	got, err := ParseLevel("6")
	if err != nil {
		t.Fatalf("ParseLevel: %v", err)
	}
	if got != NewAssertOrCrash {
		t.Errorf("ParseLevel(6) = %v, want new-assert-or-crash", got)
	}
}

func TestParseLevel_Unknown(t *testing.T) {
	if _, err := ParseLevel("catastrophic"); err == nil {
		t.Error("expected error for unknown name")
	}
	if _, err := ParseLevel("99"); err == nil {
		t.Error("expected error for out-of-range rank")
	}
}

func TestParseLevel_RoundTrip(t *testing.T) {
	for l := Fine; l <= NewAssertOrCrash; l++ {
		got, err := ParseLevel(l.String())
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", l.String(), err)
		}
		if got != l {
			t.Errorf("ParseLevel(%q) = %v, want %v", l.String(), got, l)
		}
	}
}

func TestMax(t *testing.T) {
	if got := Max(TimedOut, NewAssertOrCrash); got != NewAssertOrCrash {
		t.Errorf("Max = %v, want new-assert-or-crash", got)
	}
	if got := Max(MallocError, Fine); got != MallocError {
		t.Errorf("Max = %v, want malloc-error", got)
	}
}
