package domain

import "testing"

func TestDecide_HighConfidenceMatch(t *testing.T) {
	v := Decide(0.90, 0.65)
	if v.Outcome != OutcomeMatch {
		t.Fatalf("expected match, got %s", v.Outcome)
	}
	if v.Confidence != ConfidenceHigh {
		t.Errorf("expected high confidence, got %s", v.Confidence)
	}
}

func TestDecide_MediumConfidenceMatch(t *testing.T) {
	v := Decide(0.70, 0.65)
	if v.Outcome != OutcomeMatch {
		t.Fatalf("expected match, got %s", v.Outcome)
	}
	if v.Confidence != ConfidenceMedium {
		t.Errorf("expected medium confidence, got %s", v.Confidence)
	}
}

func TestDecide_NoMatch(t *testing.T) {
	v := Decide(0.50, 0.65)
	if v.Outcome != OutcomeNoMatch {
		t.Fatalf("expected no match, got %s", v.Outcome)
	}
	if v.Confidence != "" {
		t.Errorf("expected empty confidence on no-match, got %s", v.Confidence)
	}
}

func TestDecide_ExactThreshold(t *testing.T) {
	// similarity == threshold accepts.
	if v := Decide(0.65, 0.65); v.Outcome != OutcomeMatch {
		t.Errorf("expected match at exact threshold, got %s", v.Outcome)
	}
}

func TestDecide_BandingIndependentOfThreshold(t *testing.T) {
	// A lowered accept threshold must not move the High/Medium boundary.
	if v := Decide(0.79, 0.3); v.Confidence != ConfidenceMedium {
		t.Errorf("expected medium at 0.79, got %s", v.Confidence)
	}
	if v := Decide(0.80, 0.3); v.Confidence != ConfidenceHigh {
		t.Errorf("expected high at 0.80, got %s", v.Confidence)
	}
}
